// Package window provides the headless window controller used when no
// rendering layer is attached. Window lifecycle still flows through the
// registry so hotkey toggles behave the same with or without a UI.
package window

import (
	"sync"

	"go.uber.org/zap"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/ports"
)

// Controller implements ports.WindowController with log-only windows.
type Controller struct {
	logger *zap.Logger
}

var _ ports.WindowController = (*Controller)(nil)

func NewController(logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Controller{logger: logger}
}

func (c *Controller) CreateWindow(kind domain.WindowKind) (ports.WindowHandle, error) {
	c.logger.Info("window created", zap.String("kind", string(kind)))

	return &handle{kind: kind, logger: c.logger}, nil
}

type handle struct {
	kind      domain.WindowKind
	logger    *zap.Logger
	mu        sync.Mutex
	closed    bool
	lastState string
}

func (h *handle) Show() {
	h.transition("shown")
}

func (h *handle) Hide() {
	h.transition("hidden")
}

func (h *handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	h.logger.Info("window closed", zap.String("kind", string(h.kind)))
}

func (h *handle) transition(state string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.lastState == state {
		return
	}
	h.lastState = state
	h.logger.Info("window "+state, zap.String("kind", string(h.kind)))
}
