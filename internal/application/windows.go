package application

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/ports"
)

// WindowRegistry holds the one live window handle per window kind. It is
// the only mutable state this core shares across sessions; the lock is
// held for the duration of a check-or-create and never across anything
// that suspends.
type WindowRegistry struct {
	controller ports.WindowController
	logger     *zap.Logger

	mu      sync.Mutex
	slots   map[domain.WindowKind]ports.WindowHandle
	visible map[domain.WindowKind]bool
}

func NewWindowRegistry(controller ports.WindowController, logger *zap.Logger) *WindowRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WindowRegistry{
		controller: controller,
		logger:     logger,
		slots:      map[domain.WindowKind]ports.WindowHandle{},
		visible:    map[domain.WindowKind]bool{},
	}
}

// Show creates the window for kind if its slot is empty, then shows it.
func (r *WindowRegistry) Show(kind domain.WindowKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle, err := r.ensureLocked(kind)
	if err != nil {
		return err
	}
	handle.Show()
	r.visible[kind] = true
	return nil
}

// Toggle hides a visible window and shows a hidden or not-yet-created
// one.
func (r *WindowRegistry) Toggle(kind domain.WindowKind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.visible[kind] {
		r.slots[kind].Hide()
		r.visible[kind] = false
		return nil
	}

	handle, err := r.ensureLocked(kind)
	if err != nil {
		return err
	}
	handle.Show()
	r.visible[kind] = true
	return nil
}

// Hide hides the window for kind if it is live. No-op otherwise.
func (r *WindowRegistry) Hide(kind domain.WindowKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if handle, ok := r.slots[kind]; ok && r.visible[kind] {
		handle.Hide()
		r.visible[kind] = false
	}
}

// Close destroys the window for kind, emptying its slot.
func (r *WindowRegistry) Close(kind domain.WindowKind) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if handle, ok := r.slots[kind]; ok {
		handle.Close()
		delete(r.slots, kind)
		delete(r.visible, kind)
	}
}

// CloseAll destroys every live window. Used on shutdown.
func (r *WindowRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for kind, handle := range r.slots {
		handle.Close()
		delete(r.slots, kind)
		delete(r.visible, kind)
	}
}

// Live reports whether a window exists for kind.
func (r *WindowRegistry) Live(kind domain.WindowKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.slots[kind]
	return ok
}

// Visible reports whether the window for kind is currently shown.
func (r *WindowRegistry) Visible(kind domain.WindowKind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible[kind]
}

func (r *WindowRegistry) ensureLocked(kind domain.WindowKind) (ports.WindowHandle, error) {
	if handle, ok := r.slots[kind]; ok {
		return handle, nil
	}

	handle, err := r.controller.CreateWindow(kind)
	if err != nil {
		return nil, fmt.Errorf("create %s window: %w", kind, err)
	}
	r.slots[kind] = handle
	r.logger.Debug("window created", zap.String("kind", string(kind)))
	return handle, nil
}
