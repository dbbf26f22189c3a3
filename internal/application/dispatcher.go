package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/ports"
)

// Dispatcher is the single cooperative consumer of everything the
// producers emit: decoded session events from the supervisor's read
// loops and hotkey signals from the OS hook thread. It owns all window
// actions and never performs blocking I/O itself.
//
// It is constructed once at startup and passed to whatever needs it;
// there is no package-level instance.
type Dispatcher struct {
	supervisor *Supervisor
	windows    *WindowRegistry
	catalog    ports.ScriptRepository
	hotkeys    <-chan domain.HotkeySignal
	logger     *zap.Logger
}

type DispatcherConfig struct {
	Supervisor *Supervisor
	Windows    *WindowRegistry
	Catalog    ports.ScriptRepository
	// Hotkeys is the bridge's signal channel. The bridge buffers
	// presses that fire before Run starts, so starting the dispatcher
	// after registration loses nothing.
	Hotkeys <-chan domain.HotkeySignal
	Logger  *zap.Logger
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		supervisor: cfg.Supervisor,
		windows:    cfg.Windows,
		catalog:    cfg.Catalog,
		hotkeys:    cfg.Hotkeys,
		logger:     logger,
	}
}

// Run drains both producer channels until ctx is cancelled. It must be
// started at process initialization, before any window exists: hotkey
// liveness does not depend on window lifecycle or any other activity.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case signal := <-d.hotkeys:
			d.handleHotkey(ctx, signal)
		case event := <-d.supervisor.Events():
			d.handleEvent(event)
		}
	}
}

func (d *Dispatcher) handleHotkey(ctx context.Context, signal domain.HotkeySignal) {
	switch signal.Target {
	case domain.HotkeyToggleMain:
		if err := d.windows.Toggle(domain.WindowMain); err != nil {
			d.logger.Error("toggle main window", zap.Error(err))
		}
	case domain.HotkeyWindow:
		if err := d.windows.Show(signal.Window); err != nil {
			d.logger.Error("show window",
				zap.String("kind", string(signal.Window)),
				zap.Error(err))
		}
	case domain.HotkeyScript:
		d.launchScript(ctx, signal.Script)
	default:
		d.logger.Warn("unhandled hotkey signal", zap.String("target", string(signal.Target)))
	}
}

func (d *Dispatcher) launchScript(ctx context.Context, name string) {
	if d.catalog == nil {
		d.logger.Warn("no script catalog configured", zap.String("script", name))
		return
	}
	script, err := d.catalog.GetByName(ctx, name)
	if err != nil {
		d.logger.Error("resolve shortcut-bound script",
			zap.String("script", name),
			zap.Error(err))
		return
	}
	if _, err := d.supervisor.Launch(ctx, script); err != nil {
		d.logger.Error("launch shortcut-bound script",
			zap.String("script", name),
			zap.Error(err))
	}
}

func (d *Dispatcher) handleEvent(event Event) {
	switch event.Type {
	case EventMessage:
		d.logger.Debug("session message",
			zap.String("session", event.Session.ID()),
			zap.String("kind", string(event.Message.Kind)))
	case EventExit:
		if event.Exit.Reason == domain.ExitCrashed {
			// Crashes stay session-scoped: report with the stderr
			// tail, never take the host down.
			d.logger.Error("script crashed",
				zap.String("session", event.Session.ID()),
				zap.String("script", event.Session.Script().Name),
				zap.Int("code", event.Exit.Code),
				zap.Strings("stderr_tail", event.Session.StderrTail()))
		}
	}
}
