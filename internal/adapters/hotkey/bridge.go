// Package hotkey bridges OS-thread global-hotkey interrupts into the
// dispatcher's signal channel. Signals are buffered from the moment a
// binding is registered, so a press that fires before the dispatcher
// (or any window) exists is never lost.
package hotkey

import (
	"sync"

	"go.uber.org/zap"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/ports"
)

const signalBuffer = 16

// Binding ties one shortcut to the signal it emits when pressed.
type Binding struct {
	Shortcut domain.Shortcut
	Signal   domain.HotkeySignal
}

// Bridge owns the registered hotkeys and the bounded wake channel. One
// forwarder goroutine per binding drains the OS-thread deliveries; the
// channel buffer guarantees the first press is retained even before any
// consumer runs.
type Bridge struct {
	registrar ports.HotkeyRegistrar
	logger    *zap.Logger

	signals chan domain.HotkeySignal
	stop    chan struct{}

	mu       sync.Mutex
	bindings []ports.Registration
	closed   bool
	wg       sync.WaitGroup
}

func NewBridge(registrar ports.HotkeyRegistrar, logger *zap.Logger) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		registrar: registrar,
		logger:    logger,
		signals:   make(chan domain.HotkeySignal, signalBuffer),
		stop:      make(chan struct{}),
	}
}

// Bind registers one shortcut. Failure is non-fatal: the error is
// returned for logging and every other binding keeps working.
func (b *Bridge) Bind(binding Binding) error {
	registration, err := b.registrar.Register(binding.Shortcut)
	if err != nil {
		b.logger.Warn("hotkey registration failed",
			zap.String("shortcut", binding.Shortcut.String()),
			zap.Error(err))
		return err
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		registration.Unregister()
		return nil
	}
	b.bindings = append(b.bindings, registration)
	b.wg.Add(1)
	b.mu.Unlock()

	go b.forward(binding, registration)

	b.logger.Info("hotkey bound",
		zap.String("shortcut", binding.Shortcut.String()),
		zap.String("target", string(binding.Signal.Target)))
	return nil
}

// Signals is the wake channel the dispatcher drains.
func (b *Bridge) Signals() <-chan domain.HotkeySignal {
	return b.signals
}

// Close unregisters every binding and stops the forwarders.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	bindings := b.bindings
	b.bindings = nil
	b.mu.Unlock()

	close(b.stop)
	for _, registration := range bindings {
		registration.Unregister()
	}
	b.wg.Wait()
}

func (b *Bridge) forward(binding Binding, registration ports.Registration) {
	defer b.wg.Done()
	for {
		select {
		case <-b.stop:
			return
		case _, ok := <-registration.Pressed():
			if !ok {
				return
			}
			b.publish(binding.Signal)
		}
	}
}

// publish never blocks the OS hook thread. The buffer retains early
// presses; only presses beyond a full buffer are dropped, and loudly.
func (b *Bridge) publish(signal domain.HotkeySignal) {
	select {
	case b.signals <- signal:
	default:
		b.logger.Warn("hotkey signal dropped: consumer not keeping up",
			zap.String("target", string(signal.Target)))
	}
}
