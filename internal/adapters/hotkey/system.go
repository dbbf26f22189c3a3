//go:build linux || darwin || windows

package hotkey

import (
	"fmt"

	"go.uber.org/zap"
	gohotkey "golang.design/x/hotkey"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/ports"
)

// SystemRegistrar registers combinations with the OS through
// golang.design/x/hotkey. Events are delivered by the library's hook
// thread; each registration forwards them onto its Pressed channel.
//
// On darwin the process must be running inside mainthread.Init for
// registration to succeed; the launcher shell owns that.
type SystemRegistrar struct {
	logger *zap.Logger
}

var _ ports.HotkeyRegistrar = (*SystemRegistrar)(nil)

func NewSystemRegistrar(logger *zap.Logger) *SystemRegistrar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemRegistrar{logger: logger}
}

func (r *SystemRegistrar) Register(shortcut domain.Shortcut) (ports.Registration, error) {
	mods := make([]gohotkey.Modifier, 0, len(shortcut.Modifiers))
	for _, mod := range shortcut.Modifiers {
		converted, ok := systemModifiers[mod]
		if !ok {
			return nil, fmt.Errorf("%w: modifier %q not supported on this platform",
				domain.ErrHotkeyRegistration, mod)
		}
		mods = append(mods, converted)
	}

	key, ok := systemKeys[shortcut.Key]
	if !ok {
		return nil, fmt.Errorf("%w: key %q not supported for global binding",
			domain.ErrHotkeyRegistration, shortcut.Key)
	}

	hk := gohotkey.New(mods, key)
	if err := hk.Register(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrHotkeyRegistration, err)
	}

	reg := &systemRegistration{
		hk:      hk,
		pressed: make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}
	go reg.forward()

	r.logger.Debug("system hotkey registered", zap.String("shortcut", shortcut.String()))
	return reg, nil
}

type systemRegistration struct {
	hk      *gohotkey.Hotkey
	pressed chan struct{}
	stop    chan struct{}
}

func (s *systemRegistration) Pressed() <-chan struct{} {
	return s.pressed
}

func (s *systemRegistration) Unregister() {
	close(s.stop)
	_ = s.hk.Unregister()
}

func (s *systemRegistration) forward() {
	for {
		select {
		case <-s.stop:
			return
		case <-s.hk.Keydown():
			select {
			case s.pressed <- struct{}{}:
			case <-s.stop:
				return
			}
		}
	}
}

// systemKeys maps the portable subset of key names. Letters and digits
// are available on every platform the library supports.
var systemKeys = buildSystemKeys()

func buildSystemKeys() map[string]gohotkey.Key {
	keys := map[string]gohotkey.Key{
		"a": gohotkey.KeyA, "b": gohotkey.KeyB, "c": gohotkey.KeyC,
		"d": gohotkey.KeyD, "e": gohotkey.KeyE, "f": gohotkey.KeyF,
		"g": gohotkey.KeyG, "h": gohotkey.KeyH, "i": gohotkey.KeyI,
		"j": gohotkey.KeyJ, "k": gohotkey.KeyK, "l": gohotkey.KeyL,
		"m": gohotkey.KeyM, "n": gohotkey.KeyN, "o": gohotkey.KeyO,
		"p": gohotkey.KeyP, "q": gohotkey.KeyQ, "r": gohotkey.KeyR,
		"s": gohotkey.KeyS, "t": gohotkey.KeyT, "u": gohotkey.KeyU,
		"v": gohotkey.KeyV, "w": gohotkey.KeyW, "x": gohotkey.KeyX,
		"y": gohotkey.KeyY, "z": gohotkey.KeyZ,
		"0": gohotkey.Key0, "1": gohotkey.Key1, "2": gohotkey.Key2,
		"3": gohotkey.Key3, "4": gohotkey.Key4, "5": gohotkey.Key5,
		"6": gohotkey.Key6, "7": gohotkey.Key7, "8": gohotkey.Key8,
		"9": gohotkey.Key9,
	}
	for name, key := range platformKeys {
		keys[name] = key
	}
	return keys
}
