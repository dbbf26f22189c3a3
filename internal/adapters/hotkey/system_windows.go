package hotkey

import (
	gohotkey "golang.design/x/hotkey"

	"github.com/scriptpad-app/scriptpad/internal/domain"
)

var systemModifiers = map[domain.Modifier]gohotkey.Modifier{
	domain.ModCtrl:  gohotkey.ModCtrl,
	domain.ModShift: gohotkey.ModShift,
	domain.ModAlt:   gohotkey.ModAlt,
	domain.ModSuper: gohotkey.ModWin,
}

var platformKeys = map[string]gohotkey.Key{
	"space":  gohotkey.KeySpace,
	"return": gohotkey.KeyReturn,
	"escape": gohotkey.KeyEscape,
	"up":     gohotkey.KeyUp,
	"down":   gohotkey.KeyDown,
	"left":   gohotkey.KeyLeft,
	"right":  gohotkey.KeyRight,
}
