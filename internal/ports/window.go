package ports

import "github.com/scriptpad-app/scriptpad/internal/domain"

// WindowHandle is a live window owned by the rendering layer.
type WindowHandle interface {
	Show()
	Hide()
	Close()
}

// WindowController is implemented by the rendering layer, which is an
// external collaborator of this core. CreateWindow is only called while
// the registry slot for the kind is empty.
type WindowController interface {
	CreateWindow(kind domain.WindowKind) (WindowHandle, error)
}
