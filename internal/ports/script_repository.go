package ports

import (
	"context"

	"github.com/scriptpad-app/scriptpad/internal/domain"
)

// ScriptRepository lists the launchable script catalog.
type ScriptRepository interface {
	GetByName(ctx context.Context, name string) (domain.Script, error)
	List(ctx context.Context) ([]domain.Script, error)
}
