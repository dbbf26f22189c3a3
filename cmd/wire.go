package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	hotkeyadapter "github.com/scriptpad-app/scriptpad/internal/adapters/hotkey"
	"github.com/scriptpad-app/scriptpad/internal/adapters/process"
	crashrender "github.com/scriptpad-app/scriptpad/internal/adapters/render/crash"
	tomlrepo "github.com/scriptpad-app/scriptpad/internal/adapters/repo/toml"
	windowadapter "github.com/scriptpad-app/scriptpad/internal/adapters/window"
	"github.com/scriptpad-app/scriptpad/internal/application"
	"github.com/scriptpad-app/scriptpad/internal/ports"
)

type app struct {
	logger        *zap.Logger
	catalog       ports.ScriptRepository
	supervisor    *application.Supervisor
	windows       *application.WindowRegistry
	registrar     ports.HotkeyRegistrar
	crashRenderer func(crashrender.Report) (string, error)
}

func wireApp() (*app, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	catalog, err := tomlrepo.NewRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire script catalog: %w", err)
	}

	runner := process.NewRunner(logger)
	supervisor := application.NewSupervisor(runner, ports.SystemClock{}, logger)
	windows := application.NewWindowRegistry(windowadapter.NewController(logger), logger)

	return &app{
		logger:        logger,
		catalog:       catalog,
		supervisor:    supervisor,
		windows:       windows,
		registrar:     hotkeyadapter.NewSystemRegistrar(logger),
		crashRenderer: crashrender.Render,
	}, nil
}

func newLogger() (*zap.Logger, error) {
	if os.Getenv("SCRIPTPAD_DEBUG") != "" {
		return zap.NewDevelopment()
	}

	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}

	return cfg.Build()
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
