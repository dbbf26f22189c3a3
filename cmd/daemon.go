package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	hotkeyadapter "github.com/scriptpad-app/scriptpad/internal/adapters/hotkey"
	"github.com/scriptpad-app/scriptpad/internal/application"
	"github.com/scriptpad-app/scriptpad/internal/domain"
)

func newDaemonCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Register global hotkeys and dispatch until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			bridge := hotkeyadapter.NewBridge(app.registrar, app.logger)
			defer bridge.Close()

			if err := bindHotkeys(ctx, app, bridge); err != nil {
				return err
			}

			dispatcher := application.NewDispatcher(application.DispatcherConfig{
				Supervisor: app.supervisor,
				Windows:    app.windows,
				Catalog:    app.catalog,
				Hotkeys:    bridge.Signals(),
				Logger:     app.logger,
			})

			app.logger.Info("daemon running")
			dispatcher.Run(ctx)

			app.supervisor.KillAll()
			app.windows.CloseAll()
			app.logger.Info("daemon stopped")

			return nil
		},
	}
}

// bindHotkeys registers the main toggle, the optional secondary window
// shortcuts, and every shortcut-bound catalog script. A shortcut the OS
// refuses is logged and skipped; the daemon still starts.
func bindHotkeys(ctx context.Context, app *app, bridge *hotkeyadapter.Bridge) error {
	mainSpec := envOrDefault("SCRIPTPAD_MAIN_SHORTCUT", "ctrl+space")
	mainShortcut, err := domain.ParseShortcut(mainSpec)
	if err != nil {
		return fmt.Errorf("main shortcut %q: %w", mainSpec, err)
	}
	_ = bridge.Bind(hotkeyadapter.Binding{
		Shortcut: mainShortcut,
		Signal:   domain.HotkeySignal{Target: domain.HotkeyToggleMain},
	})

	windowShortcuts := map[domain.WindowKind]string{
		domain.WindowNotes: envOrDefault("SCRIPTPAD_NOTES_SHORTCUT", ""),
		domain.WindowAI:    envOrDefault("SCRIPTPAD_AI_SHORTCUT", ""),
	}
	for kind, spec := range windowShortcuts {
		if spec == "" {
			continue
		}
		shortcut, err := domain.ParseShortcut(spec)
		if err != nil {
			return fmt.Errorf("%s shortcut %q: %w", kind, spec, err)
		}
		_ = bridge.Bind(hotkeyadapter.Binding{
			Shortcut: shortcut,
			Signal:   domain.HotkeySignal{Target: domain.HotkeyWindow, Window: kind},
		})
	}

	scripts, err := app.catalog.List(ctx)
	if err != nil {
		return fmt.Errorf("list script catalog: %w", err)
	}
	for _, script := range scripts {
		if script.Shortcut == "" {
			continue
		}
		shortcut, err := domain.ParseShortcut(script.Shortcut)
		if err != nil {
			app.logger.Warn("skipping script shortcut",
				zap.String("script", script.Name),
				zap.Error(err))
			continue
		}
		_ = bridge.Bind(hotkeyadapter.Binding{
			Shortcut: shortcut,
			Signal:   domain.HotkeySignal{Target: domain.HotkeyScript, Script: script.Name},
		})
	}

	return nil
}
