package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	crashrender "github.com/scriptpad-app/scriptpad/internal/adapters/render/crash"
	"github.com/scriptpad-app/scriptpad/internal/application"
	"github.com/scriptpad-app/scriptpad/internal/domain"
)

func newRunCmd(app *app) *cobra.Command {
	var (
		argPrompt string
		choices   []string
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a catalog script and bridge its protocol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := app.catalog.GetByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			session, err := app.supervisor.Launch(cmd.Context(), script)
			if err != nil {
				return err
			}

			if argPrompt != "" {
				prompt := domain.Arg("", argPrompt, argChoices(choices))
				outcome, err := session.Ask(cmd.Context(), prompt, timeout)
				if err != nil {
					_ = session.Kill()
					return err
				}
				printOutcome(cmd, outcome)
			}

			exit := drainSession(cmd, app, session)
			if exit.Reason == domain.ExitCrashed || exit.Reason == domain.ExitKilled {
				report, renderErr := app.crashRenderer(crashrender.Report{
					Script:     script,
					SessionID:  session.ID(),
					Exit:       exit,
					StderrTail: session.StderrTail(),
				})
				if renderErr != nil {
					return renderErr
				}
				fmt.Fprintln(cmd.ErrOrStderr(), report)
				return fmt.Errorf("script %q %s", script.Name, exit.Reason)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&argPrompt, "arg", "", "send an arg prompt with this placeholder and print the answer")
	cmd.Flags().StringSliceVar(&choices, "choices", nil, "choices offered with --arg, as name or name=value")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "prompt timeout (0 waits indefinitely)")

	return cmd
}

// drainSession consumes supervisor events until this session exits.
// Updates and exit announcements are printed as they arrive.
func drainSession(cmd *cobra.Command, app *app, session *application.Session) domain.ExitStatus {
	for event := range app.supervisor.Events() {
		if event.Session.ID() != session.ID() {
			continue
		}

		switch event.Type {
		case application.EventMessage:
			printMessage(cmd, event.Message)
		case application.EventExit:
			return event.Exit
		}
	}

	return session.Wait()
}

func printMessage(cmd *cobra.Command, msg domain.Message) {
	switch msg.Kind {
	case domain.KindUpdate:
		fmt.Fprintln(cmd.OutOrStdout(), formatUpdate(msg.Data))
	case domain.KindExit:
		if msg.ExitNote != "" {
			fmt.Fprintln(cmd.OutOrStdout(), msg.ExitNote)
		}
	}
}

func printOutcome(cmd *cobra.Command, outcome domain.Outcome) {
	switch outcome.Status {
	case domain.OutcomeSubmitted:
		if outcome.Value != nil {
			fmt.Fprintln(cmd.OutOrStdout(), *outcome.Value)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "(no value)")
		}
	case domain.OutcomeCancelled:
		fmt.Fprintln(cmd.OutOrStdout(), "(cancelled)")
	case domain.OutcomeTimedOut:
		fmt.Fprintln(cmd.OutOrStdout(), "(timed out)")
	}
}

func formatUpdate(data map[string]any) string {
	if text, ok := data["text"].(string); ok {
		return text
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, data[key]))
	}

	return strings.Join(parts, " ")
}

func argChoices(raw []string) []domain.Choice {
	choices := make([]domain.Choice, 0, len(raw))
	for _, entry := range raw {
		name, value, found := strings.Cut(entry, "=")
		if !found {
			value = name
		}
		choices = append(choices, domain.Choice{Name: name, Value: value})
	}

	return choices
}
