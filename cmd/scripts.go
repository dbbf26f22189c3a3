package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newScriptsCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scripts",
		Short: "List the script catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scripts, err := app.catalog.List(cmd.Context())
			if err != nil {
				return err
			}

			if len(scripts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No scripts found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSHORTCUT\tDESCRIPTION")
			for _, script := range scripts {
				shortcut := script.Shortcut
				if shortcut == "" {
					shortcut = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", script.Name, shortcut, script.Description)
			}

			return w.Flush()
		},
	}
}
