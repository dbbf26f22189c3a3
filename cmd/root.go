package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "scriptpad",
		Short:         "Scriptpad: launch scripts that talk back over stdin/stdout",
		Long:          "scriptpad runs catalog scripts as supervised child processes, bridges their newline-delimited JSON protocol, and binds global hotkeys to windows and scripts.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newScriptsCmd(app),
		newRunCmd(app),
		newDaemonCmd(app),
	)

	return rootCmd
}
