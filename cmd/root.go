package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "me2u",
		Short:         "me2u: terminal client for ME2U chat servers",
		Long:          "me2u connects to an ME2U chat server, logs in under a username and opens one terminal window per conversation.",
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
		newConnectCmd(app),
		newProfileCmd(app),
		newWindowCmd(app),
	)

	return rootCmd
}
