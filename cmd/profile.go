package cmd

import (
	"fmt"

	"github.com/bnema/me2u/internal/application"
	"github.com/bnema/me2u/internal/domain"
	"github.com/spf13/cobra"
)

func newProfileCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage saved connection profiles",
	}

	cmd.AddCommand(
		newProfileAddCmd(app),
		newProfileListCmd(app),
		newProfileRemoveCmd(app),
	)

	return cmd
}

func newProfileAddCmd(app *app) *cobra.Command {
	var host string
	var port string
	var username string

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Save or replace a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := app.profiles.Add(cmd.Context(), application.AddProfileCommand{
				Name:     domain.ProfileName(args[0]),
				Host:     host,
				Port:     port,
				Username: username,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved profile %s\n", profile.Name)
			return err
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "server host")
	cmd.Flags().StringVar(&port, "port", "", "server port")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username to log in with")
	_ = cmd.MarkFlagRequired("host")
	_ = cmd.MarkFlagRequired("port")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func newProfileListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profiles, err := app.profiles.List(cmd.Context())
			if err != nil {
				return err
			}

			rendered, err := app.profileRender(profiles)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}
}

func newProfileRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Delete a saved profile",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.profiles.Remove(cmd.Context(), domain.ProfileName(args[0])); err != nil {
				return err
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "removed profile %s\n", args[0])
			return err
		},
	}
}
