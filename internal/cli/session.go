package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(rt *runtime) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "obtain a token and remember it",
		Long:  "Without --password the password is read from the first line of stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("password") {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no password given")
				}
				password = strings.TrimRight(line, "\r\n")
			}

			if err := rt.session.Login(cmd.Context(), args[0], password); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Logged in as %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

func newLogoutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rt.session.Logout(); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Logged out\n")
			return nil
		},
	}
}
