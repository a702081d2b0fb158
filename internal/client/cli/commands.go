package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notesauth/internal/client/client"
	"github.com/dmitrijs2005/notesauth/internal/common"
	"github.com/spf13/cobra"
)

var errPasswordMismatch = errors.New("passwords do not match")

func (a *app) newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in with a local password and print the session token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var userName string
			if len(args) == 1 {
				userName = args[0]
			} else {
				var err error
				userName, err = GetSimpleText(bufio.NewReader(cmd.InOrStdin()), "Username", cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			password, err := GetPassword(cmd.ErrOrStderr(), "Password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			return a.withClient(cmd, func(ctx context.Context, c Client) error {
				token, err := c.Login(ctx, userName, password)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
}

func (a *app) newCleanupCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "cleanup [combined|expired|used]",
		Short:     "Delete expired and/or used reset tokens",
		Long:      "Runs one reset token cleanup. Without an argument the combined cleanup runs.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{client.CleanupCombined, client.CleanupExpired, client.CleanupUsed},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := client.CleanupCombined
			if len(args) == 1 {
				kind = args[0]
			}

			return a.withClient(cmd, func(ctx context.Context, c Client) error {
				n, err := c.RunCleanup(ctx, kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s cleanup deleted %d tokens\n", kind, n)
				return nil
			})
		},
	}
}

func (a *app) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print reset token statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c Client) error {
				s, err := c.Stats(ctx)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "total:   %d\n", s.TotalTokens)
				fmt.Fprintf(w, "expired: %d\n", s.ExpiredTokens)
				fmt.Fprintf(w, "used:    %d\n", s.UsedTokens)
				fmt.Fprintf(w, "valid:   %d\n", s.ValidTokens)
				return nil
			})
		},
	}
}

func (a *app) newResetRequestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-request <email>",
		Short: "Send a password reset link to email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c Client) error {
				if err := c.RequestPasswordReset(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "If the address is registered, a reset link is on its way.")
				return nil
			})
		},
	}
}

func (a *app) newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <token>",
		Short: "Set a new password using a reset token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := GetPassword(cmd.ErrOrStderr(), "New password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			repeat, err := GetPassword(cmd.ErrOrStderr(), "Repeat new password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(repeat)

			if !bytes.Equal(password, repeat) {
				return errPasswordMismatch
			}

			return a.withClient(cmd, func(ctx context.Context, c Client) error {
				if err := c.ResetPassword(ctx, args[0], password); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Password updated.")
				return nil
			})
		},
	}
}
