package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/notesauth/internal/client/client"
	"github.com/dmitrijs2005/notesauth/internal/client/config"
	"github.com/spf13/cobra"
)

// Exit codes for notesctl.
const (
	ExitCodeSuccess      = 0
	ExitCodeError        = 1
	ExitCodeAuthRequired = 2
)

// Client is the part of client.GRPCClient the commands use.
type Client interface {
	Login(ctx context.Context, userName string, password []byte) (string, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token string, newPassword []byte) error
	RunCleanup(ctx context.Context, kind string) (int64, error)
	Stats(ctx context.Context) (*client.Stats, error)
	Close() error
}

// Dialer opens a Client for endpoint, authenticating with token when set.
type Dialer func(endpoint, token string) (Client, error)

func dialGRPC(endpoint, token string) (Client, error) {
	return client.NewGRPCClient(endpoint, token)
}

type app struct {
	cfg  *config.Config
	dial Dialer
}

// NewRootCommand builds the notesctl command tree. Flags override the
// values already present in cfg.
func NewRootCommand(cfg *config.Config, dial Dialer) *cobra.Command {
	a := &app{cfg: cfg, dial: dial}

	root := &cobra.Command{
		Use:   "notesctl",
		Short: "Administer the notes credential service",
		Long: `notesctl talks to the notes credential service over gRPC.
Admin commands need a session token of an account holding ROLE_ADMIN,
passed with --token or NOTES_AUTH_TOKEN.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&cfg.ServerEndpointAddr, "server", "a", cfg.ServerEndpointAddr, "address:port of the credential service")
	pf.StringVarP(&cfg.Token, "token", "t", cfg.Token, "session token for admin commands")
	pf.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "deadline for each call")

	root.AddCommand(
		a.newLoginCmd(),
		a.newCleanupCmd(),
		a.newStatsCmd(),
		a.newResetRequestCmd(),
		a.newResetCmd(),
	)
	return root
}

// withClient dials the server and runs fn under the configured timeout.
func (a *app) withClient(cmd *cobra.Command, fn func(ctx context.Context, c Client) error) error {
	c, err := a.dial(a.cfg.ServerEndpointAddr, a.cfg.Token)
	if err != nil {
		return fmt.Errorf("connect %s: %w", a.cfg.ServerEndpointAddr, err)
	}
	defer c.Close()

	timeout := a.cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	return fn(ctx, c)
}

// Execute runs notesctl and exits with a non-zero code on failure.
func Execute() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitCodeError)
	}

	if err := NewRootCommand(cfg, dialGRPC).Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.Is(err, client.ErrUnauthorized), errors.Is(err, client.ErrForbidden):
		return ExitCodeAuthRequired
	default:
		return ExitCodeError
	}
}
