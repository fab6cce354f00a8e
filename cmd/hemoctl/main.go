// Command hemoctl is the operator CLI of the HemoCore console. It talks to
// the HemoCore API directly and keeps the login token in a session file
// between invocations.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hemocore/console/aggregate"
	"github.com/hemocore/console/apiclient"
	"github.com/hemocore/console/config"
	"github.com/hemocore/console/logging"
	"github.com/hemocore/console/services"
	"github.com/hemocore/console/session"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// commandTimeout bounds every API round trip of a single command
const commandTimeout = 60 * time.Second

// app carries what every subcommand needs
type app struct {
	cfg     *config.Config
	session *session.Holder
	svc     *services.Services
	out     io.Writer
	now     func() time.Time
}

func newApp(cfg *config.Config, out io.Writer) (*app, error) {
	holder := session.NewHolder(session.NewFileStore(cfg.SessionFile))
	if err := holder.Init(); err != nil {
		return nil, err
	}

	client := apiclient.New(cfg.APIURL, holder)
	return &app{
		cfg:     cfg,
		session: holder,
		svc: services.New(client, services.Options{
			Session:               holder,
			AllowDeliveryReversal: cfg.AllowDeliveryReversal,
		}),
		out: out,
		now: time.Now,
	}, nil
}

func (a *app) thresholds() aggregate.Thresholds {
	return aggregate.Thresholds{
		LowStock:     float64(a.cfg.LowStockThreshold),
		ExpiryWindow: time.Duration(a.cfg.ExpiryWindowDays) * 24 * time.Hour,
	}
}

// requireSession errors when no live token is held
func (a *app) requireSession() error {
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("not logged in, run: hemoctl login")
	}
	return nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, commandTimeout)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hemoctl",
		Short:         "HemoCore clinic console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(a.out)

	rootCmd.AddCommand(loginCmd(a))
	rootCmd.AddCommand(logoutCmd(a))
	rootCmd.AddCommand(whoamiCmd(a))
	rootCmd.AddCommand(dashboardCmd(a))
	rootCmd.AddCommand(alertsCmd(a))
	rootCmd.AddCommand(patientsCmd(a))
	rootCmd.AddCommand(visitsCmd(a))
	rootCmd.AddCommand(distributionsCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	return rootCmd
}

// loadEnv reads .env from the working directory, then from the executable's
// directory. A missing file is not an error.
func loadEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}
	if ex, err := os.Executable(); err == nil {
		_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
	}
}

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	logService := logging.Init(logging.Options{Level: cfg.LogLevel, ConsoleOnly: true})
	defer func() { _ = logService.Close() }()

	a, err := newApp(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		_ = logService.Close()
		os.Exit(1)
	}
}
