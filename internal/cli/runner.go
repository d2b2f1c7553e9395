// Package cli is the command-line surface: every view operation as a
// subcommand, plus the interactive UI as the default command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/idilsaglam/taskmgr/internal/api"
	"github.com/idilsaglam/taskmgr/internal/auth"
	"github.com/idilsaglam/taskmgr/internal/config"
	"github.com/idilsaglam/taskmgr/internal/exitcode"
	"github.com/idilsaglam/taskmgr/internal/service"
	"github.com/idilsaglam/taskmgr/internal/store"
	"github.com/idilsaglam/taskmgr/internal/tui"
	"github.com/idilsaglam/taskmgr/internal/ui"
)

// Version is reported by `taskmgr version`.
const Version = "0.2.0"

// Options wires the CLI to its environment. Zero values mean the real thing.
type Options struct {
	ConfigDir string // default: XDG config dir
	EnvFile   string // default: .env in the working directory

	Stdin          io.Reader
	Stdout, Stderr io.Writer

	// NewService builds the backend from config; tests pass a fake.
	NewService func(cfg *config.Config) service.Service

	// RunTUI replaces the interactive program; tests pass a stub.
	RunTUI func(ctx context.Context, cfg *config.Config, sess tui.Session) error
}

func (o Options) withDefaults() Options {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.EnvFile == "" {
		o.EnvFile = ".env"
	}
	if o.NewService == nil {
		o.NewService = func(cfg *config.Config) service.Service {
			return api.New(cfg.APIURL,
				api.WithTimeout(cfg.Timeout),
				api.WithUserAgent(config.AppName+"/"+Version))
		}
	}
	if o.RunTUI == nil {
		o.RunTUI = runProgram
	}
	return o
}

// usageError marks bad arguments.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, a ...any) error { return usageError{fmt.Sprintf(format, a...)} }

// configError marks unreadable configuration or credential storage.
type configError struct{ err error }

func (e configError) Error() string { return e.err.Error() }
func (e configError) Unwrap() error { return e.err }

func configErrorf(format string, a ...any) error { return configError{fmt.Errorf(format, a...)} }

// errNotLoggedIn is returned by networked commands without a credential.
var errNotLoggedIn = errors.New("no token found. Set TASKMGR_TOKEN or run `taskmgr auth login`")

// app is the state every command shares.
type app struct {
	opt   Options
	cfg   *config.Config
	creds *auth.Store
}

// setup loads config once, before any subcommand runs.
func (a *app) setup() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := config.Load(a.opt.ConfigDir, a.opt.EnvFile)
	if err != nil {
		return configErrorf("config: %w", err)
	}
	ui.SetTheme(cfg.Theme)
	a.cfg = cfg
	a.creds = auth.NewStore(cfg.Dir, cfg.Token)
	return nil
}

// credential reads the stored or overriding token; nil means not logged in.
func (a *app) credential() (*auth.TokenInfo, error) {
	ti, err := a.creds.Get()
	if err != nil {
		return nil, configError{err}
	}
	return ti, nil
}

// Require a token for networked commands.
func (a *app) ensureAuth() (string, error) {
	ti, err := a.credential()
	if err != nil {
		return "", err
	}
	if ti == nil || strings.TrimSpace(ti.Token) == "" {
		return "", errNotLoggedIn
	}
	return ti.Token, nil
}

func (a *app) service() service.Service {
	return store.NewShared(a.opt.NewService(a.cfg))
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "taskmgr - projects and tasks from your task server",
		Long: `taskmgr talks to a task manager API (/api/v1).

Run without arguments for the interactive dashboard, or use the
subcommands below from scripts.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.opt.ConfigDir, "config-dir", a.opt.ConfigDir, "configuration directory")
	root.SetIn(a.opt.Stdin)
	root.SetOut(a.opt.Stdout)
	root.SetErr(a.opt.Stderr)

	root.AddCommand(
		&cobra.Command{
			Use:   "ui",
			Short: "Open the interactive dashboard",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, args []string) error { return a.runUI(cmd.Context()) },
		},
		newProjectsCmd(a),
		newTasksCmd(a),
		newAuthCmd(a),
		newConfigCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", config.AppName, Version)
			},
		},
	)
	return root
}

// Run executes args and returns an exit code (0 ok, 1 usage, 2 auth/config, 3 backend).
func Run(ctx context.Context, args []string, opt Options) int {
	a := &app{opt: opt.withDefaults()}
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitcode.Success
	}
	code := codeFor(err)
	ui.Fail(a.opt.Stderr, err.Error())
	if code == exitcode.AuthError && errors.Is(err, api.ErrUnauthorized) {
		fmt.Fprintln(a.opt.Stderr, ui.Current().Muted.Render("Hint: the server rejected your token; run `taskmgr auth login`"))
	}
	return code
}

func codeFor(err error) int {
	var (
		ue usageError
		ce configError
	)
	switch {
	case errors.As(err, &ue):
		return exitcode.UserError
	case errors.As(err, &ce):
		return exitcode.AuthError
	case errors.Is(err, errNotLoggedIn), errors.Is(err, api.ErrUnauthorized):
		return exitcode.AuthError
	case api.KindOf(err) != 0:
		return exitcode.BackendError
	}
	// cobra's own argument and flag errors
	return exitcode.UserError
}

func (a *app) runUI(ctx context.Context) error {
	ti, err := a.credential()
	if err != nil {
		return err
	}
	sess := tui.Session{
		Context: ctx,
		Service: a.service(),
		SaveToken: func(token string) error {
			return a.creds.Set(token, nil)
		},
	}
	if ti != nil {
		sess.Token = ti.Token
	}
	return a.opt.RunTUI(ctx, a.cfg, sess)
}

// runProgram sends diagnostics to the log file while the TUI owns the terminal.
func runProgram(ctx context.Context, cfg *config.Config, sess tui.Session) error {
	if err := cfg.EnsureDir(); err != nil {
		return configErrorf("config: %w", err)
	}
	f, err := tea.LogToFile(cfg.LogFile, config.AppName+" ")
	if err != nil {
		return configErrorf("config: log file: %w", err)
	}
	defer f.Close()
	sess.Logger = log.Default()
	return tui.Run(ctx, sess)
}
