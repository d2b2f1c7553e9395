package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/taskmgr/internal/auth"
	"github.com/idilsaglam/taskmgr/internal/ui"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Token authentication",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "login [token]",
			Short: "Store a token (read from stdin when not given)",
			Args:  cobra.MaximumNArgs(1),
			RunE:  a.authLogin,
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Delete the stored token",
			Args:  cobra.NoArgs,
			RunE:  a.authLogout,
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show where the token comes from",
			Args:  cobra.NoArgs,
			RunE:  a.authStatus,
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Decode the token's claims locally",
			Args:  cobra.NoArgs,
			RunE:  a.authWhoAmI,
		},
	)
	return cmd
}

func (a *app) authLogin(cmd *cobra.Command, args []string) error {
	var token string
	if len(args) == 1 {
		token = args[0]
	} else {
		fmt.Fprint(cmd.OutOrStdout(), "Paste your token: ")
		sc := bufio.NewScanner(cmd.InOrStdin())
		if sc.Scan() {
			token = sc.Text()
		}
		if err := sc.Err(); err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return usagef("token cannot be empty")
	}
	if err := a.creds.Set(token, nil); err != nil {
		return configErrorf("save token: %w", err)
	}
	ui.OK(cmd.OutOrStdout(), "logged in")
	return nil
}

func (a *app) authLogout(cmd *cobra.Command, args []string) error {
	ti, _ := a.credential()
	if ti != nil && ti.Source == auth.SourceEnv {
		ui.OK(cmd.OutOrStdout(), "token is provided by TASKMGR_TOKEN (nothing to delete)")
		return nil
	}
	if err := a.creds.Delete(); err != nil {
		return configErrorf("logout: %w", err)
	}
	ui.OK(cmd.OutOrStdout(), "logged out")
	return nil
}

func (a *app) authStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ti, err := a.credential()
	if err != nil {
		return err
	}
	if ti == nil {
		fmt.Fprintln(out, ui.Current().Muted.Render("not logged in"))
		fmt.Fprintln(out, "Run: taskmgr auth login")
		return nil
	}
	fmt.Fprintf(out, "source: %s\n", ti.Source)
	if ti.ExpiresAt != nil {
		fmt.Fprintf(out, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
		if ti.ExpiresAt.Before(time.Now()) {
			fmt.Fprintln(out, ui.Current().Error.Render("token has expired"))
		}
	} else {
		fmt.Fprintln(out, "expires: (unknown)")
	}
	fmt.Fprintln(out, "env override: TASKMGR_TOKEN")
	return nil
}

// whoami decodes a JWT without verifying it; opaque tokens print basic info.
func (a *app) authWhoAmI(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ti, err := a.credential()
	if err != nil {
		return err
	}
	if ti == nil {
		return errNotLoggedIn
	}
	claims, err := auth.Claims(ti.Token)
	if err != nil {
		fmt.Fprintln(out, "Opaque token (cannot introspect locally).")
		fmt.Fprintln(out, "source:", ti.Source)
		return nil
	}
	b, err := json.MarshalIndent(claims, "", "  ")
	if err != nil {
		return fmt.Errorf("claims: %w", err)
	}
	fmt.Fprintln(out, "JWT payload:")
	fmt.Fprintln(out, string(b))
	return nil
}
