package cli

import (
	"github.com/spf13/cobra"

	"github.com/idilsaglam/taskmgr/internal/ui"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE:  a.configShow,
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.WriteFile(force); err != nil {
				return configErrorf("config: %w", err)
			}
			ui.OK(cmd.OutOrStdout(), "wrote "+a.cfg.Path())
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.AddCommand(show, initCmd)
	return cmd
}

func (a *app) configShow(cmd *cobra.Command, args []string) error {
	c := a.cfg
	timeout := "none"
	if c.Timeout > 0 {
		timeout = c.Timeout.String()
	}
	token := "(not set)"
	if ti, err := a.credential(); err == nil && ti != nil {
		token = "(set, from " + ti.Source + ")"
	}
	ui.Panel(cmd.OutOrStdout(), []string{
		ui.Current().Title.Render("Configuration"),
		"config dir: " + c.Dir,
		"config file: " + c.Path(),
		"api_url: " + c.APIURL,
		"timeout: " + timeout,
		"theme: " + c.Theme,
		"log_file: " + c.LogFile,
		"token: " + token,
	})
	return nil
}
