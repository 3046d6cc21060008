package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pkt.systems/chatrelay/internal/appconfig"
	"pkt.systems/chatrelay/internal/persist"
	"pkt.systems/pslog"
)

func newSettingsCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change the relay settings file",
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings(cfgPath, cmd)
			if err != nil {
				return err
			}
			settings, ok, err := store.Load()
			if err != nil {
				return err
			}
			if !ok {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "no settings saved yet")
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "url: %s\ndebug: %t\n", settings.URL, settings.Debug)
			return err
		},
	}

	setURL := &cobra.Command{
		Use:   "set-url <url>",
		Short: "Set the backend endpoint URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSettings(cfgPath, cmd)
			if err != nil {
				return err
			}
			settings, _, err := store.Load()
			if err != nil {
				return err
			}
			settings.URL = args[0]
			return store.Save(settings)
		},
	}

	setDebug := &cobra.Command{
		Use:   "set-debug <true|false>",
		Short: "Toggle verbose reply rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, err := strconv.ParseBool(args[0])
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", args[0])
			}
			store, err := openSettings(cfgPath, cmd)
			if err != nil {
				return err
			}
			settings, _, err := store.Load()
			if err != nil {
				return err
			}
			settings.Debug = debug
			return store.Save(settings)
		},
	}

	cmd.AddCommand(show, setURL, setDebug)
	return cmd
}

func openSettings(cfgPath string, cmd *cobra.Command) (*persist.Store, error) {
	cfg, err := appconfig.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	return persist.NewStoreWithLogger(cfg.SettingsFile, pslog.Ctx(cmd.Context()))
}
