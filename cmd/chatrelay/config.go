package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pkt.systems/chatrelay/internal/appconfig"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the application configuration",
	}

	var initPath string
	var overwrite bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := appconfig.WriteDefault(initPath, overwrite)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return err
		},
	}
	initCmd.Flags().StringVarP(&initPath, "config", "c", "", "target config path")
	initCmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite an existing config")

	cmd.AddCommand(initCmd)
	return cmd
}
