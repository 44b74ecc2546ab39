package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for the userhub CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "userhub",
		Short: "userhub - user accounts and token authentication over HTTP",
		Long: `userhub registers users, issues signed bearer tokens and exposes
CRUD endpoints over the stored user records.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
