package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var envFile string

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otpauth",
		Short: "OTP-gated registration, login and password reset",
		Long: `otpauth serves email/password authentication where registration and
password reset are confirmed by a one-time code sent by email.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is parsed")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
