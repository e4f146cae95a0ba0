package main

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"arcvalue/pkg/app"
)

var lookupPretty bool

var lookupCmd = &cobra.Command{
	Use:   "lookup NAME...",
	Short: "Resolve a typed item name and print the result as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.New(cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Coordinator.LookupName(ctx, strings.Join(args, " "))
		if werr := writeJSON(cmd.OutOrStdout(), res, lookupPretty); werr != nil {
			return werr
		}
		return err
	},
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupPretty, "pretty", false, "indent JSON output")
	rootCmd.AddCommand(lookupCmd)
}
