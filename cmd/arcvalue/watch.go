package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"arcvalue/pkg/lookup"
	"arcvalue/pkg/store"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the last checked item whenever another process records a lookup",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store.Driver != "" && cfg.Store.Driver != "file" {
			return eris.Errorf("watch: needs the file store, got driver %q", cfg.Store.Driver)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := store.NewFileStore(cfg.Store.Dir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		last, ok, err := st.Last(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, lookup.Summary(last, ok))

		return store.WatchLast(ctx, st, func(l store.LastChecked) {
			fmt.Fprintln(out, lookup.Summary(l, true))
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
