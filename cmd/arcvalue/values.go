package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"arcvalue/pkg/app"
	"arcvalue/pkg/store"
)

var valuesCmd = &cobra.Command{
	Use:   "values",
	Short: "Manage the local slug -> value table",
}

var valuesExportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Write the value table as JSON to FILE or stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := app.OpenStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		table, err := st.Values(cmd.Context())
		if err != nil {
			return err
		}
		data, err := table.Encode()
		if err != nil {
			return eris.Wrap(err, "values: encode")
		}
		data = append(data, '\n')
		if len(args) == 0 || args[0] == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return eris.Wrapf(err, "values: write %s", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported %d values to %s\n", len(table), args[0])
		return nil
	},
}

var valuesImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the value table with a JSON object read from FILE (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return eris.Wrapf(err, "values: read %s", args[0])
		}
		table, err := store.DecodeValues(data)
		if err != nil {
			return err
		}

		st, err := app.OpenStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.ReplaceValues(cmd.Context(), table); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d values\n", len(table))
		return nil
	},
}

var valuesResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the value table with the bundled sample",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := app.OpenStore(cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		table := store.SampleValues()
		if err := st.ReplaceValues(cmd.Context(), table); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reset to sample table (%d values)\n", len(table))
		return nil
	},
}

func init() {
	valuesCmd.AddCommand(valuesExportCmd, valuesImportCmd, valuesResetCmd)
	rootCmd.AddCommand(valuesCmd)
}
