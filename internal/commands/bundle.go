package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/store"
)

func newExportCommand() *cobra.Command {
	var repoDir string
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full ledger as a JSON bundle",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			b, err := rt.store.Export()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(b, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding bundle: %w", err)
			}
			data = append(data, '\n')

			if out == "" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing bundle: %w", err)
			}
			fmt.Printf("Exported %d accounts, %d transactions, %d recurring, %d snapshots to %s\n",
				len(b.Accounts), len(b.Transactions), len(b.Recurring), len(b.NetWorthSnapshots), out)
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the bundle to a file instead of stdout")

	return cmd
}

func newImportCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all ledger data with a JSON bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading bundle: %w", err)
			}
			var b store.Bundle
			if err := json.Unmarshal(data, &b); err != nil {
				return fmt.Errorf("decoding bundle: %w", err)
			}
			if err := rt.store.Import(&b); err != nil {
				return err
			}
			rt.snapshot("import: bundle " + args[0])
			fmt.Printf("Imported %d accounts, %d transactions, %d recurring, %d snapshots\n",
				len(b.Accounts), len(b.Transactions), len(b.Recurring), len(b.NetWorthSnapshots))
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}
