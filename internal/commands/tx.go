package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/money"
)

func newTxCommand() *cobra.Command {
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Record and inspect transactions",
	}
	txCmd.AddCommand(
		newTxAddCommand(),
		newTxListCommand(),
		newTxRmCommand(),
		newTxImportCommand(),
	)
	return txCmd
}

func newTxAddCommand() *cobra.Command {
	var repoDir string
	var from, to, amount, desc, date, category string
	var tags []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transfer between two accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			minor, err := money.ParseAmount(amount, rt.currency())
			if err != nil {
				return fmt.Errorf("parsing --amount: %w", err)
			}

			txDate := model.Today()
			if date != "" {
				txDate, err = model.ParseDate(date)
				if err != nil {
					return fmt.Errorf("parsing --date: %w", err)
				}
			}

			tx, err := rt.ledger.Record(ledger.RecordParams{
				FromAccountID: from,
				ToAccountID:   to,
				Amount:        minor,
				Description:   desc,
				Date:          txDate,
				Category:      category,
				Tags:          tags,
			})
			if err != nil {
				return err
			}
			rt.snapshot("tx: " + tx.Description)
			fmt.Printf("Recorded %s %q (%s)\n", money.Format(tx.Amount, rt.currency()), tx.Description, tx.ID)
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&from, "from", "", "source account id (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&to, "to", "", "destination account id (required)")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 12.50 (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&desc, "desc", "", "description (required)")
	_ = cmd.MarkFlagRequired("desc")
	cmd.Flags().StringVar(&date, "date", "", "transaction date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&category, "category", "", "category label")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "comma-separated tags")

	return cmd
}

func newTxListCommand() *cobra.Command {
	var repoDir string
	var account string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			var txs []model.Transaction
			if account != "" {
				txs, err = rt.ledger.ListByAccount(account)
			} else {
				txs, err = rt.ledger.List()
			}
			if err != nil {
				return err
			}

			names, err := accountNames(rt)
			if err != nil {
				return err
			}

			w := newTable(os.Stdout)
			fmt.Fprintln(w, "DATE\tID\tAMOUNT\tFROM\tTO\tDESCRIPTION")
			for _, tx := range txs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					tx.Date, tx.ID, money.Format(tx.Amount, rt.currency()),
					names.nameOf(tx.FromAccountID), names.nameOf(tx.ToAccountID), tx.Description)
			}
			return w.Flush()
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&account, "account", "", "only transactions touching this account")

	return cmd
}

func newTxRmCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a transaction, reversing its balance effects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.ledger.Delete(args[0]); err != nil {
				return err
			}
			rt.snapshot("tx: delete " + args[0])
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}

func newTxImportCommand() *cobra.Command {
	var repoDir string
	var from, to, format string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a statement as transfers between two accounts",
		Long: "Import parses a statement file and records each row as a transfer\n" +
			"from --from to --to. Without a file argument it processes every file\n" +
			"waiting in the ledger's import/ directory and moves them to\n" +
			"import/processed/ afterwards.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			parser := importer.DefaultRegistry(rt.currency()).Get(format)
			if parser == nil {
				return fmt.Errorf("unknown statement format %q", format)
			}

			if len(args) == 1 {
				n, err := importFile(rt, parser, args[0], from, to)
				if err != nil {
					return err
				}
				rt.snapshot(fmt.Sprintf("tx: import %s (%d transactions)", args[0], n))
				fmt.Printf("Imported %d transactions from %s\n", n, args[0])
				return nil
			}

			files, err := importer.Scan(rt.root)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Println("Nothing to import")
				return nil
			}
			total := 0
			for _, f := range files {
				n, err := importFile(rt, parser, f.Path, from, to)
				if err != nil {
					return fmt.Errorf("%s: %w", f.Name, err)
				}
				if err := importer.MarkProcessed(rt.root, f.Name); err != nil {
					return err
				}
				fmt.Printf("Imported %d transactions from %s\n", n, f.Name)
				total += n
			}
			rt.snapshot(fmt.Sprintf("tx: import %d files (%d transactions)", len(files), total))
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&from, "from", "", "source account id (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&to, "to", "", "destination account id (required)")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&format, "format", "simple", "statement format")

	return cmd
}

// importFile parses one statement and records every row. The parse is
// all-or-nothing; recording stops at the first failed row, leaving the
// rows before it applied.
func importFile(rt *runtime, parser importer.Parser, path, from, to string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	rows, err := parser.Parse(f)
	if err != nil {
		return 0, err
	}

	for i, row := range rows {
		_, err := rt.ledger.Record(ledger.RecordParams{
			FromAccountID: from,
			ToAccountID:   to,
			Amount:        row.Amount,
			Description:   row.Description,
			Date:          row.Date,
		})
		if err != nil {
			rt.log.Error("statement import aborted",
				zap.String("path", path), zap.Int("row", i+1), zap.Error(err))
			return i, fmt.Errorf("recording row %d: %w (%d rows already recorded)", i+1, err, i)
		}
	}
	return len(rows), nil
}

// nameIndex maps account ids to names for display.
type nameIndex map[string]string

// nameOf falls back to the id itself for transactions whose account was
// since deleted.
func (n nameIndex) nameOf(id string) string {
	if name, ok := n[id]; ok {
		return name
	}
	return id
}

func accountNames(rt *runtime) (nameIndex, error) {
	list, err := rt.store.Accounts()
	if err != nil {
		return nil, err
	}
	names := make(nameIndex, len(list))
	for _, a := range list {
		names[a.ID] = a.Name
	}
	return names, nil
}
