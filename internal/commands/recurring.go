package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/money"
	"github.com/tally-dev/tally/internal/recurring"
	"github.com/tally-dev/tally/internal/runlog"
)

func newRecurringCommand() *cobra.Command {
	recurringCmd := &cobra.Command{
		Use:     "recurring",
		Aliases: []string{"rec"},
		Short:   "Manage recurring transfers",
	}
	recurringCmd.AddCommand(
		newRecurringAddCommand(),
		newRecurringListCommand(),
		newRecurringPauseCommand(),
		newRecurringResumeCommand(),
		newRecurringRmCommand(),
		newRecurringProcessCommand(),
		newRecurringDueCommand(),
		newRecurringRunCommand(),
	)
	return recurringCmd
}

func newRecurringAddCommand() *cobra.Command {
	var repoDir string
	var from, to, amount, desc, frequency string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a recurring transfer template",
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
			r, err := rt.recurring.Create(recurring.CreateParams{
				FromAccountID: from,
				ToAccountID:   to,
				Amount:        minor,
				Description:   desc,
				Frequency:     model.Frequency(frequency),
			})
			if err != nil {
				return err
			}
			rt.snapshot("recurring: add " + r.Description)
			fmt.Printf("Created %s transfer %q (%s)\n", r.Frequency, r.Description, r.ID)
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&from, "from", "", "source account id (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().StringVar(&to, "to", "", "destination account id (required)")
	_ = cmd.MarkFlagRequired("to")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, e.g. 1200.00 (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&desc, "desc", "", "description (required)")
	_ = cmd.MarkFlagRequired("desc")
	cmd.Flags().StringVar(&frequency, "frequency", "", "daily, weekly, monthly or yearly (required)")
	_ = cmd.MarkFlagRequired("frequency")

	return cmd
}

func newRecurringListCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recurring transfer templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			list, err := rt.recurring.List()
			if err != nil {
				return err
			}

			w := newTable(os.Stdout)
			fmt.Fprintln(w, "ID\tDESCRIPTION\tAMOUNT\tFREQUENCY\tSTATUS\tLAST RUN")
			for _, r := range list {
				lastRun := "never"
				if !r.LastProcessedDate.IsZero() {
					lastRun = r.LastProcessedDate.String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.Description, money.Format(r.Amount, rt.currency()),
					r.Frequency, r.Status, lastRun)
			}
			return w.Flush()
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}

func newRecurringPauseCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "pause <id>",
		Short: "Pause a recurring transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			r, err := rt.recurring.Pause(args[0])
			if err != nil {
				return err
			}
			rt.snapshot("recurring: pause " + r.Description)
			fmt.Printf("Paused %q (%s)\n", r.Description, r.ID)
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}

func newRecurringResumeCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "resume <id>",
		Short: "Resume a paused recurring transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			r, err := rt.recurring.Resume(args[0])
			if err != nil {
				return err
			}
			rt.snapshot("recurring: resume " + r.Description)
			fmt.Printf("Resumed %q (%s)\n", r.Description, r.ID)
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}

func newRecurringRmCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a recurring transfer template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.recurring.Delete(args[0]); err != nil {
				return err
			}
			rt.snapshot("recurring: delete " + args[0])
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}

func newRecurringProcessCommand() *cobra.Command {
	var repoDir string
	var date string

	cmd := &cobra.Command{
		Use:   "process <id>",
		Short: "Process one recurring transfer now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			processDate, err := flagDate(date)
			if err != nil {
				return err
			}

			tx, err := rt.recurring.Process(args[0], processDate)
			logRun(rt, args[0], processDate, tx.ID, err)
			if err != nil {
				return err
			}
			rt.snapshot("recurring: process " + args[0])
			fmt.Printf("Recorded %s %q (%s)\n", money.Format(tx.Amount, rt.currency()), tx.Description, tx.ID)
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&date, "date", "", "process date YYYY-MM-DD (default today)")

	return cmd
}

func newRecurringDueCommand() *cobra.Command {
	var repoDir string
	var date string

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List recurring transfers due for processing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			on, err := flagDate(date)
			if err != nil {
				return err
			}

			due, err := rt.recurring.Due(on)
			if err != nil {
				return err
			}
			if len(due) == 0 {
				fmt.Println("Nothing due")
				return nil
			}

			w := newTable(os.Stdout)
			fmt.Fprintln(w, "ID\tDESCRIPTION\tAMOUNT\tFREQUENCY")
			for _, r := range due {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					r.ID, r.Description, money.Format(r.Amount, rt.currency()), r.Frequency)
			}
			return w.Flush()
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&date, "date", "", "reference date YYYY-MM-DD (default today)")

	return cmd
}

func newRecurringRunCommand() *cobra.Command {
	var repoDir string
	var date string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process every recurring transfer that is due",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			on, err := flagDate(date)
			if err != nil {
				return err
			}

			due, err := rt.recurring.Due(on)
			if err != nil {
				return err
			}
			if len(due) == 0 {
				fmt.Println("Nothing due")
				return nil
			}

			// One failed template must not stop the rest of the run.
			processed, failed := 0, 0
			for _, r := range due {
				tx, err := rt.recurring.Process(r.ID, on)
				logRun(rt, r.ID, on, tx.ID, err)
				if err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "error: %s (%s): %v\n", r.Description, r.ID, err)
					continue
				}
				processed++
				fmt.Printf("Recorded %s %q (%s)\n", money.Format(tx.Amount, rt.currency()), tx.Description, tx.ID)
			}

			if processed > 0 {
				rt.snapshot(fmt.Sprintf("recurring: run %s (%d processed)", on, processed))
			}
			fmt.Printf("Run complete: %d processed, %d failed\n", processed, failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d due transfers failed", failed, len(due))
			}
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&date, "date", "", "process date YYYY-MM-DD (default today)")

	return cmd
}

// flagDate parses an optional --date flag, defaulting to today.
func flagDate(s string) (model.Date, error) {
	if s == "" {
		return model.Today(), nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, fmt.Errorf("parsing --date: %w", err)
	}
	return d, nil
}

// logRun appends one attempt to logs/recurring-runs.csv. The transfer
// itself already succeeded or failed; a log write problem is only warned
// about.
func logRun(rt *runtime, recID string, processDate model.Date, txID string, runErr error) {
	e := runlog.Entry{
		Timestamp:     time.Now().UTC(),
		RecurringID:   recID,
		ProcessDate:   processDate,
		TransactionID: txID,
		Outcome:       runlog.OutcomeOK,
	}
	if runErr != nil {
		e.TransactionID = ""
		e.Outcome = runlog.OutcomeError
		e.Details = runErr.Error()
	}
	if err := runlog.Append(rt.root, []runlog.Entry{e}); err != nil {
		rt.log.Warn("run log append failed", zap.String("recurringId", recID), zap.Error(err))
	}
}
