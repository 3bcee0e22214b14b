package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/money"
)

func newNetWorthCommand() *cobra.Command {
	var repoDir string

	netWorthCmd := &cobra.Command{
		Use:   "networth",
		Short: "Compute net worth from active account balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			res, err := rt.networth.Calculate()
			if err != nil {
				return err
			}

			cur := rt.currency()
			fmt.Printf("Net worth on %s\n", res.Date)
			fmt.Printf("  Assets:      %s (%d accounts)\n", money.Format(res.TotalAssets, cur), res.AssetAccounts)
			fmt.Printf("  Liabilities: %s (%d accounts)\n", money.Format(res.TotalLiabilities, cur), res.LiabilityAccounts)
			fmt.Printf("  Net worth:   %s\n", money.Format(res.NetWorth, cur))
			return nil
		},
	}

	addRepoFlag(netWorthCmd, &repoDir)
	netWorthCmd.AddCommand(
		newNetWorthSnapshotCommand(),
		newNetWorthHistoryCommand(),
	)
	return netWorthCmd
}

func newNetWorthSnapshotCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save today's net worth as a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			snap, err := rt.networth.Snapshot()
			if err != nil {
				return err
			}
			rt.snapshot("networth: snapshot " + snap.Date.String())
			fmt.Printf("Saved snapshot %s: %s (%s)\n",
				snap.Date, money.Format(snap.NetWorth, rt.currency()), snap.ID)
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}

func newNetWorthHistoryCommand() *cobra.Command {
	var repoDir string
	var from, to string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved net worth snapshots, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			var r *model.DateRange
			if from != "" || to != "" {
				r = &model.DateRange{}
				if from != "" {
					if r.From, err = model.ParseDate(from); err != nil {
						return fmt.Errorf("parsing --from: %w", err)
					}
				}
				if to != "" {
					if r.To, err = model.ParseDate(to); err != nil {
						return fmt.Errorf("parsing --to: %w", err)
					}
				}
			}

			history, err := rt.networth.History(r)
			if err != nil {
				return err
			}

			cur := rt.currency()
			w := newTable(os.Stdout)
			fmt.Fprintln(w, "DATE\tASSETS\tLIABILITIES\tNET WORTH")
			for _, s := range history {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					s.Date, money.Format(s.TotalAssets, cur),
					money.Format(s.TotalLiabilities, cur), money.Format(s.NetWorth, cur))
			}
			return w.Flush()
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&from, "from", "", "start date YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&to, "to", "", "end date YYYY-MM-DD (inclusive)")

	return cmd
}
