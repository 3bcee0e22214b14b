package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/money"
)

func newAccountCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}
	accountCmd.AddCommand(
		newAccountAddCommand(),
		newAccountListCommand(),
		newAccountShowCommand(),
		newAccountUpdateCommand(),
		newAccountArchiveCommand(),
		newAccountDeleteCommand(),
	)
	return accountCmd
}

func newAccountAddCommand() *cobra.Command {
	var repoDir string
	var name, typ, balance, parent string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			minor, err := money.ParseAmount(balance, rt.currency())
			if err != nil {
				return fmt.Errorf("parsing --balance: %w", err)
			}
			a, err := rt.accounts.Create(accounts.CreateParams{
				Name:            name,
				Type:            model.AccountType(typ),
				ParentAccountID: parent,
				Balance:         minor,
			})
			if err != nil {
				return err
			}
			rt.snapshot("account: add " + a.Name)
			fmt.Printf("Created %s account %q (%s)\n", a.Type, a.Name, a.ID)
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&typ, "type", "", "asset, liability, income or expense (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&balance, "balance", "0", "opening balance")
	cmd.Flags().StringVar(&parent, "parent", "", "parent account id")

	return cmd
}

func newAccountListCommand() *cobra.Command {
	var repoDir string
	var typ, status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			list, err := rt.accounts.List(accounts.ListFilter{
				Type:   model.AccountType(typ),
				Status: model.AccountStatus(status),
			})
			if err != nil {
				return err
			}

			w := newTable(os.Stdout)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tSTATUS\tBALANCE")
			for _, a := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.Name, a.Type, a.Status, money.Format(a.Balance, rt.currency()))
			}
			return w.Flush()
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&typ, "type", "", "filter by account type")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (active, archived)")

	return cmd
}

func newAccountShowCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one account with its transaction count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			d, err := rt.accounts.GetDetail(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("ID:           %s\n", d.ID)
			fmt.Printf("Name:         %s\n", d.Name)
			fmt.Printf("Type:         %s\n", d.Type)
			fmt.Printf("Status:       %s\n", d.Status)
			fmt.Printf("Balance:      %s\n", money.Format(d.Balance, rt.currency()))
			if d.ParentAccountID != "" {
				fmt.Printf("Parent:       %s\n", d.ParentAccountID)
			}
			fmt.Printf("Transactions: %d\n", d.TransactionCount)
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}

func newAccountUpdateCommand() *cobra.Command {
	var repoDir string
	var name, balance, parent, status string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			var p accounts.UpdateParams
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("balance") {
				minor, err := money.ParseAmount(balance, rt.currency())
				if err != nil {
					return fmt.Errorf("parsing --balance: %w", err)
				}
				p.Balance = &minor
			}
			if cmd.Flags().Changed("parent") {
				p.ParentAccountID = &parent
			}
			if cmd.Flags().Changed("status") {
				st := model.AccountStatus(status)
				p.Status = &st
			}

			a, err := rt.accounts.Update(args[0], p)
			if err != nil {
				return err
			}
			rt.snapshot("account: update " + a.Name)
			fmt.Printf("Updated %q (%s)\n", a.Name, a.ID)
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&balance, "balance", "", "new balance")
	cmd.Flags().StringVar(&parent, "parent", "", "new parent account id (empty clears)")
	cmd.Flags().StringVar(&status, "status", "", "new status (active, archived)")

	return cmd
}

func newAccountArchiveCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			a, err := rt.accounts.Archive(args[0])
			if err != nil {
				return err
			}
			rt.snapshot("account: archive " + a.Name)
			fmt.Printf("Archived %q (%s)\n", a.Name, a.ID)
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}

func newAccountDeleteCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an archived account with no transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(repoDir)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.accounts.Delete(args[0]); err != nil {
				return err
			}
			rt.snapshot("account: delete " + args[0])
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}

	addRepoFlag(cmd, &repoDir)
	return cmd
}
