package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/store"
)

func newInitCommand() *cobra.Command {
	var name string
	var currency string
	var bare bool
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, name, currency, bare, noGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "ledger name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&currency, "currency", "USD", "ISO 4217 display currency")
	cmd.Flags().BoolVar(&bare, "bare", false, "skip the starter accounts")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "skip git setup and disable auto-commit")

	return cmd
}

func runInit(dir, name, currency string, bare, noGit bool) error {
	cfg := config.Default(name, currency)
	if noGit {
		cfg.Git.AutoCommit = false
	}

	// Create directory structure.
	dirs := []string{
		cfg.Storage.Dir,
		"logs",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write tally.yaml.
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Seed the starter accounts.
	if !bare {
		st := store.NewFS(filepath.Join(dir, cfg.Storage.Dir))
		if _, err := accounts.Seed(accounts.NewService(st, nil)); err != nil {
			return fmt.Errorf("seeding accounts: %w", err)
		}
	}

	// Write .gitignore. Logs are noise; the processed statements keep
	// their history in the data files.
	gitignore := "logs/\nimport/processed/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	// Write import/.gitkeep so the drop directory survives a clone.
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if noGit {
		fmt.Printf("Initialized ledger %q at %s\n", name, dir)
		return nil
	}

	// Initialize git and create the initial commit.
	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}
	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.Snapshot(dir, "init: "+name, author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Printf("Initialized ledger %q at %s (%s)\n", name, dir, hash)
	return nil
}
