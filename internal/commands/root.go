package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tally-dev/tally/internal/accounts"
	"github.com/tally-dev/tally/internal/buildinfo"
	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/logging"
	"github.com/tally-dev/tally/internal/networth"
	"github.com/tally-dev/tally/internal/recurring"
	"github.com/tally-dev/tally/internal/store"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Plain-file personal finance ledger",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountCommand(),
		newTxCommand(),
		newRecurringCommand(),
		newNetWorthCommand(),
		newExportCommand(),
		newImportCommand(),
	)

	return rootCmd
}

// runtime is an opened ledger: its config, logger, store, and the
// services wired on top. Every command except init goes through one.
type runtime struct {
	root      string
	cfg       *config.Config
	log       *zap.Logger
	store     *store.FS
	accounts  *accounts.Service
	ledger    *ledger.Service
	recurring *recurring.Service
	networth  *networth.Service
}

// openRuntime loads the ledger rooted at dir. The directory must have
// been set up by `tally init`.
func openRuntime(dir string) (*runtime, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%s is not a tally ledger (run `tally init` first): %w", root, err)
	}

	log, err := logging.New(cfg.Log.Mode, filepath.Join(root, "logs", "tally.log"))
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}

	st := store.NewFS(filepath.Join(root, cfg.Storage.Dir))
	led := ledger.NewService(st, log.Named("ledger"))

	return &runtime{
		root:      root,
		cfg:       cfg,
		log:       log,
		store:     st,
		accounts:  accounts.NewService(st, log.Named("accounts")),
		ledger:    led,
		recurring: recurring.NewService(st, led, log.Named("recurring")),
		networth:  networth.NewService(st, log.Named("networth")),
	}, nil
}

// close flushes the logger. Sync on a file sink can fail on exotic
// filesystems; there is nowhere left to report that, so it is dropped.
func (rt *runtime) close() {
	_ = rt.log.Sync()
}

// currency is the ledger's display currency from tally.yaml.
func (rt *runtime) currency() string {
	return rt.cfg.Ledger.Currency
}

// snapshot commits the ledger directory when auto-commit is enabled and
// the directory is a git repository. A failed snapshot is logged but
// never fails the command: the data write already succeeded.
func (rt *runtime) snapshot(message string) {
	if !rt.cfg.Git.AutoCommit || !gitops.IsRepo(rt.root) {
		return
	}
	author := gitops.Author{Name: rt.cfg.Git.AuthorName, Email: rt.cfg.Git.AuthorEmail}
	if _, err := gitops.Snapshot(rt.root, message, author); err != nil {
		rt.log.Warn("git snapshot failed", zap.String("message", message), zap.Error(err))
	}
}

func addRepoFlag(cmd *cobra.Command, repoDir *string) {
	cmd.Flags().StringVar(repoDir, "repo", ".", "ledger directory")
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
