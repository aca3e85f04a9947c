package sync

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vcs-python/vcspull-sub001/internal/config"
	"github.com/vcs-python/vcspull-sub001/internal/repo"
	"github.com/vcs-python/vcspull-sub001/internal/syncer"
)

var (
	cfgPath      string
	pathGlobs    []string
	urlSubs      []string
	luaFilter    string
	workers      int
	showProgress bool
)

// Cmd represents the `vcspull sync` command. Positional arguments are name
// globs; repeating a filter flag ORs its patterns, different filter
// categories AND together.
var Cmd = &cobra.Command{
	Use:           "sync [name-glob...]",
	Short:         "Clone or update the configured repositories",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.Discover(cfgPath)
		if err != nil {
			return err
		}
		cfg, err := config.Load(paths)
		if err != nil {
			return err
		}
		configured, err := config.Resolve(cfg)
		if err != nil {
			return err
		}

		filter := repo.Filter{Names: args, Paths: pathGlobs, URLs: urlSubs}
		selected, err := filter.Apply(configured)
		if err != nil {
			return err
		}
		if luaFilter != "" {
			pred, err := repo.CompileLua(luaFilter)
			if err != nil {
				return err
			}
			selected, err = pred.Apply(selected)
			if err != nil {
				return err
			}
		}

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		progress := newProgressReporter(showProgress, os.Stderr, len(selected))
		s := syncer.New(syncer.Options{Workers: workers, OnOutcome: progress.onOutcome})
		progress.start()
		report, err := s.Sync(ctx, selected)
		progress.finish()
		if err != nil {
			return err
		}
		report.Render(os.Stdout)
		return evaluateSyncExit(report)
	},
}

func init() {
	Cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file (default: ~/.vcspull.yaml and $XDG_CONFIG_HOME/vcspull/*.yaml)")
	Cmd.Flags().StringArrayVar(&pathGlobs, "path", nil, "Select repositories whose absolute path matches the glob (repeatable)")
	Cmd.Flags().StringArrayVar(&urlSubs, "url", nil, "Select repositories whose remote url contains the substring (repeatable)")
	Cmd.Flags().StringVar(&luaFilter, "lua-filter", "", "Inline Lua predicate over name/path/vcs/remotes")
	Cmd.Flags().IntVar(&workers, "workers", syncer.DefaultWorkers, "Maximum concurrent sync units")
	Cmd.Flags().BoolVar(&showProgress, "progress", false, "Emit periodic progress lines to stderr")
}
