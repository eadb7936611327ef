package main

import (
	"fmt"

	"github.com/jrsteele09/go-adcampaign-dashboard/internal/config"
	"github.com/jrsteele09/go-adcampaign-dashboard/internal/logging"
	"github.com/jrsteele09/go-adcampaign-dashboard/sessions/store"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFiles []string
	cfg      config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Ad campaign dashboard",
		Long:  "dashboard serves the ad campaign dashboard and manages its persisted session.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if len(opts.envFiles) > 0 {
				opts.cfg, err = config.Load(opts.envFiles...)
			} else {
				opts.cfg = config.New()
			}
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logging.Setup(opts.cfg.GetEnv(), opts.cfg.GetLogLevel())
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env when present)")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newSessionCmd(opts))
	return rootCmd
}

// openStore opens the persisted session store: SQLite in the data folder,
// sealed when a store key is configured, or memory only when ephemeral.
func openStore(cfg config.Config, ephemeral bool) (store.Repo, func() error, error) {
	if ephemeral {
		return store.NewInMemoryRepo(nil), func() error { return nil }, nil
	}

	key, err := cfg.GetStoreKey()
	if err != nil {
		return nil, nil, err
	}

	db, err := store.NewSQLiteRepo(store.DefaultDBPath(cfg.GetDataFolder()))
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	if key == nil {
		return db, db.Close, nil
	}

	sealed, err := store.NewSealedRepo(db, key)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("seal session store: %w", err)
	}
	return sealed, db.Close, nil
}
