package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/maxsviluppo/Aitraffic/internal/config"
	"github.com/maxsviluppo/Aitraffic/internal/lib/search"
	"github.com/maxsviluppo/Aitraffic/internal/services"
	"github.com/maxsviluppo/Aitraffic/internal/store"
)

type ctxKey string

const appKey ctxKey = "app"

// ProviderFactory builds the search provider from the loaded configuration.
type ProviderFactory func(cfg *config.Config) (search.Provider, error)

// app holds what subcommands share. The provider and the store are opened on
// first use so that offline commands never touch them.
type app struct {
	cfg         *config.Config
	newProvider ProviderFactory

	store   *store.Store
	transit *services.TransitService
}

func (a *app) service(ctx context.Context) (*services.TransitService, error) {
	if a.transit != nil {
		return a.transit, nil
	}

	provider, err := a.newProvider(a.cfg)
	if err != nil {
		return nil, err
	}

	var saved services.SavedSearchStore
	if a.cfg.Store.Path != "" {
		st, err := store.Open(ctx, a.cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.store = st
		saved = st
	}

	a.transit = services.NewTransitService(provider, saved, a.cfg)
	return a.transit, nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// Execute builds the root command and runs it.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command with the configured provider.
func NewRootCmd() *cobra.Command {
	return newRootCmd(func(cfg *config.Config) (search.Provider, error) {
		// One-shot process: no answer cache.
		return services.NewProvider(cfg, nil)
	})
}

func newRootCmd(newProvider ProviderFactory) *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "transito",
		Short:         "TRANSITO: telemetria trasporti e traffico da terminale",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is not an error.
			_ = godotenv.Load()

			k, err := config.NewKoanf(cfgPath)
			if err != nil {
				return err
			}
			cfg, err := config.Load(k)
			if err != nil {
				return err
			}

			ctx := context.WithValue(cmd.Context(), appKey, &app{cfg: cfg, newProvider: newProvider})
			cmd.SetContext(ctx)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return getApp(cmd).close()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml)")

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newSavedCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newKMLCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }

	return cmd
}

func getApp(cmd *cobra.Command) *app {
	v := cmd.Context().Value(appKey)
	if v == nil {
		fmt.Fprintln(os.Stderr, "internal error: app not initialized")
		os.Exit(1)
	}
	return v.(*app)
}

// userError prefixes upstream failures with the message shown on the
// dashboard.
func userError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, search.ErrMissingAPIKey) || errors.Is(err, search.ErrUnauthorized) ||
		errors.Is(err, search.ErrQuotaExceeded) || errors.Is(err, search.ErrUpstream) {
		return fmt.Errorf("%s (%w)", search.UserMessage(err), err)
	}
	return err
}
