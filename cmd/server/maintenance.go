package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/go-chi/docgen"
	"github.com/spf13/cobra"

	"github.com/iudanet/gophblog/internal/server/router"
	"github.com/iudanet/gophblog/internal/server/service"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}

			store, err := openStorage(cmd.Context(), cfg.Storage, log)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			log.Info("Storage is up to date", slog.String("driver", cfg.Storage.Driver))
			return store.Close()
		},
	}
}

func newPruneTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-tokens",
		Short: "Delete expired refresh tokens and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig(cmd, true)
			if err != nil {
				return err
			}

			store, err := openStorage(cmd.Context(), cfg.Storage, log)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer func() {
				_ = store.Close()
			}()

			// Для удаления токенов подпись не нужна, jwt сервис не используется
			tokens := service.NewTokenService(log, nil, store)

			deleted, err := tokens.PruneExpired(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired refresh tokens\n", deleted)
			return nil
		},
	}
}

func newRoutesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the HTTP route documentation as markdown",
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := router.New(router.Deps{
				Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
			})

			fmt.Fprintln(cmd.OutOrStdout(), docgen.MarkdownRoutesDoc(r, docgen.MarkdownOpts{
				ProjectPath: "github.com/iudanet/gophblog",
				Intro:       "GophBlog HTTP routes.",
			}))
			return nil
		},
	}
}
