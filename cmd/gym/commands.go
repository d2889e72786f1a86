package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AlibekovAA/gym-api/internal/auth/token"
	"github.com/AlibekovAA/gym-api/internal/common/bootstrap"
	"github.com/AlibekovAA/gym-api/internal/common/clock"
	"github.com/AlibekovAA/gym-api/internal/common/config"
	"github.com/AlibekovAA/gym-api/internal/common/logger"
	"github.com/AlibekovAA/gym-api/internal/common/server"
)

func loadApp(ctx context.Context, configFile string) (*bootstrap.App, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return bootstrap.New(ctx, cfg, log)
}

func newServeCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, *configFile)
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := app.Close(closeCtx); err != nil {
					app.Log.Errorf("shutdown: %v", err)
				}
			}()

			serverConfig := server.DefaultServerConfig(app.Config.HTTPPort)
			srv := server.NewServer(serverConfig, app.Handler())
			return server.Run(ctx, serverConfig, srv, app.Log, app.ShutdownHooks())
		},
	}
}

func newProvisionCommand(configFile *string) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Create collections and indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := loadApp(ctx, *configFile)
			if err != nil {
				return err
			}
			defer app.Close(context.Background())

			if seed {
				if err := app.Seed(ctx); err != nil {
					return err
				}
			}
			app.Log.WithFields(ctx, logger.Fields{
				"driver": app.Store.Driver(),
				"seeded": seed,
				"action": "provision_completed",
			}).Info("store provisioned")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "load demo users, a training and an availability")
	return cmd
}

func newTokenCommand(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Access token utilities",
	}
	cmd.AddCommand(newTokenIssueCommand(configFile))
	return cmd
}

func newTokenIssueCommand(configFile *string) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign an access token for a username",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			tokens, err := token.NewService(cfg.Auth, clock.NewRealClock())
			if err != nil {
				return err
			}
			signed, err := tokens.Issue(subject, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "username the token is issued for")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime; defaults to the configured ttl")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
