package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// demoPassword is shared by every seeded account.
const demoPassword = "ChangeMe123!"

var (
	demoPriorities = []string{"Low", "Medium", "High", "Critical"}
	demoTags       = []string{"authentication", "billing", "bug"}
	demoUsers      = []domain.User{
		{FirstName: "Ada", LastName: "Admin", Email: "admin@helpdesk.local", Role: domain.RoleAdmin},
		{FirstName: "Sam", LastName: "Agent", Email: "agent@helpdesk.local", Role: domain.RoleAgent},
		{FirstName: "Cory", LastName: "Customer", Email: "customer@helpdesk.local", Role: domain.RoleCustomer},
	}
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo priorities, tags and accounts, then print their tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := observability.NewLogger(cfg.Logger)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			ctx := cmd.Context()
			pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pg.Close()
			if !pg.Enabled() {
				return errors.New("POSTGRES_DSN is required to seed")
			}

			users, err := seedDemoData(ctx, repository.NewPostgresStore(pg.Pool), cfg, logger)
			if err != nil {
				return err
			}
			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
			out := cmd.OutOrStdout()
			for _, user := range users {
				token, exp, err := tokens.GenerateToken(user)
				if err != nil {
					return fmt.Errorf("sign token for %s: %w", user.Email, err)
				}
				fmt.Fprintf(out, "%-9s %-26s id=%d expires=%s\n  %s\n",
					user.Role, user.Email, user.ID, exp.Format(time.RFC3339), token)
			}
			fmt.Fprintf(out, "password for all accounts: %s\n", demoPassword)
			return nil
		},
	}
}

// seedDemoData is idempotent: rows that already exist are kept.
func seedDemoData(ctx context.Context, store repository.Store, cfg *config.Config, logger *zap.Logger) ([]domain.User, error) {
	hash, err := auth.HashPassword(demoPassword, cfg.Auth.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	users := store.Repos().Users
	seeded := make([]domain.User, 0, len(demoUsers))
	for _, tmpl := range demoUsers {
		user := tmpl
		user.PasswordHash = hash
		user.CreatedAt = time.Now().UTC()
		user.UpdatedAt = user.CreatedAt
		err := users.Create(ctx, &user)
		if errors.Is(err, repository.ErrDuplicateName) {
			existing, getErr := users.GetByEmail(ctx, user.Email)
			if getErr != nil {
				return nil, fmt.Errorf("load user %s: %w", user.Email, getErr)
			}
			user = *existing
		} else if err != nil {
			return nil, fmt.Errorf("create user %s: %w", user.Email, err)
		}
		seeded = append(seeded, user)
	}

	admin := seeded[0].Actor()
	catalog := service.NewCatalogService(store, nil)
	for _, name := range demoPriorities {
		if _, err := catalog.CreatePriority(ctx, admin, name); err != nil && !apperrors.HasCode(err, apperrors.CodeConflict) {
			return nil, fmt.Errorf("create priority %s: %w", name, err)
		}
	}
	for _, name := range demoTags {
		if _, err := catalog.CreateTag(ctx, admin, name); err != nil && !apperrors.HasCode(err, apperrors.CodeConflict) {
			return nil, fmt.Errorf("create tag %s: %w", name, err)
		}
	}

	logger.Info("demo data ready",
		zap.Int("users", len(seeded)),
		zap.Int("priorities", len(demoPriorities)),
		zap.Int("tags", len(demoTags)))
	return seeded, nil
}
