package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-records/internal/models"
	"github.com/noah-isme/sma-records/pkg/config"
	"github.com/noah-isme/sma-records/pkg/database"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
)

// BootstrapAdminUsername is the username of the account created by Seed.
const BootstrapAdminUsername = "admin"

// SeedOptions configures the bootstrap admin.
type SeedOptions struct {
	AdminPassword string
	BcryptCost    int
}

// Gateway owns the connection pool: schema provisioning, bootstrap data and units of work.
type Gateway struct {
	db      *sqlx.DB
	cfg     config.DatabaseConfig
	seed    SeedOptions
	users   *UserRepository
	logger  *zap.Logger
	migrate func(context.Context, config.DatabaseConfig) error
}

// NewGateway wires a gateway over an opened pool.
func NewGateway(db *sqlx.DB, cfg config.DatabaseConfig, seed SeedOptions, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	if seed.AdminPassword == "" {
		seed.AdminPassword = "admin123"
	}
	if seed.BcryptCost == 0 {
		seed.BcryptCost = bcrypt.DefaultCost
	}
	return &Gateway{
		db:      db,
		cfg:     cfg,
		seed:    seed,
		users:   NewUserRepository(db),
		logger:  logger,
		migrate: database.Migrate,
	}
}

// DB exposes the pool for repositories.
func (g *Gateway) DB() *sqlx.DB {
	return g.db
}

// Ping checks that the store answers.
func (g *Gateway) Ping(ctx context.Context) error {
	if err := g.db.PingContext(ctx); err != nil {
		return appErrors.WrapAs(appErrors.ErrConnectivity, err, "record store unreachable")
	}
	return nil
}

// Provision creates or upgrades the schema. It is safe to call on every start.
func (g *Gateway) Provision(ctx context.Context) error {
	if err := g.migrate(ctx, g.cfg); err != nil {
		return appErrors.WrapAs(appErrors.ErrSchemaProvisioning, err, "schema provisioning failed")
	}
	return nil
}

// Seed inserts the bootstrap admin when the users table is empty and reports whether it did.
// Failures are logged and never returned.
func (g *Gateway) Seed(ctx context.Context) bool {
	hash, err := bcrypt.GenerateFromPassword([]byte(g.seed.AdminPassword), g.seed.BcryptCost)
	if err != nil {
		g.logger.Warn("seed: hash bootstrap password", zap.Error(err))
		return false
	}

	seeded := false
	err = g.WithinTx(ctx, func(tx sqlx.ExtContext) error {
		count, err := g.users.Count(ctx, tx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		admin := models.NewAdminAccount(models.User{
			Username:     BootstrapAdminUsername,
			PasswordHash: string(hash),
			FirstName:    "System",
			LastName:     "Administrator",
			Email:        "admin@school.edu",
			IsActive:     true,
		}, models.AdminProfile{
			Position:       "Quản trị viên hệ thống",
			OfficeLocation: "Văn phòng chính",
			PhoneNumber:    "123-456-7890",
		})
		if err := g.users.Create(ctx, tx, admin); err != nil {
			return err
		}
		seeded = true
		return nil
	})
	if err != nil {
		g.logger.Warn("seed: bootstrap admin not created", zap.Error(err))
		return false
	}
	if seeded {
		g.logger.Info("seed: bootstrap admin created", zap.String("username", BootstrapAdminUsername))
	}
	return seeded
}

// WithinTx runs fn in one transaction: commit when fn returns nil, rollback on error or panic.
// Repositories take the sqlx.ExtContext handed to fn as their exec argument.
func (g *Gateway) WithinTx(ctx context.Context, fn func(tx sqlx.ExtContext) error) (err error) {
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeError("begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				g.logger.Warn("rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return storeError("commit", fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
