// Package relational is the PostgreSQL Entity Store, built on GORM with
// the pgx driver. Subscriptions live in an explicit join table, so one
// hop of the neighborhood is two preload levels: the join row, then the
// user on its other end.
package relational

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"membergraph/backend/internal/store"
	apperrors "membergraph/backend/pkg/errors"
	"membergraph/backend/pkg/logger"
)

// BackendName identifies this store in logs, errors and metrics
const BackendName = "postgres"

// SQLSTATE codes mapped to ConstraintViolation
const (
	foreignKeyViolation = "23503"
	uniqueViolation     = "23505"
	checkViolation      = "23514"
)

// Store implements store.Store on PostgreSQL
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
	newID  func() string
}

var (
	_ store.Store              = (*Store)(nil)
	_ store.UserProfileCreator = (*Store)(nil)
)

// Open connects to dsn and verifies the connection
func Open(ctx context.Context, dsn string) (*Store, error) {
	log := logger.Named("postgres-store")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newGormLogger(log),
	})
	if err != nil {
		return nil, apperrors.NewStoreConnectionFailed(redact(dsn), err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, apperrors.NewStoreConnectionFailed(redact(dsn), err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, apperrors.NewStoreConnectionFailed(redact(dsn), err)
	}
	return New(db), nil
}

// New wraps an open GORM handle
func New(db *gorm.DB) *Store {
	return &Store{
		db:     db,
		logger: logger.Named("postgres-store"),
		newID:  uuid.NewString,
	}
}

// Backend implements store.Store
func (s *Store) Backend() string { return BackendName }

// Close releases the connection pool
func (s *Store) Close(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Migrate creates or updates the tables, keys and indexes
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models()...); err != nil {
		return s.storeError("Migrate", err)
	}
	s.logger.Info("Schema migrated")
	return nil
}

// SeedMemberTypes upserts the reference tiers
func (s *Store) SeedMemberTypes(ctx context.Context, tiers []store.MemberType) error {
	rows := make([]memberTypeModel, 0, len(tiers))
	for _, m := range tiers {
		rows = append(rows, memberTypeModel{
			ID:                 string(m.ID),
			Discount:           m.Discount,
			PostsLimitPerMonth: m.PostsLimitPerMonth,
		})
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rows).Error
	if err != nil {
		return s.storeError("SeedMemberTypes", err)
	}
	return nil
}

// Reset deletes every user, post, profile and subscription. Member tiers
// are kept.
func (s *Store) Reset(ctx context.Context) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&profileModel{}, &postModel{}, &subscriptionModel{}, &userModel{}} {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.storeError("Reset", err)
	}
	s.logger.Info("Store reset")
	return nil
}

// storeError maps GORM and pgx errors onto the error taxonomy. Errors
// already in the taxonomy pass through.
func (s *Store) storeError(op string, err error) error {
	switch {
	case apperrors.IsConstraintViolation(err), apperrors.IsNotFound(err), apperrors.IsInvalidInput(err):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewContextCancelled(op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolation, uniqueViolation, checkViolation:
			constraint := pgErr.ConstraintName
			if constraint == "" {
				constraint = pgErr.Code
			}
			return apperrors.NewConstraintViolation(op, constraint, err)
		}
	}
	return apperrors.NewStoreUnavailable(BackendName, op, err)
}

// notFound turns gorm.ErrRecordNotFound into a NotFound for kind/id
func (s *Store) notFound(op, kind, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NewNotFound(kind, id)
	}
	return s.storeError(op, err)
}

// redact strips credentials from a DSN before it reaches errors or logs
func redact(dsn string) string {
	cfg, err := pgconn.ParseConfig(dsn)
	if err != nil {
		return "postgres"
	}
	return "postgres://" + cfg.Host + "/" + cfg.Database
}
