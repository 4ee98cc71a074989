package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-day-planner/app/observability/metrics"
)

const uniqueViolation = "23505"

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	// ConsumeRefreshToken revokes a live token and returns its owner. A token can be consumed once.
	ConsumeRefreshToken(ctx context.Context, token string) (*User, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}

type RepositoryImpl struct {
	db     DB
	logger *slog.Logger
}

func NewRepository(db DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		db:     db,
		logger: logger,
	}
}

func (r *RepositoryImpl) observe(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("operation", op))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err == nil || errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrUserExists) || errors.Is(err, ErrInvalidRefreshToken) {
		return
	}
	m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	span.RecordError(err)
	span.SetStatus(codes.Error, op+" failed")
	r.logger.ErrorContext(ctx, "Database operation failed", slog.String("method", op), slog.Any("error", err))
}

func (r *RepositoryImpl) CreateUser(ctx context.Context, email, passwordHash string) (_ *User, err error) {
	ctx, span := otel.Tracer("AuthRepository").Start(ctx, "CreateUser")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "CreateUser", start, err) }(time.Now())

	query := `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	u := User{Email: email, PasswordHash: passwordHash}
	err = r.db.QueryRow(ctx, query, email, passwordHash).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	span.SetAttributes(attribute.String("user_id", u.ID.String()))
	return &u, nil
}

func (r *RepositoryImpl) GetUserByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := otel.Tracer("AuthRepository").Start(ctx, "GetUserByEmail")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "GetUserByEmail", start, err) }(time.Now())

	query := `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)`

	var u User
	err = r.db.QueryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *RepositoryImpl) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (err error) {
	ctx, span := otel.Tracer("AuthRepository").Start(ctx, "StoreRefreshToken", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "StoreRefreshToken", start, err) }(time.Now())

	_, err = r.db.Exec(ctx,
		`INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) ConsumeRefreshToken(ctx context.Context, token string) (_ *User, err error) {
	ctx, span := otel.Tracer("AuthRepository").Start(ctx, "ConsumeRefreshToken")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "ConsumeRefreshToken", start, err) }(time.Now())

	query := `
		UPDATE refresh_tokens rt
		SET revoked_at = now()
		FROM users u
		WHERE rt.token = $1
		  AND rt.revoked_at IS NULL
		  AND rt.expires_at > now()
		  AND u.id = rt.user_id
		RETURNING u.id, u.email, u.password_hash, u.created_at, u.updated_at`

	var u User
	err = r.db.QueryRow(ctx, query, token).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	return &u, nil
}

func (r *RepositoryImpl) RevokeRefreshToken(ctx context.Context, token string) (err error) {
	ctx, span := otel.Tracer("AuthRepository").Start(ctx, "RevokeRefreshToken")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "RevokeRefreshToken", start, err) }(time.Now())

	_, err = r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = now() WHERE token = $1 AND revoked_at IS NULL`,
		token)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
