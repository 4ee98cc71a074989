package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	appMiddleware "github.com/FACorreiaa/go-trip-day-planner/app/middleware"
	"github.com/FACorreiaa/go-trip-day-planner/config"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour

	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type ServiceImpl struct {
	repo       Repository
	jwt        config.JWTConfig
	accessTTL  time.Duration
	refreshTTL time.Duration
	hashCost   int
	now        func() time.Time
	logger     *slog.Logger
}

func NewService(repo Repository, jwtCfg config.JWTConfig, logger *slog.Logger) *ServiceImpl {
	s := &ServiceImpl{
		repo:       repo,
		jwt:        jwtCfg,
		accessTTL:  jwtCfg.AccessTokenTTL,
		refreshTTL: jwtCfg.RefreshTokenTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
		logger:     logger,
	}
	if s.accessTTL <= 0 {
		s.accessTTL = defaultAccessTokenTTL
	}
	if s.refreshTTL <= 0 {
		s.refreshTTL = defaultRefreshTokenTTL
	}
	return s
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email address is not valid", ErrInvalidInput)
	}
	return email, nil
}

func (s *ServiceImpl) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register")
	defer span.End()
	l := s.logger.With(slog.String("method", "Register"))

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if len([]rune(req.Password)) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must not be longer than %d bytes", ErrInvalidInput, maxPasswordBytes)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, email, string(hash))
	if err != nil {
		if !errors.Is(err, ErrUserExists) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to create user")
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("user_id", user.ID.String()))
	l.InfoContext(ctx, "User registered", slog.String("user_id", user.ID.String()))

	return s.issueTokens(ctx, user)
}

func (s *ServiceImpl) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()
	l := s.logger.With(slog.String("method", "Login"))

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		l.InfoContext(ctx, "Login for unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load user")
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		l.InfoContext(ctx, "Login with wrong password", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}
	span.SetAttributes(attribute.String("user_id", user.ID.String()))

	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token: the presented token is revoked and a new pair is issued.
func (s *ServiceImpl) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Refresh")
	defer span.End()

	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.repo.ConsumeRefreshToken(ctx, refreshToken)
	if err != nil {
		if !errors.Is(err, ErrInvalidRefreshToken) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to consume refresh token")
		}
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *ServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Logout")
	defer span.End()

	if strings.TrimSpace(refreshToken) == "" {
		return fmt.Errorf("%w: refresh_token is required", ErrInvalidInput)
	}
	if err := s.repo.RevokeRefreshToken(ctx, refreshToken); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

func (s *ServiceImpl) issueTokens(ctx context.Context, user *User) (*TokenResponse, error) {
	if s.jwt.SecretKey == "" {
		return nil, errors.New("jwt secret key is not configured")
	}

	now := s.now()
	claims := appMiddleware.Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			Issuer:    s.jwt.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	if s.jwt.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.jwt.Audience}
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwt.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken := uuid.NewString()
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refreshToken, now.Add(s.refreshTTL)); err != nil {
		return nil, err
	}

	return &TokenResponse{
		UserID:       user.ID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}
