package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-trip-day-planner/internal/api"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Refresh(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, span trace.Span, l *slog.Logger, err error) {
	span.RecordError(err)
	switch {
	case errors.Is(err, ErrInvalidInput):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUserExists):
		api.ErrorResponse(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidRefreshToken):
		api.ErrorResponse(w, r, http.StatusUnauthorized, err.Error())
	default:
		l.ErrorContext(r.Context(), "Request failed", slog.Any("error", err))
		span.SetStatus(codes.Error, "Internal error")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

// Register godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Email and password"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} api.Error
// @Failure 409 {object} api.Error
// @Router /api/v1/auth/register [post]
func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "Register"))

	var req RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.service.Register(ctx, req)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, tokens)
}

// Login godoc
// @Summary Exchange credentials for an access and refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Email and password"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} api.Error
// @Router /api/v1/auth/login [post]
func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "Login"))

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.service.Login(ctx, req)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, tokens)
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} api.Error
// @Router /api/v1/auth/refresh [post]
func (h *HandlerImpl) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Refresh")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "Refresh"))

	var req RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, tokens)
}

// Logout godoc
// @Summary Revoke a refresh token
// @Tags auth
// @Accept json
// @Param request body RefreshTokenRequest true "Refresh token"
// @Success 204
// @Failure 400 {object} api.Error
// @Router /api/v1/auth/logout [post]
func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Logout")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "Logout"))

	var req RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Logout(ctx, req.RefreshToken); err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
