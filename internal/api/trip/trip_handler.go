package trip

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/FACorreiaa/go-trip-day-planner/app/middleware"
	"github.com/FACorreiaa/go-trip-day-planner/internal/api"
	llmPrompt "github.com/FACorreiaa/go-trip-day-planner/internal/api/llm_prompt"
	"github.com/FACorreiaa/go-trip-day-planner/internal/itinerary"
	"github.com/FACorreiaa/go-trip-day-planner/internal/types"
)

const codeNoItinerary = "no_itinerary"

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CreateTrip(w http.ResponseWriter, r *http.Request)
	ListTrips(w http.ResponseWriter, r *http.Request)
	GetTrip(w http.ResponseWriter, r *http.Request)
	DeleteTrip(w http.ResponseWriter, r *http.Request)
	Brainstorm(w http.ResponseWriter, r *http.Request)
	AddActivities(w http.ResponseWriter, r *http.Request)
	ClearActivities(w http.ResponseWriter, r *http.Request)
	RemoveActivity(w http.ResponseWriter, r *http.Request)
	GeocodeActivities(w http.ResponseWriter, r *http.Request)
	GenerateBasicItinerary(w http.ResponseWriter, r *http.Request)
	GenerateDetailedItinerary(w http.ResponseWriter, r *http.Request)
	ModifyDetailedItinerary(w http.ResponseWriter, r *http.Request)
	PoolItems(w http.ResponseWriter, r *http.Request)
	AddStopFromPool(w http.ResponseWriter, r *http.Request)
	MoveStop(w http.ResponseWriter, r *http.Request)
	RemoveStop(w http.ResponseWriter, r *http.Request)
	QuickPlan(w http.ResponseWriter, r *http.Request)
	ClusterRecords(w http.ResponseWriter, r *http.Request)
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

// writeError maps service errors onto HTTP statuses.
func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, span trace.Span, l *slog.Logger, err error) {
	span.RecordError(err)
	switch {
	case errors.Is(err, ErrInvalidRequest):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTripNotFound),
		errors.Is(err, ErrActivityNotFound),
		errors.Is(err, ErrDayNotFound),
		errors.Is(err, ErrStopNotFound),
		errors.Is(err, ErrNoDetailedItinerary):
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidMove), errors.Is(err, ErrActivityNotInPool):
		api.ErrorResponse(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, itinerary.ErrNoItinerary):
		api.ErrorResponseWithCode(w, r, http.StatusUnprocessableEntity, codeNoItinerary, err.Error())
	case errors.Is(err, ErrNoGeocodedActivities):
		api.ErrorResponseWithCode(w, r, http.StatusUnprocessableEntity, codeNoItinerary, err.Error())
	case errors.Is(err, ErrLLM), errors.Is(err, llmPrompt.ErrInvalidItinerary):
		l.WarnContext(r.Context(), "Upstream model failure", slog.Any("error", err))
		span.SetStatus(codes.Error, "Model failure")
		api.ErrorResponse(w, r, http.StatusBadGateway, err.Error())
	default:
		l.ErrorContext(r.Context(), "Request failed", slog.Any("error", err))
		span.SetStatus(codes.Error, "Internal error")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *HandlerImpl) userID(w http.ResponseWriter, r *http.Request, span trace.Span, l *slog.Logger) (uuid.UUID, bool) {
	userIDStr, ok := appMiddleware.GetUserIDFromContext(r.Context())
	if !ok {
		l.ErrorContext(r.Context(), "User ID not found in context")
		span.SetStatus(codes.Error, "User not authenticated")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		l.WarnContext(r.Context(), "Invalid user ID format", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid user ID")
		return uuid.Nil, false
	}
	span.SetAttributes(attribute.String("user_id", userID.String()))
	return userID, true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func intParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return n, true
}

// tripRequest resolves the caller and the trip ID shared by every trip route.
func (h *HandlerImpl) tripRequest(w http.ResponseWriter, r *http.Request, span trace.Span, l *slog.Logger) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := h.userID(w, r, span, l)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	tripID, ok := uuidParam(w, r, "tripID")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	span.SetAttributes(attribute.String("trip_id", tripID.String()))
	return userID, tripID, true
}

// CreateTrip godoc
// @Summary Create a trip
// @Tags trips
// @Accept json
// @Produce json
// @Param request body types.CreateTripRequest true "Trip context"
// @Success 201 {object} types.Trip
// @Failure 400 {object} api.Error
// @Failure 401 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips [post]
func (h *HandlerImpl) CreateTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "CreateTrip")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "CreateTrip"))

	userID, ok := h.userID(w, r, span, l)
	if !ok {
		return
	}
	var req types.CreateTripRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.service.CreateTrip(ctx, userID, req)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, trip)
}

// ListTrips godoc
// @Summary List the caller's trips
// @Tags trips
// @Produce json
// @Success 200 {array} types.Trip
// @Failure 401 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips [get]
func (h *HandlerImpl) ListTrips(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "ListTrips")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "ListTrips"))

	userID, ok := h.userID(w, r, span, l)
	if !ok {
		return
	}
	trips, err := h.service.ListTrips(ctx, userID)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, trips)
}

// GetTrip godoc
// @Summary Get the full state of a trip
// @Tags trips
// @Produce json
// @Param tripID path string true "Trip ID"
// @Success 200 {object} types.TripState
// @Failure 404 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips/{tripID} [get]
func (h *HandlerImpl) GetTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GetTrip")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "GetTrip"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	state, err := h.service.GetTrip(ctx, userID, tripID)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, state)
}

// DeleteTrip godoc
// @Summary Delete a trip
// @Tags trips
// @Param tripID path string true "Trip ID"
// @Success 204
// @Failure 404 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips/{tripID} [delete]
func (h *HandlerImpl) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "DeleteTrip")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "DeleteTrip"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	if err := h.service.DeleteTrip(ctx, userID, tripID); err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// Brainstorm godoc
// @Summary Ask the assistant for activity suggestions
// @Tags brainstorm
// @Accept json
// @Produce json
// @Param tripID path string true "Trip ID"
// @Param request body types.BrainstormRequest true "Message"
// @Success 200 {object} types.BrainstormResponse
// @Failure 502 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips/{tripID}/brainstorm [post]
func (h *HandlerImpl) Brainstorm(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "Brainstorm")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "Brainstorm"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	var req types.BrainstormRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Brainstorm(ctx, userID, tripID, req.Message)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// AddActivities godoc
// @Summary Add suggestions to the curated activity list
// @Tags activities
// @Accept json
// @Produce json
// @Param tripID path string true "Trip ID"
// @Param request body types.AddActivitiesRequest true "Suggestions"
// @Success 201 {array} types.Activity
// @Failure 400 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips/{tripID}/activities [post]
func (h *HandlerImpl) AddActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "AddActivities")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "AddActivities"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	var req types.AddActivitiesRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	added, err := h.service.AddActivities(ctx, userID, tripID, req.Suggestions)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, added)
}

// ClearActivities godoc
// @Summary Clear the curated activity list and its itineraries
// @Tags activities
// @Param tripID path string true "Trip ID"
// @Success 204
// @Security BearerAuth
// @Router /api/v1/trips/{tripID}/activities [delete]
func (h *HandlerImpl) ClearActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "ClearActivities")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "ClearActivities"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	if err := h.service.ClearActivities(ctx, userID, tripID); err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// RemoveActivity godoc
// @Summary Remove one curated activity
// @Tags activities
// @Param tripID path string true "Trip ID"
// @Param activityID path string true "Activity ID"
// @Success 204
// @Failure 404 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips/{tripID}/activities/{activityID} [delete]
func (h *HandlerImpl) RemoveActivity(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "RemoveActivity")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "RemoveActivity"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	activityID, ok := uuidParam(w, r, "activityID")
	if !ok {
		return
	}
	if err := h.service.RemoveActivity(ctx, userID, tripID, activityID); err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}

// GeocodeActivities godoc
// @Summary Geocode every curated activity
// @Tags activities
// @Produce json
// @Param tripID path string true "Trip ID"
// @Success 200 {object} types.GeocodeSummary
// @Security BearerAuth
// @Router /api/v1/trips/{tripID}/geocode [post]
func (h *HandlerImpl) GeocodeActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GeocodeActivities")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "GeocodeActivities"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	summary, err := h.service.GeocodeActivities(ctx, userID, tripID)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summary)
}

// decodeNumDays reads an optional {"num_days": n} body. An empty body means 0.
func decodeNumDays(w http.ResponseWriter, r *http.Request) (int, error) {
	if r.ContentLength == 0 {
		return 0, nil
	}
	var req types.ItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		return 0, err
	}
	return req.NumDays, nil
}

// GenerateBasicItinerary godoc
// @Summary Split the located activities into days by geography
// @Tags itinerary
// @Accept json
// @Produce json
// @Param tripID path string true "Trip ID"
// @Param request body types.ItineraryRequest false "Number of days, defaults to the trip duration"
// @Success 200 {object} types.BasicItinerary
// @Failure 422 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips/{tripID}/itinerary/basic [post]
func (h *HandlerImpl) GenerateBasicItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GenerateBasicItinerary")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "GenerateBasicItinerary"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	numDays, err := decodeNumDays(w, r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	basic, err := h.service.GenerateBasicItinerary(ctx, userID, tripID, numDays)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, basic)
}

// GenerateDetailedItinerary godoc
// @Summary Generate a timed day by day itinerary
// @Tags itinerary
// @Accept json
// @Produce json
// @Param tripID path string true "Trip ID"
// @Param request body types.ItineraryRequest false "Number of days, defaults to the trip duration"
// @Success 200 {array} types.DayPlan
// @Failure 422 {object} api.Error
// @Failure 502 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips/{tripID}/itinerary/detailed [post]
func (h *HandlerImpl) GenerateDetailedItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "GenerateDetailedItinerary")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "GenerateDetailedItinerary"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	numDays, err := decodeNumDays(w, r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.GenerateDetailedItinerary(ctx, userID, tripID, numDays)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

// ModifyDetailedItinerary godoc
// @Summary Apply a free text change to the detailed itinerary
// @Tags itinerary
// @Accept json
// @Produce json
// @Param tripID path string true "Trip ID"
// @Param request body types.ModifyItineraryRequest true "Instruction"
// @Success 200 {array} types.DayPlan
// @Failure 404 {object} api.Error
// @Failure 502 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips/{tripID}/itinerary/detailed/modify [post]
func (h *HandlerImpl) ModifyDetailedItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "ModifyDetailedItinerary")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "ModifyDetailedItinerary"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	var req types.ModifyItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.ModifyDetailedItinerary(ctx, userID, tripID, req.Instruction)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

// PoolItems godoc
// @Summary List located activities not yet in the detailed itinerary
// @Tags itinerary
// @Produce json
// @Param tripID path string true "Trip ID"
// @Success 200 {array} types.Activity
// @Security BearerAuth
// @Router /api/v1/trips/{tripID}/pool [get]
func (h *HandlerImpl) PoolItems(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "PoolItems")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "PoolItems"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	items, err := h.service.PoolItems(ctx, userID, tripID)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, items)
}

// AddStopFromPool godoc
// @Summary Append a pool activity to a day of the detailed itinerary
// @Tags itinerary
// @Accept json
// @Produce json
// @Param tripID path string true "Trip ID"
// @Param request body types.AddStopRequest true "Activity and day"
// @Success 200 {array} types.DayPlan
// @Failure 404 {object} api.Error
// @Failure 409 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips/{tripID}/itinerary/detailed/stops [post]
func (h *HandlerImpl) AddStopFromPool(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "AddStopFromPool")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "AddStopFromPool"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	var req types.AddStopRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.AddStopFromPool(ctx, userID, tripID, req)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

// MoveStop godoc
// @Summary Move a stop one place up or down within its day
// @Tags itinerary
// @Accept json
// @Produce json
// @Param tripID path string true "Trip ID"
// @Param day path int true "Day number"
// @Param index path int true "Stop position, starting at 0"
// @Param request body types.MoveStopRequest true "Direction"
// @Success 200 {array} types.DayPlan
// @Failure 409 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips/{tripID}/itinerary/detailed/days/{day}/stops/{index}/move [post]
func (h *HandlerImpl) MoveStop(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "MoveStop")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "MoveStop"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	day, ok := intParam(w, r, "day")
	if !ok {
		return
	}
	index, ok := intParam(w, r, "index")
	if !ok {
		return
	}
	var req types.MoveStopRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.service.MoveStop(ctx, userID, tripID, day, index, req.Direction)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

// RemoveStop godoc
// @Summary Remove a stop from the detailed itinerary
// @Tags itinerary
// @Produce json
// @Param tripID path string true "Trip ID"
// @Param day path int true "Day number"
// @Param index path int true "Stop position, starting at 0"
// @Success 200 {array} types.DayPlan
// @Failure 404 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/trips/{tripID}/itinerary/detailed/days/{day}/stops/{index} [delete]
func (h *HandlerImpl) RemoveStop(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "RemoveStop")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "RemoveStop"))

	userID, tripID, ok := h.tripRequest(w, r, span, l)
	if !ok {
		return
	}
	day, ok := intParam(w, r, "day")
	if !ok {
		return
	}
	index, ok := intParam(w, r, "index")
	if !ok {
		return
	}

	plan, err := h.service.RemoveStop(ctx, userID, tripID, day, index)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, plan)
}

// QuickPlan godoc
// @Summary Plan a whole trip from a destination and a vibe
// @Tags quick-plan
// @Accept json
// @Produce json
// @Param request body types.QuickPlanRequest true "Destination, duration and vibe"
// @Description A trip whose detailed itinerary could not be built is still returned, with itinerary_error set.
// @Success 201 {object} types.QuickPlanResponse
// @Failure 422 {object} api.Error
// @Failure 502 {object} api.Error
// @Security BearerAuth
// @Router /api/v1/quick-plan [post]
func (h *HandlerImpl) QuickPlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "QuickPlan")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "QuickPlan"))

	userID, ok := h.userID(w, r, span, l)
	if !ok {
		return
	}
	var req types.QuickPlanRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.QuickPlan(ctx, userID, req)
	if err != nil && resp == nil {
		h.writeError(w, r, span, l, err)
		return
	}
	if err != nil {
		span.RecordError(err)
		l.WarnContext(ctx, "Trip created without a detailed itinerary", slog.Any("error", err))
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, resp)
}

// ClusterRecords godoc
// @Summary Group geotagged records into days
// @Description Records keep every field they were sent with. Records without a usable latitude and longitude are left out.
// @Tags itinerary
// @Accept json
// @Produce json
// @Param request body types.ClusterRequest true "Records and number of days"
// @Success 200 {object} types.ClusterResponse
// @Failure 400 {object} api.Error
// @Failure 422 {object} api.Error
// @Router /api/v1/itineraries/cluster [post]
func (h *HandlerImpl) ClusterRecords(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("TripHandler").Start(r.Context(), "ClusterRecords")
	defer span.End()
	r = r.WithContext(ctx)
	l := h.logger.With(slog.String("method", "ClusterRecords"))

	var req types.ClusterRequest
	if err := api.DecodeLooseJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(attribute.Int("records.count", len(req.Records)), attribute.Int("num_days", req.NumDays))

	resp, err := h.service.ClusterRecords(ctx, req)
	if err != nil {
		h.writeError(w, r, span, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
