package trip

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-trip-day-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-day-planner/config"
	"github.com/FACorreiaa/go-trip-day-planner/internal/api/geocode"
	llmPrompt "github.com/FACorreiaa/go-trip-day-planner/internal/api/llm_prompt"
	"github.com/FACorreiaa/go-trip-day-planner/internal/itinerary"
	"github.com/FACorreiaa/go-trip-day-planner/internal/types"
)

const (
	defaultGeocodeConcurrency = 2
	quickPlanBudget           = "Any"
	poolStopTime              = "New"
	poolStopType              = "activity"
	poolStopDescription       = "Added from pool."
	defaultStopZoom           = 16
	defaultStopPitch          = 50
	activityIndexKey          = "activity_index"
)

// LLM is the part of the Gemini client the trip service needs.
type LLM interface {
	ChatOnce(ctx context.Context, system string, history []types.ChatMessage, message string) (string, error)
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreateTrip(ctx context.Context, userID uuid.UUID, req types.CreateTripRequest) (*types.Trip, error)
	GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.TripState, error)
	ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error)
	DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error

	Brainstorm(ctx context.Context, userID, tripID uuid.UUID, message string) (*types.BrainstormResponse, error)

	AddActivities(ctx context.Context, userID, tripID uuid.UUID, suggestions []types.Suggestion) ([]types.Activity, error)
	RemoveActivity(ctx context.Context, userID, tripID, activityID uuid.UUID) error
	ClearActivities(ctx context.Context, userID, tripID uuid.UUID) error
	GeocodeActivities(ctx context.Context, userID, tripID uuid.UUID) (*types.GeocodeSummary, error)

	GenerateBasicItinerary(ctx context.Context, userID, tripID uuid.UUID, numDays int) (*types.BasicItinerary, error)
	GenerateDetailedItinerary(ctx context.Context, userID, tripID uuid.UUID, numDays int) (types.DetailedItinerary, error)
	ModifyDetailedItinerary(ctx context.Context, userID, tripID uuid.UUID, instruction string) (types.DetailedItinerary, error)

	PoolItems(ctx context.Context, userID, tripID uuid.UUID) ([]types.Activity, error)
	AddStopFromPool(ctx context.Context, userID, tripID uuid.UUID, req types.AddStopRequest) (types.DetailedItinerary, error)
	MoveStop(ctx context.Context, userID, tripID uuid.UUID, day, index int, direction types.MoveDirection) (types.DetailedItinerary, error)
	RemoveStop(ctx context.Context, userID, tripID uuid.UUID, day, index int) (types.DetailedItinerary, error)

	QuickPlan(ctx context.Context, userID uuid.UUID, req types.QuickPlanRequest) (*types.QuickPlanResponse, error)
	ClusterRecords(ctx context.Context, req types.ClusterRequest) (*types.ClusterResponse, error)
}

type ServiceImpl struct {
	repo        Repository
	llm         LLM
	geocoder    geocode.Geocoder
	clusterOpts []itinerary.Option
	concurrency int
	logger      *slog.Logger
}

// NewService wires the trip service. llm may be nil when no model is
// configured; every operation that needs it then fails with ErrLLM.
func NewService(repo Repository, llm LLM, geocoder geocode.Geocoder, clustering config.ClusteringConfig, concurrency int, logger *slog.Logger) *ServiceImpl {
	if concurrency <= 0 {
		concurrency = defaultGeocodeConcurrency
	}
	return &ServiceImpl{
		repo:        repo,
		llm:         llm,
		geocoder:    geocoder,
		clusterOpts: ClusterOptions(clustering),
		concurrency: concurrency,
		logger:      logger,
	}
}

// ClusterOptions maps configuration onto clusterer options. Zero values keep the defaults.
func ClusterOptions(cfg config.ClusteringConfig) []itinerary.Option {
	var opts []itinerary.Option
	if cfg.Seed != 0 {
		opts = append(opts, itinerary.WithSeed(cfg.Seed))
	}
	if cfg.Runs > 0 {
		opts = append(opts, itinerary.WithRuns(cfg.Runs))
	}
	if cfg.MaxIterations > 0 {
		opts = append(opts, itinerary.WithMaxIterations(cfg.MaxIterations))
	}
	if cfg.Tolerance > 0 {
		opts = append(opts, itinerary.WithTolerance(cfg.Tolerance))
	}
	return opts
}

// DefaultDayCount is the number of days used when the caller does not pick
// one: the trip duration, never more than the number of located activities.
func DefaultDayCount(trip types.Trip, located int) int {
	return min(llmPrompt.ParseDurationDays(trip.Duration), max(1, located))
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, msg)
}

func (s *ServiceImpl) languageModel() (LLM, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("%w: no model configured", ErrLLM)
	}
	return s.llm, nil
}

func (s *ServiceImpl) CreateTrip(ctx context.Context, userID uuid.UUID, req types.CreateTripRequest) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "CreateTrip")
	defer span.End()

	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		return nil, invalid("destination is required")
	}

	prefs := make([]string, 0, len(req.Preferences))
	for _, p := range req.Preferences {
		if p = strings.TrimSpace(p); p != "" {
			prefs = append(prefs, p)
		}
	}

	trip := &types.Trip{
		UserID:      userID,
		Destination: destination,
		Duration:    strings.TrimSpace(req.Duration),
		Preferences: prefs,
		Budget:      strings.TrimSpace(req.Budget),
	}
	if err := s.repo.CreateTrip(ctx, trip); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create trip")
		return nil, err
	}
	span.SetAttributes(attribute.String("trip_id", trip.ID.String()))
	s.logger.InfoContext(ctx, "Trip created", slog.String("trip_id", trip.ID.String()), slog.String("destination", destination))
	return trip, nil
}

func (s *ServiceImpl) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.TripState, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GetTrip", trace.WithAttributes(
		attribute.String("trip_id", tripID.String()),
	))
	defer span.End()

	trip, err := s.repo.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	return s.loadState(ctx, trip)
}

func (s *ServiceImpl) loadState(ctx context.Context, trip *types.Trip) (*types.TripState, error) {
	state := &types.TripState{Trip: *trip}
	var err error
	if state.Messages, err = s.repo.ListMessages(ctx, trip.ID); err != nil {
		return nil, err
	}
	if state.Suggestions, err = s.repo.GetSuggestions(ctx, trip.ID); err != nil {
		return nil, err
	}
	if state.Activities, err = s.repo.ListActivities(ctx, trip.ID); err != nil {
		return nil, err
	}

	var basic types.BasicItinerary
	found, err := s.repo.GetItinerary(ctx, trip.ID, ItineraryBasic, &basic)
	if err != nil {
		return nil, err
	}
	if found {
		state.Basic = &basic
	}
	if _, err = s.repo.GetItinerary(ctx, trip.ID, ItineraryDetailed, &state.Detailed); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *ServiceImpl) ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "ListTrips")
	defer span.End()
	return s.repo.ListTrips(ctx, userID)
}

func (s *ServiceImpl) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "DeleteTrip")
	defer span.End()
	return s.repo.DeleteTrip(ctx, userID, tripID)
}

// Brainstorm sends message to the model with the trip context and the chat so
// far. The reply replaces the trip's latest suggestions. On a model failure
// the apology is stored as the reply, the suggestions are cleared and an
// error wrapping ErrLLM is returned.
func (s *ServiceImpl) Brainstorm(ctx context.Context, userID, tripID uuid.UUID, message string) (*types.BrainstormResponse, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "Brainstorm", trace.WithAttributes(
		attribute.String("trip_id", tripID.String()),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "Brainstorm"), slog.String("trip_id", tripID.String()))

	message = strings.TrimSpace(message)
	if message == "" {
		return nil, invalid("message is required")
	}

	trip, err := s.repo.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListMessages(ctx, tripID)
	if err != nil {
		return nil, err
	}

	userTurn := types.ChatMessage{Role: types.RoleUser, Content: message}

	reply, llmErr := s.chat(ctx, llmPrompt.BrainstormSystemPrompt(trip.Context()), history, message)
	if llmErr != nil {
		span.RecordError(llmErr)
		span.SetStatus(codes.Error, "Brainstorm model call failed")
		l.ErrorContext(ctx, "Brainstorm failed", slog.Any("error", llmErr))

		apology := types.ChatMessage{Role: types.RoleAssistant, Content: BrainstormFailureReply}
		if err = s.repo.AppendMessages(ctx, tripID, userTurn, apology); err != nil {
			return nil, err
		}
		if err = s.repo.SaveSuggestions(ctx, tripID, nil); err != nil {
			return nil, err
		}
		return nil, llmErr
	}

	suggestions := llmPrompt.ParseSuggestions(reply)
	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}
	assistantTurn := types.ChatMessage{Role: types.RoleAssistant, Content: reply}
	if err = s.repo.AppendMessages(ctx, tripID, userTurn, assistantTurn); err != nil {
		return nil, err
	}
	if err = s.repo.SaveSuggestions(ctx, tripID, suggestions); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("suggestions.count", len(suggestions)))
	l.DebugContext(ctx, "Brainstorm reply parsed", slog.Int("suggestions", len(suggestions)))
	return &types.BrainstormResponse{Reply: reply, Suggestions: suggestions}, nil
}

func (s *ServiceImpl) chat(ctx context.Context, system string, history []types.ChatMessage, message string) (string, error) {
	llm, err := s.languageModel()
	if err != nil {
		return "", err
	}
	reply, err := llm.ChatOnce(ctx, system, history, message)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLLM, err)
	}
	return reply, nil
}

func (s *ServiceImpl) generateJSON(ctx context.Context, prompt string) (string, error) {
	llm, err := s.languageModel()
	if err != nil {
		return "", err
	}
	raw, err := llm.GenerateJSON(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrLLM, err)
	}
	return raw, nil
}

func (s *ServiceImpl) AddActivities(ctx context.Context, userID, tripID uuid.UUID, suggestions []types.Suggestion) ([]types.Activity, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "AddActivities")
	defer span.End()

	cleaned := make([]types.Suggestion, 0, len(suggestions))
	for _, sg := range suggestions {
		sg.DisplayText = strings.TrimSpace(sg.DisplayText)
		sg.PlaceName = strings.TrimSpace(sg.PlaceName)
		if sg.DisplayText == "" {
			continue
		}
		if sg.PlaceName == "" {
			sg.PlaceName = sg.DisplayText
		}
		cleaned = append(cleaned, sg)
	}
	if len(cleaned) == 0 {
		return nil, invalid("at least one suggestion is required")
	}

	if _, err := s.repo.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	return s.repo.AddActivities(ctx, tripID, cleaned)
}

func (s *ServiceImpl) RemoveActivity(ctx context.Context, userID, tripID, activityID uuid.UUID) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "RemoveActivity")
	defer span.End()

	if _, err := s.repo.GetTrip(ctx, userID, tripID); err != nil {
		return err
	}
	return s.repo.DeleteActivity(ctx, tripID, activityID)
}

func (s *ServiceImpl) ClearActivities(ctx context.Context, userID, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "ClearActivities")
	defer span.End()

	if _, err := s.repo.GetTrip(ctx, userID, tripID); err != nil {
		return err
	}
	return s.repo.ClearActivities(ctx, tripID)
}

// GeocodeActivities looks up every curated activity again. Itineraries built
// from the previous coordinates are dropped.
func (s *ServiceImpl) GeocodeActivities(ctx context.Context, userID, tripID uuid.UUID) (*types.GeocodeSummary, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GeocodeActivities", trace.WithAttributes(
		attribute.String("trip_id", tripID.String()),
	))
	defer span.End()

	if _, err := s.repo.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	activities, err := s.repo.ListActivities(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if err = s.repo.ResetGeocoding(ctx, tripID); err != nil {
		return nil, err
	}
	if err = s.repo.DeleteItineraries(ctx, tripID); err != nil {
		return nil, err
	}

	names := make([]string, len(activities))
	for i, a := range activities {
		names[i] = a.PlaceName
	}
	results := s.geocodeAll(ctx, names)

	summary := &types.GeocodeSummary{}
	for i, a := range activities {
		status := types.GeocodeFound
		if results[i] == nil {
			status = types.GeocodeNotFound
			summary.NotFound++
			summary.Missing = append(summary.Missing, a.PlaceName)
		} else {
			summary.Found++
		}
		if err = s.repo.UpdateGeocode(ctx, a.ID, status, results[i]); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to store geocode")
			return nil, err
		}
	}

	span.SetAttributes(attribute.Int("found", summary.Found), attribute.Int("not_found", summary.NotFound))
	return summary, nil
}

// geocodeAll resolves names with bounded concurrency. A failed lookup counts
// as not found and leaves a nil entry.
func (s *ServiceImpl) geocodeAll(ctx context.Context, names []string) []*types.GeocodeResult {
	results := make([]*types.GeocodeResult, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		g.Go(func() error {
			res, err := s.geocoder.Geocode(gctx, name)
			if err != nil {
				s.logger.WarnContext(gctx, "Geocoding failed", slog.String("place", name), slog.Any("error", err))
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func locatedActivities(activities []types.Activity) []types.Activity {
	located := make([]types.Activity, 0, len(activities))
	for _, a := range activities {
		if a.Located() {
			located = append(located, a)
		}
	}
	return located
}

func (s *ServiceImpl) located(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, []types.Activity, error) {
	trip, err := s.repo.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, nil, err
	}
	activities, err := s.repo.ListActivities(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}
	return trip, locatedActivities(activities), nil
}

// GenerateBasicItinerary splits the located activities into days by
// geography. A zero numDays uses DefaultDayCount.
func (s *ServiceImpl) GenerateBasicItinerary(ctx context.Context, userID, tripID uuid.UUID, numDays int) (*types.BasicItinerary, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GenerateBasicItinerary", trace.WithAttributes(
		attribute.String("trip_id", tripID.String()),
		attribute.Int("num_days", numDays),
	))
	defer span.End()

	trip, located, err := s.located(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if len(located) == 0 {
		return nil, ErrNoGeocodedActivities
	}
	if numDays == 0 {
		numDays = DefaultDayCount(*trip, len(located))
	}

	records := make([]itinerary.Record[any], len(located))
	for i, a := range located {
		records[i] = itinerary.Record[any]{
			itinerary.LatitudeKey:  *a.Latitude,
			itinerary.LongitudeKey: *a.Longitude,
			activityIndexKey:       i,
		}
	}

	assignment, err := cluster(ctx, records, numDays, s.clusterOpts...)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	basic := &types.BasicItinerary{
		RequestedDays: numDays,
		EffectiveDays: len(assignment),
		Days:          make(map[int][]types.Activity, len(assignment)),
	}
	for day, recs := range assignment {
		acts := make([]types.Activity, 0, len(recs))
		for _, rec := range recs {
			acts = append(acts, located[rec[activityIndexKey].(int)])
		}
		basic.Days[day] = acts
	}

	if err = s.repo.SaveItinerary(ctx, tripID, ItineraryBasic, basic.EffectiveDays, basic); err != nil {
		return nil, err
	}
	return basic, nil
}

// ClusterRecords is the stateless clustering operation over caller supplied records.
func (s *ServiceImpl) ClusterRecords(ctx context.Context, req types.ClusterRequest) (*types.ClusterResponse, error) {
	assignment, err := cluster(ctx, req.Records, req.NumDays, s.clusterOpts...)
	if err != nil {
		return nil, err
	}
	return &types.ClusterResponse{
		RequestedDays: req.NumDays,
		EffectiveDays: len(assignment),
		Days:          assignment,
	}, nil
}

// cluster runs itinerary.Cluster under a span and records the cluster metrics.
func cluster[V any](ctx context.Context, records []itinerary.Record[V], numDays int, opts ...itinerary.Option) (itinerary.DayAssignment[V], error) {
	ctx, span := otel.Tracer("Itinerary").Start(ctx, "Cluster", trace.WithAttributes(
		attribute.Int("records.count", len(records)),
		attribute.Int("num_days", numDays),
	))
	defer span.End()

	start := time.Now()
	assignment, err := itinerary.Cluster(records, numDays, opts...)

	result := "ok"
	if err != nil {
		result = "no_itinerary"
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("effective_days", len(assignment)))
	}
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("result", result))
	m.ClusterRequestsTotal.Add(ctx, 1, attrs)
	m.ClusterDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	return assignment, err
}

// GenerateDetailedItinerary asks the model for a timed schedule over the
// located activities. A zero numDays uses DefaultDayCount.
func (s *ServiceImpl) GenerateDetailedItinerary(ctx context.Context, userID, tripID uuid.UUID, numDays int) (types.DetailedItinerary, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GenerateDetailedItinerary", trace.WithAttributes(
		attribute.String("trip_id", tripID.String()),
		attribute.Int("num_days", numDays),
	))
	defer span.End()

	if numDays < 0 {
		return nil, invalid("num_days must not be negative")
	}
	trip, located, err := s.located(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	plan, err := s.detailedItinerary(ctx, trip, located, numDays)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Detailed itinerary failed")
		return nil, err
	}
	return plan, nil
}

func (s *ServiceImpl) detailedItinerary(ctx context.Context, trip *types.Trip, located []types.Activity, numDays int) (types.DetailedItinerary, error) {
	if len(located) == 0 {
		return nil, ErrNoGeocodedActivities
	}
	if numDays == 0 {
		numDays = DefaultDayCount(*trip, len(located))
	}

	raw, err := s.generateJSON(ctx, llmPrompt.DetailedItineraryPrompt(trip.Context(), located, numDays))
	if err != nil {
		return nil, err
	}
	plan, err := llmPrompt.ParseDetailedItinerary(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "Model returned an unusable itinerary", slog.String("trip_id", trip.ID.String()), slog.Any("error", err))
		return nil, err
	}
	linkActivities(plan, located)

	if err = s.repo.SaveItinerary(ctx, trip.ID, ItineraryDetailed, len(plan), plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// ModifyDetailedItinerary applies a free text change to the stored itinerary.
func (s *ServiceImpl) ModifyDetailedItinerary(ctx context.Context, userID, tripID uuid.UUID, instruction string) (types.DetailedItinerary, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "ModifyDetailedItinerary", trace.WithAttributes(
		attribute.String("trip_id", tripID.String()),
	))
	defer span.End()

	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, invalid("instruction is required")
	}
	trip, current, err := s.detailed(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	activities, err := s.repo.ListActivities(ctx, tripID)
	if err != nil {
		return nil, err
	}

	raw, err := s.generateJSON(ctx, llmPrompt.ModifyItineraryPrompt(trip.Context(), current, instruction))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	plan, err := llmPrompt.ParseDetailedItinerary(raw)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	linkActivities(plan, locatedActivities(activities))

	if err = s.repo.SaveItinerary(ctx, tripID, ItineraryDetailed, len(plan), plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *ServiceImpl) detailed(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, types.DetailedItinerary, error) {
	trip, err := s.repo.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, nil, err
	}
	var plan types.DetailedItinerary
	found, err := s.repo.GetItinerary(ctx, tripID, ItineraryDetailed, &plan)
	if err != nil {
		return nil, nil, err
	}
	if !found {
		return nil, nil, ErrNoDetailedItinerary
	}
	return trip, plan, nil
}

func activityKey(a types.Activity) string {
	return types.PoolKey(a.PlaceName, *a.Longitude, *a.Latitude)
}

func stopKey(st types.Stop) string {
	return types.PoolKey(st.Name, st.Longitude(), st.Latitude())
}

// linkActivities points each stop at the curated activity it visits, first by
// name and coordinates, then by name alone when that is unambiguous.
func linkActivities(plan types.DetailedItinerary, located []types.Activity) {
	byKey := make(map[string]uuid.UUID, len(located))
	byName := make(map[string]uuid.UUID, len(located))
	ambiguous := make(map[string]bool)
	for _, a := range located {
		byKey[activityKey(a)] = a.ID
		name := strings.ToLower(a.PlaceName)
		if _, seen := byName[name]; seen {
			ambiguous[name] = true
		}
		byName[name] = a.ID
	}

	for d := range plan {
		for i := range plan[d].Stops {
			st := &plan[d].Stops[i]
			if id, ok := byKey[stopKey(*st)]; ok {
				st.ActivityID = &id
				continue
			}
			name := strings.ToLower(st.Name)
			if id, ok := byName[name]; ok && !ambiguous[name] {
				st.ActivityID = &id
			}
		}
	}
}

// pool returns the located activities the itinerary does not visit yet.
func pool(plan types.DetailedItinerary, located []types.Activity) []types.Activity {
	ids := make(map[uuid.UUID]bool)
	keys := make(map[string]bool)
	for _, day := range plan {
		for _, st := range day.Stops {
			if st.ActivityID != nil {
				ids[*st.ActivityID] = true
			}
			keys[stopKey(st)] = true
		}
	}

	items := make([]types.Activity, 0, len(located))
	for _, a := range located {
		if ids[a.ID] || keys[activityKey(a)] {
			continue
		}
		items = append(items, a)
	}
	return items
}

// PoolItems lists located activities that are not scheduled in the detailed itinerary.
func (s *ServiceImpl) PoolItems(ctx context.Context, userID, tripID uuid.UUID) ([]types.Activity, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "PoolItems")
	defer span.End()

	_, located, err := s.located(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	var plan types.DetailedItinerary
	if _, err = s.repo.GetItinerary(ctx, tripID, ItineraryDetailed, &plan); err != nil {
		return nil, err
	}
	return pool(plan, located), nil
}

func (s *ServiceImpl) AddStopFromPool(ctx context.Context, userID, tripID uuid.UUID, req types.AddStopRequest) (types.DetailedItinerary, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "AddStopFromPool", trace.WithAttributes(
		attribute.String("activity_id", req.ActivityID.String()),
		attribute.Int("day", req.Day),
	))
	defer span.End()

	_, plan, err := s.detailed(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	di := plan.DayIndex(req.Day)
	if di < 0 {
		return nil, ErrDayNotFound
	}
	activities, err := s.repo.ListActivities(ctx, tripID)
	if err != nil {
		return nil, err
	}

	items := pool(plan, locatedActivities(activities))
	idx := slices.IndexFunc(items, func(a types.Activity) bool { return a.ID == req.ActivityID })
	if idx < 0 {
		return nil, ErrActivityNotInPool
	}
	a := items[idx]
	id := a.ID
	plan[di].Stops = append(plan[di].Stops, types.Stop{
		Time:        poolStopTime,
		Type:        poolStopType,
		Name:        a.PlaceName,
		Coordinates: [2]float64{*a.Longitude, *a.Latitude},
		Description: poolStopDescription,
		Zoom:        defaultStopZoom,
		Pitch:       defaultStopPitch,
		ActivityID:  &id,
	})

	if err = s.repo.SaveItinerary(ctx, tripID, ItineraryDetailed, len(plan), plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// stopAt locates a stop by day number and position within the day.
func stopAt(plan types.DetailedItinerary, day, index int) (int, error) {
	di := plan.DayIndex(day)
	if di < 0 {
		return -1, ErrDayNotFound
	}
	if index < 0 || index >= len(plan[di].Stops) {
		return -1, ErrStopNotFound
	}
	return di, nil
}

func (s *ServiceImpl) MoveStop(ctx context.Context, userID, tripID uuid.UUID, day, index int, direction types.MoveDirection) (types.DetailedItinerary, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "MoveStop", trace.WithAttributes(
		attribute.Int("day", day),
		attribute.Int("index", index),
		attribute.String("direction", string(direction)),
	))
	defer span.End()

	var target int
	switch direction {
	case types.MoveUp:
		target = index - 1
	case types.MoveDown:
		target = index + 1
	default:
		return nil, invalid(`direction must be "up" or "down"`)
	}

	_, plan, err := s.detailed(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	di, err := stopAt(plan, day, index)
	if err != nil {
		return nil, err
	}
	stops := plan[di].Stops
	if target < 0 || target >= len(stops) {
		return nil, ErrInvalidMove
	}
	stops[index], stops[target] = stops[target], stops[index]

	if err = s.repo.SaveItinerary(ctx, tripID, ItineraryDetailed, len(plan), plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *ServiceImpl) RemoveStop(ctx context.Context, userID, tripID uuid.UUID, day, index int) (types.DetailedItinerary, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "RemoveStop", trace.WithAttributes(
		attribute.Int("day", day),
		attribute.Int("index", index),
	))
	defer span.End()

	_, plan, err := s.detailed(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	di, err := stopAt(plan, day, index)
	if err != nil {
		return nil, err
	}
	plan[di].Stops = slices.Delete(plan[di].Stops, index, index+1)

	if err = s.repo.SaveItinerary(ctx, tripID, ItineraryDetailed, len(plan), plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// QuickPlan builds a whole trip from a destination and a vibe: the model
// names places, the geocoder locates them and the located ones become the
// curated list of a new trip with a detailed itinerary. When only the
// itinerary step fails the saved trip is returned along with the error.
func (s *ServiceImpl) QuickPlan(ctx context.Context, userID uuid.UUID, req types.QuickPlanRequest) (*types.QuickPlanResponse, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "QuickPlan", trace.WithAttributes(
		attribute.String("destination", req.Destination),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "QuickPlan"))

	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		return nil, invalid("destination is required")
	}
	vibe := strings.TrimSpace(req.Vibe)

	raw, err := s.generateJSON(ctx, llmPrompt.QuickPlacesPrompt(destination, req.Duration, vibe))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	names, err := llmPrompt.ParsePlaceNames(raw)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", ErrLLM, err)
	}

	results := s.geocodeAll(ctx, names)
	var missing []string
	found := make([]types.Suggestion, 0, len(names))
	resultByName := make(map[string]*types.GeocodeResult, len(names))
	for i, name := range names {
		if results[i] == nil {
			missing = append(missing, name)
			continue
		}
		found = append(found, types.Suggestion{PlaceName: name, DisplayText: name})
		resultByName[name] = results[i]
	}
	if len(found) == 0 {
		return nil, ErrNoGeocodedActivities
	}
	l.InfoContext(ctx, "Quick plan places located", slog.Int("found", len(found)), slog.Int("missing", len(missing)))

	var prefs []string
	if vibe != "" {
		prefs = []string{vibe}
	}
	trip, err := s.CreateTrip(ctx, userID, types.CreateTripRequest{
		Destination: destination,
		Duration:    req.Duration,
		Preferences: prefs,
		Budget:      quickPlanBudget,
	})
	if err != nil {
		return nil, err
	}

	added, err := s.repo.AddActivities(ctx, trip.ID, found)
	if err != nil {
		return nil, err
	}
	located := make([]types.Activity, 0, len(added))
	for _, a := range added {
		res := resultByName[a.PlaceName]
		if err = s.repo.UpdateGeocode(ctx, a.ID, types.GeocodeFound, res); err != nil {
			return nil, err
		}
		a.GeocodeStatus = types.GeocodeFound
		a.Latitude, a.Longitude, a.Address = &res.Latitude, &res.Longitude, res.Address
		located = append(located, a)
	}

	numDays := DefaultDayCount(*trip, len(located))
	_, planErr := s.detailedItinerary(ctx, trip, located, numDays)
	if planErr != nil {
		span.RecordError(planErr)
		l.WarnContext(ctx, "Quick plan saved without itinerary", slog.String("trip_id", trip.ID.String()), slog.Any("error", planErr))
	}

	state, err := s.loadState(ctx, trip)
	if err != nil {
		return nil, err
	}
	resp := &types.QuickPlanResponse{State: state, NumDays: numDays, Missing: missing}
	if planErr != nil {
		resp.ItineraryError = planErr.Error()
		return resp, planErr
	}
	return resp, nil
}
