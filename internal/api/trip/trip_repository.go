package trip

import (
	"context"
	"encoding/json"
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
	"github.com/FACorreiaa/go-trip-day-planner/internal/types"
)

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type ItineraryKind string

const (
	ItineraryBasic    ItineraryKind = "basic"
	ItineraryDetailed ItineraryKind = "detailed"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	CreateTrip(ctx context.Context, trip *types.Trip) error
	GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error)
	ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error)
	DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error

	AppendMessages(ctx context.Context, tripID uuid.UUID, messages ...types.ChatMessage) error
	ListMessages(ctx context.Context, tripID uuid.UUID) ([]types.ChatMessage, error)
	SaveSuggestions(ctx context.Context, tripID uuid.UUID, suggestions []types.Suggestion) error
	GetSuggestions(ctx context.Context, tripID uuid.UUID) ([]types.Suggestion, error)

	AddActivities(ctx context.Context, tripID uuid.UUID, suggestions []types.Suggestion) ([]types.Activity, error)
	ListActivities(ctx context.Context, tripID uuid.UUID) ([]types.Activity, error)
	DeleteActivity(ctx context.Context, tripID, activityID uuid.UUID) error
	ClearActivities(ctx context.Context, tripID uuid.UUID) error
	ResetGeocoding(ctx context.Context, tripID uuid.UUID) error
	UpdateGeocode(ctx context.Context, activityID uuid.UUID, status types.GeocodeStatus, result *types.GeocodeResult) error

	SaveItinerary(ctx context.Context, tripID uuid.UUID, kind ItineraryKind, numDays int, data any) error
	GetItinerary(ctx context.Context, tripID uuid.UUID, kind ItineraryKind, dst any) (bool, error)
	DeleteItineraries(ctx context.Context, tripID uuid.UUID) error
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

// observe records query latency and errors for one repository call.
func (r *RepositoryImpl) observe(ctx context.Context, span trace.Span, op string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("operation", op))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil && !errors.Is(err, ErrTripNotFound) && !errors.Is(err, ErrActivityNotFound) {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
		r.logger.ErrorContext(ctx, "Database operation failed", slog.String("method", op), slog.Any("error", err))
	}
}

func (r *RepositoryImpl) CreateTrip(ctx context.Context, trip *types.Trip) (err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "CreateTrip", trace.WithAttributes(
		attribute.String("user_id", trip.UserID.String()),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "CreateTrip", start, err) }(time.Now())

	query := `
		INSERT INTO trips (user_id, destination, duration, preferences, budget)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	prefs := trip.Preferences
	if prefs == nil {
		prefs = []string{}
	}
	err = r.db.QueryRow(ctx, query, trip.UserID, trip.Destination, trip.Duration, prefs, trip.Budget).
		Scan(&trip.ID, &trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	trip.Preferences = prefs
	return nil
}

const tripColumns = `id, user_id, destination, duration, preferences, budget, created_at, updated_at`

func scanTrip(row pgx.Row) (*types.Trip, error) {
	var t types.Trip
	if err := row.Scan(&t.ID, &t.UserID, &t.Destination, &t.Duration, &t.Preferences, &t.Budget, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RepositoryImpl) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (_ *types.Trip, err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "GetTrip", trace.WithAttributes(
		attribute.String("trip_id", tripID.String()),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "GetTrip", start, err) }(time.Now())

	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 AND user_id = $2`
	t, err := scanTrip(r.db.QueryRow(ctx, query, tripID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return t, nil
}

func (r *RepositoryImpl) ListTrips(ctx context.Context, userID uuid.UUID) (_ []types.Trip, err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "ListTrips", trace.WithAttributes(
		attribute.String("user_id", userID.String()),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "ListTrips", start, err) }(time.Now())

	query := `SELECT ` + tripColumns + ` FROM trips WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	trips := []types.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trips: %w", err)
	}
	span.SetAttributes(attribute.Int("results.count", len(trips)))
	return trips, nil
}

func (r *RepositoryImpl) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) (err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "DeleteTrip")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "DeleteTrip", start, err) }(time.Now())

	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTripNotFound
	}
	return nil
}

func (r *RepositoryImpl) AppendMessages(ctx context.Context, tripID uuid.UUID, messages ...types.ChatMessage) (err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "AppendMessages", trace.WithAttributes(
		attribute.Int("messages.count", len(messages)),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "AppendMessages", start, err) }(time.Now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, m := range messages {
		if _, err = tx.Exec(ctx, `INSERT INTO trip_messages (trip_id, role, content) VALUES ($1, $2, $3)`,
			tripID, string(m.Role), m.Content); err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}
	}
	if _, err = tx.Exec(ctx, `UPDATE trips SET updated_at = now() WHERE id = $1`, tripID); err != nil {
		return fmt.Errorf("failed to touch trip: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit messages: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) ListMessages(ctx context.Context, tripID uuid.UUID) (_ []types.ChatMessage, err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "ListMessages")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "ListMessages", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, `SELECT role, content, created_at FROM trip_messages WHERE trip_id = $1 ORDER BY id`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	messages := []types.ChatMessage{}
	for rows.Next() {
		var m types.ChatMessage
		var role string
		if err = rows.Scan(&role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = types.MessageRole(role)
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}
	return messages, nil
}

func (r *RepositoryImpl) SaveSuggestions(ctx context.Context, tripID uuid.UUID, suggestions []types.Suggestion) (err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "SaveSuggestions")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "SaveSuggestions", start, err) }(time.Now())

	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}
	payload, err := json.Marshal(suggestions)
	if err != nil {
		return fmt.Errorf("failed to marshal suggestions: %w", err)
	}
	if _, err = r.db.Exec(ctx, `UPDATE trips SET suggestions = $2, updated_at = now() WHERE id = $1`, tripID, payload); err != nil {
		return fmt.Errorf("failed to save suggestions: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) GetSuggestions(ctx context.Context, tripID uuid.UUID) (_ []types.Suggestion, err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "GetSuggestions")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "GetSuggestions", start, err) }(time.Now())

	var payload []byte
	err = r.db.QueryRow(ctx, `SELECT suggestions FROM trips WHERE id = $1`, tripID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestions: %w", err)
	}
	suggestions := []types.Suggestion{}
	if len(payload) > 0 {
		if err = json.Unmarshal(payload, &suggestions); err != nil {
			return nil, fmt.Errorf("failed to decode suggestions: %w", err)
		}
	}
	return suggestions, nil
}

const activityColumns = `id, trip_id, position, display_text, place_name, latitude, longitude, address, geocode_status, created_at`

func scanActivity(row pgx.Row) (types.Activity, error) {
	var a types.Activity
	var status string
	err := row.Scan(&a.ID, &a.TripID, &a.Position, &a.DisplayText, &a.PlaceName,
		&a.Latitude, &a.Longitude, &a.Address, &status, &a.CreatedAt)
	a.GeocodeStatus = types.GeocodeStatus(status)
	return a, err
}

// AddActivities appends the suggestions to the curated list. A display text
// already on the list is skipped; only new rows are returned.
func (r *RepositoryImpl) AddActivities(ctx context.Context, tripID uuid.UUID, suggestions []types.Suggestion) (_ []types.Activity, err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "AddActivities", trace.WithAttributes(
		attribute.Int("suggestions.count", len(suggestions)),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "AddActivities", start, err) }(time.Now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var position int
	if err = tx.QueryRow(ctx, `SELECT COALESCE(MAX(position), 0) FROM trip_activities WHERE trip_id = $1`, tripID).
		Scan(&position); err != nil {
		return nil, fmt.Errorf("failed to read activity position: %w", err)
	}

	query := `
		INSERT INTO trip_activities (trip_id, position, display_text, place_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (trip_id, display_text) DO NOTHING
		RETURNING ` + activityColumns

	added := []types.Activity{}
	for _, s := range suggestions {
		a, err := scanActivity(tx.QueryRow(ctx, query, tripID, position+1, s.DisplayText, s.PlaceName))
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to insert activity: %w", err)
		}
		position++
		added = append(added, a)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit activities: %w", err)
	}
	return added, nil
}

func (r *RepositoryImpl) ListActivities(ctx context.Context, tripID uuid.UUID) (_ []types.Activity, err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "ListActivities")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "ListActivities", start, err) }(time.Now())

	rows, err := r.db.Query(ctx, `SELECT `+activityColumns+` FROM trip_activities WHERE trip_id = $1 ORDER BY position`, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []types.Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}
	return activities, nil
}

func (r *RepositoryImpl) DeleteActivity(ctx context.Context, tripID, activityID uuid.UUID) (err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "DeleteActivity")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "DeleteActivity", start, err) }(time.Now())

	tag, err := r.db.Exec(ctx, `DELETE FROM trip_activities WHERE trip_id = $1 AND id = $2`, tripID, activityID)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// ClearActivities empties the curated list and drops both itineraries built from it.
func (r *RepositoryImpl) ClearActivities(ctx context.Context, tripID uuid.UUID) (err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "ClearActivities")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "ClearActivities", start, err) }(time.Now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `DELETE FROM trip_activities WHERE trip_id = $1`, tripID); err != nil {
		return fmt.Errorf("failed to clear activities: %w", err)
	}
	if _, err = tx.Exec(ctx, `DELETE FROM trip_itineraries WHERE trip_id = $1`, tripID); err != nil {
		return fmt.Errorf("failed to clear itineraries: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) ResetGeocoding(ctx context.Context, tripID uuid.UUID) (err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "ResetGeocoding")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "ResetGeocoding", start, err) }(time.Now())

	query := `
		UPDATE trip_activities
		SET geocode_status = 'pending', latitude = NULL, longitude = NULL, address = ''
		WHERE trip_id = $1`
	if _, err = r.db.Exec(ctx, query, tripID); err != nil {
		return fmt.Errorf("failed to reset geocoding: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) UpdateGeocode(ctx context.Context, activityID uuid.UUID, status types.GeocodeStatus, result *types.GeocodeResult) (err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "UpdateGeocode", trace.WithAttributes(
		attribute.String("status", string(status)),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "UpdateGeocode", start, err) }(time.Now())

	var lat, lon *float64
	address := ""
	if result != nil {
		lat, lon, address = &result.Latitude, &result.Longitude, result.Address
	}

	query := `
		UPDATE trip_activities
		SET geocode_status = $2, latitude = $3, longitude = $4, address = $5
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, activityID, string(status), lat, lon, address)
	if err != nil {
		return fmt.Errorf("failed to update geocode: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrActivityNotFound
	}
	return nil
}

func (r *RepositoryImpl) SaveItinerary(ctx context.Context, tripID uuid.UUID, kind ItineraryKind, numDays int, data any) (err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "SaveItinerary", trace.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.Int("num_days", numDays),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "SaveItinerary", start, err) }(time.Now())

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal itinerary: %w", err)
	}
	query := `
		INSERT INTO trip_itineraries (trip_id, kind, num_days, data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (trip_id, kind) DO UPDATE
		SET num_days = EXCLUDED.num_days, data = EXCLUDED.data, updated_at = now()`
	if _, err = r.db.Exec(ctx, query, tripID, string(kind), numDays, payload); err != nil {
		return fmt.Errorf("failed to save itinerary: %w", err)
	}
	return nil
}

// GetItinerary decodes the stored itinerary of kind into dst and reports whether one exists.
func (r *RepositoryImpl) GetItinerary(ctx context.Context, tripID uuid.UUID, kind ItineraryKind, dst any) (_ bool, err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "GetItinerary", trace.WithAttributes(
		attribute.String("kind", string(kind)),
	))
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "GetItinerary", start, err) }(time.Now())

	var payload []byte
	err = r.db.QueryRow(ctx, `SELECT data FROM trip_itineraries WHERE trip_id = $1 AND kind = $2`, tripID, string(kind)).
		Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get itinerary: %w", err)
	}
	if err = json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("failed to decode itinerary: %w", err)
	}
	return true, nil
}

func (r *RepositoryImpl) DeleteItineraries(ctx context.Context, tripID uuid.UUID) (err error) {
	ctx, span := otel.Tracer("TripRepository").Start(ctx, "DeleteItineraries")
	defer span.End()
	defer func(start time.Time) { r.observe(ctx, span, "DeleteItineraries", start, err) }(time.Now())

	if _, err = r.db.Exec(ctx, `DELETE FROM trip_itineraries WHERE trip_id = $1`, tripID); err != nil {
		return fmt.Errorf("failed to delete itineraries: %w", err)
	}
	return nil
}
