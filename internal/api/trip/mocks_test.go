package trip

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/go-trip-day-planner/internal/types"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) CreateTrip(ctx context.Context, trip *types.Trip) error {
	args := m.Called(ctx, trip)
	if args.Error(0) == nil {
		trip.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *MockRepository) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.Trip, error) {
	args := m.Called(ctx, userID, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockRepository) ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Trip), args.Error(1)
}

func (m *MockRepository) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	return m.Called(ctx, userID, tripID).Error(0)
}

func (m *MockRepository) AppendMessages(ctx context.Context, tripID uuid.UUID, messages ...types.ChatMessage) error {
	return m.Called(ctx, tripID, messages).Error(0)
}

func (m *MockRepository) ListMessages(ctx context.Context, tripID uuid.UUID) ([]types.ChatMessage, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ChatMessage), args.Error(1)
}

func (m *MockRepository) SaveSuggestions(ctx context.Context, tripID uuid.UUID, suggestions []types.Suggestion) error {
	return m.Called(ctx, tripID, suggestions).Error(0)
}

func (m *MockRepository) GetSuggestions(ctx context.Context, tripID uuid.UUID) ([]types.Suggestion, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Suggestion), args.Error(1)
}

func (m *MockRepository) AddActivities(ctx context.Context, tripID uuid.UUID, suggestions []types.Suggestion) ([]types.Activity, error) {
	args := m.Called(ctx, tripID, suggestions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Activity), args.Error(1)
}

func (m *MockRepository) ListActivities(ctx context.Context, tripID uuid.UUID) ([]types.Activity, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Activity), args.Error(1)
}

func (m *MockRepository) DeleteActivity(ctx context.Context, tripID, activityID uuid.UUID) error {
	return m.Called(ctx, tripID, activityID).Error(0)
}

func (m *MockRepository) ClearActivities(ctx context.Context, tripID uuid.UUID) error {
	return m.Called(ctx, tripID).Error(0)
}

func (m *MockRepository) ResetGeocoding(ctx context.Context, tripID uuid.UUID) error {
	return m.Called(ctx, tripID).Error(0)
}

func (m *MockRepository) UpdateGeocode(ctx context.Context, activityID uuid.UUID, status types.GeocodeStatus, result *types.GeocodeResult) error {
	return m.Called(ctx, activityID, status, result).Error(0)
}

func (m *MockRepository) SaveItinerary(ctx context.Context, tripID uuid.UUID, kind ItineraryKind, numDays int, data any) error {
	return m.Called(ctx, tripID, kind, numDays, data).Error(0)
}

// GetItinerary copies the stored value, given as the first return argument, into dst.
func (m *MockRepository) GetItinerary(ctx context.Context, tripID uuid.UUID, kind ItineraryKind, dst any) (bool, error) {
	args := m.Called(ctx, tripID, kind, dst)
	if stored := args.Get(0); stored != nil {
		payload, err := json.Marshal(stored)
		if err != nil {
			return false, err
		}
		if err = json.Unmarshal(payload, dst); err != nil {
			return false, err
		}
		return true, args.Error(1)
	}
	return false, args.Error(1)
}

func (m *MockRepository) DeleteItineraries(ctx context.Context, tripID uuid.UUID) error {
	return m.Called(ctx, tripID).Error(0)
}

type MockLLM struct {
	mock.Mock
}

var _ LLM = (*MockLLM)(nil)

func (m *MockLLM) ChatOnce(ctx context.Context, system string, history []types.ChatMessage, message string) (string, error) {
	args := m.Called(ctx, system, history, message)
	return args.String(0), args.Error(1)
}

func (m *MockLLM) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Geocode(ctx context.Context, place string) (*types.GeocodeResult, error) {
	args := m.Called(ctx, place)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GeocodeResult), args.Error(1)
}

type MockService struct {
	mock.Mock
}

var _ Service = (*MockService)(nil)

func (m *MockService) CreateTrip(ctx context.Context, userID uuid.UUID, req types.CreateTripRequest) (*types.Trip, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockService) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*types.TripState, error) {
	args := m.Called(ctx, userID, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TripState), args.Error(1)
}

func (m *MockService) ListTrips(ctx context.Context, userID uuid.UUID) ([]types.Trip, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Trip), args.Error(1)
}

func (m *MockService) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	return m.Called(ctx, userID, tripID).Error(0)
}

func (m *MockService) Brainstorm(ctx context.Context, userID, tripID uuid.UUID, message string) (*types.BrainstormResponse, error) {
	args := m.Called(ctx, userID, tripID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.BrainstormResponse), args.Error(1)
}

func (m *MockService) AddActivities(ctx context.Context, userID, tripID uuid.UUID, suggestions []types.Suggestion) ([]types.Activity, error) {
	args := m.Called(ctx, userID, tripID, suggestions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Activity), args.Error(1)
}

func (m *MockService) RemoveActivity(ctx context.Context, userID, tripID, activityID uuid.UUID) error {
	return m.Called(ctx, userID, tripID, activityID).Error(0)
}

func (m *MockService) ClearActivities(ctx context.Context, userID, tripID uuid.UUID) error {
	return m.Called(ctx, userID, tripID).Error(0)
}

func (m *MockService) GeocodeActivities(ctx context.Context, userID, tripID uuid.UUID) (*types.GeocodeSummary, error) {
	args := m.Called(ctx, userID, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.GeocodeSummary), args.Error(1)
}

func (m *MockService) GenerateBasicItinerary(ctx context.Context, userID, tripID uuid.UUID, numDays int) (*types.BasicItinerary, error) {
	args := m.Called(ctx, userID, tripID, numDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.BasicItinerary), args.Error(1)
}

func (m *MockService) detailed(args mock.Arguments) (types.DetailedItinerary, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(types.DetailedItinerary), args.Error(1)
}

func (m *MockService) GenerateDetailedItinerary(ctx context.Context, userID, tripID uuid.UUID, numDays int) (types.DetailedItinerary, error) {
	return m.detailed(m.Called(ctx, userID, tripID, numDays))
}

func (m *MockService) ModifyDetailedItinerary(ctx context.Context, userID, tripID uuid.UUID, instruction string) (types.DetailedItinerary, error) {
	return m.detailed(m.Called(ctx, userID, tripID, instruction))
}

func (m *MockService) PoolItems(ctx context.Context, userID, tripID uuid.UUID) ([]types.Activity, error) {
	args := m.Called(ctx, userID, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Activity), args.Error(1)
}

func (m *MockService) AddStopFromPool(ctx context.Context, userID, tripID uuid.UUID, req types.AddStopRequest) (types.DetailedItinerary, error) {
	return m.detailed(m.Called(ctx, userID, tripID, req))
}

func (m *MockService) MoveStop(ctx context.Context, userID, tripID uuid.UUID, day, index int, direction types.MoveDirection) (types.DetailedItinerary, error) {
	return m.detailed(m.Called(ctx, userID, tripID, day, index, direction))
}

func (m *MockService) RemoveStop(ctx context.Context, userID, tripID uuid.UUID, day, index int) (types.DetailedItinerary, error) {
	return m.detailed(m.Called(ctx, userID, tripID, day, index))
}

func (m *MockService) QuickPlan(ctx context.Context, userID uuid.UUID, req types.QuickPlanRequest) (*types.QuickPlanResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.QuickPlanResponse), args.Error(1)
}

func (m *MockService) ClusterRecords(ctx context.Context, req types.ClusterRequest) (*types.ClusterResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ClusterResponse), args.Error(1)
}
