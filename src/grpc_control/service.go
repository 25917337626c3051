package grpc_control

import (
	"context"
	"errors"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/stores"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ControlService implements PollingControlServer on top of the dashboard facade
type ControlService struct {
	UnimplementedPollingControlServer
	Store          *stores.CryptoStore
	Logger         *logger.Logger
	RefreshTimeout time.Duration
}

// NewControlService creates a new instance of ControlService
func NewControlService(store *stores.CryptoStore, refreshTimeout time.Duration, log *logger.Logger) *ControlService {
	return &ControlService{
		Store:          store,
		Logger:         log,
		RefreshTimeout: refreshTimeout,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) status() (*structpb.Struct, error) {
	fields := map[string]any{
		"is_polling":        s.Store.IsPolling(),
		"interval_ms":       s.Store.PollingInterval().Milliseconds(),
		"time_remaining":    s.Store.TimeRemaining(),
		"selected_currency": s.Store.SelectedCurrency(),
		"loading":           s.Store.Loading(),
		"next_update_at":    nil,
		"last_update":       nil,
		"error":             nil,
	}
	if at, ok := s.Store.Market.NextUpdateAt(); ok {
		fields["next_update_at"] = at.UTC().Format(time.RFC3339)
	}
	if last := s.Store.LastUpdate(); last != nil {
		fields["last_update"] = last.UTC().Format(time.RFC3339)
	}
	if view := s.Store.ErrorView(); view != nil {
		fields["error"] = map[string]any{
			"code":     view.Code,
			"message":  view.Message,
			"friendly": view.Friendly,
		}
	}

	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	return out, nil
}

// toStatus maps store errors onto gRPC codes
func toStatus(err error) error {
	if errors.Is(err, helpers.ErrInvalidArgument) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	return s.status()
}

// -----------------------------------------------------------------------------

// StartPolling starts or restarts polling. A zero interval selects the default.
func (s *ControlService) StartPolling(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	ms := req.GetValue()
	if ms < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "interval must not be negative, got %d", ms)
	}

	if err := s.Store.StartAutoRefresh(time.Duration(ms) * time.Millisecond); err != nil {
		s.Logger.Error("gRPC: Failed to start polling: %v", err)
		return nil, toStatus(err)
	}
	s.Logger.Info("gRPC: Polling started every %v", s.Store.PollingInterval())
	return s.status()
}

// -----------------------------------------------------------------------------

func (s *ControlService) StopPolling(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	s.Store.StopAutoRefresh()
	s.Logger.Info("gRPC: Polling stopped")
	return s.status()
}

// -----------------------------------------------------------------------------

// UpdateInterval restarts active polling with the new interval, or stores it
// for the next start when idle
func (s *ControlService) UpdateInterval(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	ms := req.GetValue()
	if ms <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "interval must be positive, got %d", ms)
	}

	if err := s.Store.Market.UpdatePollingInterval(time.Duration(ms) * time.Millisecond); err != nil {
		s.Logger.Error("gRPC: Failed to update polling interval: %v", err)
		return nil, toStatus(err)
	}
	return s.status()
}

// -----------------------------------------------------------------------------

// RefreshNow reloads currencies then market data, reporting whether both
// fetches succeeded
func (s *ControlService) RefreshNow(ctx context.Context, req *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	if s.RefreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.RefreshTimeout)
		defer cancel()
	}

	ok := s.Store.Refresh(ctx)
	if !ok {
		s.Logger.Warning("gRPC: Refresh completed with errors")
	}
	return wrapperspb.Bool(ok), nil
}

// -----------------------------------------------------------------------------

func (s *ControlService) ChangeCurrency(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	code := req.GetValue()
	if code == "" {
		return nil, status.Error(codes.InvalidArgument, "currency code is required")
	}
	if !s.Store.ChangeCurrency(ctx, code) {
		return nil, status.Errorf(codes.InvalidArgument, "invalid secondary currency code %q", code)
	}
	return wrapperspb.String(s.Store.SelectedCurrency()), nil
}
