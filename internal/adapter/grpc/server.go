package grpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/pemetrics-backend/internal/domain"
	"github.com/simaogato/pemetrics-backend/internal/usecase/dashboard"
	"github.com/simaogato/pemetrics-backend/internal/usecase/filter"
	"github.com/simaogato/pemetrics-backend/internal/usecase/session"
)

// Server implements the MetricsService gRPC server
type Server struct {
	Session          *session.Session
	DashboardService *dashboard.DashboardService
}

// NewServer creates a new gRPC server instance
func NewServer(sess *session.Session, dashboardService *dashboard.DashboardService) *Server {
	return &Server{
		Session:          sess,
		DashboardService: dashboardService,
	}
}

// ImportSheets handles the ImportSheets RPC
func (s *Server) ImportSheets(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	sheets, err := sheetsFromStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	batch, err := s.Session.Import(ctx, sheets...)
	if err != nil {
		return nil, mapError(err)
	}

	return structpb.NewStruct(map[string]any{
		"batch_id":    batch.ID.String(),
		"imported_at": timestamp(batch.ImportedAt),
		"profiles":    stringList(batch.Result.Profiles),
		"records":     len(batch.Result.Records),
		"rejected":    stringList(batch.Result.Errors()),
	})
}

// AddManualRecord handles the AddManualRecord RPC.
// The request fields are the canonical columns of one record.
func (s *Server) AddManualRecord(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	entry, err := s.Session.AddManual(ctx, req.AsMap())
	if err != nil {
		return nil, mapError(err)
	}

	return structpb.NewStruct(map[string]any{
		"entry_id":   entry.ID.String(),
		"entered_at": timestamp(entry.EnteredAt),
		"name":       entry.Record.Name,
	})
}

// ClearManualRecords handles the ClearManualRecords RPC.
// With "include_import": true the import batch is dropped as well.
func (s *Server) ClearManualRecords(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if err := s.Session.ClearManual(ctx); err != nil {
		return nil, mapError(err)
	}

	includeImport := req.GetFields()["include_import"].GetBoolValue()
	if includeImport {
		s.Session.ClearImport()
	}

	return structpb.NewStruct(map[string]any{
		"cleared":        true,
		"import_cleared": includeImport,
	})
}

// ComputeMetrics handles the ComputeMetrics RPC
func (s *Server) ComputeMetrics(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	query, err := queryParamsFromStruct(req).Query()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	report, err := s.DashboardService.Compute(ctx, query)
	if err != nil {
		return nil, mapError(err)
	}

	out, err := reportToStruct(report)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode report: %v", err)
	}
	return out, nil
}

// ListFunds handles the ListFunds RPC
func (s *Server) ListFunds(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	records, err := s.Session.Records(ctx)
	if err != nil {
		return nil, mapError(err)
	}

	return structpb.NewStruct(map[string]any{
		"funds": stringList(filter.Funds(records)),
	})
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var schemaErr *domain.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrInvalidManualEntry):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	errorMsg := err.Error()

	// Remaining validation failures surface as plain messages
	if strings.Contains(errorMsg, "invalid") ||
		strings.Contains(errorMsg, "requires") ||
		strings.Contains(errorMsg, "must") {
		return status.Error(codes.InvalidArgument, errorMsg)
	}

	return status.Error(codes.Internal, errorMsg)
}
