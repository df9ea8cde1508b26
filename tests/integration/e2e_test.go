//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	grpcadapter "github.com/simaogato/pemetrics-backend/internal/adapter/grpc"
)

var (
	grpcClient *grpcadapter.MetricsServiceClient
	grpcConn   *grpc.ClientConn
	httpBase   string
)

// TestMain connects to a running server
func TestMain(m *testing.M) {
	var err error
	grpcConn, err = grpc.NewClient(getGRPCAddress(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to gRPC server: %v", err))
	}

	grpcClient = grpcadapter.NewMetricsServiceClient(grpcConn)
	httpBase = getHTTPAddress()

	code := m.Run()

	grpcConn.Close()
	os.Exit(code)
}

// getGRPCAddress returns the gRPC server address from environment or defaults
func getGRPCAddress() string {
	addr := os.Getenv("GRPC_ADDRESS")
	if addr == "" {
		addr = "localhost:8080"
	}
	return addr
}

// getHTTPAddress returns the HTTP base URL from environment or defaults
func getHTTPAddress() string {
	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = "http://localhost:8081"
	}
	return addr
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func getJSON(t *testing.T, path string) (int, map[string]any) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, httpBase+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

// TestEndToEndFlow tests the complete flow: Import -> Manual entry -> Compute -> Clear
func TestEndToEndFlow(t *testing.T) {
	ctx := context.Background()

	// Start from an empty session
	_, err := grpcClient.ClearManualRecords(ctx, mustStruct(t, map[string]any{"include_import": true}))
	require.NoError(t, err)

	// Step A: Import a schedule with one malformed row
	imported, err := grpcClient.ImportSheets(ctx, mustStruct(t, map[string]any{
		"sheets": []any{
			map[string]any{
				"name":    "Schedule of investments",
				"columns": []any{"Investment Name", "Fund", "Cost", "Fair Value", "Status", "Valuation Date"},
				"rows": []any{
					map[string]any{"Investment Name": "First", "Fund": "Fund I", "Cost": "1,000", "Fair Value": "1,500", "Status": "unrealized", "Valuation Date": "2020-01-01"},
					map[string]any{"Investment Name": "Second", "Fund": "Fund I", "Cost": "2,000", "Fair Value": "1,800", "Status": "realized", "Valuation Date": "2021-01-01"},
					map[string]any{"Investment Name": "Broken", "Fund": "Fund II", "Cost": "-5", "Fair Value": "1", "Valuation Date": "2021-01-01"},
				},
			},
		},
	}))
	require.NoError(t, err, "ImportSheets should succeed")
	assert.Equal(t, float64(2), imported.GetFields()["records"].GetNumberValue())
	assert.Len(t, imported.GetFields()["rejected"].GetListValue().GetValues(), 1)

	// Step B: Add a manual record in another fund
	_, err = grpcClient.AddManualRecord(ctx, mustStruct(t, map[string]any{
		"name": "Manual", "fund": "Fund II", "cost": 500, "fair_value": 1000, "date": "2022-06-30",
	}))
	require.NoError(t, err, "AddManualRecord should succeed")

	// Step C: Compute over gRPC with a fund filter
	computed, err := grpcClient.ComputeMetrics(ctx, mustStruct(t, map[string]any{"funds": []any{"Fund I"}}))
	require.NoError(t, err, "ComputeMetrics should succeed")
	portfolio := computed.GetFields()["portfolio"].GetStructValue().GetFields()
	assert.Equal(t, "3000", portfolio["total_cost"].GetStringValue())
	assert.InDelta(t, 1.1, portfolio["moic"].GetNumberValue(), 1e-9)
	assert.Equal(t, "solved", portfolio["irr_status"].GetStringValue())

	// Step D: The HTTP API sees the same session
	code, body := getJSON(t, "/api/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["portfolio"].(map[string]any)["count"])

	code, body = getJSON(t, "/api/funds")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"Fund I", "Fund II"}, body["funds"])

	code, body = getJSON(t, "/api/metrics?period=fortnight")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "invalid period")

	// Step E: Clearing manual records keeps the import
	_, err = grpcClient.ClearManualRecords(ctx, nil)
	require.NoError(t, err)

	funds, err := grpcClient.ListFunds(ctx, nil)
	require.NoError(t, err)
	require.Len(t, funds.GetFields()["funds"].GetListValue().GetValues(), 1)
}

// TestInvalidRequests verifies error mapping over the wire
func TestInvalidRequests(t *testing.T) {
	ctx := context.Background()

	_, err := grpcClient.ImportSheets(ctx, mustStruct(t, map[string]any{
		"sheets": []any{map[string]any{"name": "unknown", "columns": []any{"Foo", "Bar"}}},
	}))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = grpcClient.AddManualRecord(ctx, mustStruct(t, map[string]any{"name": "Incomplete"}))
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
