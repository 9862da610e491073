// Package integration provides end-to-end integration tests for the snapshot API.
// Tests all API endpoints against both PostgreSQL and MySQL databases.
package integration

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hash066/biavault/internal/app"
	auditDTO "github.com/hash066/biavault/internal/audit/http/dto"
	"github.com/hash066/biavault/internal/config"
	snapshotDTO "github.com/hash066/biavault/internal/snapshot/http/dto"
	"github.com/hash066/biavault/internal/testutil"
)

const testActorID = "integration-tester"

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container *app.Container
	db        *sql.DB
	server    *httptest.Server
	tenantID  uuid.UUID
	dbDriver  string
}

// makeRequest performs an HTTP request and returns the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Actor-ID", testActorID)

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	if closeErr := resp.Body.Close(); closeErr != nil {
		t.Logf("Warning: failed to close response body: %v", closeErr)
	}

	return resp, respBody
}

// tenantPath builds a path under the test tenant's API prefix.
func (ctx *integrationTestContext) tenantPath(suffix string) string {
	return fmt.Sprintf("/v1/tenants/%s%s", ctx.tenantID, suffix)
}

// generateMasterSecret returns a fresh base64-encoded 32-byte master secret.
func generateMasterSecret() string {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(fmt.Sprintf("failed to generate master secret: %v", err))
	}
	return base64.StdEncoding.EncodeToString(secret)
}

// setupIntegrationTest initializes all components for integration testing.
func setupIntegrationTest(t *testing.T, dbDriver string) *integrationTestContext {
	t.Helper()

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	// Setup database
	var db *sql.DB
	var dsn string
	if dbDriver == "postgres" {
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	}

	// Create configuration with an ephemeral master secret
	cfg := &config.Config{
		ServerHost:           "localhost",
		ServerPort:           8080,
		DBDriver:             dbDriver,
		DBConnectionString:   dsn,
		DBMaxOpenConnections: 10,
		DBMaxIdleConnections: 5,
		DBConnMaxLifetime:    time.Hour,
		LogLevel:             "error",
		MasterSecret:         generateMasterSecret(),
		DefaultKeyVersion:    1,
		EncryptionAlgorithm:  "aes-gcm",
		MaxPayloadBytes:      4 * 1024 * 1024,
		SaveRetryMaxAttempts: 3,
		SaveRetryBaseBackoff: 25 * time.Millisecond,
		ViewCacheTTL:         5 * time.Minute,
		AuditRetentionMonths: 24,
	}

	// Create DI container
	container := app.NewContainer(cfg)

	// Setup HTTP server
	httpSrv, err := container.HTTPServer()
	require.NoError(t, err, "failed to get HTTP server")

	handler := httpSrv.GetHandler()
	require.NotNil(t, handler, "handler should not be nil")

	testServer := httptest.NewServer(handler)

	return &integrationTestContext{
		container: container,
		db:        db,
		server:    testServer,
		tenantID:  uuid.New(),
		dbDriver:  dbDriver,
	}
}

// teardownIntegrationTest cleans up all resources.
func teardownIntegrationTest(t *testing.T, ctx *integrationTestContext) {
	t.Helper()

	if ctx.server != nil {
		ctx.server.Close()
	}

	if ctx.container != nil {
		if err := ctx.container.Shutdown(context.Background()); err != nil {
			t.Logf("Warning: container shutdown error: %v", err)
		}
	}

	if ctx.db != nil {
		testutil.TeardownDB(t, ctx.db)
	}
}

func driverTestCases() []struct{ name, dbDriver string } {
	return []struct{ name, dbDriver string }{
		{name: "PostgreSQL", dbDriver: "postgres"},
		{name: "MySQL", dbDriver: "mysql"},
	}
}

// TestIntegration_Health_BasicChecks validates health and readiness endpoints.
func TestIntegration_Health_BasicChecks(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range driverTestCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			resp, _ := ctx.makeRequest(t, http.MethodGet, "/health", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			resp, _ = ctx.makeRequest(t, http.MethodGet, "/ready", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		})
	}
}

// TestIntegration_Snapshots_CompleteFlow exercises the full snapshot lifecycle:
// save, list, read latest, read by version, rollback, review, key rotation.
func TestIntegration_Snapshots_CompleteFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range driverTestCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			payloadV1 := json.RawMessage(`{"processes":[{"name":"billing","category":"finance","impact":"high","depends_on":[]}]}`)
			payloadV2 := json.RawMessage(`{"processes":[{"name":"billing","category":"finance","impact":"critical","depends_on":["payments"]}]}`)

			// Save first version
			resp, body := ctx.makeRequest(t, http.MethodPost, ctx.tenantPath("/snapshots"), snapshotDTO.SaveSnapshotRequest{
				Payload:     payloadV1,
				Source:      "HUMAN",
				RecordCount: 1,
				Notes:       "initial import",
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

			var saved snapshotDTO.SnapshotResponse
			require.NoError(t, json.Unmarshal(body, &saved))
			assert.Equal(t, uint64(1), saved.Version)
			assert.Equal(t, 1, saved.KeyVersion)
			assert.Equal(t, testActorID, saved.SavedBy)
			assert.Empty(t, saved.Payload, "write responses must not echo the payload")

			// Save second version
			resp, body = ctx.makeRequest(t, http.MethodPost, ctx.tenantPath("/snapshots"), snapshotDTO.SaveSnapshotRequest{
				Payload:     payloadV2,
				Source:      "AI",
				RecordCount: 1,
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
			require.NoError(t, json.Unmarshal(body, &saved))
			assert.Equal(t, uint64(2), saved.Version)

			// Read latest: decrypted payload round-trips
			resp, body = ctx.makeRequest(t, http.MethodGet, ctx.tenantPath("/snapshots/latest"), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

			var read snapshotDTO.SnapshotResponse
			require.NoError(t, json.Unmarshal(body, &read))
			assert.Equal(t, uint64(2), read.Version)
			assert.JSONEq(t, string(payloadV2), string(read.Payload))

			// Read first version
			resp, body = ctx.makeRequest(t, http.MethodGet, ctx.tenantPath("/snapshots/1"), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
			require.NoError(t, json.Unmarshal(body, &read))
			assert.Equal(t, uint64(1), read.Version)
			assert.JSONEq(t, string(payloadV1), string(read.Payload))

			// List newest first, payloads stay encrypted
			resp, body = ctx.makeRequest(t, http.MethodGet, ctx.tenantPath("/snapshots"), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var list snapshotDTO.ListSnapshotsResponse
			require.NoError(t, json.Unmarshal(body, &list))
			require.Len(t, list.Data, 2)
			assert.Equal(t, uint64(2), list.Data[0].Version)
			assert.Equal(t, uint64(1), list.Data[1].Version)
			assert.Empty(t, list.Data[0].Payload)

			// Rollback to version 1 creates version 3 with version 1's payload
			resp, body = ctx.makeRequest(t, http.MethodPost, ctx.tenantPath("/snapshots/1/rollback"), snapshotDTO.RollbackRequest{
				Note: "revert bad import",
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
			require.NoError(t, json.Unmarshal(body, &saved))
			assert.Equal(t, uint64(3), saved.Version)

			resp, body = ctx.makeRequest(t, http.MethodGet, ctx.tenantPath("/snapshots/latest"), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.NoError(t, json.Unmarshal(body, &read))
			assert.JSONEq(t, string(payloadV1), string(read.Payload))

			// Review actions
			resp, _ = ctx.makeRequest(t, http.MethodPost, ctx.tenantPath("/snapshots/3/approve"), snapshotDTO.ReviewRequest{Note: "looks right"})
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)

			resp, _ = ctx.makeRequest(t, http.MethodPost, ctx.tenantPath("/snapshots/2/reject"), snapshotDTO.ReviewRequest{Note: "wrong impact"})
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)

			// Rotate the tenant key, then confirm old versions stay readable
			// and new writes pick up the bumped key version.
			resp, body = ctx.makeRequest(t, http.MethodPost, ctx.tenantPath("/key-rotations"), nil)
			require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)

			var key snapshotDTO.TenantKeyResponse
			require.NoError(t, json.Unmarshal(body, &key))
			assert.Equal(t, 2, key.KeyVersion)

			resp, body = ctx.makeRequest(t, http.MethodGet, ctx.tenantPath("/snapshots/1"), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
			require.NoError(t, json.Unmarshal(body, &read))
			assert.Equal(t, 1, read.KeyVersion)

			resp, body = ctx.makeRequest(t, http.MethodPost, ctx.tenantPath("/snapshots"), snapshotDTO.SaveSnapshotRequest{
				Payload: payloadV2,
				Source:  "HUMAN",
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			require.NoError(t, json.Unmarshal(body, &saved))
			assert.Equal(t, 2, saved.KeyVersion)
		})
	}
}

// TestIntegration_Snapshots_ErrorHandling validates error responses.
func TestIntegration_Snapshots_ErrorHandling(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range driverTestCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			// Unknown tenant has no snapshots
			resp, _ := ctx.makeRequest(t, http.MethodGet, ctx.tenantPath("/snapshots/latest"), nil)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)

			// Malformed payload is rejected before any write
			resp, _ = ctx.makeRequest(t, http.MethodPost, ctx.tenantPath("/snapshots"), map[string]any{
				"payload": "not-json-object",
				"source":  "HUMAN",
			})
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			// Rollback to a version that does not exist
			resp, _ = ctx.makeRequest(t, http.MethodPost, ctx.tenantPath("/snapshots/99/rollback"), nil)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)

			// Missing actor header
			req, err := http.NewRequest(http.MethodGet, ctx.server.URL+ctx.tenantPath("/snapshots"), nil)
			require.NoError(t, err)
			httpResp, err := (&http.Client{Timeout: 10 * time.Second}).Do(req)
			require.NoError(t, err)
			defer func() { _ = httpResp.Body.Close() }()
			assert.Equal(t, http.StatusUnprocessableEntity, httpResp.StatusCode)
		})
	}
}

// TestIntegration_Tenant_Isolation verifies one tenant cannot read another's data.
func TestIntegration_Tenant_Isolation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range driverTestCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			payload := json.RawMessage(`{"processes":[]}`)
			resp, _ := ctx.makeRequest(t, http.MethodPost, ctx.tenantPath("/snapshots"), snapshotDTO.SaveSnapshotRequest{
				Payload: payload,
				Source:  "HUMAN",
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			otherTenant := uuid.New()
			resp, _ = ctx.makeRequest(t, http.MethodGet, fmt.Sprintf("/v1/tenants/%s/snapshots/latest", otherTenant), nil)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)

			resp, body := ctx.makeRequest(t, http.MethodGet, fmt.Sprintf("/v1/tenants/%s/snapshots", otherTenant), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var list snapshotDTO.ListSnapshotsResponse
			require.NoError(t, json.Unmarshal(body, &list))
			assert.Empty(t, list.Data)
		})
	}
}

// TestIntegration_AuditEntries_Flow verifies the audit trail written by the
// snapshot pipeline and the tenant time-range query endpoint.
func TestIntegration_AuditEntries_Flow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range driverTestCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			payload := json.RawMessage(`{"processes":[]}`)
			resp, _ := ctx.makeRequest(t, http.MethodPost, ctx.tenantPath("/snapshots"), snapshotDTO.SaveSnapshotRequest{
				Payload: payload,
				Source:  "HUMAN",
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			resp, _ = ctx.makeRequest(t, http.MethodGet, ctx.tenantPath("/snapshots/latest"), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			resp, body := ctx.makeRequest(t, http.MethodGet, ctx.tenantPath("/audit-entries"), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

			var entries auditDTO.ListAuditEntriesResponse
			require.NoError(t, json.Unmarshal(body, &entries))
			require.Len(t, entries.Data, 2, "save and read must both be audited")

			// Newest first: READ then SAVE
			assert.Equal(t, "READ", entries.Data[0].Action)
			assert.Equal(t, "SAVE", entries.Data[1].Action)
			for _, entry := range entries.Data {
				assert.Equal(t, testActorID, entry.ActorID)
				assert.NotEmpty(t, entry.Signature)
			}

			// Time-range filter excluding everything
			resp, body = ctx.makeRequest(t, http.MethodGet,
				ctx.tenantPath("/audit-entries?start=2000-01-01T00:00:00Z&end=2000-01-02T00:00:00Z"), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.NoError(t, json.Unmarshal(body, &entries))
			assert.Empty(t, entries.Data)
		})
	}
}

// TestIntegration_Views_Flow exercises the derived view endpoint.
func TestIntegration_Views_Flow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, tc := range driverTestCases() {
		t.Run(tc.name, func(t *testing.T) {
			ctx := setupIntegrationTest(t, tc.dbDriver)
			defer teardownIntegrationTest(t, ctx)

			payload := json.RawMessage(`{"processes":[
				{"name":"billing","category":"finance","impact":"high","depends_on":["payments"]},
				{"name":"payments","category":"finance","impact":"critical","depends_on":[]}
			]}`)
			resp, _ := ctx.makeRequest(t, http.MethodPost, ctx.tenantPath("/snapshots"), snapshotDTO.SaveSnapshotRequest{
				Payload:     payload,
				Source:      "HUMAN",
				RecordCount: 2,
			})
			require.Equal(t, http.StatusCreated, resp.StatusCode)

			resp, body := ctx.makeRequest(t, http.MethodGet, ctx.tenantPath("/views/heatmap"), nil)
			require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)

			var heatmap map[string]any
			require.NoError(t, json.Unmarshal(body, &heatmap))
			assert.NotEmpty(t, heatmap)

			resp, _ = ctx.makeRequest(t, http.MethodGet, ctx.tenantPath("/views/dependency-graph"), nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			resp, _ = ctx.makeRequest(t, http.MethodGet, ctx.tenantPath("/views/unknown"), nil)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		})
	}
}
