package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/artpar/stackgen/internal/core/descriptor"
	"github.com/artpar/stackgen/internal/core/props"
	"github.com/artpar/stackgen/internal/generator"
	"github.com/artpar/stackgen/internal/shell/catalogfs"
	"github.com/artpar/stackgen/internal/shell/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helpers
// =============================================================================

var testCatalog = fstest.MapFS{
	"enums.yaml": {Data: []byte("runtime.name:\n  - id: quarkus\n    name: Quarkus\n  - id: nodejs\n")},
	"capability-rest/info.yaml": {Data: []byte(`
name: REST API
description: Exposes a greeting endpoint
props:
  - id: runtime
    type: object
    shared: true
metadata:
  category: backend
`)},
	"welcome-app/info.yaml": {Data: []byte("name: Welcome\nmetadata:\n  category: frontend\n")},
}

type fakeHistory struct {
	entries []store.JournalEntry
	err     error

	application string
	limit       int
}

func (f *fakeHistory) List(_ context.Context, application string, limit int) ([]store.JournalEntry, error) {
	f.application = application
	f.limit = limit
	return f.entries, f.err
}

func setupTestHandler(t *testing.T, journal HistoryReader) (*Handler, string) {
	t.Helper()
	reg := generator.NewRegistry(catalogfs.New(testCatalog), nil).
		Add("capability-rest", nil).
		Add("welcome-app", nil).
		Add("uncataloged", nil)

	dir := t.TempDir()
	h := NewHandler(Config{
		Registry:   reg,
		Workspace:  store.NewFileStore(),
		ProjectDir: dir,
		Journal:    journal,
	})
	return h, dir
}

func doRequest(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// =============================================================================
// Health Tests
// =============================================================================

func TestHandleHealth(t *testing.T) {
	h, _ := setupTestHandler(t, nil)

	rec := doRequest(t, h, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "healthy", decode[HealthResponse](t, rec).Status)
}

// =============================================================================
// Generator Tests
// =============================================================================

func TestHandleListGenerators(t *testing.T) {
	h, _ := setupTestHandler(t, nil)

	rec := doRequest(t, h, "/api/v1/generators")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode[[]GeneratorResponse](t, rec)
	require.Len(t, out, 3)

	assert.Equal(t, GeneratorResponse{
		Name:        "capability-rest",
		Capability:  true,
		Title:       "REST API",
		Description: "Exposes a greeting endpoint",
		Category:    "backend",
	}, out[0])
	assert.Equal(t, "welcome-app", out[1].Name)
	assert.False(t, out[1].Capability)
	assert.Equal(t, "frontend", out[1].Category)
	assert.Equal(t, "uncataloged", out[2].Name)
	assert.NotEmpty(t, out[2].Error)
}

func TestHandleListGenerators_CapabilitiesOnly(t *testing.T) {
	h, _ := setupTestHandler(t, nil)

	rec := doRequest(t, h, "/api/v1/generators?capabilities=true")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode[[]GeneratorResponse](t, rec)
	require.Len(t, out, 1)
	assert.Equal(t, "capability-rest", out[0].Name)
}

func TestHandleGetGenerator(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
	}{
		{name: "found", target: "/api/v1/generators/capability-rest", wantStatus: http.StatusOK},
		{name: "unknown", target: "/api/v1/generators/nope", wantStatus: http.StatusNotFound, wantCode: "unknown_generator"},
		{name: "missing catalog", target: "/api/v1/generators/uncataloged", wantStatus: http.StatusNotFound, wantCode: "missing_catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := setupTestHandler(t, nil)
			rec := doRequest(t, h, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decode[ErrorResponse](t, rec).Code)
			}
		})
	}
}

func TestHandleGetGenerator_Body(t *testing.T) {
	h, _ := setupTestHandler(t, nil)

	rec := doRequest(t, h, "/api/v1/generators/capability-rest")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "capability-rest", body["module"])
	assert.Equal(t, "REST API", body["name"])
	assert.Equal(t, true, body["capability"])
	require.Len(t, body["props"], 1)
}

// =============================================================================
// Enum Tests
// =============================================================================

func TestHandleGetEnum(t *testing.T) {
	h, _ := setupTestHandler(t, nil)

	rec := doRequest(t, h, "/api/v1/enums/runtime.name")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode[EnumResponse](t, rec)
	assert.Equal(t, "runtime.name", out.ID)
	require.Len(t, out.Values, 2)
	assert.Equal(t, "quarkus", out.Values[0].ID)
	assert.Equal(t, "nodejs", out.Values[1].ID)
}

func TestHandleGetEnum_NotFound(t *testing.T) {
	h, _ := setupTestHandler(t, nil)

	rec := doRequest(t, h, "/api/v1/enums/database.type")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_enum", decode[ErrorResponse](t, rec).Code)
}

// =============================================================================
// Deployment Tests
// =============================================================================

func TestHandleGetDeployment_Empty(t *testing.T) {
	h, _ := setupTestHandler(t, nil)

	rec := doRequest(t, h, "/api/v1/deployment")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"applications":[]}`, rec.Body.String())
}

func TestHandleGetDeployment(t *testing.T) {
	h, dir := setupTestHandler(t, nil)

	d := descriptor.New()
	d.AddGenerator(descriptor.GeneratorState{
		Application: "shop",
		Descriptor:  &descriptor.Generator{Module: "capability-rest", Props: props.New()},
		Shared:      props.New().Set("runtime", props.New().Set("name", "quarkus")),
	})
	require.NoError(t, store.NewFileStore().WriteDeployment(dir, d))

	rec := doRequest(t, h, "/api/v1/deployment")
	require.Equal(t, http.StatusOK, rec.Code)

	var got descriptor.Deployment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got.Applications, 1)
	assert.Equal(t, "shop", got.Applications[0].Application)
	part := got.Applications[0].Parts[0]
	assert.Nil(t, part.SubFolderName)
	assert.Equal(t, "capability-rest", part.Generators[0].Module)
	assert.Equal(t, "quarkus", part.Shared.String(descriptor.KeyRuntimeName))
}

// =============================================================================
// History Tests
// =============================================================================

func TestHandleHistory_Disabled(t *testing.T) {
	h, _ := setupTestHandler(t, nil)

	rec := doRequest(t, h, "/api/v1/history")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "journal_disabled", decode[ErrorResponse](t, rec).Code)
}

func TestHandleHistory(t *testing.T) {
	tests := []struct {
		name            string
		target          string
		wantStatus      int
		wantLimit       int
		wantApplication string
	}{
		{name: "default limit", target: "/api/v1/history", wantStatus: http.StatusOK, wantLimit: defaultHistoryLimit},
		{name: "explicit limit", target: "/api/v1/history?limit=5", wantStatus: http.StatusOK, wantLimit: 5},
		{name: "by application", target: "/api/v1/history?application=shop&limit=0", wantStatus: http.StatusOK, wantApplication: "shop"},
		{name: "invalid limit", target: "/api/v1/history?limit=abc", wantStatus: http.StatusBadRequest},
		{name: "negative limit", target: "/api/v1/history?limit=-1", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hist := &fakeHistory{entries: []store.JournalEntry{
				{ID: "a", Module: "capability-rest", Application: "shop", Status: store.StatusApplied},
			}}
			h, _ := setupTestHandler(t, hist)

			rec := doRequest(t, h, tt.target)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, tt.wantLimit, hist.limit)
			assert.Equal(t, tt.wantApplication, hist.application)

			out := decode[HistoryResponse](t, rec)
			require.Len(t, out.Entries, 1)
			assert.Equal(t, "a", out.Entries[0].ID)
		})
	}
}

func TestHandleHistory_EmptyIsArray(t *testing.T) {
	h, _ := setupTestHandler(t, &fakeHistory{})

	rec := doRequest(t, h, "/api/v1/history")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())
}

func TestHandleHistory_Error(t *testing.T) {
	h, _ := setupTestHandler(t, &fakeHistory{err: errors.New("disk gone")})

	rec := doRequest(t, h, "/api/v1/history")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "read_failed", decode[ErrorResponse](t, rec).Code)
}

func TestHandleHistory_SQLiteJournal(t *testing.T) {
	j, err := store.NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	ctx := context.Background()
	require.NoError(t, j.Record(ctx, store.JournalEntry{TargetDir: "/tmp/p", Module: "capability-rest", Application: "shop", Status: store.StatusApplied}))
	require.NoError(t, j.Record(ctx, store.JournalEntry{TargetDir: "/tmp/p", Module: "nope", Application: "shop", Status: store.StatusRejected, Error: "generator not registered"}))

	h, _ := setupTestHandler(t, j)
	rec := doRequest(t, h, "/api/v1/history?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode[HistoryResponse](t, rec)
	require.Len(t, out.Entries, 1)
	assert.Equal(t, "nope", out.Entries[0].Module)
	assert.Equal(t, store.StatusRejected, out.Entries[0].Status)
}
