package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"floristeria-calendar-sync/internal/application"
	"floristeria-calendar-sync/internal/application/source_strategies"
	"floristeria-calendar-sync/internal/domain"
	"floristeria-calendar-sync/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubIntegrationRepo struct {
	integrations map[string]*domain.Integration
}

func newStubIntegrationRepo() *stubIntegrationRepo {
	return &stubIntegrationRepo{integrations: make(map[string]*domain.Integration)}
}

func (r *stubIntegrationRepo) Create(_ context.Context, i *domain.Integration) error {
	r.integrations[i.ID] = i
	return nil
}

func (r *stubIntegrationRepo) GetByID(_ context.Context, id string) (*domain.Integration, error) {
	return r.integrations[id], nil
}

func (r *stubIntegrationRepo) List(_ context.Context) ([]*domain.Integration, error) {
	out := make([]*domain.Integration, 0, len(r.integrations))
	for _, i := range r.integrations {
		out = append(out, i)
	}
	return out, nil
}

func (r *stubIntegrationRepo) ListEnabled(ctx context.Context) ([]*domain.Integration, error) {
	return r.List(ctx)
}

func (r *stubIntegrationRepo) Update(_ context.Context, i *domain.Integration) error {
	r.integrations[i.ID] = i
	return nil
}

func (r *stubIntegrationRepo) Delete(_ context.Context, id string) error {
	delete(r.integrations, id)
	return nil
}

func (r *stubIntegrationRepo) UpdateSyncStatus(_ context.Context, id string, at time.Time, status domain.SyncStatus, lastError string) error {
	if i, ok := r.integrations[id]; ok {
		i.LastSyncAt = &at
		i.LastSyncStatus = status
		i.LastError = lastError
	}
	return nil
}

type stubNoteRepo struct {
	notes map[string]*domain.CalendarNote // keyed by external id
}

func (r *stubNoteRepo) Upsert(_ context.Context, note *domain.CalendarNote) (domain.UpsertAction, error) {
	if r.notes == nil {
		r.notes = make(map[string]*domain.CalendarNote)
	}
	key := note.ExternalID
	if key == "" {
		key = note.Title
	}
	if _, ok := r.notes[key]; ok {
		r.notes[key] = note
		return domain.UpsertUpdated, nil
	}
	r.notes[key] = note
	return domain.UpsertCreated, nil
}

func (r *stubNoteRepo) FindByDate(_ context.Context, _ time.Time) ([]*domain.CalendarNote, error) {
	return nil, nil
}

type stubFetcher struct {
	result *ports.FetchResult
	err    error
}

func (f *stubFetcher) Fetch(_ context.Context, _ *domain.Integration) (*ports.FetchResult, error) {
	return f.result, f.err
}

func (f *stubFetcher) Test(_ context.Context, _ *domain.Integration) (*ports.FetchResult, error) {
	return f.result, f.err
}

func newTestRouter(repo *stubIntegrationRepo, notes *stubNoteRepo, fetcher *stubFetcher) chi.Router {
	logger := zerolog.Nop()
	registry := source_strategies.NewRegistry(logger)
	syncSvc := application.NewSyncService(repo, notes, fetcher, registry, nil, "system-user", logger)
	integrationSvc := application.NewIntegrationService(repo, fetcher, logger)

	r := chi.NewRouter()
	NewHandlers(syncSvc, integrationSvc, logger).Register(r)
	return r
}

func doRequest(t *testing.T, router chi.Router, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestOrderWebhookEndpoint(t *testing.T) {
	notes := &stubNoteRepo{}
	router := newTestRouter(newStubIntegrationRepo(), notes, &stubFetcher{})

	body := `{
		"id": 42, "status": "processing",
		"billing": {"first_name": "Ana", "last_name": "Ruiz"}
	}`

	rec, resp := doRequest(t, router, http.MethodPost, "/webhooks/commerce-orders", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "created", resp["action"])
	assert.Equal(t, "42", resp["externalId"])
	assert.Equal(t, "processing", resp["status"])
	assert.Len(t, notes.notes, 1)

	rec, resp = doRequest(t, router, http.MethodPost, "/webhooks/commerce-orders", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "updated", resp["action"], "redelivery reports an update")
	assert.Len(t, notes.notes, 1)
}

func TestOrderWebhookEndpointRejectsInvalidPayload(t *testing.T) {
	router := newTestRouter(newStubIntegrationRepo(), &stubNoteRepo{}, &stubFetcher{})

	for name, body := range map[string]string{
		"malformed":      `{"id": `,
		"missing_status": `{"id": 42}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec, resp := doRequest(t, router, http.MethodPost, "/webhooks/commerce-orders", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, resp["success"])
		})
	}
}

func TestIntegrationCRUDEndpoints(t *testing.T) {
	router := newTestRouter(newStubIntegrationRepo(), &stubNoteRepo{}, &stubFetcher{})

	rec, created := doRequest(t, router, http.MethodPost, "/integrations/", `{
		"name": "city events",
		"source_kind": "events",
		"endpoint": "https://events.example/api",
		"api_key": "super-secret",
		"enabled": true
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.NotContains(t, rec.Body.String(), "super-secret", "API key is never echoed")

	rec, fetched := doRequest(t, router, http.MethodGet, "/integrations/"+id+"/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "city events", fetched["name"])
	assert.Equal(t, "events", fetched["source_kind"])
	assert.Equal(t, "pending", fetched["last_sync_status"])

	rec, list := doRequest(t, router, http.MethodGet, "/integrations/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, list["integrations"], 1)

	rec, updated := doRequest(t, router, http.MethodPut, "/integrations/"+id+"/", `{
		"name": "city events v2",
		"source_kind": "events",
		"endpoint": "https://events.example/api/v2",
		"enabled": false
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "city events v2", updated["name"])
	assert.Equal(t, false, updated["enabled"])

	rec, _ = doRequest(t, router, http.MethodDelete, "/integrations/"+id+"/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doRequest(t, router, http.MethodGet, "/integrations/"+id+"/", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIntegrationCreateValidationError(t *testing.T) {
	router := newTestRouter(newStubIntegrationRepo(), &stubNoteRepo{}, &stubFetcher{})

	rec, resp := doRequest(t, router, http.MethodPost, "/integrations/", `{"name": "no endpoint"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, resp["success"])
}

func TestManualSyncEndpoint(t *testing.T) {
	repo := newStubIntegrationRepo()
	repo.integrations["int-1"] = &domain.Integration{
		ID: "int-1", Name: "events", SourceKind: domain.SourceEvents,
		Endpoint: "https://events.example/api", Enabled: true,
	}
	var payload any
	require.NoError(t, json.Unmarshal([]byte(`{"events": [
		{"start": {"date": "2026-05-01"}, "summary": "Feria de flores"}
	]}`), &payload))
	fetcher := &stubFetcher{result: &ports.FetchResult{StatusCode: 200, Payload: payload}}
	router := newTestRouter(repo, &stubNoteRepo{}, fetcher)

	rec, resp := doRequest(t, router, http.MethodPost, "/integrations/int-1/sync", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, float64(1), resp["processedCount"])

	rec, _ = doRequest(t, router, http.MethodPost, "/integrations/ghost/sync", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConnectionTestEndpoint(t *testing.T) {
	repo := newStubIntegrationRepo()
	repo.integrations["int-1"] = &domain.Integration{
		ID: "int-1", Name: "events", SourceKind: domain.SourceEvents,
		Endpoint: "https://events.example/api",
	}
	fetcher := &stubFetcher{result: &ports.FetchResult{StatusCode: 401, Body: []byte(`{"error": "bad key"}`)}}
	router := newTestRouter(repo, &stubNoteRepo{}, fetcher)

	rec, resp := doRequest(t, router, http.MethodGet, "/integrations/int-1/test", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, float64(401), resp["statusCode"])
	assert.Contains(t, resp["preview"], "bad key")

	rec, _ = doRequest(t, router, http.MethodGet, "/integrations/ghost/test", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
