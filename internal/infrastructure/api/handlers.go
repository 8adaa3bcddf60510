package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"floristeria-calendar-sync/internal/application"
	"floristeria-calendar-sync/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers exposes the sync subsystem's REST surface: the order webhook,
// manual sync, connection test and integration CRUD.
type Handlers struct {
	sync         *application.SyncService
	integrations *application.IntegrationService
	logger       zerolog.Logger
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(sync *application.SyncService, integrations *application.IntegrationService, logger zerolog.Logger) *Handlers {
	return &Handlers{sync: sync, integrations: integrations, logger: logger}
}

// Register mounts all routes on the router.
func (h *Handlers) Register(r chi.Router) {
	r.Post("/webhooks/commerce-orders", h.handleOrderWebhook)

	r.Route("/integrations", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGet)
			r.Put("/", h.handleUpdate)
			r.Delete("/", h.handleDelete)
			r.Post("/sync", h.handleManualSync)
			r.Get("/test", h.handleConnectionTest)
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   err.Error(),
	})
}

// handleOrderWebhook processes one pushed commerce order synchronously.
func (h *Handlers) handleOrderWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer r.Body.Close()

	result, err := h.sync.HandleOrderWebhook(r.Context(), payload)
	if err != nil {
		if errors.Is(err, application.ErrInvalidWebhookPayload) {
			h.logger.Warn().Err(err).Msg("Rejected webhook delivery")
			writeError(w, http.StatusBadRequest, err)
			return
		}
		h.logger.Error().Err(err).Msg("Webhook processing failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleManualSync runs one integration immediately, ignoring the
// refresh-interval gate.
func (h *Handlers) handleManualSync(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	attempt, err := h.sync.SyncIntegration(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrIntegrationNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        attempt.Outcome() != domain.SyncError,
		"status":         attempt.Outcome(),
		"processedCount": attempt.Processed,
		"succeededCount": attempt.Succeeded,
		"failedCount":    attempt.Failed,
	})
}

// handleConnectionTest performs the fetch step only and reports the raw
// status and a truncated body preview.
func (h *Handlers) handleConnectionTest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := h.integrations.ConnectionTest(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrIntegrationNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		// The endpoint was unreachable; the test itself still answers.
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    result.StatusCode >= 200 && result.StatusCode <= 299,
		"statusCode": result.StatusCode,
		"preview":    string(result.Body),
	})
}

func (h *Handlers) handleList(w http.ResponseWriter, r *http.Request) {
	integrations, err := h.integrations.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"integrations": toViews(integrations)})
}

func (h *Handlers) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input application.IntegrationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	integration, err := h.integrations.Create(r.Context(), input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusCreated, toView(integration))
}

func (h *Handlers) handleGet(w http.ResponseWriter, r *http.Request) {
	integration, err := h.integrations.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrIntegrationNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(integration))
}

func (h *Handlers) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var input application.IntegrationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	integration, err := h.integrations.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		if errors.Is(err, domain.ErrIntegrationNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(integration))
}

func (h *Handlers) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.integrations.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, domain.ErrIntegrationNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// integrationView is the API representation of an integration. The API
// key is never echoed back.
type integrationView struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	SourceKind             string          `json:"source_kind"`
	Endpoint               string          `json:"endpoint"`
	HTTPMethod             string          `json:"http_method"`
	Mapping                json.RawMessage `json:"mapping"`
	RefreshIntervalMinutes int             `json:"refresh_interval_minutes"`
	Enabled                bool            `json:"enabled"`
	LastSyncAt             *string         `json:"last_sync_at"`
	LastSyncStatus         string          `json:"last_sync_status"`
	LastError              string          `json:"last_error,omitempty"`
}

func toView(i *domain.Integration) integrationView {
	mapping, err := i.Mapping.MarshalDocument()
	if err != nil {
		mapping = []byte("{}")
	}
	view := integrationView{
		ID:                     i.ID,
		Name:                   i.Name,
		SourceKind:             string(i.SourceKind),
		Endpoint:               i.Endpoint,
		HTTPMethod:             i.HTTPMethod,
		Mapping:                mapping,
		RefreshIntervalMinutes: i.RefreshIntervalMinutes,
		Enabled:                i.Enabled,
		LastSyncStatus:         string(i.LastSyncStatus),
		LastError:              i.LastError,
	}
	if i.LastSyncAt != nil {
		formatted := i.LastSyncAt.Format("2006-01-02T15:04:05Z07:00")
		view.LastSyncAt = &formatted
	}
	return view
}

func toViews(integrations []*domain.Integration) []integrationView {
	views := make([]integrationView, 0, len(integrations))
	for _, i := range integrations {
		views = append(views, toView(i))
	}
	return views
}
