package source_strategies

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"floristeria-calendar-sync/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func testIntegration(kind domain.SourceKind) *domain.Integration {
	return &domain.Integration{ID: "int-1", Name: "test", SourceKind: kind}
}

func TestOrderStrategyEndToEnd(t *testing.T) {
	s := NewOrderStrategy(zerolog.Nop())
	payload := decodePayload(t, `{
		"id": 42,
		"status": "processing",
		"total": "50.00",
		"currency": "EUR",
		"billing": {"first_name": "Ana", "last_name": "Ruiz"},
		"line_items": [{"name": "Bouquet", "quantity": 1, "total": "50.00"}]
	}`)

	events, err := s.Extract(payload, testIntegration(domain.SourceCommerceOrder))
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	assert.Contains(t, event.Title, "Order #42 - Ana Ruiz")
	assert.Equal(t, "#007bff", event.Color)
	assert.Equal(t, domain.PriorityHigh, event.Priority)
	assert.Equal(t, "42", event.ExternalID)
	assert.Equal(t, domain.Today(), event.Date, "no delivery meta and no creation date falls back to today")
	assert.Contains(t, event.Body, "Procesando")
	assert.Contains(t, event.Body, "50.00 EUR")
	assert.Contains(t, event.Body, "Bouquet (x1) - 50.00€")
	assert.NotEmpty(t, event.RawPayload)
}

func TestOrderStrategyDeliveryDateChain(t *testing.T) {
	s := NewOrderStrategy(zerolog.Nop())

	t.Run("delivery_meta_wins", func(t *testing.T) {
		payload := decodePayload(t, `{
			"id": 1, "status": "processing",
			"date_created": "2026-03-01T10:00:00",
			"shipping": {"city": "Madrid"},
			"meta_data": [{"key": "ywcdd_order_delivery_date", "value": "2026-03-14"}]
		}`)
		event, err := s.TransformOrder(payload, "")
		require.NoError(t, err)
		assert.Equal(t, "2026-03-14", event.Date.Format("2006-01-02"))
		assert.Contains(t, event.Body, "Fecha entrega: 2026-03-14")
	})

	t.Run("creation_timestamp_fallback", func(t *testing.T) {
		payload := decodePayload(t, `{
			"id": 2, "status": "processing",
			"date_created": "2026-03-01T10:00:00Z"
		}`)
		event, err := s.TransformOrder(payload, "")
		require.NoError(t, err)
		assert.Equal(t, "2026-03-01", event.Date.Format("2006-01-02"))
	})

	t.Run("unparseable_creation_date_defaults_to_today", func(t *testing.T) {
		payload := decodePayload(t, `{
			"id": 3, "status": "processing",
			"date_created": "mañana por la tarde"
		}`)
		event, err := s.TransformOrder(payload, "")
		require.NoError(t, err, "date ambiguity must never fail the transform")
		assert.Equal(t, domain.Today(), event.Date)
	})
}

func TestOrderStrategyDedications(t *testing.T) {
	s := NewOrderStrategy(zerolog.Nop())
	payload := decodePayload(t, `{
		"id": 7, "status": "completed",
		"line_items": [
			{
				"name": "Ramo grande", "quantity": 1, "total": "45.00",
				"meta_data": [
					{"key": "Dedicatoria", "value": "Con cariño\r\nPara ti"},
					{"key": "Dedicatoria", "value": "Con cariño\r\nPara ti"},
					{"key": "Color de lazo", "value": "rojo"},
					{"key": "_internal_flag", "value": "skip-me"}
				]
			}
		]
	}`)

	event, err := s.TransformOrder(payload, "")
	require.NoError(t, err)

	assert.Contains(t, event.Body, "💌 DEDICATORIA:")
	assert.Contains(t, event.Body, "📝 Con cariño")
	assert.Contains(t, event.Body, "📝 Para ti")
	assert.Equal(t, 1, strings.Count(event.Body, "📝 Con cariño"),
		"identical dedication entries are deduplicated")

	assert.Contains(t, event.Body, "Ramo grande (x1) - 45.00€ (Color de lazo: rojo)")
	assert.NotContains(t, event.Body, "_internal_flag")
}

func TestOrderStrategyDedicationThreshold(t *testing.T) {
	s := NewOrderStrategy(zerolog.Nop())
	payload := decodePayload(t, `{
		"id": 8, "status": "processing",
		"line_items": [{
			"name": "Rosa", "quantity": 1, "total": "5.00",
			"meta_data": [{"key": "Dedicatoria", "value": "corto"}]
		}]
	}`)

	event, err := s.TransformOrder(payload, "")
	require.NoError(t, err)
	assert.NotContains(t, event.Body, "DEDICATORIA", "short values are not dedications")
}

func TestOrderStrategyStatusPresentation(t *testing.T) {
	s := NewOrderStrategy(zerolog.Nop())
	tests := []struct {
		status   string
		color    string
		priority string
	}{
		{"pending", "#ffc107", domain.PriorityNormal},
		{"processing", "#007bff", domain.PriorityHigh},
		{"on-hold", "#fd7e14", domain.PriorityHigh},
		{"completed", "#28a745", domain.PriorityNormal},
		{"cancelled", "#dc3545", domain.PriorityLow},
		{"refunded", "#6c757d", domain.PriorityLow},
		{"failed", "#dc3545", domain.PriorityNormal},
		{"sorpresa", "#ffc107", domain.PriorityNormal},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			payload := decodePayload(t, fmt.Sprintf(`{"id": 9, "status": %q}`, tt.status))
			event, err := s.TransformOrder(payload, "")
			require.NoError(t, err)
			assert.Equal(t, tt.color, event.Color)
			assert.Equal(t, tt.priority, event.Priority)
		})
	}
}

func TestOrderStrategyRecipientAndAddress(t *testing.T) {
	s := NewOrderStrategy(zerolog.Nop())
	payload := decodePayload(t, `{
		"id": 11, "status": "processing",
		"billing": {"first_name": "Ana", "last_name": "Ruiz", "email": "ana@example.com", "phone": "600111222"},
		"shipping": {
			"first_name": "Lucía", "last_name": "Marín", "phone": "600333444",
			"address_1": "Calle Mayor 5", "address_2": "2ºB", "city": "Madrid", "postcode": "28001"
		}
	}`)

	event, err := s.TransformOrder(payload, "")
	require.NoError(t, err)

	assert.Contains(t, event.Title, "Ana Ruiz → Lucía Marín")
	assert.Contains(t, event.Body, "Destinatario: Lucía Marín")
	assert.Contains(t, event.Body, "Teléfono entrega: 600333444")
	assert.Contains(t, event.Body, "Dirección: Calle Mayor 5, 2ºB, Madrid, 28001")
}

func TestOrderStrategyCustomerFallbacks(t *testing.T) {
	s := NewOrderStrategy(zerolog.Nop())

	event, err := s.TransformOrder(decodePayload(t, `{
		"id": 12, "status": "processing",
		"billing": {"email": "cliente@example.com"}
	}`), "")
	require.NoError(t, err)
	assert.Contains(t, event.Title, "Order #12 - cliente@example.com")

	event, err = s.TransformOrder(decodePayload(t, `{"id": 13, "status": "processing"}`), "")
	require.NoError(t, err, "missing billing, shipping and meta must degrade, not fail")
	assert.Contains(t, event.Title, "Order #13 - Cliente sin nombre")
	assert.NotContains(t, event.Body, "🚚 ENTREGA:")
}

func TestOrderStrategyExtractList(t *testing.T) {
	s := NewOrderStrategy(zerolog.Nop())
	payload := decodePayload(t, `[
		{"id": 21, "status": "processing"},
		{"status": "processing"},
		{"id": 22, "status": "completed"}
	]`)

	events, err := s.Extract(payload, testIntegration(domain.SourceCommerceOrder))
	require.NoError(t, err)
	require.Len(t, events, 2, "orders without an id are skipped, the rest proceed")
	assert.Equal(t, "21", events[0].ExternalID)
	assert.Equal(t, "22", events[1].ExternalID)
	assert.Equal(t, "int-1", events[0].SourceIntegrationID)
}
