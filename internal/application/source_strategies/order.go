package source_strategies

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"floristeria-calendar-sync/internal/domain"

	"github.com/rs/zerolog"
)

// dedicationMinLength filters out meta values too short to be a real
// dedication message (checkbox markers, "yes"/"no" flags).
const dedicationMinLength = 10

// OrderStrategy transforms WooCommerce order payloads into calendar
// notes. An order carries far more structure than the generic sources:
// the florist needs the delivery date resolved, the delivery address
// assembled and any dedication message pulled out of the line-item meta.
type OrderStrategy struct {
	logger zerolog.Logger
}

// NewOrderStrategy creates the commerce-order strategy.
func NewOrderStrategy(logger zerolog.Logger) *OrderStrategy {
	return &OrderStrategy{logger: logger}
}

func (s *OrderStrategy) Kind() domain.SourceKind { return domain.SourceCommerceOrder }

// orderPayload mirrors the WooCommerce REST order shape. Every field is
// optional except id and status; absent blocks degrade the note.
type orderPayload struct {
	ID          int64           `json:"id"`
	Status      string          `json:"status"`
	Total       string          `json:"total"`
	Currency    string          `json:"currency"`
	DateCreated string          `json:"date_created"`
	Billing     orderAddress    `json:"billing"`
	Shipping    orderAddress    `json:"shipping"`
	LineItems   []orderLineItem `json:"line_items"`
	MetaData    []orderMeta     `json:"meta_data"`
}

type orderAddress struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
}

type orderLineItem struct {
	Name     string      `json:"name"`
	Quantity int         `json:"quantity"`
	Total    string      `json:"total"`
	MetaData []orderMeta `json:"meta_data"`
}

type orderMeta struct {
	Key          string `json:"key"`
	Value        any    `json:"value"`
	DisplayKey   string `json:"display_key"`
	DisplayValue any    `json:"display_value"`
}

// label prefers the shop-facing display key over the raw plugin key.
func (m orderMeta) label() string {
	if m.DisplayKey != "" {
		return m.DisplayKey
	}
	return m.Key
}

// text returns the meta value as a string, preferring the display value.
func (m orderMeta) text() (string, bool) {
	if s, ok := m.DisplayValue.(string); ok && s != "" {
		return s, true
	}
	s, ok := m.Value.(string)
	return s, ok
}

// statusPresentation maps an order status to its fixed color/priority
// pair and localized label. Unknown statuses render amber at normal
// priority.
type statusPresentation struct {
	Color    string
	Priority string
	Label    string
}

var orderStatusPresentations = map[string]statusPresentation{
	"pending":    {"#ffc107", domain.PriorityNormal, "Pendiente"},
	"processing": {"#007bff", domain.PriorityHigh, "Procesando"},
	"on-hold":    {"#fd7e14", domain.PriorityHigh, "En espera"},
	"completed":  {"#28a745", domain.PriorityNormal, "Completado"},
	"cancelled":  {"#dc3545", domain.PriorityLow, "Cancelado"},
	"refunded":   {"#6c757d", domain.PriorityLow, "Reembolsado"},
	"failed":     {"#dc3545", domain.PriorityNormal, "Fallido"},
}

func presentationFor(status string) statusPresentation {
	if p, ok := orderStatusPresentations[status]; ok {
		return p
	}
	label := status
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return statusPresentation{"#ffc107", domain.PriorityNormal, label}
}

// Extract accepts either a single order object (webhook delivery) or a
// list of orders (scheduled pull against /wp-json/wc/v3/orders).
func (s *OrderStrategy) Extract(payload any, integration *domain.Integration) ([]domain.NormalizedEvent, error) {
	integrationID := ""
	if integration != nil {
		integrationID = integration.ID
	}

	var items []any
	switch v := payload.(type) {
	case []any:
		items = v
	default:
		items = []any{payload}
	}

	events := make([]domain.NormalizedEvent, 0, len(items))
	for idx, item := range items {
		event, err := s.transformOne(item, integrationID)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("integration", integrationID).
				Int("item", idx).
				Msg("Skipping order that could not be transformed")
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// TransformOrder maps a single order payload. The webhook path uses this
// directly so it can report the resolved date and external id.
func (s *OrderStrategy) TransformOrder(payload any, integrationID string) (domain.NormalizedEvent, error) {
	return s.transformOne(payload, integrationID)
}

func (s *OrderStrategy) transformOne(item any, integrationID string) (domain.NormalizedEvent, error) {
	raw, err := json.Marshal(item)
	if err != nil {
		return domain.NormalizedEvent{}, fmt.Errorf("encoding order payload: %w", err)
	}
	var order orderPayload
	if err := json.Unmarshal(raw, &order); err != nil {
		return domain.NormalizedEvent{}, fmt.Errorf("decoding order payload: %w", err)
	}
	if order.ID == 0 {
		return domain.NormalizedEvent{}, fmt.Errorf("order payload has no id")
	}

	customer := s.customerIdentity(order.Billing)
	delivery := strings.TrimSpace(order.Shipping.FirstName + " " + order.Shipping.LastName)
	address := assembleAddress(order.Shipping)
	deliveryDateRaw, date := s.resolveDate(order)
	pres := presentationFor(order.Status)

	title := fmt.Sprintf("🌹 Order #%d - %s", order.ID, customer)
	if delivery != "" && delivery != customer {
		title = fmt.Sprintf("🌹 Order #%d - %s → %s", order.ID, customer, delivery)
	}

	products, dedications := s.processLineItems(order.LineItems)
	body := s.renderBody(order, pres, customer, delivery, address, deliveryDateRaw, products, dedications)

	return domain.NormalizedEvent{
		Date:                date,
		Title:               title,
		Body:                body,
		Color:               pres.Color,
		Icon:                "🌹",
		Priority:            pres.Priority,
		SourceIntegrationID: integrationID,
		ExternalID:          strconv.FormatInt(order.ID, 10),
		RawPayload:          raw,
	}, nil
}

// customerIdentity concatenates the billing name, falling back to the
// billing email and then a literal placeholder.
func (s *OrderStrategy) customerIdentity(billing orderAddress) string {
	name := strings.TrimSpace(billing.FirstName + " " + billing.LastName)
	if name != "" {
		return name
	}
	if billing.Email != "" {
		return billing.Email
	}
	return "Cliente sin nombre"
}

// assembleAddress joins the non-empty address parts with commas.
func assembleAddress(shipping orderAddress) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{shipping.Address1, shipping.Address2, shipping.City, shipping.Postcode} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// resolveDate applies the delivery-date priority chain: delivery-date
// plugin meta, then the order creation timestamp, then today. The raw
// meta value is also returned for display in the delivery block. The
// chain never fails; date ambiguity degrades to today.
func (s *OrderStrategy) resolveDate(order orderPayload) (deliveryDateRaw string, date time.Time) {
	for _, meta := range order.MetaData {
		if !isDeliveryDateKey(meta.Key) {
			continue
		}
		value, ok := meta.text()
		if !ok {
			continue
		}
		if parsed, parsedOK := domain.ParseFlexibleDate(value); parsedOK {
			return value, parsed
		}
	}
	if order.DateCreated != "" {
		if parsed, ok := domain.ParseFlexibleDate(order.DateCreated); ok {
			return "", parsed
		}
		s.logger.Warn().
			Int64("orderId", order.ID).
			Str("dateCreated", order.DateCreated).
			Msg("Unparseable order creation date, defaulting to today")
	}
	return "", domain.Today()
}

// isDeliveryDateKey recognizes the delivery-date plugin field. The exact
// key the shop uses is ywcdd_order_delivery_date; other delivery-date
// plugins are matched by substring.
func isDeliveryDateKey(key string) bool {
	return key == "ywcdd_order_delivery_date" || strings.Contains(strings.ToLower(key), "delivery_date")
}

// processLineItems renders one human-readable line per item and collects
// dedication messages. Dedications are matched case-insensitively on the
// meta key, CRLF-normalized and deduplicated by exact text; remaining
// non-internal meta entries become inline "key: value" annotations.
func (s *OrderStrategy) processLineItems(items []orderLineItem) (products, dedications []string) {
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = "Producto"
		}
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		line := fmt.Sprintf("%s (x%d) - %s€", name, quantity, item.Total)

		var annotations []string
		for _, meta := range item.MetaData {
			key := meta.label()
			value, isString := meta.text()

			if isDedicationKey(key) {
				if isString && len([]rune(value)) > dedicationMinLength {
					clean := normalizeNewlines(value)
					if !contains(dedications, clean) {
						dedications = append(dedications, clean)
					}
				}
				continue
			}
			if key == "" || !isString || value == "" || strings.HasPrefix(key, "_") {
				continue
			}
			// Some plugins echo the dedication into sibling entries.
			if isDedicationKey(value) {
				continue
			}
			annotations = append(annotations, key+": "+value)
		}
		if len(annotations) > 0 {
			line += " (" + strings.Join(annotations, ", ") + ")"
		}
		products = append(products, line)
	}
	return products, dedications
}

// isDedicationKey matches both the English "dedication" and the Spanish
// plugin key "Dedicatoria".
func isDedicationKey(s string) bool {
	return strings.Contains(strings.ToLower(s), "dedicat")
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// renderBody builds the ordered note sections: status/total header,
// customer block, delivery block (only when any delivery data exists),
// products block and dedication block (only when dedications were found).
func (s *OrderStrategy) renderBody(
	order orderPayload,
	pres statusPresentation,
	customer, delivery, address, deliveryDateRaw string,
	products, dedications []string,
) string {
	total := order.Total
	if total == "" {
		total = "0"
	}
	currency := order.Currency
	if currency == "" {
		currency = "EUR"
	}

	lines := []string{
		"📋 ESTADO: " + pres.Label,
		fmt.Sprintf("💰 TOTAL: %s %s", total, currency),
		"",
		"👤 CLIENTE:",
		"   • Nombre: " + customer,
	}
	if order.Billing.Email != "" {
		lines = append(lines, "   • Email: "+order.Billing.Email)
	}
	if order.Billing.Phone != "" {
		lines = append(lines, "   • Teléfono: "+order.Billing.Phone)
	}

	if delivery != "" || address != "" {
		lines = append(lines, "", "🚚 ENTREGA:")
		if delivery != "" {
			lines = append(lines, "   • Destinatario: "+delivery)
		}
		if order.Shipping.Phone != "" && order.Shipping.Phone != order.Billing.Phone {
			lines = append(lines, "   • Teléfono entrega: "+order.Shipping.Phone)
		}
		if address != "" {
			lines = append(lines, "   • Dirección: "+address)
		}
		if deliveryDateRaw != "" {
			lines = append(lines, "   • Fecha entrega: "+deliveryDateRaw)
		}
	}

	if len(products) > 0 {
		lines = append(lines, "", "🌺 PRODUCTOS:")
		for _, p := range products {
			lines = append(lines, "   • "+p)
		}
	}

	if len(dedications) > 0 {
		lines = append(lines, "", "💌 DEDICATORIA:")
		for i, dedication := range dedications {
			if i > 0 {
				lines = append(lines, "")
			}
			for _, dl := range strings.Split(dedication, "\n") {
				if strings.TrimSpace(dl) != "" {
					lines = append(lines, "   📝 "+strings.TrimSpace(dl))
				}
			}
		}
	}

	return strings.Join(lines, "\n")
}
