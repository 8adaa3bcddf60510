package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SourceKind identifies the extraction strategy used for an integration.
// The set is closed: sync dispatch is always by tag, never by inspecting
// the endpoint URL (see DetectLegacySourceKind for the one migration
// exception).
type SourceKind string

const (
	SourceWeather       SourceKind = "weather"
	SourceEvents        SourceKind = "events"
	SourceTasks         SourceKind = "tasks"
	SourceCustom        SourceKind = "custom"
	SourceCommerceOrder SourceKind = "commerce-order"
)

// ParseSourceKind validates a source kind string against the closed set.
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(s) {
	case SourceWeather, SourceEvents, SourceTasks, SourceCustom, SourceCommerceOrder:
		return SourceKind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedSourceKind, s)
}

// SyncStatus is the persisted outcome of the most recent sync attempt.
type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSuccess SyncStatus = "success"
	SyncPartial SyncStatus = "partial"
	SyncError   SyncStatus = "error"
)

// Integration is the persisted configuration for one external data source.
type Integration struct {
	ID          string
	Name        string
	SourceKind  SourceKind
	Endpoint    string
	APIKey      string            // opaque credential blob; header placement depends on SourceKind
	Headers     map[string]string // extra request headers supplied by the administrator
	HTTPMethod  string
	RequestBody string
	Mapping     Mapping
	// RefreshIntervalMinutes gates the poll path; manual sync ignores it.
	RefreshIntervalMinutes int
	Enabled                bool
	CreatedBy              string
	CreatedAt              time.Time
	UpdatedAt              time.Time
	LastSyncAt             *time.Time
	LastSyncStatus         SyncStatus
	LastError              string
}

// Due reports whether the integration's refresh interval has elapsed.
// An integration that has never synced is always due.
func (i *Integration) Due(now time.Time) bool {
	if !i.Enabled {
		return false
	}
	if i.LastSyncAt == nil {
		return true
	}
	return now.Sub(*i.LastSyncAt) >= time.Duration(i.RefreshIntervalMinutes)*time.Minute
}

// Mapping is the declarative field-path configuration for an integration.
// Which keys are meaningful depends on the source kind; unknown keys are
// ignored and missing paths degrade at extraction time rather than failing.
type Mapping struct {
	DataPath         FieldPath `json:"data_path"`
	DateField        FieldPath `json:"date_field"`
	TitleField       FieldPath `json:"title_field"`
	DescriptionField FieldPath `json:"description_field"`
	IconField        FieldPath `json:"icon_field"`
	ColorField       FieldPath `json:"color_field"`
	StatusField      FieldPath `json:"status_field"`
	TempField        FieldPath `json:"temp_field"`
	// Icon and Color are literal defaults applied to every extracted event.
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// ParseMapping decodes and validates a mapping configuration document.
// The document must be a JSON object and every present path must parse;
// whether the referenced fields exist is checked lazily at fetch time.
func ParseMapping(raw []byte) (Mapping, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return Mapping{}, nil
	}
	var m Mapping
	if err := json.Unmarshal(raw, &m); err != nil {
		return Mapping{}, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}
	return m, nil
}

// MarshalDocument renders the mapping back to its persisted JSON form.
func (m Mapping) MarshalDocument() ([]byte, error) {
	return json.Marshal(m)
}

// WithDefaults merges strategy defaults into an administrator-supplied
// mapping, keeping any explicitly configured value.
func (m Mapping) WithDefaults(d Mapping) Mapping {
	out := m
	if out.DataPath.IsZero() {
		out.DataPath = d.DataPath
	}
	if out.DateField.IsZero() {
		out.DateField = d.DateField
	}
	if out.TitleField.IsZero() {
		out.TitleField = d.TitleField
	}
	if out.DescriptionField.IsZero() {
		out.DescriptionField = d.DescriptionField
	}
	if out.IconField.IsZero() {
		out.IconField = d.IconField
	}
	if out.ColorField.IsZero() {
		out.ColorField = d.ColorField
	}
	if out.StatusField.IsZero() {
		out.StatusField = d.StatusField
	}
	if out.TempField.IsZero() {
		out.TempField = d.TempField
	}
	if out.Icon == "" {
		out.Icon = d.Icon
	}
	if out.Color == "" {
		out.Color = d.Color
	}
	return out
}

// DetectLegacySourceKind guesses a source kind from an integration's name
// and endpoint. It exists only to migrate configurations saved before
// kinds were explicit; sync dispatch never calls it.
func DetectLegacySourceKind(name, endpoint string) SourceKind {
	haystack := strings.ToLower(name + " " + endpoint)
	switch {
	case strings.Contains(haystack, "wc/v3/orders"), strings.Contains(haystack, "woocommerce"):
		return SourceCommerceOrder
	case strings.Contains(haystack, "weather"), strings.Contains(haystack, "forecast"):
		return SourceWeather
	case strings.Contains(haystack, "task"), strings.Contains(haystack, "todo"):
		return SourceTasks
	case strings.Contains(haystack, "event"), strings.Contains(haystack, "calendar"):
		return SourceEvents
	}
	return SourceCustom
}
