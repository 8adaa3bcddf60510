package entity

import (
	"time"

	"floristeria-calendar-sync/internal/domain"
)

// IntegrationDoc represents an integration configuration in MongoDB.
// The mapping is persisted as its JSON document text, the same form the
// administrator edits.
type IntegrationDoc struct {
	ID                     string            `bson:"_id"`
	Name                   string            `bson:"name"`
	SourceKind             string            `bson:"sourceKind"`
	Endpoint               string            `bson:"endpoint"`
	APIKey                 string            `bson:"apiKey,omitempty"`
	Headers                map[string]string `bson:"headers,omitempty"`
	HTTPMethod             string            `bson:"httpMethod"`
	RequestBody            string            `bson:"requestBody,omitempty"`
	MappingDocument        string            `bson:"mappingDocument"`
	RefreshIntervalMinutes int               `bson:"refreshIntervalMinutes"`
	Enabled                bool              `bson:"enabled"`
	CreatedBy              string            `bson:"createdBy,omitempty"`
	CreatedAt              time.Time         `bson:"createdAt"`
	UpdatedAt              time.Time         `bson:"updatedAt"`
	LastSyncAt             *time.Time        `bson:"lastSyncAt,omitempty"`
	LastSyncStatus         string            `bson:"lastSyncStatus"`
	LastError              string            `bson:"lastError,omitempty"`
}

// ToDomain converts the MongoDB document to a domain entity. A mapping
// document that no longer parses is treated as empty rather than
// breaking reads; it will be rejected on the next save.
func (d *IntegrationDoc) ToDomain() *domain.Integration {
	mapping, _ := domain.ParseMapping([]byte(d.MappingDocument))
	return &domain.Integration{
		ID:                     d.ID,
		Name:                   d.Name,
		SourceKind:             domain.SourceKind(d.SourceKind),
		Endpoint:               d.Endpoint,
		APIKey:                 d.APIKey,
		Headers:                d.Headers,
		HTTPMethod:             d.HTTPMethod,
		RequestBody:            d.RequestBody,
		Mapping:                mapping,
		RefreshIntervalMinutes: d.RefreshIntervalMinutes,
		Enabled:                d.Enabled,
		CreatedBy:              d.CreatedBy,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
		LastSyncAt:             d.LastSyncAt,
		LastSyncStatus:         domain.SyncStatus(d.LastSyncStatus),
		LastError:              d.LastError,
	}
}

// IntegrationDocFromDomain converts a domain entity to a MongoDB document.
func IntegrationDocFromDomain(integration *domain.Integration) *IntegrationDoc {
	mappingDoc, err := integration.Mapping.MarshalDocument()
	if err != nil {
		mappingDoc = []byte("{}")
	}
	return &IntegrationDoc{
		ID:                     integration.ID,
		Name:                   integration.Name,
		SourceKind:             string(integration.SourceKind),
		Endpoint:               integration.Endpoint,
		APIKey:                 integration.APIKey,
		Headers:                integration.Headers,
		HTTPMethod:             integration.HTTPMethod,
		RequestBody:            integration.RequestBody,
		MappingDocument:        string(mappingDoc),
		RefreshIntervalMinutes: integration.RefreshIntervalMinutes,
		Enabled:                integration.Enabled,
		CreatedBy:              integration.CreatedBy,
		CreatedAt:              integration.CreatedAt,
		UpdatedAt:              integration.UpdatedAt,
		LastSyncAt:             integration.LastSyncAt,
		LastSyncStatus:         string(integration.LastSyncStatus),
		LastError:              integration.LastError,
	}
}
