package source_strategies

import (
	"floristeria-calendar-sync/internal/domain"

	"github.com/rs/zerolog"
)

// NewCustomStrategy extracts generic REST payloads. Unlike the other
// kinds it carries no data-path or date-field defaults: a custom
// integration with an unconfigured mapping simply yields zero events.
func NewCustomStrategy(logger zerolog.Logger) *genericStrategy {
	return &genericStrategy{
		kind: domain.SourceCustom,
		defaults: domain.Mapping{
			TitleField: domain.MustFieldPath("title"),
			Icon:       "fas fa-info-circle",
			Color:      "#007bff",
		},
		logger: logger,
	}
}
