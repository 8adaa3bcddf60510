package source_strategies

import (
	"floristeria-calendar-sync/internal/domain"

	"github.com/rs/zerolog"
)

// NewEventsStrategy extracts calendar-style event lists.
func NewEventsStrategy(logger zerolog.Logger) *genericStrategy {
	return &genericStrategy{
		kind: domain.SourceEvents,
		defaults: domain.Mapping{
			DataPath:         domain.MustFieldPath("events"),
			DateField:        domain.MustFieldPath("start.date"),
			TitleField:       domain.MustFieldPath("summary"),
			DescriptionField: domain.MustFieldPath("description"),
			Icon:             "fas fa-calendar-alt",
			Color:            "#28a745",
		},
		logger: logger,
	}
}
