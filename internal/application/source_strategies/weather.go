package source_strategies

import (
	"fmt"

	"floristeria-calendar-sync/internal/domain"

	"github.com/rs/zerolog"
)

// NewWeatherStrategy extracts forecast days. Defaults follow the common
// forecast-API layout; the administrator's mapping overrides any of them.
// At most seven leading days are kept per sync.
func NewWeatherStrategy(logger zerolog.Logger) *genericStrategy {
	return &genericStrategy{
		kind: domain.SourceWeather,
		defaults: domain.Mapping{
			DataPath:   domain.MustFieldPath("forecast.forecastday"),
			DateField:  domain.MustFieldPath("date"),
			TitleField: domain.MustFieldPath("day.condition.text"),
			IconField:  domain.MustFieldPath("day.condition.icon"),
			TempField:  domain.MustFieldPath("day.maxtemp_c"),
			Icon:       "fas fa-cloud-sun",
			Color:      "#87CEEB",
		},
		maxItems: 7,
		decorate: func(event *domain.NormalizedEvent, item any, m domain.Mapping) {
			if event.Body == "" {
				event.Body = "Clima: " + event.Title
			}
			if temp, ok := m.TempField.ResolveString(item); ok && temp != "" {
				event.Title = fmt.Sprintf("%s (%s°C)", event.Title, temp)
			}
		},
		logger: logger,
	}
}
