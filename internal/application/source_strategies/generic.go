package source_strategies

import (
	"encoding/json"

	"floristeria-calendar-sync/internal/domain"

	"github.com/rs/zerolog"
)

// genericStrategy implements the shared list-extraction algorithm used by
// the weather, events, tasks and custom kinds: resolve the data path to a
// list, then map each item through the configured field paths. Date and
// title are required per item; everything else is optional and its
// absence degrades the event instead of failing it.
type genericStrategy struct {
	kind     domain.SourceKind
	defaults domain.Mapping
	// maxItems bounds the number of list items processed; zero means all.
	maxItems int
	// decorate adjusts a mapped event from kind-specific fields of the
	// item (weather temperature, task status colors). May be nil.
	decorate func(event *domain.NormalizedEvent, item any, m domain.Mapping)
	logger   zerolog.Logger
}

func (s *genericStrategy) Kind() domain.SourceKind { return s.kind }

// Extract maps the payload's item list into normalized events. A missing
// or non-list data path yields zero events: mapping misses are normal.
func (s *genericStrategy) Extract(payload any, integration *domain.Integration) ([]domain.NormalizedEvent, error) {
	m := integration.Mapping.WithDefaults(s.defaults)

	resolved, ok := m.DataPath.Resolve(payload)
	if !ok {
		s.logger.Debug().
			Str("integration", integration.ID).
			Str("dataPath", m.DataPath.String()).
			Msg("Data path resolved to nothing")
		return nil, nil
	}
	items, ok := resolved.([]any)
	if !ok {
		s.logger.Warn().
			Str("integration", integration.ID).
			Str("dataPath", m.DataPath.String()).
			Msg("Data path did not resolve to a list")
		return nil, nil
	}
	if s.maxItems > 0 && len(items) > s.maxItems {
		items = items[:s.maxItems]
	}

	events := make([]domain.NormalizedEvent, 0, len(items))
	for idx, item := range items {
		dateStr, dateOK := m.DateField.ResolveString(item)
		title, titleOK := m.TitleField.ResolveString(item)
		if !dateOK || !titleOK || title == "" {
			s.logger.Warn().
				Str("integration", integration.ID).
				Int("item", idx).
				Bool("hasDate", dateOK).
				Bool("hasTitle", titleOK && title != "").
				Msg("Skipping item missing required date or title field")
			continue
		}

		event := domain.NormalizedEvent{
			Date:                domain.ParseDateOrToday(dateStr),
			Title:               title,
			Color:               m.Color,
			Icon:                m.Icon,
			Priority:            domain.PriorityNormal,
			SourceIntegrationID: integration.ID,
		}
		if desc, ok := m.DescriptionField.ResolveString(item); ok {
			event.Body = desc
		}
		if icon, ok := m.IconField.ResolveString(item); ok {
			event.Icon = icon
		}
		if color, ok := m.ColorField.ResolveString(item); ok {
			event.Color = color
		}
		if raw, err := json.Marshal(item); err == nil {
			event.RawPayload = raw
		}
		if s.decorate != nil {
			s.decorate(&event, item, m)
		}
		events = append(events, event)
	}
	return events, nil
}
