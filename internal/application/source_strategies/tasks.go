package source_strategies

import (
	"floristeria-calendar-sync/internal/domain"

	"github.com/rs/zerolog"
)

// NewTasksStrategy extracts task lists, coloring each event by its
// status: completed/done green, overdue/urgent red, anything else amber.
func NewTasksStrategy(logger zerolog.Logger) *genericStrategy {
	return &genericStrategy{
		kind: domain.SourceTasks,
		defaults: domain.Mapping{
			DataPath:    domain.MustFieldPath("tasks"),
			DateField:   domain.MustFieldPath("due_date"),
			TitleField:  domain.MustFieldPath("title"),
			StatusField: domain.MustFieldPath("status"),
			Icon:        "fas fa-tasks",
			Color:       "#ffc107",
		},
		decorate: func(event *domain.NormalizedEvent, item any, m domain.Mapping) {
			status, ok := m.StatusField.ResolveString(item)
			if !ok || status == "" {
				return
			}
			switch status {
			case "completed", "done":
				event.Color = "#28a745"
			case "overdue", "urgent":
				event.Color = "#dc3545"
			default:
				event.Color = "#ffc107"
			}
			if event.Body == "" {
				event.Body = "Estado: " + status
			}
		},
		logger: logger,
	}
}
