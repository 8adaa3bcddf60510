package source_strategies

import (
	"fmt"

	"floristeria-calendar-sync/internal/domain"
	"floristeria-calendar-sync/internal/ports"

	"github.com/rs/zerolog"
)

// Registry holds one strategy per source kind. The kind set is closed,
// so construction registers all of them and lookup failures only happen
// for data that bypassed ParseSourceKind.
type Registry struct {
	strategies map[domain.SourceKind]ports.SourceStrategy
}

// NewRegistry builds the registry with every known strategy.
func NewRegistry(logger zerolog.Logger) *Registry {
	r := &Registry{strategies: make(map[domain.SourceKind]ports.SourceStrategy)}
	for _, s := range []ports.SourceStrategy{
		NewWeatherStrategy(logger),
		NewEventsStrategy(logger),
		NewTasksStrategy(logger),
		NewCustomStrategy(logger),
		NewOrderStrategy(logger),
	} {
		r.strategies[s.Kind()] = s
	}
	return r
}

// For returns the strategy for a source kind.
func (r *Registry) For(kind domain.SourceKind) (ports.SourceStrategy, error) {
	s, ok := r.strategies[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedSourceKind, kind)
	}
	return s, nil
}
