package extractor

import (
	"errors"
	"fmt"
	"time"

	"cart-extractor/adapters"
	"cart-extractor/internal/types"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoFallback means the registry was never given a fallback strategy.
// A correctly bootstrapped registry cannot return it.
var ErrNoFallback = errors.New("no fallback strategy registered")

// Registry resolves a hostname to a site strategy and runs it.
// Registration happens once at startup; afterwards the registry is only
// read and may be shared between goroutines.
type Registry struct {
	order      []string
	strategies map[string]types.SiteStrategy
	fallback   types.SiteStrategy
	validator  *adapters.Validator
	logger     types.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(config *types.Config, logger types.Logger) *Registry {
	if config == nil {
		config = types.DefaultConfig()
	}
	return &Registry{
		strategies: make(map[string]types.SiteStrategy),
		validator:  adapters.NewValidator(config.ExtraNoiseWords),
		logger:     logger,
	}
}

// Register adds a strategy under its site ID. Registering the same ID again
// replaces the earlier strategy but keeps its priority slot.
func (r *Registry) Register(strategy types.SiteStrategy) {
	id := strategy.SiteID()
	if _, exists := r.strategies[id]; exists {
		r.logger.Warnf("Strategy %s registered twice, replacing previous registration", id)
	} else {
		r.order = append(r.order, id)
	}
	r.strategies[id] = strategy
	r.logger.Debugf("Registered strategy %s (%s) for %v", id, strategy.DisplayName(), strategy.URLPatterns())
}

// RegisterAll registers strategies in order
func (r *Registry) RegisterAll(strategies ...types.SiteStrategy) {
	for _, s := range strategies {
		r.Register(s)
	}
}

// SetFallback sets the strategy used when no registered strategy claims a
// hostname
func (r *Registry) SetFallback(strategy types.SiteStrategy) {
	if r.fallback != nil {
		r.logger.Debugf("Replacing fallback strategy %s with %s", r.fallback.SiteID(), strategy.SiteID())
	}
	r.fallback = strategy
}

// Validate reports configuration defects that would make extraction
// impossible
func (r *Registry) Validate() error {
	if r.fallback == nil {
		return ErrNoFallback
	}
	return nil
}

// Strategies returns the registered strategies in priority order
func (r *Registry) Strategies() []types.SiteStrategy {
	out := make([]types.SiteStrategy, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.strategies[id])
	}
	return out
}

// Fallback returns the fallback strategy, or nil if none is set
func (r *Registry) Fallback() types.SiteStrategy {
	return r.fallback
}

// FindExtractor returns the first registered strategy that can handle
// hostname, in registration order, or the fallback when none can
func (r *Registry) FindExtractor(hostname string) (types.SiteStrategy, error) {
	for _, id := range r.order {
		s := r.strategies[id]
		if s.CanHandle(hostname) {
			return s, nil
		}
	}

	if r.fallback == nil {
		return nil, fmt.Errorf("resolving %q: %w", hostname, ErrNoFallback)
	}
	return r.fallback, nil
}

// ExtractItems runs the strategy for hostname against doc. It never fails:
// a strategy error or panic is logged and yields an empty result. Every
// returned item has passed validation and names are unique.
func (r *Registry) ExtractItems(hostname string, doc *goquery.Document) []types.CartItem {
	items, _ := r.extract(hostname, doc)
	return items
}

// extract is ExtractItems that also reports which strategy ran
func (r *Registry) extract(hostname string, doc *goquery.Document) ([]types.CartItem, types.SiteStrategy) {
	startTime := time.Now()

	strategy, err := r.FindExtractor(hostname)
	if err != nil {
		r.logger.Errorf("Cart extraction impossible: %v", err)
		return []types.CartItem{}, nil
	}
	r.logger.Debugf("Using strategy %s for %s", strategy.SiteID(), hostname)

	raw, err := r.runStrategy(strategy, doc)
	if err != nil {
		r.logger.Errorf("Strategy %s failed for %s after %v: %v", strategy.SiteID(), hostname, time.Since(startTime), err)
		return []types.CartItem{}, strategy
	}

	items := adapters.DeduplicateItems(r.validator.Filter(raw))
	r.logger.Infof("Extracted %d items from %s with %s in %v", len(items), hostname, strategy.DisplayName(), time.Since(startTime))
	return items, strategy
}

func (r *Registry) runStrategy(strategy types.SiteStrategy, doc *goquery.Document) (items []types.CartItem, err error) {
	defer func() {
		if p := recover(); p != nil {
			items = nil
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	if doc == nil {
		return nil, errors.New("no document to extract from")
	}
	return strategy.Extract(doc)
}
