package extractor

import (
	"fmt"

	"cart-extractor/adapters"
	"cart-extractor/internal/types"
)

// NewDefaultRegistry registers every built-in strategy and the generic
// fallback. Priority order: bespoke strategies, embedded site configs,
// then configs from config.SitesFile.
func NewDefaultRegistry(config *types.Config, logger types.Logger) (*Registry, error) {
	if config == nil {
		config = types.DefaultConfig()
	}
	registry := NewRegistry(config, logger)

	registry.RegisterAll(
		adapters.NewAmazonAdapter(config, logger),
		adapters.NewTargetAdapter(config, logger),
		adapters.NewCostcoAdapter(config, logger),
	)

	sites, err := adapters.DefaultSiteConfigs()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in site configs: %w", err)
	}
	if config.SitesFile != "" {
		extra, err := adapters.LoadSiteConfigFile(config.SitesFile)
		if err != nil {
			return nil, err
		}
		logger.Infof("Loaded %d site configs from %s", len(extra), config.SitesFile)
		sites = append(sites, extra...)
	}

	for _, site := range sites {
		strategy, err := adapters.NewDeclarativeAdapter(site, config, logger)
		if err != nil {
			return nil, err
		}
		registry.Register(strategy)
	}

	registry.SetFallback(adapters.NewGenericAdapter(config, logger))

	if err := registry.Validate(); err != nil {
		return nil, err
	}

	logger.Debugf("Registry ready with %d strategies", len(registry.Strategies()))
	return registry, nil
}
