package marketdata

import (
	"sort"

	"github.com/rxtech-lab/argo-dma/pkg/errors"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name         string `json:"name" yaml:"name"`
	DisplayName  string `json:"displayName" yaml:"display_name"`
	Description  string `json:"description" yaml:"description"`
	RequiresAuth bool   `json:"requiresAuth" yaml:"requires_auth"`
	// AdjustedPrices is true when the provider can return split and dividend adjusted bars.
	AdjustedPrices bool `json:"adjustedPrices" yaml:"adjusted_prices"`
}

var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderPolygon: {
		Name:           string(ProviderPolygon),
		DisplayName:    "Polygon.io",
		Description:    "US stock market data provider with historical OHLCV data",
		RequiresAuth:   true,
		AdjustedPrices: true,
	},
	ProviderBinance: {
		Name:           string(ProviderBinance),
		DisplayName:    "Binance",
		Description:    "Cryptocurrency exchange with extensive market data for crypto trading pairs",
		RequiresAuth:   false,
		AdjustedPrices: false,
	},
}

// GetSupportedProviders returns the names of all supported providers in alphabetical order.
func GetSupportedProviders() []string {
	providers := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		providers = append(providers, string(providerType))
	}

	sort.Strings(providers)

	return providers
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported provider: %s", providerName)
	}

	return info, nil
}
