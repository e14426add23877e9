package marketdata

import (
	"testing"

	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ProviderRegistryTestSuite struct {
	suite.Suite
}

func TestProviderRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(ProviderRegistryTestSuite))
}

func (suite *ProviderRegistryTestSuite) TestGetSupportedProviders() {
	providers := GetSupportedProviders()

	suite.Equal([]string{"binance", "polygon"}, providers)
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo_Polygon() {
	info, err := GetProviderInfo("polygon")

	suite.NoError(err)
	suite.Equal("polygon", info.Name)
	suite.Equal("Polygon.io", info.DisplayName)
	suite.True(info.RequiresAuth)
	suite.True(info.AdjustedPrices)
	suite.NotEmpty(info.Description)
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo_Binance() {
	info, err := GetProviderInfo("binance")

	suite.NoError(err)
	suite.Equal("binance", info.Name)
	suite.Equal("Binance", info.DisplayName)
	suite.False(info.RequiresAuth)
	suite.False(info.AdjustedPrices)
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo_InvalidProvider() {
	_, err := GetProviderInfo("invalid")

	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
	suite.Contains(err.Error(), "unsupported provider")
}
