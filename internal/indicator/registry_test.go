package indicator

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) specs() []Spec {
	return []Spec{
		{Name: "short_mavg", Window: 2},
		{Name: "long_mavg", Window: 4},
	}
}

func (suite *RegistryTestSuite) TestRegisterAndGet() {
	registry := NewTransformRegistry()

	ma, err := NewMovingAverage("short_mavg", 2, WarmUpNaN)
	suite.Require().NoError(err)
	suite.Require().NoError(registry.RegisterTransform(ma))

	got, err := registry.GetTransform("short_mavg")
	suite.NoError(err)
	suite.Equal(ma, got)

	_, err = registry.GetTransform("long_mavg")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestRegisterDuplicate() {
	registry := NewTransformRegistry()

	first, _ := NewMovingAverage("short_mavg", 2, WarmUpNaN)
	second, _ := NewMovingAverage("short_mavg", 5, WarmUpNaN)

	suite.Require().NoError(registry.RegisterTransform(first))

	err := registry.RegisterTransform(second)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
}

func (suite *RegistryTestSuite) TestFromSpecsKeepsOrder() {
	registry, err := NewTransformRegistryFromSpecs(suite.specs(), WarmUpNaN)
	suite.Require().NoError(err)
	suite.Equal([]string{"short_mavg", "long_mavg"}, registry.ListTransforms())
}

func (suite *RegistryTestSuite) TestFromSpecsInvalidWindow() {
	_, err := NewTransformRegistryFromSpecs([]Spec{{Name: "short_mavg", Window: 0}}, WarmUpNaN)
	suite.Error(err)
	suite.Contains(err.Error(), "failed to create transform short_mavg")
}

func (suite *RegistryTestSuite) TestUpdateValuesAndReady() {
	registry, err := NewTransformRegistryFromSpecs(suite.specs(), WarmUpNaN)
	suite.Require().NoError(err)

	for _, price := range []float64{1, 2, 3} {
		suite.Require().NoError(registry.Update(price))
	}

	values := registry.Values()
	suite.InDelta(2.5, values["short_mavg"], 1e-9)
	suite.True(math.IsNaN(values["long_mavg"]))
	suite.False(registry.Ready())

	suite.Require().NoError(registry.Update(4))
	suite.True(registry.Ready())
	suite.InDelta(2.5, registry.Values()["long_mavg"], 1e-9)

	registry.Reset()
	suite.False(registry.Ready())
	suite.True(math.IsNaN(registry.Values()["short_mavg"]))
}

func (suite *RegistryTestSuite) TestUpdatePropagatesError() {
	registry, err := NewTransformRegistryFromSpecs(suite.specs(), WarmUpNaN)
	suite.Require().NoError(err)

	err = registry.Update(math.NaN())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorCalculation))
}
