package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-dma/internal/config"
	"github.com/stretchr/testify/suite"
)

type SchemaCommandTestSuite struct {
	suite.Suite
	dir string
}

func TestSchemaCommandSuite(t *testing.T) {
	suite.Run(t, new(SchemaCommandTestSuite))
}

func (suite *SchemaCommandTestSuite) SetupTest() {
	suite.dir = filepath.Join(suite.T().TempDir(), "config")
	suite.T().Setenv(config.PolygonAPIKeyEnv, "test-key")
}

func (suite *SchemaCommandTestSuite) TestWriteSchema() {
	suite.Require().NoError(writeSchema(suite.dir, `{"title":"dma-run-config"}`))

	schema, err := os.ReadFile(filepath.Join(suite.dir, schemaFileName))
	suite.Require().NoError(err)
	suite.Contains(string(schema), "dma-run-config")

	sample, err := os.ReadFile(filepath.Join(suite.dir, sampleConfigFileName))
	suite.Require().NoError(err)
	suite.Contains(string(sample), "$schema="+schemaFileName)

	// the sample must load as a valid config
	cfg, err := config.Parse(sample)
	suite.Require().NoError(err)
	suite.Equal(config.Default().Symbol, cfg.Symbol)
	suite.Equal(config.Default().StartDate, cfg.StartDate)
	suite.Equal(config.Default().LongWindow, cfg.LongWindow)
}

func (suite *SchemaCommandTestSuite) TestKeepsExistingSample() {
	suite.Require().NoError(os.MkdirAll(suite.dir, 0755))

	samplePath := filepath.Join(suite.dir, sampleConfigFileName)
	suite.Require().NoError(os.WriteFile(samplePath, []byte("symbol: SPY\n"), 0644))

	suite.Require().NoError(writeSchema(suite.dir, "{}"))

	sample, err := os.ReadFile(samplePath)
	suite.Require().NoError(err)
	suite.Equal("symbol: SPY\n", string(sample))
}
