package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/joho/godotenv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dma/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-dma/internal/indicator"
	"github.com/rxtech-lab/argo-dma/internal/strategy"
	"github.com/rxtech-lab/argo-dma/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DataProvider selects where the run gets its bars from.
type DataProvider string

const (
	DataProviderPolygon DataProvider = "polygon"
	DataProviderBinance DataProvider = "binance"
	// DataProviderFile reads an existing parquet or CSV file from DataPath.
	DataProviderFile DataProvider = "file"
)

var AllDataProviders = []any{
	DataProviderPolygon,
	DataProviderBinance,
	DataProviderFile,
}

const (
	DefaultSymbol         = "GOOG"
	DefaultInitialCapital = 100000.0
	DefaultShortWindow    = 100
	DefaultLongWindow     = 400
	DefaultQuantity       = 100.0
	DefaultOutputPrefix   = "dma_output"
	DefaultDataDir        = "data"

	// PolygonAPIKeyEnv is read from the environment or from a .env file.
	PolygonAPIKeyEnv = "POLYGON_API_KEY"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
}

// RunConfig is everything a single backtest run needs.
type RunConfig struct {
	Symbol         string                `yaml:"symbol" json:"symbol" validate:"required" jsonschema:"title=Symbol,description=Ticker to backtest,default=GOOG"`
	StartDate      time.Time             `yaml:"start_date" json:"start_date" validate:"required" jsonschema:"title=Start Date,description=First day of the backtest (YYYY-MM-DD or RFC3339)"`
	EndDate        time.Time             `yaml:"end_date" json:"end_date" validate:"required,gtfield=StartDate" jsonschema:"title=End Date,description=Last day of the backtest (YYYY-MM-DD or RFC3339)"`
	Adjusted       bool                  `yaml:"adjusted" json:"adjusted" jsonschema:"title=Adjusted,description=Request split and dividend adjusted prices,default=false"`
	InitialCapital float64               `yaml:"initial_capital" json:"initial_capital" validate:"gt=0" jsonschema:"title=Initial Capital,description=Starting capital for the backtest in USD,minimum=0,default=100000"`
	ShortWindow    int                   `yaml:"short_window" json:"short_window" validate:"gt=0" jsonschema:"title=Short Window,description=Bars in the short moving average,minimum=1,default=100"`
	LongWindow     int                   `yaml:"long_window" json:"long_window" validate:"gt=0,gtfield=ShortWindow" jsonschema:"title=Long Window,description=Bars in the long moving average,minimum=2,default=400"`
	Quantity       float64               `yaml:"quantity" json:"quantity" validate:"gt=0" jsonschema:"title=Quantity,description=Shares bought on entry and sold on exit,minimum=0,default=100"`
	Broker         commission_fee.Broker `yaml:"broker" json:"broker" validate:"required" jsonschema:"title=Broker,description=The broker to use for commission calculations"`
	WarmUp         indicator.WarmUpMode  `yaml:"warm_up" json:"warm_up" validate:"required" jsonschema:"title=Warm Up,description=How the moving averages behave before the window is full"`
	Provider       DataProvider          `yaml:"provider" json:"provider" validate:"required" jsonschema:"title=Provider,description=Where the bars are loaded from"`
	// DataPath is the download directory for polygon/binance, or the input file for file.
	DataPath         string                  `yaml:"data_path" json:"data_path" jsonschema:"title=Data Path,description=Download directory or input data file"`
	OutputPrefix     string                  `yaml:"output_prefix" json:"output_prefix" validate:"required" jsonschema:"title=Output Prefix,description=Prefix of the PDF report file name,default=dma_output"`
	OutputDir        optional.Option[string] `yaml:"output_dir" json:"output_dir" jsonschema:"title=Output Directory,description=Directory the report and performance files are written to"`
	DecimalPrecision optional.Option[int]    `yaml:"decimal_precision" json:"decimal_precision" jsonschema:"title=Decimal Precision,description=Decimals kept on filled quantities,minimum=0"`

	PolygonAPIKey string `yaml:"-" json:"-"`
}

// Default returns the configuration used when no file or flag overrides a field.
func Default() RunConfig {
	return RunConfig{
		Symbol:           DefaultSymbol,
		StartDate:        time.Date(2002, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2013, 10, 31, 0, 0, 0, 0, time.UTC),
		Adjusted:         false,
		InitialCapital:   DefaultInitialCapital,
		ShortWindow:      DefaultShortWindow,
		LongWindow:       DefaultLongWindow,
		Quantity:         DefaultQuantity,
		Broker:           commission_fee.BrokerZero,
		WarmUp:           indicator.WarmUpNaN,
		Provider:         DataProviderPolygon,
		DataPath:         DefaultDataDir,
		OutputPrefix:     DefaultOutputPrefix,
		OutputDir:        optional.None[string](),
		DecimalPrecision: optional.None[int](),
		PolygonAPIKey:    "",
	}
}

// UnmarshalYAML decodes a config on top of the defaults. Dates accept
// YYYY-MM-DD as well as RFC3339.
func (c *RunConfig) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig struct {
		Symbol           *string  `yaml:"symbol"`
		StartDate        *string  `yaml:"start_date"`
		EndDate          *string  `yaml:"end_date"`
		Adjusted         *bool    `yaml:"adjusted"`
		InitialCapital   *float64 `yaml:"initial_capital"`
		ShortWindow      *int     `yaml:"short_window"`
		LongWindow       *int     `yaml:"long_window"`
		Quantity         *float64 `yaml:"quantity"`
		Broker           *string  `yaml:"broker"`
		WarmUp           *string  `yaml:"warm_up"`
		Provider         *string  `yaml:"provider"`
		DataPath         *string  `yaml:"data_path"`
		OutputPrefix     *string  `yaml:"output_prefix"`
		OutputDir        *string  `yaml:"output_dir"`
		DecimalPrecision *int     `yaml:"decimal_precision"`
	}

	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	config := Default()

	if raw.Symbol != nil {
		config.Symbol = *raw.Symbol
	}

	if raw.StartDate != nil {
		startDate, err := ParseDate(*raw.StartDate)
		if err != nil {
			return fmt.Errorf("start_date: %w", err)
		}

		config.StartDate = startDate
	}

	if raw.EndDate != nil {
		endDate, err := ParseDate(*raw.EndDate)
		if err != nil {
			return fmt.Errorf("end_date: %w", err)
		}

		config.EndDate = endDate
	}

	if raw.Adjusted != nil {
		config.Adjusted = *raw.Adjusted
	}

	if raw.InitialCapital != nil {
		config.InitialCapital = *raw.InitialCapital
	}

	if raw.ShortWindow != nil {
		config.ShortWindow = *raw.ShortWindow
	}

	if raw.LongWindow != nil {
		config.LongWindow = *raw.LongWindow
	}

	if raw.Quantity != nil {
		config.Quantity = *raw.Quantity
	}

	if raw.Broker != nil {
		config.Broker = commission_fee.Broker(*raw.Broker)
	}

	if raw.WarmUp != nil {
		config.WarmUp = indicator.WarmUpMode(*raw.WarmUp)
	}

	if raw.Provider != nil {
		config.Provider = DataProvider(*raw.Provider)
	}

	if raw.DataPath != nil {
		config.DataPath = *raw.DataPath
	}

	if raw.OutputPrefix != nil {
		config.OutputPrefix = *raw.OutputPrefix
	}

	if raw.OutputDir != nil {
		config.OutputDir = optional.Some(*raw.OutputDir)
	}

	if raw.DecimalPrecision != nil {
		config.DecimalPrecision = optional.Some(*raw.DecimalPrecision)
	}

	*c = config

	return nil
}

// ParseDate parses a YYYY-MM-DD or RFC3339 date into UTC.
func ParseDate(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, errors.Newf(errors.ErrCodeInvalidDateRange, "invalid date %q, expected YYYY-MM-DD or RFC3339", value)
}

// Parse decodes a YAML config and validates it.
func Parse(data []byte) (RunConfig, error) {
	config := Default()

	if err := yaml.Unmarshal(data, &config); err != nil {
		return RunConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config", err)
	}

	config.PolygonAPIKey = os.Getenv(PolygonAPIKeyEnv)

	if err := config.Validate(); err != nil {
		return RunConfig{}, err
	}

	return config, nil
}

// Load reads and parses the YAML config at path.
func Load(path string) (RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunConfig{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
	}

	return Parse(data)
}

// LoadEnv loads variables from the given .env files into the process environment.
// Missing files are ignored. Variables already set are not overwritten.
func LoadEnv(paths ...string) error {
	existing := make([]string, 0, len(paths))

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}

	if len(existing) == 0 {
		return nil
	}

	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}

	return nil
}

// Validate checks field constraints and cross-field rules.
func (c *RunConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid config", err)
	}

	if _, err := commission_fee.ParseBroker(string(c.Broker)); err != nil {
		return err
	}

	switch c.WarmUp {
	case indicator.WarmUpNaN, indicator.WarmUpPartial, indicator.WarmUpSkip:
	default:
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported warm_up mode: %s", c.WarmUp)
	}

	switch c.Provider {
	case DataProviderPolygon:
		if c.PolygonAPIKey == "" {
			return errors.Newf(errors.ErrCodeMissingParameter, "%s is required for the polygon provider", PolygonAPIKeyEnv)
		}
	case DataProviderBinance:
	case DataProviderFile:
		if c.DataPath == "" {
			return errors.New(errors.ErrCodeMissingParameter, "data_path is required for the file provider")
		}
	default:
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported provider: %s", c.Provider)
	}

	if precision, err := c.DecimalPrecision.Take(); err == nil && precision < 0 {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "decimal_precision must not be negative, got %d", precision)
	}

	return nil
}

// StrategyParams returns the parameters passed to the strategy initializer.
func (c *RunConfig) StrategyParams() strategy.Params {
	return strategy.Params{
		Symbol:      c.Symbol,
		ShortWindow: c.ShortWindow,
		LongWindow:  c.LongWindow,
		Quantity:    c.Quantity,
	}
}

// OutputDirectory returns the configured output directory, or the working directory.
func (c *RunConfig) OutputDirectory() string {
	return c.OutputDir.TakeOr(".")
}

// GenerateSchema generates a JSON schema for the RunConfig
func (c *RunConfig) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			switch {
			case t == reflect.TypeOf(time.Time{}):
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date",
				}
			case t.String() == "optional.Option[string]":
				return &jsonschema.Schema{
					Type: "string",
				}
			case t.String() == "optional.Option[int]":
				return &jsonschema.Schema{
					Type: "integer",
				}
			case strings.Contains(t.String(), "commission_fee.Broker"):
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			case strings.Contains(t.String(), "indicator.WarmUpMode"):
				return &jsonschema.Schema{
					Type: "string",
					Enum: indicator.AllWarmUpModes,
				}
			case strings.Contains(t.String(), "config.DataProvider"):
				return &jsonschema.Schema{
					Type: "string",
					Enum: AllDataProviders,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "dma-run-config"
	schema.Description = "Configuration schema for a dual moving average backtest run"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the RunConfig
func (c *RunConfig) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
