package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// CovTypes lists the accepted covariance estimator keywords, in the
// spelling the estimator expects. "nonrobust" and "ordinary" are
// synonyms for the classical OLS covariance.
var CovTypes = []string{"nonrobust", "ordinary", "HC0", "HC1", "HC2", "HC3", "cluster"}

// Config represents the complete run configuration
type Config struct {
	Seed    int64         `yaml:"seed" envconfig:"SEED"`
	NRows   int           `yaml:"n_rows" envconfig:"N_ROWS" validate:"gte=1"`
	Model   ModelConfig   `yaml:"model" envconfig:"MODEL"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
}

// ModelConfig contains the regression specification
type ModelConfig struct {
	Formula string `yaml:"formula" envconfig:"FORMULA" validate:"required"`
	CovType string `yaml:"cov_type" envconfig:"COV_TYPE" validate:"required,covtype"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"omitempty,oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"omitempty,oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// fileConfig mirrors Config with pointer fields so that key presence in
// the YAML file can be distinguished from a zero value. seed: 0 is a
// legitimate setting and must not read as "key missing".
type fileConfig struct {
	Seed  *int64 `yaml:"seed"`
	NRows *int   `yaml:"n_rows"`
	Model *struct {
		Formula *string `yaml:"formula"`
		CovType *string `yaml:"cov_type"`
	} `yaml:"model"`
	Logging *LoggingConfig `yaml:"logging"`
}

// Load reads the YAML file at path, applies PANELFIT_* environment
// overrides on top, and validates the result. The four run keys (seed,
// n_rows, model.formula, model.cov_type) must be present in the file;
// the logging block is optional and falls back to Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if missing := fc.missingKeys(); len(missing) > 0 {
		return nil, fmt.Errorf("config file %s missing required key(s): %s", path, strings.Join(missing, ", "))
	}

	cfg := Default()
	fc.apply(cfg)

	// Environment overrides take precedence over file values
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// missingKeys returns the required keys absent from the file, in
// declaration order.
func (fc *fileConfig) missingKeys() []string {
	var missing []string
	if fc.Seed == nil {
		missing = append(missing, "seed")
	}
	if fc.NRows == nil {
		missing = append(missing, "n_rows")
	}
	if fc.Model == nil || fc.Model.Formula == nil {
		missing = append(missing, "model.formula")
	}
	if fc.Model == nil || fc.Model.CovType == nil {
		missing = append(missing, "model.cov_type")
	}
	return missing
}

// apply copies the file values onto cfg. Logging fields merge
// individually so a partial logging block keeps defaults for the rest.
func (fc *fileConfig) apply(cfg *Config) {
	if fc.Seed != nil {
		cfg.Seed = *fc.Seed
	}
	if fc.NRows != nil {
		cfg.NRows = *fc.NRows
	}
	if fc.Model != nil {
		if fc.Model.Formula != nil {
			cfg.Model.Formula = *fc.Model.Formula
		}
		if fc.Model.CovType != nil {
			cfg.Model.CovType = *fc.Model.CovType
		}
	}
	if fc.Logging != nil {
		if fc.Logging.Level != "" {
			cfg.Logging.Level = fc.Logging.Level
		}
		if fc.Logging.Format != "" {
			cfg.Logging.Format = fc.Logging.Format
		}
		if fc.Logging.Output != "" {
			cfg.Logging.Output = fc.Logging.Output
		}
		if fc.Logging.FilePath != "" {
			cfg.Logging.FilePath = fc.Logging.FilePath
		}
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("covtype", isCovType)

	// Use YAML key names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// isCovType reports whether the field holds one of the accepted
// covariance keywords. Matching is exact; HC estimators are uppercase.
func isCovType(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for _, ct := range CovTypes {
		if s == ct {
			return true
		}
	}
	return false
}

// Validate checks the configuration against its struct tags and
// returns a single error enumerating every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be at least %s (got %v)", fe.Field(), fe.Param(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %q)", fe.Field(), fe.Param(), fe.Value())
	case "covtype":
		return fmt.Sprintf("%s must be one of [%s] (got %q)", fe.Field(), strings.Join(CovTypes, " "), fe.Value())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Seed:  42,
		NRows: 5000,
		Model: ModelConfig{
			Formula: "y ~ treat + x",
			CovType: "cluster",
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "both",
			FilePath: "logs/run.log",
		},
	}
}
