// Package config defines the data structures related to configuration and
// includes functions for loading and parsing a business plan.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iwvelando/proforma/pkg/constants"
	"github.com/iwvelando/proforma/pkg/format"
	"github.com/iwvelando/proforma/pkg/validation"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration holds a business plan plus the settings for rendering it.
type Configuration struct {
	Plan    `mapstructure:",squash" yaml:",inline"`
	Logging LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output  OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json, markdown, xlsx
	File   string `yaml:"file,omitempty" mapstructure:"file"`     // required for xlsx
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// plan there. Environment variables prefixed with PROFORMA_ override scalar
// settings, e.g. PROFORMA_OUTPUT_FORMAT=json. Rows without an id are given one.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range []string{"logging.level", "logging.format", "logging.outputFile", "output.format", "output.file"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment for %s, %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		format.RawDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}

	configuration.AssignIDs()
	return &configuration, nil
}

// ParsePlan decodes a plan submitted as JSON or YAML. The format is taken
// from contentType when it names one and sniffed from the body otherwise.
func ParsePlan(data []byte, contentType string) (*Plan, error) {
	var plan Plan
	if isJSON(data, contentType) {
		if err := json.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("unable to decode JSON plan, %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("unable to decode YAML plan, %w", err)
		}
	}
	plan.AssignIDs()
	return &plan, nil
}

func isJSON(data []byte, contentType string) bool {
	switch {
	case strings.Contains(contentType, "json"):
		return true
	case strings.Contains(contentType, "yaml"), strings.Contains(contentType, "yml"):
		return false
	}
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	if c.Output.Format == constants.OutputFormatXLSX && c.Output.File == "" {
		warnings = append(warnings, "xlsx output requires output.file")
	}
	return append(warnings, c.Plan.Validate()...)
}
