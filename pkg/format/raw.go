package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Raw is a numeric value exactly as the user typed it, in European format.
// Numbers arriving through JSON, YAML or viper are converted to their European
// rendering so that a decimal point is never mistaken for a thousands separator.
type Raw string

// RawFromFloat renders v as an ungrouped European decimal ("12,5").
func RawFromFloat(v float64) Raw {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return Raw(strings.Replace(decimal.NewFromFloat(v).String(), ".", ",", 1))
}

// Amount parses the raw value; see ParseAmount.
func (r Raw) Amount() float64 {
	return ParseAmount(string(r))
}

// IsBlank reports whether nothing was entered.
func (r Raw) IsBlank() bool {
	return strings.TrimSpace(string(r)) == ""
}

// UnmarshalJSON accepts strings, numbers and null.
func (r *Raw) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*r = Raw(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("expected string or number amount, got %s", string(trimmed))
	}
	f, err := n.Float64()
	if err != nil {
		return fmt.Errorf("invalid numeric amount %s: %w", n, err)
	}
	*r = RawFromFloat(f)
	return nil
}

// UnmarshalYAML accepts scalar strings, ints, floats and null.
func (r *Raw) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected scalar amount", value.Line)
	}
	switch value.ShortTag() {
	case "!!null":
		*r = ""
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(value.Value, 64)
		if err != nil {
			*r = Raw(value.Value)
			return nil
		}
		*r = RawFromFloat(f)
	default:
		*r = Raw(value.Value)
	}
	return nil
}

var rawType = reflect.TypeOf(Raw(""))

// RawDecodeHook converts numbers decoded by viper into Raw values.
func RawDecodeHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != rawType {
			return data, nil
		}
		v := reflect.ValueOf(data)
		switch from.Kind() {
		case reflect.Float32, reflect.Float64:
			return RawFromFloat(v.Float()), nil
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return RawFromFloat(float64(v.Int())), nil
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return RawFromFloat(float64(v.Uint())), nil
		}
		return data, nil
	}
}
