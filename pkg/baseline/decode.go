package baseline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// ErrUnsupportedPayload is returned when no decoder produced an object or an
// array of objects.
var ErrUnsupportedPayload = errors.New("extraction payload is not an object or array")

// DecodeRecords decodes the extraction service payload: a JSON array of
// records or a single record. Payloads written by a language model are often
// not strict JSON, so repair and then Hjson are tried before giving up.
// Empty input yields no records.
func DecodeRecords(data []byte) ([]Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var errs []error
	for _, decode := range []func([]byte) (any, error){decodeStrict, decodeRepaired, decodeHjson} {
		v, err := decode(data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records, ok := toRecords(v)
		if !ok {
			errs = append(errs, ErrUnsupportedPayload)
			continue
		}
		return records, nil
	}
	return nil, fmt.Errorf("decoding extraction payload: %w", errors.Join(errs...))
}

func decodeStrict(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("strict json: %w", err)
	}
	return v, nil
}

func decodeRepaired(data []byte) (any, error) {
	repaired, err := jsonrepair.RepairJSON(string(data))
	if err != nil {
		return nil, fmt.Errorf("json repair: %w", err)
	}
	var v any
	if err := json.Unmarshal([]byte(repaired), &v); err != nil {
		return nil, fmt.Errorf("repaired json: %w", err)
	}
	return v, nil
}

func decodeHjson(data []byte) (any, error) {
	var v any
	if err := hjson.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("hjson: %w", err)
	}
	return v, nil
}

func toRecords(v any) ([]Record, bool) {
	switch t := v.(type) {
	case map[string]any:
		return []Record{toRecord(t)}, true
	case []any:
		records := make([]Record, 0, len(t))
		for _, elem := range t {
			m, ok := elem.(map[string]any)
			if !ok {
				return nil, false
			}
			records = append(records, toRecord(m))
		}
		return records, true
	default:
		return nil, false
	}
}

func toRecord(m map[string]any) Record {
	bag, _ := m["financial_data"].(map[string]any)
	return Record{FinancialData: bag}
}
