package batch

import (
	"encoding/json"
	"fmt"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// ParseStringOrArray parses a parameter that can be either a single string
// or an array of strings. Tool arguments accept both so a caller acting on
// one thread does not have to wrap it in a list.
func ParseStringOrArray(param interface{}, paramName string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", paramName)
	}

	var result []string

	switch v := param.(type) {
	case string:
		if v == "" {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		result = []string{v}
	case []interface{}:
		if len(v) == 0 {
			return nil, fmt.Errorf("%s cannot be empty", paramName)
		}
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", paramName, i)
			}
			if str == "" {
				return nil, fmt.Errorf("%s[%d] cannot be empty", paramName, i)
			}
			result = append(result, str)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", paramName)
	}

	return result, nil
}

// report is the JSON shape handed back to tool callers for a batch
// operation. Per-item outcomes are always listed; mixed results are never
// collapsed.
type report struct {
	Total     int                   `json:"total"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
	Success   []string              `json:"success,omitempty"`
	Errors    []mailbox.ItemFailure `json:"errors,omitempty"`
}

// FormatResult renders a batch result as indented JSON.
func FormatResult(res mailbox.BatchResult) string {
	r := report{
		Total:     len(res.Succeeded) + len(res.Failed),
		Succeeded: len(res.Succeeded),
		Failed:    len(res.Failed),
		Success:   res.Succeeded,
		Errors:    res.Failed,
	}
	data, _ := json.MarshalIndent(r, "", "  ")
	return string(data)
}
