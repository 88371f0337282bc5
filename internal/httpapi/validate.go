package httpapi

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// supportedMethods is the fixed enumeration the pipeline accepts. Anything
// else is rejected before an outbound call is attempted.
var supportedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

func normalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// validateTarget checks method and URL, appending field errors.
func validateTarget(method, rawURL string, errs []string) []string {
	if !supportedMethods[method] {
		errs = append(errs, "Method must be one of GET, POST, PUT, PATCH, DELETE.")
	}
	if strings.TrimSpace(rawURL) == "" {
		errs = append(errs, "URL is required.")
		return errs
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "URL must be a valid absolute URL.")
	}
	return errs
}

// parseJSONField decodes a raw JSON field into a value. A field given as a
// JSON string is treated as serialized JSON text and parsed again; a parse
// failure names the offending field. Absent and null fields yield nil.
func parseJSONField(raw json.RawMessage, field string) (any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == `""` {
		return nil, nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("%s must be valid JSON.", field)
	}

	if text, ok := value.(string); ok {
		var nested any
		if err := json.Unmarshal([]byte(text), &nested); err != nil {
			return nil, fmt.Errorf("%s must be valid JSON.", field)
		}
		return nested, nil
	}
	return value, nil
}

// parseHeadersField turns the headers field into a string map. Headers
// default to an empty mapping, never nil. Scalar values are coerced to
// their text form; nested values are rejected.
func parseHeadersField(raw json.RawMessage) (map[string]string, error) {
	value, err := parseJSONField(raw, "headers")
	if err != nil {
		return nil, err
	}
	if value == nil {
		return map[string]string{}, nil
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("headers must be a JSON object.")
	}
	headers := make(map[string]string, len(obj))
	for k, v := range obj {
		s, err := headerValue(v)
		if err != nil {
			return nil, fmt.Errorf("headers value for %q must be a scalar.", k)
		}
		headers[k] = s
	}
	return headers, nil
}

func headerValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	default:
		return "", fmt.Errorf("not a scalar")
	}
}
