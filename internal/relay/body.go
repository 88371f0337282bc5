package relay

import "encoding/json"

// EncodeHeaders serializes a header map for the jsonb column. Absent headers
// become an empty object, never null.
func EncodeHeaders(headers map[string]string) json.RawMessage {
	if headers == nil {
		headers = map[string]string{}
	}
	data, err := json.Marshal(headers)
	if err != nil {
		return json.RawMessage(`{}`)
	}
	return data
}

// EncodeBody serializes a body value for the jsonb column. A nil body stays
// NULL. A body that decoded to a bare string is stored as its JSON string
// encoding (double-encoded relative to the submitted text), while structured
// bodies are stored as-is; listing a record round-trips either form exactly.
func EncodeBody(body any) json.RawMessage {
	if body == nil {
		return nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil
	}
	return data
}
