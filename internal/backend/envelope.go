package backend

import (
	"bytes"
	"encoding/json"
)

// The backend answers in one of two shapes: an envelope
// {"success": bool, "data": ..., "error": {...}} or a bare payload.
// DecodePayload is the single place that distinguishes the two; feature
// clients never probe response shapes themselves.

// ErrorBody is the backend's conventional error object.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorBody      `json:"error"`
	Message string          `json:"message"`
}

var jsonNull = []byte("null")

// DecodePayload unmarshals a backend response body into v, unwrapping the
// conventional envelope when present. An enveloped response with null data
// leaves v untouched.
func DecodePayload(body []byte, v any) error {
	if len(body) == 0 || v == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && isEnveloped(env) {
		if len(env.Data) == 0 || bytes.Equal(env.Data, jsonNull) {
			return nil
		}
		return json.Unmarshal(env.Data, v)
	}

	return json.Unmarshal(body, v)
}

func isEnveloped(env envelope) bool {
	return env.Success != nil || env.Error != nil || (len(env.Data) > 0 && !bytes.Equal(env.Data, jsonNull))
}

// parseError builds an APIError from a non-2xx body, pulling out the nested
// error code and message when the envelope carries them.
func parseError(body []byte) (code, message string) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", ""
	}
	if env.Error != nil {
		return env.Error.Code, env.Error.Message
	}
	return "", env.Message
}
