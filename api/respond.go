package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}

// dataEnvelope wraps payloads the dashboard clients expect under a "data"
// key.
type dataEnvelope struct {
	Data any `json:"data"`
}

// flexID tolerates ids sent as JSON numbers or strings interchangeably.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	*f = flexID(string(b))
	return nil
}

func (f flexID) String() string { return string(f) }

// Int64 parses the id, 0 when empty or unparseable.
func (f flexID) Int64() int64 {
	if f == "" {
		return 0
	}
	v, err := strconv.ParseInt(string(f), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
