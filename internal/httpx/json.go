package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// responseEnvelope is the uniform wire shape for every response: exactly
// one of Data or Error is set, Time is the emission instant in UTC.
type responseEnvelope struct {
	Data  any    `json:"data,omitempty"`
	Time  string `json:"time"`
	Error any    `json:"error,omitempty"`
}

// WriteJSON wraps v in the response envelope and writes it with the given
// status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	writeEnvelope(w, status, responseEnvelope{Data: v})
}

// WriteError writes an error envelope. The body never carries data, so a
// client can branch on the presence of the error field alone.
func WriteError[T any](w http.ResponseWriter, status int, errBody ErrorResponse[T]) {
	writeEnvelope(w, status, responseEnvelope{Error: errBody})
}

func writeEnvelope(w http.ResponseWriter, status int, env responseEnvelope) {
	env.Time = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}
