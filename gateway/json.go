package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// ErrorBody is the reply of the failed request
type ErrorBody struct {
	RequestId string      `json:"request_id"`
	Error     ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func newRequestId() string { return "req_" + uuid.NewString() }

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, message string, details interface{}) {
	writeJSON(w, status, ErrorBody{
		RequestId: newRequestId(),
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
