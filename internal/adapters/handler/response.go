package handler

import (
	"encoding/json"
	"net/http"
)

// APIResponse is the envelope of the operator-facing JSON endpoints. The
// webhook endpoint does not use it: Facebook expects plain bodies there.
type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// NewSuccessResponse wraps data in a 200 envelope.
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{Code: http.StatusOK, Message: "Success", Data: data}
}

// NewErrorResponse creates an error envelope with no data.
func NewErrorResponse(code int, message string) APIResponse {
	return APIResponse{Code: code, Message: message}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
