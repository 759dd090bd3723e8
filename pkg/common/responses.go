package common

import (
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "planner-backend/pkg/errors"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	response := APIResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, code, message string) {
	response := APIResponse{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}

// RespondAppError maps an application error onto the wire. Internal detail
// never leaks: persistence and internal errors surface as a generic message.
func RespondAppError(w http.ResponseWriter, err error) {
	status := pkgerrors.HTTPStatusFor(err)

	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) {
		message := appErr.Message
		if appErr.Type == pkgerrors.ErrorTypePersistence || appErr.Type == pkgerrors.ErrorTypeInternal {
			message = "something went wrong on our side"
		}
		RespondError(w, status, string(appErr.Type), message)
		return
	}

	RespondError(w, status, string(pkgerrors.ErrorTypeInternal), "something went wrong on our side")
}
