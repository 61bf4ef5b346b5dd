package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "pawhub/pkg/domain-errors"
)

// ErrorBody is the JSON error envelope the mock API writes and the API client
// reads back.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding failure cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError translates domain errors into HTTP status codes and error bodies.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), ErrorBody{
			Error:   string(domainErr.Code),
			Message: domainErr.Message,
		})
		return
	}

	WriteJSON(w, http.StatusInternalServerError, ErrorBody{Error: string(dErrors.CodeInternal)})
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeValidation:
		return http.StatusUnprocessableEntity
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HTTPStatusToDomainCode is the inverse mapping used by API clients.
func HTTPStatusToDomainCode(status int) dErrors.Code {
	switch {
	case status == http.StatusNotFound:
		return dErrors.CodeNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return dErrors.CodeValidation
	case status == http.StatusConflict:
		return dErrors.CodeConflict
	case status == http.StatusUnauthorized:
		return dErrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return dErrors.CodeForbidden
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return dErrors.CodeTimeout
	case status >= http.StatusInternalServerError:
		return dErrors.CodeUnavailable
	case status >= http.StatusBadRequest:
		return dErrors.CodeBadRequest
	default:
		return dErrors.CodeInternal
	}
}
