package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"oc-ticketing/internal/admin"
	"oc-ticketing/internal/apiclient"
	"oc-ticketing/internal/app"
	"oc-ticketing/internal/navigation"
	"oc-ticketing/internal/purchase"
	"oc-ticketing/internal/receipt"
)

// APIResponse is the envelope of every JSON answer.
type APIResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func SuccessResponse(message string, data any) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data, Timestamp: time.Now()}
}

func ErrorResponse(message, err string) APIResponse {
	return APIResponse{Success: false, Message: message, Error: err, Timestamp: time.Now()}
}

func writeJSON(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, SuccessResponse(message, data))
}

// fail maps err to a status and answers with the user-facing message: the
// backend's own text for rejected requests, fallback otherwise.
func fail(w http.ResponseWriter, err error, fallback string) {
	status := http.StatusInternalServerError
	var apiErr *apiclient.Error

	switch {
	case errors.Is(err, navigation.ErrUnknownPage),
		errors.Is(err, navigation.ErrBadPayload),
		errors.Is(err, purchase.ErrNoMatchSelected),
		errors.Is(err, purchase.ErrSelectionIncomplete),
		errors.Is(err, admin.ErrMissingFields),
		errors.Is(err, admin.ErrInvalidStatus),
		errors.Is(err, admin.ErrNotConfirmed),
		errors.Is(err, app.ErrMissingCredentials),
		errors.Is(err, app.ErrMissingFields),
		errors.Is(err, app.ErrPasswordMismatch),
		errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, app.ErrMatchNotFound),
		errors.Is(err, admin.ErrMatchNotFound),
		errors.Is(err, admin.ErrNoEdit),
		errors.Is(err, app.ErrNoPurchase),
		errors.Is(err, receipt.ErrNoPurchase):
		status = http.StatusNotFound
	case errors.Is(err, purchase.ErrPurchaseInFlight):
		status = http.StatusConflict
	case errors.As(err, &apiErr),
		errors.Is(err, purchase.ErrNoDownloadURL):
		status = http.StatusBadGateway
	}

	writeJSON(w, status, ErrorResponse(apiclient.UserMessage(err, fallback), err.Error()))
}
