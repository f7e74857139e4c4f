package response

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"eventers-ticketing/logger"
)

type ErrorResponse struct {
	StatusCode  int    `json:"-"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
}

func (r ErrorResponse) Error() string {
	return fmt.Sprintf("StatusCode: %d, Success: %t, Message: %s, Status: %s, Description: %s", r.StatusCode, r.Success, r.Message, r.Status, r.Description)
}

func (r ErrorResponse) Send(ctx context.Context, w http.ResponseWriter) {
	if r.StatusCode >= http.StatusInternalServerError {
		logger.Errorf(ctx, r.Error())
	} else {
		logger.Warnf(ctx, r.Error())
	}
	w.WriteHeader(r.StatusCode)
	json.NewEncoder(w).Encode(r)
}

func BadRequest(message, description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadRequest,
		Success:     false,
		Message:     message,
		Status:      "BAD REQUEST",
		Description: description,
	}
}

func ResourceNotFound(message, description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusNotFound,
		Success:     false,
		Message:     message,
		Status:      "NOT FOUND",
		Description: description,
	}
}

func Unauthorized() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusUnauthorized,
		Success:    false,
		Message:    "No valid Gate Token",
		Status:     "UNAUTHORISED",
	}
}

func SomethingWrong() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Success:    false,
		Message:    "Sorry, Something went wrong",
		Status:     "SOMETHING_WRONG",
	}
}

func InvalidData(description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadRequest,
		Success:     false,
		Message:     "Invalid data passed",
		Status:      "INVALID_DATA",
		Description: description,
	}
}

func InvalidPhone(description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusUnprocessableEntity,
		Success:     false,
		Message:     "Invalid phone number for the selected payment method",
		Status:      "INVALID_PHONE",
		Description: description,
	}
}

func PaymentDeclined(description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusPaymentRequired,
		Success:     false,
		Message:     "Payment was not completed",
		Status:      "PAYMENT_DECLINED",
		Description: description,
	}
}

// IssuanceFailed is sent when money was taken but tickets could not be issued.
func IssuanceFailed(transactionID string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusInternalServerError,
		Success:     false,
		Message:     "Payment received but tickets could not be issued. Support has been notified",
		Status:      "ISSUANCE_FAILED",
		Description: fmt.Sprintf("transaction reference: %s", transactionID),
	}
}

func ServiceUnavailable() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusServiceUnavailable,
		Success:    false,
		Message:    "Service temporarily unavailable, please try again",
		Status:     "UNAVAILABLE",
	}
}

func RequestCancelled() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusRequestTimeout,
		Success:    false,
		Message:    "Request was cancelled before payment",
		Status:     "CANCELLED",
	}
}

func WrongEvent(eventID string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusForbidden,
		Success:     false,
		Message:     "Gate is not authorised for this event",
		Status:      "WRONG_EVENT",
		Description: eventID,
	}
}
