package client

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/pageza/recipebook/backend/internal/apperrors"
)

// The client surfaces the same error kinds the server produces.
type (
	APIError        = apperrors.APIError
	NetworkError    = apperrors.NetworkError
	ValidationError = apperrors.ValidationError
	NotFoundError   = apperrors.NotFoundError
	AIServiceError  = apperrors.AIServiceError
)

type errorBody struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details"`
}

func (b errorBody) text() string {
	if b.Error != "" {
		return b.Error
	}
	return b.Message
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// classifyResponse turns a non-2xx response into a typed error. The body is
// read but not closed.
func classifyResponse(resp *http.Response) error {
	var body errorBody
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &body)

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return apperrors.NewValidationError(or(body.text(), "Invalid request"), body.Details)
	case http.StatusNotFound:
		e := apperrors.NewNotFoundError("Resource")
		e.Message = or(body.text(), e.Message)
		return e
	case http.StatusInternalServerError:
		if body.Code == apperrors.CodeAIService {
			e := apperrors.NewAIServiceError(or(body.text(), "AI service error"), nil)
			e.Details = body.Details
			return e
		}
		return apperrors.New("Internal server error", http.StatusInternalServerError, body.Code, body.Details)
	default:
		return apperrors.New(or(body.text(), "An unexpected error occurred"), resp.StatusCode, body.Code, body.Details)
	}
}

// User-facing messages for failures the UI reports.
const (
	MsgNetworkError    = "Network error occurred. Please check your internet connection."
	MsgValidationError = "Please check your input and try again."
	MsgServerError     = "Server error occurred. Please try again later."
	MsgAIServiceError  = "AI service is currently unavailable. Please try again later."
)

// UserMessage translates err into a message fit for display. fallback is
// used for errors that are neither network, validation nor AI failures.
func UserMessage(err error, fallback string) string {
	switch {
	case err == nil:
		return ""
	case apperrors.IsNetwork(err):
		return MsgNetworkError
	case apperrors.IsAIService(err):
		return MsgAIServiceError
	case apperrors.IsValidation(err):
		return MsgValidationError
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode() >= http.StatusInternalServerError && fallback == "" {
		return MsgServerError
	}
	return fallback
}
