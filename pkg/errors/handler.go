package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// ErrorResponse represents the API error response format
type ErrorResponse struct {
	Error     bool   `json:"error"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorHandler handles errors and sends appropriate HTTP responses
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
		debug:  debug,
	}
}

// Handle processes an error and sends an HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	requestID := r.Header.Get("X-Request-ID")

	status := http.StatusInternalServerError
	response := ErrorResponse{
		Error:     true,
		Type:      string(ErrorTypeInternal),
		Message:   "An internal error occurred",
		RequestID: requestID,
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		status = statusForType(appErr.Type)
		response.Type = string(appErr.Type)
		response.Message = appErr.Message
	} else if h.debug {
		response.Message = err.Error()
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.Error(err),
		)
	} else {
		h.logger.Warn("request rejected",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID),
			zap.Int("status", status),
			zap.Error(err),
		)
	}

	h.sendJSON(w, status, response)
}

func statusForType(t ErrorType) int {
	switch t {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *ErrorHandler) sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode error response", zap.Error(err))
	}
}
