package handlers

import (
	"net/http"

	"todoSync/internal/logger"
	"todoSync/internal/service"

	"go.uber.org/zap"
)

// handleError отвечает по BusinessError или 500 для остальных ошибок
func handleError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if businessErr, ok := service.AsBusinessError(err); ok {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("operation", operation),
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))

		responseWithJSON(w, statusCode,
			toPayload("detail", businessErr.Message),
			toPayload("code", businessErr.Code),
		)
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusInternalServerError, "A server error occurred.")
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation, service.CodeInvalidCredentials:
		return http.StatusBadRequest
	case service.CodeAlreadyExists:
		return http.StatusConflict
	case service.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
