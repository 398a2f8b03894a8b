package handlers

import (
	"mime"
	"net/http"

	"todoSync/internal/logger"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// requireJSON отвечает 415, если тело не JSON
func requireJSON(w http.ResponseWriter, r *http.Request) bool {
	if checkContentType(r, "application/json") {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		return true
	}

	logger.Warn("HTTP: Неверный тип контента",
		zap.String("expected", "application/json"),
		zap.String("received", r.Header.Get("Content-Type")),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusUnsupportedMediaType, `Unsupported media type in request.`)
	return false
}
