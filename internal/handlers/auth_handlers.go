package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"todoSync/internal/handlers/dto"
	"todoSync/internal/logger"

	"go.uber.org/zap"
)

type AuthHandler struct {
	Auth Authenticator
}

func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{Auth: auth}
}

// GetToken обменивает логин и пароль на токен
func (h *AuthHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !requireJSON(w, r) {
		return
	}

	var request dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: Ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "JSON parse error: "+err.Error())
		return
	}

	if strings.TrimSpace(request.Username) == "" || request.Password == "" {
		responseWithError(w, http.StatusBadRequest, "Username and password are required.")
		return
	}

	token, err := h.Auth.IssueToken(r.Context(), request.Username, request.Password)
	if err != nil {
		handleError(w, r, err, "get_token")
		return
	}

	logger.Info("HTTP_OUT: Токен выдан",
		zap.String("username", request.Username),
		zap.Duration("ms", time.Since(start)))

	writeJSON(w, http.StatusOK, dto.TokenResponse{Token: token})
}
