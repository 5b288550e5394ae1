package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"auth-service/pkg/middleware"
	"auth-service/pkg/response"
)

type CompleteRegistrationRequest struct {
	INN string `json:"inn"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// CompleteRegistration expects the temp token as the bearer credential, the
// same way the access token travels on authenticated calls.
func (h *AuthHandler) CompleteRegistration(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		response.Error(w, http.StatusUnauthorized, "Missing or malformed authorization header")
		return
	}
	tempToken := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	var req CompleteRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.INN) < 10 {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.uc.CompleteRegistration(r.Context(), tempToken, req.INN)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.uc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	res, err := h.uc.Status(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

// Logout is client-side token discard; the server keeps no session state.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}
