package handler

import (
	"encoding/json"
	"net/http"

	"auth-service/pkg/response"
)

type PhoneRequest struct {
	Phone string `json:"phone"`
}

type OTPVerifyRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req PhoneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.uc.SendCode(r.Context(), req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req OTPVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" || req.Code == "" {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.uc.VerifyCode(r.Context(), req.Phone, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, res)
}
