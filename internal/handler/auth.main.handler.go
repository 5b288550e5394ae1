package handler

import (
	"errors"
	"net/http"
	"strconv"

	"auth-service/internal/usecase"
	"auth-service/pkg/response"
	xerrors "auth-service/pkg/utils/errors"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

func (h *AuthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError translates domain failures into user-facing statuses.
// Infrastructure failures fall through to a generic 500 so outages never
// leak store details.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, xerrors.ErrOTPCooldown):
		var cd *usecase.CooldownError
		if errors.As(err, &cd) {
			w.Header().Set("Retry-After", strconv.Itoa(cd.RetrySeconds()))
		}
		response.ErrorCode(w, http.StatusTooManyRequests, "otp_cooldown", err.Error())
	case errors.Is(err, xerrors.ErrDailyLimitReached):
		response.ErrorCode(w, http.StatusTooManyRequests, "daily_limit_reached", err.Error())
	case errors.Is(err, xerrors.ErrTooManyOTPAttempts):
		response.ErrorCode(w, http.StatusTooManyRequests, "too_many_attempts", err.Error())
	case errors.Is(err, xerrors.ErrUnauthorized),
		errors.Is(err, xerrors.ErrInvalidToken),
		errors.Is(err, xerrors.ErrExpiredToken):
		response.ErrorCode(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
	case errors.Is(err, xerrors.ErrPhoneAlreadyInUse):
		response.ErrorCode(w, http.StatusConflict, "phone_in_use", err.Error())
	case errors.Is(err, xerrors.ErrOrgAlreadyExists):
		response.ErrorCode(w, http.StatusConflict, "org_exists", err.Error())
	case errors.Is(err, xerrors.ErrOrgNotFound):
		response.ErrorCode(w, http.StatusNotFound, "org_not_found", err.Error())
	case errors.Is(err, xerrors.ErrNotFound):
		response.ErrorCode(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, xerrors.ErrInvalidRequest):
		response.ErrorCode(w, http.StatusUnprocessableEntity, "invalid_phone", "Invalid phone number")
	case errors.Is(err, xerrors.ErrSMSDelivery):
		response.ErrorCode(w, http.StatusServiceUnavailable, "sms_unavailable", "Failed to send SMS, try again later")
	default:
		response.ErrorCode(w, http.StatusInternalServerError, "internal", "Internal server error")
	}
}
