package xerrors

import "errors"
import "github.com/jackc/pgx/v5/pgconn"

func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// Generic
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrInternalServer = errors.New("internal server error")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not found")
)

// Registration
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrPhoneAlreadyInUse = errors.New("phone already in use")
	ErrOrgAlreadyExists  = errors.New("organization already registered")
	ErrOrgNotFound       = errors.New("organization not found in registry")
)

// Verification / OTP
var (
	ErrOTPCooldown        = errors.New("please wait before requesting another code")
	ErrDailyLimitReached  = errors.New("daily sms limit reached")
	ErrTooManyOTPAttempts = errors.New("too many otp attempts")
)

// Token
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Delivery
var (
	ErrSMSDelivery = errors.New("sms delivery failed")
)
