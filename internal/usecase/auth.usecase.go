// usecase/auth_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"auth-service/internal/domain"
	"auth-service/internal/otp"
	"auth-service/internal/repository"
	"auth-service/internal/token"
	xerrors "auth-service/pkg/utils/errors"

	"github.com/google/uuid"
)

// UserDirectory is the account lookup/creation capability. The pgx
// repository implements it in production; tests swap in fakes.
type UserDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindOrgByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	OrgExistsByINN(ctx context.Context, inn string) (bool, error)
	SlugTaken(ctx context.Context, slug string) (bool, error)
	CreateOwner(ctx context.Context, org *domain.Organization, user *domain.User) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}

// Notifier dispatches a message to a phone. Delivery failures surface as
// errors; nothing here retries.
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

// OrgResolver looks up an organization by tax ID in an external registry.
// (nil, nil) means no match.
type OrgResolver interface {
	Resolve(ctx context.Context, inn string) (*domain.Organization, error)
}

// OTPAuditor records issuance metadata. Best-effort: failures are logged,
// never propagated.
type OTPAuditor interface {
	Create(ctx context.Context, l *repository.OTPLog) error
}

type AuthUsecase struct {
	otp        *otp.Service
	tokens     *token.Service
	users      UserDirectory
	notifier   Notifier
	resolver   OrgResolver
	auditor    OTPAuditor
	dailyLimit int
	appName    string
	adminPhone string
}

func NewAuthUsecase(
	otpSvc *otp.Service,
	tokens *token.Service,
	users UserDirectory,
	notifier Notifier,
	resolver OrgResolver,
	auditor OTPAuditor,
	dailyLimit int,
	appName string,
	adminPhone string,
) *AuthUsecase {
	return &AuthUsecase{
		otp:        otpSvc,
		tokens:     tokens,
		users:      users,
		notifier:   notifier,
		resolver:   resolver,
		auditor:    auditor,
		dailyLimit: dailyLimit,
		appName:    appName,
		adminPhone: adminPhone,
	}
}

type SendCodeResult struct {
	Sent      bool `json:"sent"`
	IsNewUser bool `json:"is_new_user"`
	TTL       int  `json:"ttl"`
}

// CooldownError carries how long the caller must wait before the next
// send-code. It matches errors.Is(err, xerrors.ErrOTPCooldown).
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s: retry in %d seconds", xerrors.ErrOTPCooldown, e.RetrySeconds())
}

func (e *CooldownError) Unwrap() error { return xerrors.ErrOTPCooldown }

// RetrySeconds rounds the wait up so a client honoring it never retries early.
func (e *CooldownError) RetrySeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

// SendCode issues a fresh OTP for the phone and dispatches it. Cooldown and
// the daily cap are checked before any mutation; the cooldown marker and the
// daily counter move only after a successful dispatch, so a failed send
// costs no quota and blocks no retry.
func (uc *AuthUsecase) SendCode(ctx context.Context, phone string) (*SendCodeResult, error) {
	phone, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	onCooldown, err := uc.otp.CheckCooldown(ctx, phone)
	if err != nil {
		return nil, err
	}
	if onCooldown {
		remaining, err := uc.otp.CooldownRemaining(ctx, phone)
		if err != nil || remaining <= 0 {
			return nil, xerrors.ErrOTPCooldown
		}
		return nil, &CooldownError{RetryAfter: remaining}
	}

	limited, err := uc.otp.CheckDailyLimit(ctx, phone, uc.dailyLimit)
	if err != nil {
		return nil, err
	}
	if limited {
		return nil, xerrors.ErrDailyLimitReached
	}

	isNew := false
	if _, err := uc.users.FindByPhone(ctx, phone); err != nil {
		if !errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, err
		}
		isNew = true
	}

	code, err := uc.otp.GenerateCode()
	if err != nil {
		return nil, err
	}
	if err := uc.otp.Store(ctx, phone, code); err != nil {
		return nil, err
	}

	message := fmt.Sprintf("%s — код подтверждения: %s. Никому не сообщайте.", uc.appName, code)
	if err := uc.notifier.Send(ctx, phone, message); err != nil {
		return nil, err
	}

	if err := uc.otp.SetCooldown(ctx, phone); err != nil {
		return nil, err
	}
	if err := uc.otp.IncrementDailyCounter(ctx, phone); err != nil {
		return nil, err
	}

	if uc.auditor != nil {
		now := time.Now().UTC()
		entry := &repository.OTPLog{
			ID:         uuid.New(),
			Phone:      phone,
			Purpose:    "login",
			IssuedAt:   now,
			ValidUntil: now.Add(uc.otp.TTL()),
		}
		go func() {
			if err := uc.auditor.Create(context.Background(), entry); err != nil {
				log.Printf("Failed to insert OTP log: %v", err)
			}
		}()
	}

	log.Printf("OTP sent | Phone=%s | NewUser=%v", phone, isNew)
	return &SendCodeResult{Sent: true, IsNewUser: isNew, TTL: int(uc.otp.TTL().Seconds())}, nil
}

type VerifyResult struct {
	Verified          bool   `json:"verified"`
	NeedsRegistration bool   `json:"needs_registration"`
	AccessToken       string `json:"access_token,omitempty"`
	RefreshToken      string `json:"refresh_token,omitempty"`
	TempToken         string `json:"temp_token,omitempty"`
}

// VerifyCode checks a submitted code. Exhausted attempts force-delete the
// record and fail as rate-limited; a wrong or expired code is a plain
// not-verified result, not an error. A correct code yields either a session
// pair (existing account) or a temp token gating registration.
func (uc *AuthUsecase) VerifyCode(ctx context.Context, phone, code string) (*VerifyResult, error) {
	phone, err := NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	attempts, err := uc.otp.Attempts(ctx, phone)
	if err != nil {
		return nil, err
	}
	if attempts >= uc.otp.MaxAttempts() {
		if err := uc.otp.Delete(ctx, phone); err != nil {
			return nil, err
		}
		return nil, xerrors.ErrTooManyOTPAttempts
	}

	ok, err := uc.otp.Verify(ctx, phone, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &VerifyResult{Verified: false}, nil
	}

	user, err := uc.users.FindByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, err
		}
		tempToken, err := uc.tokens.IssueTemp(phone)
		if err != nil {
			return nil, err
		}
		return &VerifyResult{Verified: true, NeedsRegistration: true, TempToken: tempToken}, nil
	}

	access, refresh, err := uc.issuePair(user)
	if err != nil {
		return nil, err
	}
	if err := uc.users.UpdateLastLogin(ctx, user.ID); err != nil {
		log.Printf("Failed to update last login | User=%s | Err=%v", user.ID, err)
	}
	return &VerifyResult{Verified: true, AccessToken: access, RefreshToken: refresh}, nil
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Refresh validates a refresh token, re-checks the subject still exists and
// mints a new pair. The old refresh token stays formally valid until its own
// expiry; there is no revocation store.
func (uc *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := uc.tokens.Validate(refreshToken)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}
	if claims.TokenType != token.TypeRefresh {
		return nil, xerrors.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrUserNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, err
	}

	access, refresh, err := uc.issuePair(user)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (uc *AuthUsecase) issuePair(user *domain.User) (access, refresh string, err error) {
	access, err = uc.tokens.IssueAccess(user.ID, user.Phone, user.Role)
	if err != nil {
		return "", "", err
	}
	refresh, err = uc.tokens.IssueRefresh(user.ID)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}
