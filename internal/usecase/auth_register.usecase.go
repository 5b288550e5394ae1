// usecase/register_usecase.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"auth-service/internal/domain"
	"auth-service/internal/token"
	xerrors "auth-service/pkg/utils/errors"

	"github.com/google/uuid"
)

const trialDays = 30

type RegistrationResult struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// CompleteRegistration exchanges a temp token plus a tax ID for a fresh
// account with a session pair. The temp token proves phone ownership; the
// INN is resolved against the external registry before anything is created.
func (uc *AuthUsecase) CompleteRegistration(ctx context.Context, tempToken, inn string) (*RegistrationResult, error) {
	claims, err := uc.tokens.Validate(tempToken)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}
	if claims.TokenType != token.TypeTemp || claims.Phone == "" {
		return nil, xerrors.ErrUnauthorized
	}
	phone := claims.Phone

	// Guards the race where two completions present the same temp token.
	if _, err := uc.users.FindByPhone(ctx, phone); err == nil {
		return nil, xerrors.ErrPhoneAlreadyInUse
	} else if !errors.Is(err, xerrors.ErrUserNotFound) {
		return nil, err
	}

	org, err := uc.resolver.Resolve(ctx, inn)
	if err != nil {
		return nil, err
	}
	if org == nil || org.INN == "" {
		return nil, xerrors.ErrOrgNotFound
	}

	taken, err := uc.users.OrgExistsByINN(ctx, inn)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, xerrors.ErrOrgAlreadyExists
	}

	slug := MakeOrgSlug(org.NameShort)
	if dup, err := uc.users.SlugTaken(ctx, slug); err != nil {
		return nil, err
	} else if dup {
		slug = fmt.Sprintf("%s_%s", slug, inn[:4])
	}
	org.Slug = slug
	org.Status = "ACTIVE"

	now := time.Now().UTC()
	trialEnds := now.Add(trialDays * 24 * time.Hour)
	user := &domain.User{
		Phone:          phone,
		PhoneVerified:  true,
		IsOwner:        true,
		Role:           domain.RoleOwner,
		Status:         domain.StatusActive,
		ReferralCode:   GenerateReferralCode(),
		TrialStartedAt: &now,
		TrialEndsAt:    &trialEnds,
	}

	created, err := uc.users.CreateOwner(ctx, org, user)
	if err != nil {
		return nil, err
	}

	access, refresh, err := uc.issuePair(created)
	if err != nil {
		return nil, err
	}

	log.Printf("New registration | Phone=%s | Org=%s | INN=%s", phone, org.NameShort, org.INN)

	if uc.adminPhone != "" {
		msg := fmt.Sprintf("%s: новый клиент!\n%s\nИНН: %s\nТел: %s", uc.appName, org.NameShort, org.INN, phone)
		if err := uc.notifier.Send(ctx, uc.adminPhone, msg); err != nil {
			log.Printf("Failed to send admin notification SMS: %v", err)
		}
	}

	return &RegistrationResult{
		UserID:       created.ID,
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
