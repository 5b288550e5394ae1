// usecase/profile_usecase.go
package usecase

import (
	"context"
	"time"

	xerrors "auth-service/pkg/utils/errors"

	"github.com/google/uuid"
)

type UserStatus struct {
	UserID        string     `json:"user_id"`
	Phone         string     `json:"phone"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	TrialDaysLeft int        `json:"trial_days_left"`
	TrialEndsAt   *time.Time `json:"trial_ends_at,omitempty"`
	OrgName       string     `json:"org_name"`
	OrgINN        string     `json:"org_inn"`
}

// Status projects the authenticated user's trial/subscription state for the
// landing UI.
func (uc *AuthUsecase) Status(ctx context.Context, userID uuid.UUID) (*UserStatus, error) {
	user, err := uc.users.FindByID(ctx, userID)
	if err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	st := &UserStatus{
		UserID: user.ID.String(),
		Phone:  user.Phone,
		Role:   user.Role,
		Status: "active",
	}

	if org, err := uc.users.FindOrgByID(ctx, user.OrganizationID); err == nil {
		st.OrgName = org.NameShort
		st.OrgINN = org.INN
	}

	if user.TrialEndsAt != nil {
		st.TrialEndsAt = user.TrialEndsAt
		daysLeft := int(time.Until(*user.TrialEndsAt).Hours() / 24)
		if daysLeft < 0 {
			daysLeft = 0
		}
		st.TrialDaysLeft = daysLeft
		switch {
		case daysLeft > 5:
			st.Status = "trial"
		case daysLeft > 0:
			st.Status = "trial_ending"
		default:
			st.Status = "expired"
		}
	}

	return st, nil
}
