package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth-service/internal/domain"
	xerrors "auth-service/pkg/utils/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, organization_id, phone, phone_verified, is_owner, role, status,
	referral_code, trial_started_at, trial_ends_at, last_login_at, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.OrganizationID, &u.Phone, &u.PhoneVerified, &u.IsOwner,
		&u.Role, &u.Status, &u.ReferralCode, &u.TrialStartedAt, &u.TrialEndsAt,
		&u.LastLoginAt, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE phone=$1 AND status != 'deleted'
	`, phone)
	return scanUser(row)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id=$1 AND status != 'deleted'
	`, id)
	return scanUser(row)
}

func (r *UserRepository) FindOrgByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	var o domain.Organization
	err := r.db.QueryRow(ctx, `
		SELECT id, inn, COALESCE(kpp,''), COALESCE(ogrn,''), name_short,
			COALESCE(name_full,''), type, COALESCE(director_name,''),
			COALESCE(address,''), COALESCE(okved,''), slug, status, created_at
		FROM organizations
		WHERE id=$1
	`, id).Scan(
		&o.ID, &o.INN, &o.KPP, &o.OGRN, &o.NameShort, &o.NameFull, &o.Type,
		&o.DirectorName, &o.Address, &o.OKVED, &o.Slug, &o.Status, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *UserRepository) OrgExistsByINN(ctx context.Context, inn string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM organizations WHERE inn=$1)`, inn,
	).Scan(&exists)
	return exists, err
}

func (r *UserRepository) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM organizations WHERE slug=$1)`, slug,
	).Scan(&exists)
	return exists, err
}

// CreateOwner inserts the organization and its owner user in one transaction
// so a half-registered account can never be observed.
func (r *UserRepository) CreateOwner(ctx context.Context, org *domain.Organization, user *domain.User) (*domain.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	org.ID = uuid.New()
	org.CreatedAt = time.Now().UTC()
	_, err = tx.Exec(ctx, `
		INSERT INTO organizations (id, inn, kpp, ogrn, name_short, name_full, type,
			director_name, address, okved, slug, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, org.ID, org.INN, org.KPP, org.OGRN, org.NameShort, org.NameFull, org.Type,
		org.DirectorName, org.Address, org.OKVED, org.Slug, org.Status, org.CreatedAt)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return nil, xerrors.ErrOrgAlreadyExists
		}
		return nil, fmt.Errorf("insert organization: %w", err)
	}

	user.ID = uuid.New()
	user.OrganizationID = org.ID
	user.CreatedAt = org.CreatedAt
	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, organization_id, phone, phone_verified, is_owner, role,
			status, referral_code, trial_started_at, trial_ends_at, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, user.ID, user.OrganizationID, user.Phone, user.PhoneVerified, user.IsOwner,
		user.Role, user.Status, user.ReferralCode, user.TrialStartedAt, user.TrialEndsAt,
		user.CreatedAt)
	if err != nil {
		if xerrors.ParsePGErrorCode(err) == "23505" {
			return nil, xerrors.ErrPhoneAlreadyInUse
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET last_login_at=NOW() WHERE id=$1`, id)
	return err
}
