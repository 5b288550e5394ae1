package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// OTPLog is the issuance audit record. It never carries the code or its
// digest; Redis alone holds live verification state.
type OTPLog struct {
	ID         uuid.UUID
	Phone      string
	Purpose    string
	IssuedAt   time.Time
	ValidUntil time.Time
}

type OTPLogRepo struct {
	db *pgxpool.Pool
}

func NewOTPLogRepo(db *pgxpool.Pool) *OTPLogRepo {
	return &OTPLogRepo{db: db}
}

func (r *OTPLogRepo) Create(ctx context.Context, l *OTPLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO otp_log (id, phone, purpose, issued_at, valid_until)
		VALUES ($1,$2,$3,$4,$5)
	`, l.ID, l.Phone, l.Purpose, l.IssuedAt, l.ValidUntil)
	return err
}
