package usecase_test

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"auth-service/internal/domain"
	"auth-service/internal/otp"
	"auth-service/internal/token"
	"auth-service/internal/usecase"
	"auth-service/pkg/cache"
	xerrors "auth-service/pkg/utils/errors"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const testPhone = "+79991234567"

// ---- capability fakes ----

type fakeDirectory struct {
	users map[string]*domain.User // phone -> user
	orgs  map[string]*domain.Organization
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		users: map[string]*domain.User{},
		orgs:  map[string]*domain.Organization{},
	}
}

func (d *fakeDirectory) FindByPhone(_ context.Context, phone string) (*domain.User, error) {
	if u, ok := d.users[phone]; ok {
		return u, nil
	}
	return nil, xerrors.ErrUserNotFound
}

func (d *fakeDirectory) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, xerrors.ErrUserNotFound
}

func (d *fakeDirectory) FindOrgByID(_ context.Context, id uuid.UUID) (*domain.Organization, error) {
	for _, o := range d.orgs {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (d *fakeDirectory) OrgExistsByINN(_ context.Context, inn string) (bool, error) {
	_, ok := d.orgs[inn]
	return ok, nil
}

func (d *fakeDirectory) SlugTaken(_ context.Context, slug string) (bool, error) {
	for _, o := range d.orgs {
		if o.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (d *fakeDirectory) CreateOwner(_ context.Context, org *domain.Organization, user *domain.User) (*domain.User, error) {
	if _, ok := d.users[user.Phone]; ok {
		return nil, xerrors.ErrPhoneAlreadyInUse
	}
	org.ID = uuid.New()
	user.ID = uuid.New()
	user.OrganizationID = org.ID
	d.orgs[org.INN] = org
	d.users[user.Phone] = user
	return user, nil
}

func (d *fakeDirectory) UpdateLastLogin(_ context.Context, id uuid.UUID) error { return nil }

type fakeNotifier struct {
	sent []string // "phone|message"
	fail bool
}

func (n *fakeNotifier) Send(_ context.Context, phone, message string) error {
	if n.fail {
		return xerrors.ErrSMSDelivery
	}
	n.sent = append(n.sent, phone+"|"+message)
	return nil
}

type fakeResolver struct {
	parties map[string]*domain.Organization
}

func (r *fakeResolver) Resolve(_ context.Context, inn string) (*domain.Organization, error) {
	return r.parties[inn], nil
}

// ---- fixture ----

type fixture struct {
	uc       *usecase.AuthUsecase
	otp      *otp.Service
	tokens   *token.Service
	dir      *fakeDirectory
	notifier *fakeNotifier
	resolver *fakeResolver
	mr       *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := cache.NewCacheWithClient(client)

	otpSvc := otp.NewService(store, 6, 300*time.Second, 60*time.Second, 5)
	tokenSvc := token.NewService("test-secret-at-least-32-bytes-long!!", "HS256",
		time.Hour, 30*24*time.Hour, 15*time.Minute)

	dir := newFakeDirectory()
	notifier := &fakeNotifier{}
	resolver := &fakeResolver{parties: map[string]*domain.Organization{}}

	uc := usecase.NewAuthUsecase(otpSvc, tokenSvc, dir, notifier, resolver, nil,
		10, "1C24.PRO", "")

	return &fixture{uc: uc, otp: otpSvc, tokens: tokenSvc, dir: dir,
		notifier: notifier, resolver: resolver, mr: mr}
}

var codeRE = regexp.MustCompile(`\d{6}`)

// lastSentCode digs the issued code out of the captured SMS text.
func (f *fixture) lastSentCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.notifier.sent)
	last := f.notifier.sent[len(f.notifier.sent)-1]
	_, message, _ := strings.Cut(last, "|")
	code := codeRE.FindString(message)
	require.Len(t, code, 6)
	return code
}

func (f *fixture) existingUser(phone string) *domain.User {
	u := &domain.User{
		ID:     uuid.New(),
		Phone:  phone,
		Role:   domain.RoleOwner,
		Status: domain.StatusActive,
	}
	f.dir.users[phone] = u
	return u
}

// ---- send code ----

func TestSendCodeNewUser(t *testing.T) {
	f := newFixture(t)

	res, err := f.uc.SendCode(context.Background(), testPhone)
	require.NoError(t, err)
	require.True(t, res.Sent)
	require.True(t, res.IsNewUser)
	require.Equal(t, 300, res.TTL)
	require.Len(t, f.notifier.sent, 1)
}

func TestSendCodeCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.SendCode(ctx, testPhone)
	require.NoError(t, err)

	// Immediate resend trips the cooldown and tells the caller the wait.
	_, err = f.uc.SendCode(ctx, testPhone)
	require.ErrorIs(t, err, xerrors.ErrOTPCooldown)
	var cd *usecase.CooldownError
	require.ErrorAs(t, err, &cd)
	require.Greater(t, cd.RetrySeconds(), 0)
	require.LessOrEqual(t, cd.RetrySeconds(), 60)
	require.Len(t, f.notifier.sent, 1)

	// Halfway through the window the reported wait has shrunk.
	f.mr.FastForward(30 * time.Second)
	_, err = f.uc.SendCode(ctx, testPhone)
	require.ErrorAs(t, err, &cd)
	require.LessOrEqual(t, cd.RetrySeconds(), 30)

	f.mr.FastForward(31 * time.Second)
	_, err = f.uc.SendCode(ctx, testPhone)
	require.NoError(t, err)
	require.Len(t, f.notifier.sent, 2)
}

func TestSendCodeDailyLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, f.otp.IncrementDailyCounter(ctx, testPhone))
	}

	_, err := f.uc.SendCode(ctx, testPhone)
	require.ErrorIs(t, err, xerrors.ErrDailyLimitReached)
	require.Empty(t, f.notifier.sent)
}

func TestSendCodeDispatchFailureConsumesNoQuota(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = true
	ctx := context.Background()

	_, err := f.uc.SendCode(ctx, testPhone)
	require.ErrorIs(t, err, xerrors.ErrSMSDelivery)

	// No cooldown was set and the daily counter did not move, so the user
	// can retry immediately.
	on, err := f.otp.CheckCooldown(ctx, testPhone)
	require.NoError(t, err)
	require.False(t, on)

	f.notifier.fail = false
	_, err = f.uc.SendCode(ctx, testPhone)
	require.NoError(t, err)
}

func TestSendCodeRejectsGarbagePhone(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.SendCode(context.Background(), "not-a-phone")
	require.ErrorIs(t, err, xerrors.ErrInvalidRequest)
}

// ---- verify code ----

func TestVerifyCodeNewUserGetsTempToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.SendCode(ctx, testPhone)
	require.NoError(t, err)

	res, err := f.uc.VerifyCode(ctx, testPhone, f.lastSentCode(t))
	require.NoError(t, err)
	require.True(t, res.Verified)
	require.True(t, res.NeedsRegistration)
	require.NotEmpty(t, res.TempToken)
	require.Empty(t, res.AccessToken)

	claims, err := f.tokens.Validate(res.TempToken)
	require.NoError(t, err)
	require.Equal(t, token.TypeTemp, claims.TokenType)
	require.Equal(t, testPhone, claims.Phone)
}

func TestVerifyCodeExistingUserGetsSessionPair(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.existingUser(testPhone)

	_, err := f.uc.SendCode(ctx, testPhone)
	require.NoError(t, err)

	res, err := f.uc.VerifyCode(ctx, testPhone, f.lastSentCode(t))
	require.NoError(t, err)
	require.True(t, res.Verified)
	require.False(t, res.NeedsRegistration)

	claims, err := f.tokens.Validate(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, token.TypeAccess, claims.TokenType)
	require.Equal(t, user.ID.String(), claims.Subject)

	claims, err = f.tokens.Validate(res.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, token.TypeRefresh, claims.TokenType)
}

func TestVerifyCodeWrongCodeIsNotAnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.SendCode(ctx, testPhone)
	require.NoError(t, err)

	res, err := f.uc.VerifyCode(ctx, testPhone, "000000")
	require.NoError(t, err)
	require.False(t, res.Verified)
	require.False(t, res.NeedsRegistration)
}

func TestVerifyCodeExhaustedAttemptsForcesFreshSend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.SendCode(ctx, testPhone)
	require.NoError(t, err)
	code := f.lastSentCode(t)

	for i := 0; i < 5; i++ {
		res, err := f.uc.VerifyCode(ctx, testPhone, "000000")
		require.NoError(t, err)
		require.False(t, res.Verified)
	}

	// Cap reached: the orchestrator deletes the record and rate-limits.
	_, err = f.uc.VerifyCode(ctx, testPhone, code)
	require.ErrorIs(t, err, xerrors.ErrTooManyOTPAttempts)

	attempts, err := f.otp.Attempts(ctx, testPhone)
	require.NoError(t, err)
	require.Equal(t, 0, attempts)
}

// ---- refresh ----

func TestRefreshRotatesPair(t *testing.T) {
	f := newFixture(t)
	user := f.existingUser(testPhone)

	refresh, err := f.tokens.IssueRefresh(user.ID)
	require.NoError(t, err)

	pair, err := f.uc.Refresh(context.Background(), refresh)
	require.NoError(t, err)

	claims, err := f.tokens.Validate(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, token.TypeAccess, claims.TokenType)
	require.Equal(t, user.ID.String(), claims.Subject)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	f := newFixture(t)
	user := f.existingUser(testPhone)

	// Signature and expiry are fine; only the type claim is wrong.
	access, err := f.tokens.IssueAccess(user.ID, user.Phone, user.Role)
	require.NoError(t, err)

	_, err = f.uc.Refresh(context.Background(), access)
	require.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestRefreshRejectsUnknownSubject(t *testing.T) {
	f := newFixture(t)

	refresh, err := f.tokens.IssueRefresh(uuid.New())
	require.NoError(t, err)

	_, err = f.uc.Refresh(context.Background(), refresh)
	require.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Refresh(context.Background(), "garbage")
	require.ErrorIs(t, err, xerrors.ErrUnauthorized)
}
