package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wavemax/affiliate-program/internal/auth"
	"github.com/wavemax/affiliate-program/internal/config"
	"github.com/wavemax/affiliate-program/internal/domain"
	"github.com/wavemax/affiliate-program/internal/events"
)

type fakeAffiliates struct {
	records map[string]*domain.Affiliate
	updated []*domain.Affiliate
	created []*domain.Affiliate
}

func (f *fakeAffiliates) Create(_ context.Context, aff *domain.Affiliate) error {
	f.created = append(f.created, aff)
	return nil
}

func (f *fakeAffiliates) Update(_ context.Context, aff *domain.Affiliate) error {
	f.updated = append(f.updated, aff)
	return nil
}

func (f *fakeAffiliates) GetByAffiliateID(_ context.Context, id string) (*domain.Affiliate, error) {
	for _, aff := range f.records {
		if aff.AffiliateID == id {
			return aff, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAffiliates) GetByEmail(_ context.Context, email string) (*domain.Affiliate, error) {
	if aff, ok := f.records[email]; ok {
		return aff, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeCustomers struct {
	records map[string]*domain.Customer
	updated []*domain.Customer
	created []*domain.Customer
}

func (f *fakeCustomers) Create(_ context.Context, cust *domain.Customer) error {
	f.created = append(f.created, cust)
	return nil
}

func (f *fakeCustomers) Update(_ context.Context, cust *domain.Customer) error {
	f.updated = append(f.updated, cust)
	return nil
}

func (f *fakeCustomers) GetByCustomerID(_ context.Context, id string) (*domain.Customer, error) {
	for _, cust := range f.records {
		if cust.CustomerID == id {
			return cust, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCustomers) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	if cust, ok := f.records[email]; ok {
		return cust, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeCustomers) ListByAffiliate(context.Context, string) ([]*domain.Customer, error) {
	return nil, nil
}

type fakeAdmins struct {
	records map[string]*domain.Administrator
	updated []*domain.Administrator
}

func (f *fakeAdmins) Create(context.Context, *domain.Administrator) error { return nil }

func (f *fakeAdmins) Update(_ context.Context, admin *domain.Administrator) error {
	f.updated = append(f.updated, admin)
	return nil
}

func (f *fakeAdmins) GetByAdminID(_ context.Context, id string) (*domain.Administrator, error) {
	for _, admin := range f.records {
		if admin.AdminID == id {
			return admin, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAdmins) GetByEmail(_ context.Context, email string) (*domain.Administrator, error) {
	if admin, ok := f.records[email]; ok {
		return admin, nil
	}
	return nil, pgx.ErrNoRows
}

type fakeOperators struct {
	records map[string]*domain.Operator
}

func (f *fakeOperators) Create(context.Context, *domain.Operator) error { return nil }
func (f *fakeOperators) Update(context.Context, *domain.Operator) error { return nil }

func (f *fakeOperators) GetByOperatorID(_ context.Context, id string) (*domain.Operator, error) {
	for _, op := range f.records {
		if op.OperatorID == id {
			return op, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeOperators) GetByEmail(_ context.Context, email string) (*domain.Operator, error) {
	if op, ok := f.records[email]; ok {
		return op, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeOperators) SetShift(context.Context, string, bool) error { return nil }

type fakeRevocations struct {
	rows []*domain.RevokedToken
}

func (f *fakeRevocations) Create(_ context.Context, rec *domain.RevokedToken) error {
	f.rows = append(f.rows, rec)
	return nil
}

func (f *fakeRevocations) Exists(_ context.Context, token string) (bool, error) {
	for _, rec := range f.rows {
		if rec.Token == token {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRevocations) DeleteRevokedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type authFixture struct {
	svc        *AuthService
	affiliates *fakeAffiliates
	customers  *fakeCustomers
	admins     *fakeAdmins
	operators  *fakeOperators
	revoked    *fakeRevocations
	events     *[]events.Event
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()

	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}}

	affiliates := &fakeAffiliates{records: map[string]*domain.Affiliate{}}
	customers := &fakeCustomers{records: map[string]*domain.Customer{}}
	admins := &fakeAdmins{records: map[string]*domain.Administrator{}}
	operators := &fakeOperators{records: map[string]*domain.Operator{}}
	revoked := &fakeRevocations{}

	dispatcher := events.NewInMemoryDispatcher()
	var published []events.Event
	record := func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	}
	for _, et := range []events.EventType{
		events.EventLoginSucceeded, events.EventLoginFailed,
		events.EventTokenRevoked, events.EventPasswordChanged,
	} {
		dispatcher.Subscribe(et, record)
	}

	svc := NewAuthService(cfg, AuthDependencies{
		AffiliateRepo:    affiliates,
		CustomerRepo:     customers,
		AdminRepo:        admins,
		OperatorRepo:     operators,
		RevokedTokenRepo: revoked,
		Dispatcher:       dispatcher,
	})

	return authFixture{
		svc:        svc,
		affiliates: affiliates,
		customers:  customers,
		admins:     admins,
		operators:  operators,
		revoked:    revoked,
		events:     &published,
	}
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func eventTypes(published []events.Event) []events.EventType {
	types := make([]events.EventType, len(published))
	for i, e := range published {
		types[i] = e.Type
	}
	return types
}

func TestLoginAffiliate(t *testing.T) {
	fx := newAuthFixture(t)
	fx.affiliates.records["aff@example.com"] = &domain.Affiliate{
		ID:           "1",
		AffiliateID:  "AFF-1",
		Email:        "aff@example.com",
		PasswordHash: hash(t, "correct horse"),
		Status:       domain.AffiliateStatusActive,
	}

	aff, token, exp, err := fx.svc.LoginAffiliate(context.Background(), "aff@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "AFF-1", aff.AffiliateID)
	assert.True(t, exp.After(time.Now()))

	claims, err := fx.svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAffiliate, claims.Role)
	assert.Equal(t, "AFF-1", claims.AffiliateID)

	assert.Contains(t, eventTypes(*fx.events), events.EventLoginSucceeded)
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	fx := newAuthFixture(t)
	fx.affiliates.records["aff@example.com"] = &domain.Affiliate{
		AffiliateID:  "AFF-1",
		Email:        "aff@example.com",
		PasswordHash: hash(t, "correct horse"),
		Status:       domain.AffiliateStatusSuspended,
	}

	cases := []struct {
		name            string
		email, password string
	}{
		{"unknown email", "nobody@example.com", "whatever"},
		{"suspended account", "aff@example.com", "correct horse"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := fx.svc.LoginAffiliate(context.Background(), tc.email, tc.password)
			require.Error(t, err)
			assert.EqualError(t, err, "Invalid email or password")
		})
	}

	assert.Contains(t, eventTypes(*fx.events), events.EventLoginFailed)
}

func TestLoginAdministratorSnapshotsClaims(t *testing.T) {
	fx := newAuthFixture(t)
	fx.admins.records["root@example.com"] = &domain.Administrator{
		ID:                    "1",
		AdminID:               "ADM-1",
		Email:                 "root@example.com",
		PasswordHash:          hash(t, "correct horse"),
		Active:                true,
		Permissions:           []string{domain.PermOperatorManagement},
		RequirePasswordChange: true,
	}

	admin, token, _, err := fx.svc.LoginAdministrator(context.Background(), "root@example.com", "correct horse")
	require.NoError(t, err)
	require.NotNil(t, admin.LastLoginAt)
	require.Len(t, fx.admins.updated, 1)

	claims, err := fx.svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdministrator, claims.Role)
	assert.Equal(t, []string{domain.PermOperatorManagement}, claims.Permissions)
	assert.True(t, claims.RequirePasswordChange)
}

func TestLogoutIsDurable(t *testing.T) {
	fx := newAuthFixture(t)
	token, _, err := fx.svc.TokenManager().GenerateToken("1", auth.Claims{
		Role:       domain.RoleCustomer,
		CustomerID: "CUST-1",
	})
	require.NoError(t, err)

	require.NoError(t, fx.svc.Logout(context.Background(), token))

	revoked, err := fx.revoked.Exists(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, revoked)

	require.Len(t, fx.revoked.rows, 1)
	assert.Equal(t, "logout", fx.revoked.rows[0].Reason)
	assert.Equal(t, domain.SubjectTypeCustomer, fx.revoked.rows[0].SubjectType)
	assert.Contains(t, eventTypes(*fx.events), events.EventTokenRevoked)
}

func TestRevokeUnparseableTokenIsNoOp(t *testing.T) {
	fx := newAuthFixture(t)

	require.NoError(t, fx.svc.Revoke(context.Background(), "not-a-jwt", "logout"))
	assert.Empty(t, fx.revoked.rows)
}

func TestChangePasswordClearsAdminFlag(t *testing.T) {
	fx := newAuthFixture(t)
	fx.admins.records["root@example.com"] = &domain.Administrator{
		AdminID:               "ADM-1",
		Email:                 "root@example.com",
		PasswordHash:          hash(t, "old password"),
		Active:                true,
		RequirePasswordChange: true,
	}

	identity := &domain.Identity{ID: "1", Role: domain.RoleAdministrator, AdminID: "ADM-1"}
	err := fx.svc.ChangePassword(context.Background(), identity, "old password", "new password")
	require.NoError(t, err)

	require.Len(t, fx.admins.updated, 1)
	updated := fx.admins.updated[0]
	assert.False(t, updated.RequirePasswordChange)
	assert.NoError(t, auth.ComparePassword(updated.PasswordHash, "new password"))
	assert.Contains(t, eventTypes(*fx.events), events.EventPasswordChanged)
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	fx := newAuthFixture(t)
	fx.customers.records["c@example.com"] = &domain.Customer{
		CustomerID:   "CUST-1",
		Email:        "c@example.com",
		PasswordHash: hash(t, "old password"),
		Active:       true,
	}

	identity := &domain.Identity{ID: "1", Role: domain.RoleCustomer, CustomerID: "CUST-1"}
	err := fx.svc.ChangePassword(context.Background(), identity, "wrong", "new password")
	require.Error(t, err)
	assert.Empty(t, fx.customers.updated)
}

func TestRegisterAffiliate(t *testing.T) {
	fx := newAuthFixture(t)

	aff := &domain.Affiliate{Email: "new@example.com", FirstName: "New"}
	require.NoError(t, fx.svc.RegisterAffiliate(context.Background(), aff, "secret pass"))

	require.Len(t, fx.affiliates.created, 1)
	created := fx.affiliates.created[0]
	assert.Regexp(t, `^AFF-[0-9A-F]{8}$`, created.AffiliateID)
	assert.Equal(t, domain.AffiliateStatusActive, created.Status)
	assert.NoError(t, auth.ComparePassword(created.PasswordHash, "secret pass"))
}

func TestRegisterAffiliateDuplicateEmail(t *testing.T) {
	fx := newAuthFixture(t)
	fx.affiliates.records["dup@example.com"] = &domain.Affiliate{Email: "dup@example.com"}

	err := fx.svc.RegisterAffiliate(context.Background(),
		&domain.Affiliate{Email: "dup@example.com"}, "secret pass")
	require.Error(t, err)
	assert.Empty(t, fx.affiliates.created)
}

func TestRegisterCustomerRequiresKnownAffiliate(t *testing.T) {
	fx := newAuthFixture(t)

	err := fx.svc.RegisterCustomer(context.Background(),
		&domain.Customer{Email: "c@example.com", AffiliateID: "AFF-MISSING"}, "secret pass")
	require.Error(t, err)
	assert.Empty(t, fx.customers.created)

	fx.affiliates.records["aff@example.com"] = &domain.Affiliate{
		AffiliateID: "AFF-1",
		Email:       "aff@example.com",
	}
	err = fx.svc.RegisterCustomer(context.Background(),
		&domain.Customer{Email: "c@example.com", AffiliateID: "AFF-1"}, "secret pass")
	require.NoError(t, err)
	require.Len(t, fx.customers.created, 1)
	assert.True(t, fx.customers.created[0].Active)
	assert.Regexp(t, `^CUST-[0-9A-F]{8}$`, fx.customers.created[0].CustomerID)
}
