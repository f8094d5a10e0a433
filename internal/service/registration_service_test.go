package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"accounts-api/internal/apperr"
	"accounts-api/internal/domain"
	"accounts-api/internal/email"
	"accounts-api/internal/i18n"
)

type mockAccountRepo struct {
	byEmail     map[string]domain.Account
	createErr   error
	getErr      error
	deleted     []string
	createCalls int
	getCalls    int
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{byEmail: make(map[string]domain.Account)}
}

func (m *mockAccountRepo) Create(_ context.Context, account domain.Account) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	m.byEmail[account.Email] = account
	return nil
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, emailAddr string) (domain.Account, error) {
	m.getCalls++
	if m.getErr != nil {
		return domain.Account{}, m.getErr
	}
	account, ok := m.byEmail[emailAddr]
	if !ok {
		return domain.Account{}, apperr.NotFound(pgx.ErrNoRows)
	}
	return account, nil
}

func (m *mockAccountRepo) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	for emailAddr, account := range m.byEmail {
		if account.ID == id {
			delete(m.byEmail, emailAddr)
		}
	}
	return nil
}

type mockProfileRepo struct {
	byAccount   map[string]domain.Profile
	createErr   error
	createCalls int
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{byAccount: make(map[string]domain.Profile)}
}

func (m *mockProfileRepo) Create(_ context.Context, profile domain.Profile) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	m.byAccount[profile.AccountID] = profile
	return nil
}

func (m *mockProfileRepo) GetByAccountID(_ context.Context, accountID string) (domain.Profile, error) {
	profile, ok := m.byAccount[accountID]
	if !ok {
		return domain.Profile{}, apperr.NotFound(pgx.ErrNoRows)
	}
	return profile, nil
}

func testCatalog() *i18n.Catalog {
	return i18n.NewCatalog([]string{"en", "de"}, "en")
}

func anaInput() RegisterInput {
	return RegisterInput{
		FirstName:    "Ana",
		ContactPhone: "5551234",
		Email:        "ana@example.com",
		Password:     "secret1",
	}
}

func TestRegistrationServiceRegister_Success(t *testing.T) {
	accounts := newMockAccountRepo()
	profiles := newMockProfileRepo()
	svc := NewRegistrationService(zap.NewNop(), accounts, profiles, nil, testCatalog())

	account, profile, err := svc.Register(context.Background(), anaInput(), "en")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if account.Email != "ana@example.com" {
		t.Fatalf("unexpected email: %q", account.Email)
	}
	if profile.AccountID != account.ID {
		t.Fatalf("profile not linked to account: %q vs %q", profile.AccountID, account.ID)
	}
	if profile.FirstName != "Ana" {
		t.Fatalf("unexpected first name: %q", profile.FirstName)
	}
	if accounts.createCalls != 1 || profiles.createCalls != 1 {
		t.Fatalf("expected exactly one account and one profile write")
	}
	if account.PasswordHash == "secret1" {
		t.Fatalf("plaintext stored as hash")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("secret1")) != nil {
		t.Fatalf("hash does not verify against plaintext")
	}
}

func TestRegistrationServiceRegister_FreshSaltPerAccount(t *testing.T) {
	accounts := newMockAccountRepo()
	profiles := newMockProfileRepo()
	svc := NewRegistrationService(zap.NewNop(), accounts, profiles, nil, testCatalog())

	first, _, err := svc.Register(context.Background(), anaInput(), "en")
	if err != nil {
		t.Fatalf("first register: %v", err)
	}
	input := anaInput()
	input.Email = "other@example.com"
	second, _, err := svc.Register(context.Background(), input, "en")
	if err != nil {
		t.Fatalf("second register: %v", err)
	}
	if first.PasswordHash == second.PasswordHash {
		t.Fatalf("expected distinct hashes for same plaintext")
	}
}

func TestRegistrationServiceRegister_DuplicateEmail(t *testing.T) {
	accounts := newMockAccountRepo()
	accounts.byEmail["ana@example.com"] = domain.Account{ID: "a1", Email: "ana@example.com"}
	profiles := newMockProfileRepo()
	svc := NewRegistrationService(zap.NewNop(), accounts, profiles, nil, testCatalog())

	_, _, err := svc.Register(context.Background(), anaInput(), "en")
	var tagged *apperr.Error
	if !errors.As(err, &tagged) || tagged.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(tagged.Fields) != 1 || tagged.Fields[0].Param != "email" {
		t.Fatalf("expected email field error, got %+v", tagged.Fields)
	}
	if tagged.Fields[0].Msg != "email already exists" {
		t.Fatalf("unexpected message: %q", tagged.Fields[0].Msg)
	}
	if accounts.createCalls != 0 || profiles.createCalls != 0 {
		t.Fatalf("expected no writes on duplicate")
	}
}

func TestRegistrationServiceRegister_DuplicateEmailLocalized(t *testing.T) {
	accounts := newMockAccountRepo()
	accounts.byEmail["ana@example.com"] = domain.Account{ID: "a1", Email: "ana@example.com"}
	svc := NewRegistrationService(zap.NewNop(), accounts, newMockProfileRepo(), nil, testCatalog())

	_, _, err := svc.Register(context.Background(), anaInput(), "de")
	var tagged *apperr.Error
	if !errors.As(err, &tagged) || len(tagged.Fields) != 1 {
		t.Fatalf("expected field error, got %v", err)
	}
	if tagged.Fields[0].Msg != "E-Mail existiert bereits" {
		t.Fatalf("expected german message, got %q", tagged.Fields[0].Msg)
	}
}

func TestRegistrationServiceRegister_UniqueIndexRace(t *testing.T) {
	// El chequeo previo no ve la cuenta pero el indice unico la rechaza.
	accounts := newMockAccountRepo()
	accounts.createErr = apperr.FromStorage(&pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_idx"})
	svc := NewRegistrationService(zap.NewNop(), accounts, newMockProfileRepo(), nil, testCatalog())

	_, _, err := svc.Register(context.Background(), anaInput(), "en")
	var tagged *apperr.Error
	if !errors.As(err, &tagged) || tagged.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error from unique index, got %v", err)
	}
	if len(tagged.Fields) != 1 || tagged.Fields[0].Param != "email" || tagged.Fields[0].Msg != "email already exists" {
		t.Fatalf("expected localized email field error, got %+v", tagged.Fields)
	}
}

func TestRegistrationServiceRegister_ProfileFailureCompensates(t *testing.T) {
	accounts := newMockAccountRepo()
	profiles := newMockProfileRepo()
	profiles.createErr = apperr.Internal(errors.New("insert failed"))
	svc := NewRegistrationService(zap.NewNop(), accounts, profiles, nil, testCatalog())

	_, _, err := svc.Register(context.Background(), anaInput(), "en")
	if err == nil {
		t.Fatalf("expected error when profile insert fails")
	}
	if len(accounts.deleted) != 1 {
		t.Fatalf("expected compensating account delete, got %v", accounts.deleted)
	}
	if len(accounts.byEmail) != 0 {
		t.Fatalf("expected no orphaned account")
	}
}

func TestRegistrationServiceRegister_StorageUnavailable(t *testing.T) {
	accounts := newMockAccountRepo()
	accounts.getErr = apperr.Unavailable(errors.New("connection refused"))
	profiles := newMockProfileRepo()
	svc := NewRegistrationService(zap.NewNop(), accounts, profiles, nil, testCatalog())

	_, _, err := svc.Register(context.Background(), anaInput(), "en")
	var tagged *apperr.Error
	if !errors.As(err, &tagged) || tagged.Kind != apperr.KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if accounts.createCalls != 0 || profiles.createCalls != 0 {
		t.Fatalf("expected no writes while unavailable")
	}
}

func TestRegistrationServiceRegister_NoStorageConfigured(t *testing.T) {
	svc := NewRegistrationService(zap.NewNop(), nil, nil, nil, testCatalog())

	_, _, err := svc.Register(context.Background(), anaInput(), "en")
	var tagged *apperr.Error
	if !errors.As(err, &tagged) || tagged.Kind != apperr.KindUnavailable {
		t.Fatalf("expected unavailable without storage, got %v", err)
	}
}

func TestRegistrationServiceRegister_WelcomeEmailFailureIgnored(t *testing.T) {
	accounts := newMockAccountRepo()
	profiles := newMockProfileRepo()
	sender := email.NewDisabledSender("email sender not configured")
	svc := NewRegistrationService(zap.NewNop(), accounts, profiles, sender, testCatalog())

	if _, _, err := svc.Register(context.Background(), anaInput(), "en"); err != nil {
		t.Fatalf("register should not fail on email error: %v", err)
	}
}

func TestRegistrationServiceAuthenticate(t *testing.T) {
	accounts := newMockAccountRepo()
	profiles := newMockProfileRepo()
	svc := NewRegistrationService(zap.NewNop(), accounts, profiles, nil, testCatalog())
	if _, _, err := svc.Register(context.Background(), anaInput(), "en"); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "ana@example.com", "secret1"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	_, err := svc.Authenticate(context.Background(), "ana@example.com", "wrong")
	var tagged *apperr.Error
	if !errors.As(err, &tagged) || tagged.Kind != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized on wrong password, got %v", err)
	}

	_, err = svc.Authenticate(context.Background(), "missing@example.com", "secret1")
	if !errors.As(err, &tagged) || tagged.Kind != apperr.KindUnauthorized {
		t.Fatalf("expected unauthorized on unknown email, got %v", err)
	}
}

func TestRegistrationServiceLookup(t *testing.T) {
	accounts := newMockAccountRepo()
	profiles := newMockProfileRepo()
	svc := NewRegistrationService(zap.NewNop(), accounts, profiles, nil, testCatalog())
	account, profile, err := svc.Register(context.Background(), anaInput(), "en")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	gotAccount, gotProfile, err := svc.Lookup(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if gotAccount.ID != account.ID || gotProfile.ID != profile.ID {
		t.Fatalf("lookup returned wrong records")
	}
}
