package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"accounts-api/internal/apperr"
	"accounts-api/internal/domain"
	"accounts-api/internal/email"
	"accounts-api/internal/i18n"
	"accounts-api/internal/repository"
)

// RegistrationService coordina el alta de una cuenta y su perfil.
type RegistrationService struct {
	logger      *zap.Logger
	accounts    repository.AccountRepository
	profiles    repository.ProfileRepository
	emailSender email.Sender
	catalog     *i18n.Catalog
}

func NewRegistrationService(
	logger *zap.Logger,
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	emailSender email.Sender,
	catalog *i18n.Catalog,
) *RegistrationService {
	return &RegistrationService{
		logger:      logger,
		accounts:    accounts,
		profiles:    profiles,
		emailSender: emailSender,
		catalog:     catalog,
	}
}

// RegisterInput es el payload ya validado por el esquema de entrada.
type RegisterInput struct {
	FirstName    string
	LastName     string
	ContactPhone string
	Email        string
	Password     string
}

// Register ejecuta el flujo de registro: chequeo de duplicado, hash de
// contraseña, alta de cuenta y alta de perfil. El chequeo previo de
// email existe para dar un mensaje amable en el caso común; la garantía
// real contra duplicados concurrentes es el índice único del esquema,
// cuya violación se traduce al mismo error de campo.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput, locale string) (domain.Account, domain.Profile, error) {
	if s.accounts == nil || s.profiles == nil {
		return domain.Account{}, domain.Profile{}, apperr.Unavailable(errors.New("storage not configured"))
	}

	emailAddr := strings.TrimSpace(input.Email)

	_, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err == nil {
		return domain.Account{}, domain.Profile{}, s.duplicateEmailError(locale)
	}
	var tagged *apperr.Error
	if !errors.As(err, &tagged) || tagged.Kind != apperr.KindNotFound {
		return domain.Account{}, domain.Profile{}, err
	}

	// bcrypt genera una sal aleatoria por hash; nunca se reutiliza.
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Account{}, domain.Profile{}, apperr.Internal(err)
	}

	now := time.Now().UTC()
	account := domain.Account{
		ID:           uuid.NewString(),
		Email:        emailAddr,
		PasswordHash: string(hashBytes),
		CreatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return domain.Account{}, domain.Profile{}, s.localizeDuplicate(err, locale)
	}

	profile := domain.Profile{
		ID:           uuid.NewString(),
		AccountID:    account.ID,
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		ContactPhone: strings.TrimSpace(input.ContactPhone),
		CreatedAt:    now,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		// Compensación best-effort: sin el perfil la cuenta queda
		// huérfana, así que se intenta borrarla antes de fallar.
		if delErr := s.accounts.Delete(ctx, account.ID); delErr != nil {
			s.logger.Error("orphaned account left behind",
				zap.String("account_id", account.ID),
				zap.Error(delErr),
			)
		}
		return domain.Account{}, domain.Profile{}, err
	}

	if s.emailSender != nil {
		if err := s.emailSender.SendWelcome(ctx, account.Email, profile.FirstName); err != nil {
			s.logger.Warn("welcome email failed", zap.Error(err))
		}
	}

	return account, profile, nil
}

// Authenticate verifica credenciales de email y contraseña.
func (s *RegistrationService) Authenticate(ctx context.Context, emailAddr, password string) (domain.Account, error) {
	if s.accounts == nil {
		return domain.Account{}, apperr.Unavailable(errors.New("storage not configured"))
	}

	account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(emailAddr))
	if err != nil {
		var tagged *apperr.Error
		if errors.As(err, &tagged) && tagged.Kind == apperr.KindNotFound {
			return domain.Account{}, apperr.Unauthorized(err)
		}
		return domain.Account{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return domain.Account{}, apperr.Unauthorized(errors.New("password mismatch"))
	}
	return account, nil
}

// Lookup devuelve la cuenta y su perfil para el email dado.
func (s *RegistrationService) Lookup(ctx context.Context, emailAddr string) (domain.Account, domain.Profile, error) {
	if s.accounts == nil || s.profiles == nil {
		return domain.Account{}, domain.Profile{}, apperr.Unavailable(errors.New("storage not configured"))
	}
	account, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(emailAddr))
	if err != nil {
		return domain.Account{}, domain.Profile{}, err
	}
	profile, err := s.profiles.GetByAccountID(ctx, account.ID)
	if err != nil {
		return domain.Account{}, domain.Profile{}, err
	}
	return account, profile, nil
}

func (s *RegistrationService) duplicateEmailError(locale string) *apperr.Error {
	return &apperr.Error{
		Kind:       apperr.KindValidation,
		MessageKey: "email_already_exists",
		Fields: []apperr.FieldError{{
			Param: "email",
			Msg:   s.catalog.Resolve(locale, "email_already_exists"),
		}},
	}
}

// localizeDuplicate completa el mensaje localizado cuando el duplicado
// lo detectó el índice único en lugar del chequeo previo.
func (s *RegistrationService) localizeDuplicate(err error, locale string) error {
	var tagged *apperr.Error
	if errors.As(err, &tagged) && tagged.Kind == apperr.KindValidation && tagged.MessageKey == "email_already_exists" {
		return s.duplicateEmailError(locale)
	}
	return err
}
