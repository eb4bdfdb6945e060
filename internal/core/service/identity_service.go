package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
)

// IdentityService implements credential registration, login and principal
// resolution.
type IdentityService struct {
	credentials ports.CredentialRepository
	users       ports.UserRepository
	companies   ports.CompanyRepository
	logger      zerolog.Logger

	jwtSecret       string
	tokenTTL        time.Duration
	defaultCurrency string

	now   func() time.Time
	newID func() string
}

func NewIdentityService(
	credentials ports.CredentialRepository,
	users ports.UserRepository,
	companies ports.CompanyRepository,
	jwtSecret string,
	tokenTTL time.Duration,
	defaultCurrency string,
	logger zerolog.Logger,
) *IdentityService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	if defaultCurrency == "" {
		defaultCurrency = "INR"
	}
	return &IdentityService{
		credentials:     credentials,
		users:           users,
		companies:       companies,
		logger:          logger,
		jwtSecret:       jwtSecret,
		tokenTTL:        tokenTTL,
		defaultCurrency: defaultCurrency,
		now:             func() time.Time { return time.Now().UTC() },
		newID:           uuid.NewString,
	}
}

// Register stores credentials for email and resolves them to a principal. An
// address nobody invited signs up a new company with the registrant as Admin.
func (s *IdentityService) Register(ctx context.Context, email, password string) (*ports.Registration, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cred := &domain.Credential{
		Subject:      s.newID(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
	}
	if err := s.credentials.Create(ctx, cred); err != nil {
		return nil, err
	}

	identity := domain.ExternalIdentity{Subject: cred.Subject, Email: email}
	p, err := s.ResolvePrincipal(ctx, identity)
	if err == nil {
		s.logger.Info().Str("user_id", p.UserID).Str("company_id", p.CompanyID).Msg("invited user registered")
		return &ports.Registration{Principal: p}, nil
	}
	if !errors.Is(err, domain.ErrUnknownPrincipal) {
		return nil, err
	}

	p, err = s.signUp(ctx, identity, now)
	if err != nil {
		return nil, err
	}
	return &ports.Registration{Principal: p, CompanyCreated: true}, nil
}

func (s *IdentityService) signUp(ctx context.Context, identity domain.ExternalIdentity, now time.Time) (domain.Principal, error) {
	company := &domain.Company{
		ID:              s.newID(),
		Name:            domain.DefaultCompanyName(identity.Email),
		DefaultCurrency: s.defaultCurrency,
		CreatedAt:       now,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return domain.Principal{}, fmt.Errorf("sign up: create company: %w", err)
	}

	admin := &domain.User{
		ID:         s.newID(),
		ExternalID: identity.Subject,
		Email:      identity.Email,
		Role:       domain.RoleAdmin,
		CompanyID:  company.ID,
		CreatedAt:  now,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return domain.Principal{}, fmt.Errorf("sign up: create admin: %w", err)
	}

	s.logger.Info().
		Str("company_id", company.ID).
		Str("user_id", admin.ID).
		Str("company_name", company.Name).
		Msg("company signed up")
	return admin.Principal(), nil
}

// Login verifies the password and issues a signed token for the subject.
func (s *IdentityService) Login(ctx context.Context, email, password string) (string, *domain.Principal, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	cred, err := s.credentials.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	p, err := s.ResolvePrincipal(ctx, domain.ExternalIdentity{Subject: cred.Subject, Email: cred.Email})
	if err != nil {
		return "", nil, err
	}

	token, err := s.generateToken(cred)
	if err != nil {
		return "", nil, err
	}

	return token, &p, nil
}

func (s *IdentityService) generateToken(cred *domain.Credential) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   cred.Subject,
		"email": cred.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// ResolvePrincipal maps an authenticated identity to its tenant membership.
// The first time an invited user authenticates, their directory entry is
// linked to the identity's subject.
func (s *IdentityService) ResolvePrincipal(ctx context.Context, identity domain.ExternalIdentity) (domain.Principal, error) {
	if identity.Subject == "" {
		return domain.Principal{}, domain.ErrUnknownPrincipal
	}

	user, err := s.users.FindByExternalID(ctx, identity.Subject)
	if err == nil {
		return user.Principal(), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.Principal{}, fmt.Errorf("resolve principal: %w", err)
	}

	email := domain.NormalizeEmail(identity.Email)
	if email == "" {
		return domain.Principal{}, domain.ErrUnknownPrincipal
	}
	candidates, err := s.users.FindUnlinkedByEmail(ctx, email)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("resolve principal: %w", err)
	}
	if len(candidates) != 1 {
		if len(candidates) > 1 {
			s.logger.Warn().Str("email", email).Int("candidates", len(candidates)).Msg("ambiguous invitation")
		}
		return domain.Principal{}, domain.ErrUnknownPrincipal
	}

	invited := candidates[0]
	if err := s.users.LinkExternalID(ctx, invited.ID, identity.Subject); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return domain.Principal{}, domain.ErrUnknownPrincipal
		}
		return domain.Principal{}, fmt.Errorf("resolve principal: link: %w", err)
	}
	invited.ExternalID = identity.Subject

	s.logger.Info().Str("user_id", invited.ID).Str("company_id", invited.CompanyID).Msg("identity linked")
	return invited.Principal(), nil
}
