package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/gatelaunch/internal/auth"
	"github.com/spec-kit/gatelaunch/internal/config"
	"github.com/spec-kit/gatelaunch/internal/domain"
	"github.com/spec-kit/gatelaunch/internal/repository"
	apperrors "github.com/spec-kit/gatelaunch/pkg/util"
)

// Credentials is the signup/login payload after transport decoding.
type Credentials struct {
	Email    string
	Password string
	Name     string
	IP       string
}

// AuthResult is a signed-in user plus the session that was opened.
type AuthResult struct {
	User    domain.User
	Session domain.Session
}

// AuthService coordinates registration, login and seeding.
type AuthService struct {
	users    repository.UserRepository
	sessions *auth.SessionRegistry
	limiter  auth.Limiter
	logger   *zap.Logger
	now      Clock
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Sessions *auth.SessionRegistry
	Limiter  auth.Limiter
	Logger   *zap.Logger
	Now      Clock
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    deps.UserRepo,
		sessions: deps.Sessions,
		limiter:  deps.Limiter,
		logger:   logger,
		now:      deps.Now.orSystem(),
	}
}

// Signup creates an account, or claims a seeded account that has no password yet.
func (s *AuthService) Signup(ctx context.Context, in Credentials) (AuthResult, error) {
	email := normalizeEmail(in.Email)
	if !isValidEmail(email) {
		return AuthResult{}, apperrors.NewValidationError("Invalid email")
	}
	if !auth.IsStrongPassword(in.Password) {
		return AuthResult{}, apperrors.NewValidationError("Password must be 10+ chars with upper/lower/digit")
	}
	if err := s.checkRate(ctx, in.IP, email); err != nil {
		return AuthResult{}, err
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, apperrors.NewStorageFailure(err)
	}
	if existing != nil && existing.HasCredential() {
		return AuthResult{}, apperrors.NewConflict("Email already registered")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return AuthResult{}, apperrors.NewInternalError(err)
	}
	requestedName := strings.TrimSpace(in.Name)

	if existing != nil {
		user, err := s.users.Update(ctx, existing.ID, func(u *domain.User) error {
			if u.HasCredential() {
				return repository.ErrConflict
			}
			u.PasswordHash = hash
			u.Role = domain.NormalizeRole(string(u.Role))
			if u.Name == "" {
				u.Name = defaultName(requestedName, email)
			}
			return nil
		})
		if err != nil {
			return AuthResult{}, signupError(err)
		}
		return s.open(*user)
	}

	user := domain.User{
		ID:           newID(),
		Name:         defaultName(requestedName, email),
		Email:        email,
		Role:         domain.RoleUser,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return AuthResult{}, signupError(err)
	}
	return s.open(user)
}

func signupError(err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return apperrors.NewConflict("Email already registered")
	}
	return apperrors.NewStorageFailure(err)
}

// Login verifies credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, in Credentials) (AuthResult, error) {
	email := normalizeEmail(in.Email)
	if !isValidEmail(email) || in.Password == "" {
		return AuthResult{}, apperrors.NewValidationError("Invalid credentials")
	}
	if err := s.checkRate(ctx, in.IP, email); err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, apperrors.NewStorageFailure(err)
	}
	if user == nil || !user.HasCredential() || auth.ComparePassword(user.PasswordHash, in.Password) != nil {
		return AuthResult{}, apperrors.NewUnauthorized("Invalid credentials")
	}
	return s.open(*user)
}

// Logout revokes the session token. Unknown tokens are ignored.
func (s *AuthService) Logout(token string) {
	if token != "" {
		s.sessions.Revoke(token)
	}
}

func (s *AuthService) open(user domain.User) (AuthResult, error) {
	session, err := s.sessions.Create(user.ID)
	if err != nil {
		return AuthResult{}, apperrors.NewInternalError(err)
	}
	return AuthResult{User: user, Session: session}, nil
}

// checkRate counts the attempt against the limiter. A limiter outage is
// logged and the attempt admitted.
func (s *AuthService) checkRate(ctx context.Context, ip, email string) error {
	if s.limiter == nil {
		return nil
	}
	allowed, err := s.limiter.Allow(ctx, auth.AttemptKey(ip, email))
	if err != nil {
		s.logger.Warn("rate limiter unavailable", zap.Error(err))
		return nil
	}
	if !allowed {
		return apperrors.NewRateLimited("")
	}
	return nil
}

func defaultName(requested, email string) string {
	if requested != "" {
		return titleCase(requested)
	}
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	local = strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
	if name := titleCase(local); name != "" {
		return name
	}
	return "User"
}

type seedAccount struct {
	email    string
	name     string
	role     domain.Role
	password string
}

var demoAccounts = []seedAccount{
	{email: "admin.demo@university.edu", name: "Demo Admin", role: domain.RoleAdmin, password: "admin1234"},
	{email: "supervisor.demo@university.edu", name: "Demo Supervisor", role: domain.RoleSupervisor, password: "Supervisor1234"},
	{email: "user.demo@university.edu", name: "Demo User", role: domain.RoleUser, password: "User123456"},
}

// Seed ensures the bootstrap admin and, when enabled, the demo accounts exist.
// Seeded passwords bypass the signup strength policy.
func (s *AuthService) Seed(ctx context.Context, cfg config.SeedConfig) error {
	email := normalizeEmail(cfg.AdminEmail)
	if email != "" && cfg.AdminPassword != "" {
		if err := s.seedOne(ctx, seedAccount{email: email, name: "System Admin", role: domain.RoleAdmin, password: cfg.AdminPassword}, true); err != nil {
			return err
		}
	}
	if !cfg.DemoUsers {
		return nil
	}
	for _, account := range demoAccounts {
		if err := s.seedOne(ctx, account, false); err != nil {
			return err
		}
	}
	return nil
}

// seedOne creates account when missing. forceRole promotes an existing user.
func (s *AuthService) seedOne(ctx context.Context, account seedAccount, forceRole bool) error {
	existing, err := s.users.GetByEmail(ctx, account.email)
	if errors.Is(err, repository.ErrNotFound) {
		hash, err := auth.HashPassword(account.password)
		if err != nil {
			return err
		}
		user := domain.User{
			ID:           newID(),
			Name:         account.name,
			Email:        account.email,
			Role:         account.role,
			PasswordHash: hash,
			CreatedAt:    s.now().UTC(),
		}
		if err := s.users.Create(ctx, &user); err != nil {
			return err
		}
		s.logger.Info("seeded account", zap.String("email", account.email), zap.String("role", string(account.role)))
		return nil
	}
	if err != nil {
		return err
	}

	role := domain.NormalizeRole(string(existing.Role))
	if forceRole {
		role = account.role
	}
	if existing.Role == role && existing.HasCredential() {
		return nil
	}
	var hash string
	if !existing.HasCredential() {
		if hash, err = auth.HashPassword(account.password); err != nil {
			return err
		}
	}
	_, err = s.users.Update(ctx, existing.ID, func(u *domain.User) error {
		u.Role = role
		if !u.HasCredential() && hash != "" {
			u.PasswordHash = hash
		}
		return nil
	})
	return err
}
