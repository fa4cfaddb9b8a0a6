// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "authsvc/internal/delivery/context"
	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/repository"
	"authsvc/internal/domain/service"
	"authsvc/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface. It is the state machine
// over an account's single-slot session: registration and login overwrite the
// refresh-token slot, refresh reads it, logout clears it.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new account and opens its first session. The account
// creation, token issuance and session write run inside one transaction so a
// failed issuance never leaves an account behind without tokens.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	if err := srv.hasher.ValidatePasswordStrength(input.Password); err != nil {
		srv.log(ctx).Warn("Password validation failed during registration", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	roles := entity.RolesFromStrings(input.Roles)
	if len(roles) == 0 {
		roles = entity.DefaultRoles()
	}

	var output *usecase.AuthOutput
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		// Friendlier conflict for the common case. The unique index remains
		// the authoritative guard; a racing insert still fails atomically in
		// Create below.
		_, err := userRepo.FindByEmail(ctx, input.Email)
		if err == nil {
			return domainerrors.ErrEmailAlreadyRegistered.WrapMessage("registration failed")
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check for existing account")
		}

		newUser := &entity.User{
			Email:        input.Email,
			PasswordHash: hashedPassword,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			Roles:        roles,
			Status:       entity.StatusActive,
		}

		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.Wrap(err, "failed to create account")
		}

		tokens, err := srv.openSession(ctx, userRepo, newUser)
		if err != nil {
			return err
		}
		output = tokens

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute registration transaction", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute registration transaction")
	}

	srv.log(ctx).Info("New user registered", slog.String("email", output.User.Email))

	return output, nil
}

// Login verifies credentials and opens a fresh session, silently invalidating
// any previously issued refresh token for the account.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Debug("Starting login", slog.String("email", input.Email))

	var output *usecase.AuthOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		user, err := userRepo.FindByEmailWithPassword(ctx, input.Email)
		if errors.Is(err, repository.ErrUserNotFound) {
			return domainerrors.ErrInvalidEmail.WrapMessage("login failed")
		}
		if err != nil {
			return errors.Wrap(err, "failed to find account by email")
		}

		if !srv.hasher.Check(input.Password, user.PasswordHash) {
			return domainerrors.ErrInvalidPassword.WrapMessage("login failed")
		}

		tokens, err := srv.openSession(ctx, userRepo, user)
		if err != nil {
			return err
		}
		output = tokens

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute login transaction")
	}

	srv.log(ctx).Info("User logged in", slog.String("email", output.User.Email))

	return output, nil
}

// openSession issues a fresh token pair and overwrites the account's
// refresh-token slot and last-login timestamp.
func (srv *authService) openSession(ctx context.Context, userRepo repository.UserRepository, user *entity.User) (*usecase.AuthOutput, error) {
	accessToken, err := srv.tokenService.IssueAccessToken(user.ID, user.Email, user.Roles.ToStrings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	refreshToken, err := srv.tokenService.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue refresh token")
	}

	now := time.Now()
	user.RefreshToken = refreshToken
	user.LastLoginAt = &now

	if err := userRepo.UpdateSession(ctx, user); err != nil {
		return nil, errors.Wrap(err, "failed to persist session")
	}

	return &usecase.AuthOutput{
		User:         toUserSummary(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshToken mints a new access token off a presented refresh token. The
// refresh token itself is never rotated here; it stays valid until a logout or
// a subsequent login overwrites it. Every failure mode collapses into the one
// generic unauthenticated error so callers learn nothing about the cause.
func (srv *authService) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error) {
	output, err := srv.refreshAccessToken(ctx, input.RefreshToken)
	if err != nil {
		srv.log(ctx).Warn("Refresh token rejected", slog.Any("error", err))

		return nil, domainerrors.ErrRefreshTokenInvalid.WrapMessage("refresh failed")
	}

	return output, nil
}

func (srv *authService) refreshAccessToken(ctx context.Context, refreshToken string) (*usecase.RefreshTokenOutput, error) {
	claims, err := srv.tokenService.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.Wrap(err, "refresh token verification failed")
	}

	user, err := srv.userRepo.FindByIDWithRefreshToken(ctx, claims.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account for refresh token")
	}

	// Exact string equality against the single stored slot: a token that was
	// rotated away by a later login, or cleared by logout, no longer matches.
	if user.RefreshToken != refreshToken {
		return nil, errors.New("presented refresh token does not match stored session")
	}

	if user.Status != entity.StatusActive {
		return nil, errors.Errorf("account status %q may not refresh", user.Status)
	}

	accessToken, err := srv.tokenService.IssueAccessToken(user.ID, user.Email, user.Roles.ToStrings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue access token")
	}

	srv.log(ctx).Info("New access token generated", slog.String("email", user.Email))

	return &usecase.RefreshTokenOutput{AccessToken: accessToken}, nil
}

// Logout clears the account's refresh-token slot, ending the session. Clearing
// an already-empty slot is a no-op, but the account must still exist.
func (srv *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	user, err := srv.userRepo.FindByIDWithRefreshToken(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return domainerrors.ErrUserNotFound.WrapMessage("logout failed")
	}
	if err != nil {
		return errors.Wrap(err, "failed to find account for logout")
	}

	if user.HasSession() {
		user.RefreshToken = ""
		if err := srv.userRepo.UpdateSession(ctx, user); err != nil {
			return errors.Wrap(err, "failed to clear session")
		}
	}

	srv.log(ctx).Info("User logged out", slog.String("email", user.Email))

	return nil
}

// GetProfile returns the read-only account projection. It never exposes the
// password hash or the refresh token.
func (srv *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*usecase.ProfileOutput, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, domainerrors.ErrUserNotFound.WrapMessage("profile lookup failed")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account for profile")
	}

	return &usecase.ProfileOutput{
		UserID:      user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Roles:       user.Roles.ToStrings(),
		Status:      user.Status.String(),
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}, nil
}

func toUserSummary(user *entity.User) *usecase.UserSummary {
	return &usecase.UserSummary{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Roles:     user.Roles.ToStrings(),
		Status:    user.Status.String(),
	}
}
