package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/repository"
	"authsvc/internal/domain/service"
	mockRepo "authsvc/internal/mocks/repository"
	mockSvc "authsvc/internal/mocks/service"
	"authsvc/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service      usecase.AuthUsecase
	txManager    *mockRepo.MockTransactionManager
	userRepo     *mockRepo.MockUserRepository
	hasher       *mockSvc.MockPasswordHasher
	tokenService *mockSvc.MockTokenService
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	userRepo := mockRepo.NewMockUserRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewAuthService(AuthServiceParams{
		TxManager:    txManager,
		UserRepo:     userRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		Logger:       logger,
	})

	return authServiceFixtures{
		service:      service,
		txManager:    txManager,
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.RegisterInput{
		Email:     "test@example.com",
		Password:  "Password123!",
		FirstName: "Test",
		LastName:  "User",
	}

	fx.hasher.EXPECT().ValidatePasswordStrength(input.Password).Return(nil)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)

			mockUserRepo.EXPECT().
				FindByEmail(ctx, input.Email).
				Return(nil, repository.ErrUserNotFound)

			mockUserRepo.EXPECT().
				Create(ctx, mock.AnythingOfType("*entity.User")).
				Run(func(ctx context.Context, user *entity.User) {
					user.ID = userID
				}).
				Return(nil)

			fx.tokenService.EXPECT().
				IssueAccessToken(userID, input.Email, []string{"patient"}).
				Return("access_token", nil)
			fx.tokenService.EXPECT().
				IssueRefreshToken(userID).
				Return("refresh_token", nil)

			mockUserRepo.EXPECT().
				UpdateSession(ctx, mock.AnythingOfType("*entity.User")).
				Run(func(ctx context.Context, user *entity.User) {
					assert.Equal(t, "refresh_token", user.RefreshToken)
					assert.NotNil(t, user.LastLoginAt)
				}).
				Return(nil)

			_ = fn(mockFactory)
		}).
		Return(nil)

	output, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, input.Email, output.User.Email)
	assert.Equal(t, []string{"patient"}, output.User.Roles)
	assert.Equal(t, "access_token", output.AccessToken)
	assert.Equal(t, "refresh_token", output.RefreshToken)
}

func TestAuthService_Register_EmailAlreadyRegistered(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:     "taken@example.com",
		Password:  "Password123!",
		FirstName: "Test",
		LastName:  "User",
	}

	fx.hasher.EXPECT().ValidatePasswordStrength(input.Password).Return(nil)
	fx.hasher.EXPECT().Hash(input.Password).Return("hashed_password", nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)

			mockUserRepo.EXPECT().
				FindByEmail(ctx, input.Email).
				Return(&entity.User{Email: input.Email}, nil)

			_ = fn(mockFactory)
		}).
		Return(errors.Wrap(domainerrors.ErrEmailAlreadyRegistered, "registration failed"))

	output, err := fx.service.Register(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrEmailAlreadyRegistered))
}

func TestAuthService_Register_WeakPassword(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	input := &usecase.RegisterInput{
		Email:     "test@example.com",
		Password:  "weak",
		FirstName: "Test",
		LastName:  "User",
	}

	fx.hasher.EXPECT().
		ValidatePasswordStrength(input.Password).
		Return(domainerrors.ErrPasswordStrength)

	output, err := fx.service.Register(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordStrength))
}

func TestAuthService_Login_Success(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.LoginInput{
		Email:    "test@example.com",
		Password: "Password123!",
	}

	storedUser := &entity.User{
		ID:           userID,
		Email:        input.Email,
		PasswordHash: "hashed_password",
		Roles:        entity.Roles{entity.RoleDoctor},
		Status:       entity.StatusActive,
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)

			mockUserRepo.EXPECT().
				FindByEmailWithPassword(ctx, input.Email).
				Return(storedUser, nil)

			fx.hasher.EXPECT().Check(input.Password, storedUser.PasswordHash).Return(true)

			fx.tokenService.EXPECT().
				IssueAccessToken(userID, input.Email, []string{"doctor"}).
				Return("access_token", nil)
			fx.tokenService.EXPECT().
				IssueRefreshToken(userID).
				Return("refresh_token", nil)

			mockUserRepo.EXPECT().
				UpdateSession(ctx, storedUser).
				Return(nil)

			_ = fn(mockFactory)
		}).
		Return(nil)

	output, err := fx.service.Login(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, "access_token", output.AccessToken)
	assert.Equal(t, "refresh_token", output.RefreshToken)
	assert.Equal(t, "refresh_token", storedUser.RefreshToken)
	assert.NotNil(t, storedUser.LastLoginAt)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	input := &usecase.LoginInput{
		Email:    "missing@example.com",
		Password: "Password123!",
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)

			mockUserRepo.EXPECT().
				FindByEmailWithPassword(ctx, input.Email).
				Return(nil, repository.ErrUserNotFound)

			_ = fn(mockFactory)
		}).
		Return(errors.Wrap(domainerrors.ErrInvalidEmail, "login failed"))

	output, err := fx.service.Login(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidEmail))
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	input := &usecase.LoginInput{
		Email:    "test@example.com",
		Password: "wrong",
	}

	storedUser := &entity.User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: "hashed_password",
		Status:       entity.StatusActive,
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)

			mockUserRepo.EXPECT().
				FindByEmailWithPassword(ctx, input.Email).
				Return(storedUser, nil)

			fx.hasher.EXPECT().Check(input.Password, storedUser.PasswordHash).Return(false)

			_ = fn(mockFactory)
		}).
		Return(errors.Wrap(domainerrors.ErrInvalidPassword, "login failed"))

	output, err := fx.service.Login(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidPassword))
}

func refreshClaimsFor(userID uuid.UUID) *service.RefreshClaims {
	return &service.RefreshClaims{UserID: userID}
}

func TestAuthService_RefreshToken_Success(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.RefreshTokenInput{RefreshToken: "stored_refresh_token"}

	fx.tokenService.EXPECT().
		VerifyRefreshToken(input.RefreshToken).
		Return(refreshClaimsFor(userID), nil)

	fx.userRepo.EXPECT().
		FindByIDWithRefreshToken(ctx, userID).
		Return(&entity.User{
			ID:           userID,
			Email:        "test@example.com",
			Roles:        entity.Roles{entity.RolePatient},
			Status:       entity.StatusActive,
			RefreshToken: "stored_refresh_token",
		}, nil)

	fx.tokenService.EXPECT().
		IssueAccessToken(userID, "test@example.com", []string{"patient"}).
		Return("new_access_token", nil)

	output, err := fx.service.RefreshToken(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, "new_access_token", output.AccessToken)
}

func TestAuthService_RefreshToken_VerificationFails(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	input := &usecase.RefreshTokenInput{RefreshToken: "garbage"}

	fx.tokenService.EXPECT().
		VerifyRefreshToken(input.RefreshToken).
		Return(nil, errors.New("token is invalid"))

	output, err := fx.service.RefreshToken(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_RefreshToken_SlotMismatch(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.RefreshTokenInput{RefreshToken: "old_refresh_token"}

	fx.tokenService.EXPECT().
		VerifyRefreshToken(input.RefreshToken).
		Return(refreshClaimsFor(userID), nil)

	// A later login replaced the slot, so the presented token no longer matches.
	fx.userRepo.EXPECT().
		FindByIDWithRefreshToken(ctx, userID).
		Return(&entity.User{
			ID:           userID,
			Status:       entity.StatusActive,
			RefreshToken: "newer_refresh_token",
		}, nil)

	output, err := fx.service.RefreshToken(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_RefreshToken_AfterLogout(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.RefreshTokenInput{RefreshToken: "stored_refresh_token"}

	fx.tokenService.EXPECT().
		VerifyRefreshToken(input.RefreshToken).
		Return(refreshClaimsFor(userID), nil)

	// Logout emptied the slot; a cryptographically valid token is still rejected.
	fx.userRepo.EXPECT().
		FindByIDWithRefreshToken(ctx, userID).
		Return(&entity.User{
			ID:     userID,
			Status: entity.StatusActive,
		}, nil)

	output, err := fx.service.RefreshToken(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_RefreshToken_SuspendedAccount(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.RefreshTokenInput{RefreshToken: "stored_refresh_token"}

	fx.tokenService.EXPECT().
		VerifyRefreshToken(input.RefreshToken).
		Return(refreshClaimsFor(userID), nil)

	fx.userRepo.EXPECT().
		FindByIDWithRefreshToken(ctx, userID).
		Return(&entity.User{
			ID:           userID,
			Status:       entity.StatusSuspended,
			RefreshToken: "stored_refresh_token",
		}, nil)

	output, err := fx.service.RefreshToken(ctx, input)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAuthService_Logout_Success(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.userRepo.EXPECT().
		FindByIDWithRefreshToken(ctx, userID).
		Return(&entity.User{
			ID:           userID,
			Email:        "test@example.com",
			RefreshToken: "stored_refresh_token",
		}, nil)

	fx.userRepo.EXPECT().
		UpdateSession(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(ctx context.Context, user *entity.User) {
			assert.Empty(t, user.RefreshToken)
		}).
		Return(nil)

	err := fx.service.Logout(ctx, userID)

	require.NoError(t, err)
}

func TestAuthService_Logout_AlreadyLoggedOut(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()

	// No stored session: logout succeeds without touching the store.
	fx.userRepo.EXPECT().
		FindByIDWithRefreshToken(ctx, userID).
		Return(&entity.User{
			ID:    userID,
			Email: "test@example.com",
		}, nil)

	err := fx.service.Logout(ctx, userID)

	require.NoError(t, err)
}

func TestAuthService_Logout_UserNotFound(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.userRepo.EXPECT().
		FindByIDWithRefreshToken(ctx, userID).
		Return(nil, repository.ErrUserNotFound)

	err := fx.service.Logout(ctx, userID)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestAuthService_GetProfile_Success(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()
	lastLogin := time.Now().Add(-time.Hour)

	fx.userRepo.EXPECT().
		FindByID(ctx, userID).
		Return(&entity.User{
			ID:          userID,
			Email:       "test@example.com",
			FirstName:   "Test",
			LastName:    "User",
			Roles:       entity.Roles{entity.RolePatient, entity.RoleAdmin},
			Status:      entity.StatusActive,
			LastLoginAt: &lastLogin,
			CreatedAt:   time.Now().Add(-24 * time.Hour),
		}, nil)

	output, err := fx.service.GetProfile(ctx, userID)

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, userID, output.UserID)
	assert.Equal(t, "test@example.com", output.Email)
	assert.Equal(t, []string{"patient", "admin"}, output.Roles)
	assert.Equal(t, &lastLogin, output.LastLoginAt)
}

func TestAuthService_GetProfile_UserNotFound(t *testing.T) {
	fx := createTestAuthService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.userRepo.EXPECT().
		FindByID(ctx, userID).
		Return(nil, repository.ErrUserNotFound)

	output, err := fx.service.GetProfile(ctx, userID)

	assert.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}
