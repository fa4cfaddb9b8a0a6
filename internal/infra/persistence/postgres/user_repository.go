// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"strings"
	"time"

	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/repository"
	"authsvc/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// safeColumns are the columns loaded on default reads. The password hash and
// the refresh-token slot are only selected through the explicit With variants.
var safeColumns = []string{
	"id", "email", "first_name", "last_name",
	"roles", "status", "last_login_at", "created_at", "updated_at",
}

// userRepository implements the repository.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a repository.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByID retrieves a single account by its unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return repo.findOne(ctx, safeColumns, "id = ?", id)
}

// FindByIDWithRefreshToken retrieves an account including its refresh-token slot.
func (repo *userRepository) FindByIDWithRefreshToken(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	columns := append(append([]string{}, safeColumns...), "refresh_token")

	return repo.findOne(ctx, columns, "id = ?", id)
}

// FindByEmail retrieves a single account by email. The lookup is
// case-insensitive: emails are lowercased at write time, so folding the input
// here is sufficient.
func (repo *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return repo.findOne(ctx, safeColumns, "email = ?", foldEmail(email))
}

// FindByEmailWithPassword retrieves an account including its password hash.
func (repo *userRepository) FindByEmailWithPassword(ctx context.Context, email string) (*entity.User, error) {
	columns := append(append([]string{}, safeColumns...), "password_hash")

	return repo.findOne(ctx, columns, "email = ?", foldEmail(email))
}

func (repo *userRepository) findOne(ctx context.Context, columns []string, cond string, arg any) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Select(columns).
		Where(cond, arg).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user")
	}

	return toUserDomain(&userM), nil
}

// Create persists a new account. Email uniqueness is enforced by the unique
// index, not by any prior existence check; a duplicate insert surfaces as the
// conflict error regardless of races.
func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	user.Email = foldEmail(user.Email)
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrEmailAlreadyRegistered.WrapMessage("email already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required account fields")
		}

		return domainerrors.NewDatabaseExecuteError(err)
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// Update persists a full account mutation.
func (repo *userRepository) Update(ctx context.Context, user *entity.User) error {
	user.Email = foldEmail(user.Email)
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Save(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrEmailAlreadyRegistered.WrapMessage("email already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err)
	}

	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// UpdateSession writes only the refresh-token slot and last-login timestamp.
// The narrow column list is the skip-validation path: rotating a session must
// not re-run full-field validation on every login.
func (repo *userRepository) UpdateSession(ctx context.Context, user *entity.User) error {
	var refreshToken *string
	if user.RefreshToken != "" {
		token := user.RefreshToken
		refreshToken = &token
	}

	err := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", user.ID).
		Select("refresh_token", "last_login_at", "updated_at").
		Updates(map[string]any{
			"refresh_token": refreshToken,
			"last_login_at": user.LastLoginAt,
			"updated_at":    time.Now(),
		}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err)
	}

	return nil
}

func foldEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	refreshToken := ""
	if data.RefreshToken != nil {
		refreshToken = *data.RefreshToken
	}

	return &entity.User{
		ID:           data.ID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Roles:        entity.RolesFromStrings(data.Roles),
		Status:       entity.Status(data.Status),
		RefreshToken: refreshToken,
		LastLoginAt:  data.LastLoginAt,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	var refreshToken *string
	if data.RefreshToken != "" {
		token := data.RefreshToken
		refreshToken = &token
	}

	return &model.UserModel{
		ID:           data.ID,
		Email:        data.Email,
		PasswordHash: data.PasswordHash,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		Roles:        model.RoleList(data.Roles.ToStrings()),
		Status:       data.Status.String(),
		RefreshToken: refreshToken,
		LastLoginAt:  data.LastLoginAt,
	}
}
