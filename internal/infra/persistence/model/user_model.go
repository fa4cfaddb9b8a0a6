package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RoleList stores the account's role tags as a jsonb column.
type RoleList []string

// Value implements driver.Valuer for writing the role list.
func (r RoleList) Value() (driver.Value, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal role list")
	}

	return string(data), nil
}

// Scan implements sql.Scanner for reading the role list.
func (r *RoleList) Scan(value any) error {
	if value == nil {
		*r = nil

		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("unsupported role list column type %T", value)
	}

	return errors.Wrap(json.Unmarshal(data, r), "failed to unmarshal role list")
}

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
type UserModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email        string     `gorm:"type:varchar(255);unique;not null"`
	PasswordHash string     `gorm:"type:varchar(255);not null"`
	FirstName    string     `gorm:"type:varchar(100);not null"`
	LastName     string     `gorm:"type:varchar(100);not null"`
	Roles        RoleList   `gorm:"type:jsonb;not null"`
	Status       string     `gorm:"type:varchar(20);not null;default:'active'"`
	RefreshToken *string    `gorm:"type:text"`
	LastLoginAt  *time.Time `gorm:""`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
