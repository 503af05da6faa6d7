package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/eventmarket-backend/internal/domain/valueobject"
)

// User описывает сущность пользователя площадки.
type User struct {
	ID               uuid.UUID                 `db:"id" json:"id"`
	FirstName        string                    `db:"first_name" json:"firstName"`
	LastName         string                    `db:"last_name" json:"lastName"`
	Email            string                    `db:"email" json:"email"`
	MobileNumber     *string                   `db:"mobile_number" json:"mobileNumber,omitempty"`
	PasswordHash     string                    `db:"password_hash" json:"-"`
	Role             valueobject.Role          `db:"role" json:"role"`
	AccountStatus    valueobject.AccountStatus `db:"account_status" json:"accountStatus"`
	SuspensionReason *string                   `db:"suspension_reason" json:"suspensionReason,omitempty"`
	LastLoginAt      *time.Time                `db:"last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt        time.Time                 `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time                 `db:"updated_at" json:"updatedAt"`
}

// IsAdmin сообщает, что пользователь администратор.
func (u *User) IsAdmin() bool {
	return u.Role == valueobject.RoleAdmin
}

// Caller - кто выполняет операцию: идентификатор, роль и статус аккаунта.
type Caller struct {
	ID            uuid.UUID
	Role          valueobject.Role
	AccountStatus valueobject.AccountStatus
}

// IsAdmin сообщает, что вызывающий администратор.
func (c Caller) IsAdmin() bool {
	return c.Role == valueobject.RoleAdmin
}

// Owns проверяет владение ресурсом с учётом прав администратора.
func (c Caller) Owns(ownerID uuid.UUID) bool {
	return c.ID == ownerID || c.IsAdmin()
}
