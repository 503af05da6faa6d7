package valueobject

import (
	"fmt"

	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
)

type Role string

const (
	RoleClient   Role = "CLIENT"
	RoleProvider Role = "PROVIDER"
	RoleAdmin    Role = "ADMIN"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleProvider, RoleAdmin:
		return true
	}
	return false
}

// IsSelfAssignable - роль можно выбрать при регистрации.
func (r Role) IsSelfAssignable() bool {
	return r == RoleClient || r == RoleProvider
}

func NewRole(role string) (Role, error) {
	r := Role(role)
	if !r.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "роль должна быть CLIENT, PROVIDER или ADMIN")
	}
	return r, nil
}

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "ACTIVE"
	AccountStatusPending   AccountStatus = "PENDING"
	AccountStatusSuspended AccountStatus = "SUSPENDED"
	AccountStatusInactive  AccountStatus = "INACTIVE"
)

func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountStatusActive, AccountStatusPending, AccountStatusSuspended, AccountStatusInactive:
		return true
	}
	return false
}

// CanMutate - заблокированный аккаунт может входить и читать, но не менять данные.
func (s AccountStatus) CanMutate() bool {
	return s != AccountStatusSuspended
}

func NewAccountStatus(status string) (AccountStatus, error) {
	s := AccountStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус аккаунта")
	}
	return s, nil
}

// RatingRange - замкнутый диапазон допустимых оценок.
type RatingRange struct {
	Min int
	Max int
}

var DefaultRatingRange = RatingRange{Min: 1, Max: 5}

func (r RatingRange) Check(rating int) error {
	if rating < r.Min || rating > r.Max {
		return apperror.New(apperror.ErrCodeInvalidRating,
			fmt.Sprintf("оценка должна быть от %d до %d", r.Min, r.Max))
	}
	return nil
}
