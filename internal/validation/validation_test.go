package validation

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("Anna.Ivanova+events@Example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("no-at-sign"))
	assert.Error(t, ValidateEmail("a@b@c.com"))
	assert.Error(t, ValidateEmail("user@localhost"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Secret123"))
	assert.Error(t, ValidatePassword("Short1"))
	assert.Error(t, ValidatePassword("alllowercase1"))
	assert.Error(t, ValidatePassword("ALLUPPERCASE1"))
	assert.Error(t, ValidatePassword("NoDigitsHere"))
	assert.Error(t, ValidatePassword("Aa1"+strings.Repeat("x", 80)))
}

func TestValidatePrice(t *testing.T) {
	assert.NoError(t, ValidatePrice("цена", 0.01))
	assert.Error(t, ValidatePrice("цена", 0))
	assert.Error(t, ValidatePrice("цена", -5))
	assert.Error(t, ValidatePrice("цена", math.NaN()))
	assert.Error(t, ValidatePrice("цена", MaxAmount+1))
}

func TestValidateBudget(t *testing.T) {
	assert.NoError(t, ValidateBudget(0))
	assert.Error(t, ValidateBudget(-1))
}

func TestValidateRequestTitle(t *testing.T) {
	assert.NoError(t, ValidateRequestTitle("DJ на свадьбу"))
	assert.Error(t, ValidateRequestTitle("   "))
	assert.Error(t, ValidateRequestTitle("ab"))
	assert.Error(t, ValidateRequestTitle(strings.Repeat("я", MaxTitleLength+1)))
}

func TestValidatePaymentMethod(t *testing.T) {
	assert.NoError(t, ValidatePaymentMethod("card"))
	assert.NoError(t, ValidatePaymentMethod("bank_transfer"))
	assert.Error(t, ValidatePaymentMethod(""))
	assert.Error(t, ValidatePaymentMethod("card; DROP"))
}

func TestValidateMobileNumber(t *testing.T) {
	phone := "+7 (999) 123-45-67"
	bad := "call me"
	assert.NoError(t, ValidateMobileNumber(nil))
	assert.NoError(t, ValidateMobileNumber(&phone))
	assert.Error(t, ValidateMobileNumber(&bad))
}
