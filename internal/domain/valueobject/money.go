package valueobject

import (
	"fmt"
	"math"
	"strings"

	"github.com/ignatzorin/eventmarket-backend/internal/pkg/apperror"
)

type Money struct {
	Amount   float64
	Currency string
}

// NewMoney создаёт положительную сумму; валюта приводится к нижнему регистру.
func NewMoney(amount float64, currency string) (Money, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, apperror.New(apperror.ErrCodeValidation, "сумма должна быть положительной")
	}
	if currency == "" {
		currency = "usd"
	}
	return Money{Amount: amount, Currency: strings.ToLower(currency)}, nil
}

// MinorUnits возвращает сумму в центах (копейках) для платёжных шлюзов.
func (m Money) MinorUnits() int64 {
	return int64(math.Round(m.Amount * 100))
}

// Equal сравнивает суммы с точностью до минимальной единицы.
func (m Money) Equal(amount float64) bool {
	return m.MinorUnits() == int64(math.Round(amount*100))
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Amount, strings.ToUpper(m.Currency))
}
