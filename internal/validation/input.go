package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinNameLength        = 1
	MaxNameLength        = 100
	MinTitleLength       = 3
	MaxTitleLength       = 200
	MaxEventNameLength   = 200
	MaxLocationLength    = 300
	MaxServiceTypeLength = 100
	MaxDescriptionLength = 5000
	MinPitchLength       = 10
	MaxPitchLength       = 5000
	MaxCommentLength     = 2000
	MaxPaymentMethodLen  = 50
	MaxAmount            = 100000000.0 // 100 миллионов
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	phoneRegex       = regexp.MustCompile(`^\+?[0-9\s\-()]{6,20}$`)
	methodRegex      = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidatePersonName проверяет имя или фамилию.
func ValidatePersonName(fieldName, value string) error {
	if err := ValidateNonEmpty(fieldName, value); err != nil {
		return err
	}
	return ValidateLength(fieldName, strings.TrimSpace(value), MinNameLength, MaxNameLength)
}

// ValidateMobileNumber проверяет телефон, если он указан.
func ValidateMobileNumber(phone *string) error {
	if phone == nil || *phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(*phone) {
		return fmt.Errorf("некорректный номер телефона")
	}
	return nil
}

// ValidateRequestTitle проверяет заголовок заявки.
func ValidateRequestTitle(title string) error {
	if err := ValidateNonEmpty("заголовок", title); err != nil {
		return err
	}
	return ValidateLength("заголовок", strings.TrimSpace(title), MinTitleLength, MaxTitleLength)
}

// ValidateRequestFields проверяет необязательные текстовые поля заявки.
func ValidateRequestFields(eventName, location, serviceType, description string) error {
	if err := ValidateLength("название мероприятия", eventName, 0, MaxEventNameLength); err != nil {
		return err
	}
	if err := ValidateLength("место проведения", location, 0, MaxLocationLength); err != nil {
		return err
	}
	if err := ValidateLength("тип услуги", serviceType, 0, MaxServiceTypeLength); err != nil {
		return err
	}
	return ValidateLength("описание", description, 0, MaxDescriptionLength)
}

// ValidateBudget проверяет бюджет заявки. Нулевой бюджет означает "договорной".
func ValidateBudget(budget float64) error {
	if math.IsNaN(budget) || math.IsInf(budget, 0) {
		return fmt.Errorf("бюджет должен быть числом")
	}
	if budget < 0 {
		return fmt.Errorf("бюджет не может быть отрицательным")
	}
	if budget > MaxAmount {
		return fmt.Errorf("бюджет не может превышать %.0f", MaxAmount)
	}
	return nil
}

// ValidatePrice проверяет предложенную цену или сумму платежа.
func ValidatePrice(fieldName string, price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return fmt.Errorf("%s должна быть больше нуля", fieldName)
	}
	if price > MaxAmount {
		return fmt.Errorf("%s не может превышать %.0f", fieldName, MaxAmount)
	}
	return nil
}

// ValidatePitchDetails проверяет текст предложения.
func ValidatePitchDetails(details string) error {
	if err := ValidateNonEmpty("описание предложения", details); err != nil {
		return err
	}
	return ValidateLength("описание предложения", strings.TrimSpace(details), MinPitchLength, MaxPitchLength)
}

// ValidateComment проверяет комментарий отзыва.
func ValidateComment(comment *string) error {
	if comment == nil {
		return nil
	}
	return ValidateLength("комментарий", *comment, 0, MaxCommentLength)
}

// ValidatePaymentMethod проверяет идентификатор способа оплаты.
func ValidatePaymentMethod(method string) error {
	if err := ValidateNonEmpty("способ оплаты", method); err != nil {
		return err
	}
	if err := ValidateLength("способ оплаты", method, 0, MaxPaymentMethodLen); err != nil {
		return err
	}
	if !methodRegex.MatchString(method) {
		return fmt.Errorf("способ оплаты содержит недопустимые символы")
	}
	return nil
}
