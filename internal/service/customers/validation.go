package customers

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/m04kA/SMC-SpaBookingService/internal/service/customers/models"
)

const (
	phoneDigits = 10

	// bcrypt учитывает только первые 72 байта пароля
	maxPasswordBytes = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validateRegister проверяет поля регистрации и возвращает нормализованный запрос
// Email приводится к нижнему регистру, из телефона остаются только цифры
func validateRegister(req *models.RegisterRequest) (*models.RegisterRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	normalized := models.RegisterRequest{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: req.Password,
		Name:     strings.TrimSpace(req.Name),
		Phone:    strings.TrimSpace(req.Phone),
	}

	if normalized.Email == "" || normalized.Password == "" || normalized.Name == "" || normalized.Phone == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrMissingFields)
	}

	if !emailPattern.MatchString(normalized.Email) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrInvalidEmail)
	}

	digits := digitsOnly(normalized.Phone)
	if len(digits) != phoneDigits {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, ErrInvalidPhone)
	}
	normalized.Phone = digits

	if len(normalized.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordBytes)
	}

	return &normalized, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
