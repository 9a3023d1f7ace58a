package customers

import "errors"

var (
	// ErrEmailTaken возвращается, когда email уже зарегистрирован
	ErrEmailTaken = errors.New("customer already exists")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrMissingFields возвращается, когда не заполнено обязательное поле
	ErrMissingFields = errors.New("missing required fields")

	// ErrInvalidEmail возвращается при некорректном email
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrInvalidPhone возвращается, когда в телефоне не 10 цифр
	ErrInvalidPhone = errors.New("invalid phone format")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("customers.service: internal error")
)
