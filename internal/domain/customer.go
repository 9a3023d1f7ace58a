package domain

import "time"

// Customer зарегистрированный клиент
// PasswordHash хранит bcrypt-хеш, пароль в открытом виде не сохраняется
type Customer struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	CreatedAt    time.Time
}
