package validation

import "fmt"

// ValidatePassword проверяет минимальную длину пароля.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("пароль должен быть не менее %d символов", MinPasswordLength)
	}
	return nil
}
