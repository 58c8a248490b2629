package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength = 3
	MaxUsernameLength = 20

	// Границы проверяются до санитизации.
	MinBidSampleLength = 50
	MaxBidSampleLength = 2000

	MinSubmissionContentLength = 300
	MaxSubmissionContentLength = 50000

	MinPasswordLength = 6
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	emailRegex    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9\s\-()]{7,}$`)

	// Паттерны инъекций в пользовательском вводе: операторы запросов и
	// обращения к объектам среды выполнения.
	injectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\$where`),
		regexp.MustCompile(`(?i)\$ne`),
		regexp.MustCompile(`(?i)\$gt`),
		regexp.MustCompile(`(?i)\$regex`),
		regexp.MustCompile(`(?i)\$or`),
		regexp.MustCompile(`(?i)\$and`),
		regexp.MustCompile(`(?i)\$nor`),
		regexp.MustCompile(`(?i)\$not`),
		regexp.MustCompile(`(?i)\$exists`),
		regexp.MustCompile(`(?i)\$elemMatch`),
		regexp.MustCompile(`(?i)\$all`),
		regexp.MustCompile(`(?i)\$in`),
		regexp.MustCompile(`(?i)\$nin`),
		regexp.MustCompile(`(?i)\$mod`),
		regexp.MustCompile(`(?i)\$text`),
		regexp.MustCompile(`(?i)\bdb\.`),
		regexp.MustCompile(`(?i)\bthis\.`),
	}

	scriptTagRegex    = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	iframeTagRegex    = regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`)
	embedTagRegex     = regexp.MustCompile(`(?i)<embed[^>]*>`)
	objectTagRegex    = regexp.MustCompile(`(?i)<object[^>]*>`)
	eventAttrRegex    = regexp.MustCompile(`(?i)on\w+\s*=\s*"[^"]*"`)
	eventAttrSqRegex  = regexp.MustCompile(`(?i)on\w+\s*=\s*'[^']*'`)
	eventAttrRawRegex = regexp.MustCompile(`(?i)on\w+\s*=\s*[^\s>]*`)
)

// SanitizeHTML вырезает опасные теги и обработчики событий из свободного текста.
func SanitizeHTML(input string) string {
	s := scriptTagRegex.ReplaceAllString(input, "")
	s = eventAttrRegex.ReplaceAllString(s, "")
	s = eventAttrSqRegex.ReplaceAllString(s, "")
	s = eventAttrRawRegex.ReplaceAllString(s, "")
	s = iframeTagRegex.ReplaceAllString(s, "")
	s = embedTagRegex.ReplaceAllString(s, "")
	s = objectTagRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// LooksLikeInjection сообщает, похож ли ввод на попытку инъекции в запрос.
func LooksLikeInjection(input string) bool {
	for _, pattern := range injectionPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}

// ValidateUsername проверяет формат имени пользователя:
// 3-20 символов, латиница/цифры/подчёркивание/дефис.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя: 3-20 символов, только буквы, цифры, _ и -")
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("некорректный формат email")
	}
	return nil
}

// ValidatePhone проверяет формат номера телефона.
func ValidatePhone(phone string) error {
	if phone == "" {
		return fmt.Errorf("телефон обязателен")
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("некорректный формат номера телефона")
	}
	return nil
}

// ValidateBidSample проверяет текст-образец заявки и возвращает
// санитизированную версию.
func ValidateBidSample(sample string) (string, error) {
	if sample == "" {
		return "", fmt.Errorf("текст-образец обязателен")
	}
	if LooksLikeInjection(sample) {
		return "", fmt.Errorf("обнаружены недопустимые символы")
	}
	// Границы считаются в символах, не в байтах: кириллический текст
	// занимает по два байта на букву.
	length := utf8.RuneCountInString(sample)
	if length < MinBidSampleLength {
		return "", fmt.Errorf("образец должен быть не короче %d символов", MinBidSampleLength)
	}
	if length > MaxBidSampleLength {
		return "", fmt.Errorf("образец должен быть не длиннее %d символов", MaxBidSampleLength)
	}
	return SanitizeHTML(sample), nil
}

// ValidateSubmissionContent проверяет содержимое работы и возвращает
// санитизированную версию.
func ValidateSubmissionContent(content string) (string, error) {
	if content == "" {
		return "", fmt.Errorf("содержимое работы обязательно")
	}
	if LooksLikeInjection(content) {
		return "", fmt.Errorf("обнаружены недопустимые символы")
	}
	length := utf8.RuneCountInString(content)
	if length < MinSubmissionContentLength {
		return "", fmt.Errorf("работа должна быть не короче %d символов", MinSubmissionContentLength)
	}
	if length > MaxSubmissionContentLength {
		return "", fmt.Errorf("работа должна быть не длиннее %d символов", MaxSubmissionContentLength)
	}
	return SanitizeHTML(content), nil
}
