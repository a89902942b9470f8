package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/xssnick/tonutils-go/address"

	apperrors "github.com/Avalanche-Team1-Africa/ChainRivals/internal/common/errors"
	"github.com/Avalanche-Team1-Africa/ChainRivals/internal/models"
)

const (
	// Максимальные длины для различных полей
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxUsernameLength    = 32
	MaxChainLength       = 32
	MaxCodeLength        = 64 * 1024

	MinUsernameLength = 3
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	chainRegex    = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator возвращает общий экземпляр validator/v10 с зарегистрированными
// тегами tonaddr, category и chain.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("tonaddr", func(fl validator.FieldLevel) bool {
			return ValidateWallet(fl.Field().String()) == nil
		})
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return models.Category(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("chain", func(fl validator.FieldLevel) bool {
			return ValidateChain(fl.Field().String()) == nil
		})
		validate = v
	})
	return validate
}

// Struct проверяет структуру по тегам `validate` и возвращает INVALID_INPUT
// с перечнем полей.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Wrap(err, apperrors.ErrCodeInvalidInput, "invalid request")
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fe.Tag()
	}
	first := fieldErrs[0]
	return apperrors.NewInvalidInputError(first.Field(), fmt.Sprintf("failed %q check", first.Tag())).
		WithDetail("fields", fields)
}

// ValidateWallet проверяет, что строка является адресом TON в
// user-friendly (base64) или raw (workchain:hex) форме.
func ValidateWallet(wallet string) error {
	_, err := ParseWallet(wallet)
	return err
}

// ParseWallet разбирает адрес TON в любой из двух форм.
func ParseWallet(wallet string) (*address.Address, error) {
	wallet = strings.TrimSpace(wallet)
	if wallet == "" {
		return nil, fmt.Errorf("wallet address cannot be empty")
	}
	if strings.Contains(wallet, ":") {
		addr, err := address.ParseRawAddr(wallet)
		if err != nil {
			return nil, fmt.Errorf("invalid raw wallet address: %w", err)
		}
		return addr, nil
	}
	addr, err := address.ParseAddr(wallet)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address: %w", err)
	}
	return addr, nil
}

// ValidateUsername проверяет имя пользователя. Пустое имя допустимо.
func ValidateUsername(username string) error {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil
	}
	if len(username) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username cannot exceed %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidateChain проверяет тег сети челленджа (avalanche, celo, polygon...)
func ValidateChain(chain string) error {
	if chain == "" {
		return fmt.Errorf("chain cannot be empty")
	}
	if len(chain) > MaxChainLength {
		return fmt.Errorf("chain cannot exceed %d characters", MaxChainLength)
	}
	if !chainRegex.MatchString(chain) {
		return fmt.Errorf("chain must be lowercase letters, digits, '-' or '_'")
	}
	return nil
}

// ValidateCode проверяет отправленный исходный код
func ValidateCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("code cannot be empty")
	}
	if len(code) > MaxCodeLength {
		return fmt.Errorf("code cannot exceed %d bytes", MaxCodeLength)
	}
	return nil
}
