// Package form разбирает и валидирует данные HTML-форм регистрации и входа.
// Функции пакета чистые: они не обращаются к хранилищу и не имеют побочных эффектов.
package form

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/yourusername/mindquest/internal/pkg/errors"
)

// NonFieldErrors - ключ для ошибок, не относящихся к конкретному полю
const NonFieldErrors = "__all__"

// Сообщения об ошибках, показываемые пользователю
const (
	MsgRequired          = "This field is required."
	MsgInvalidUsername   = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	MsgUsernameTooShort  = "Ensure this value has at least 3 characters."
	MsgUsernameTooLong   = "Ensure this value has at most 150 characters."
	MsgUsernameTaken     = "A user with that username already exists."
	MsgInvalidEmail      = "Enter a valid email address."
	MsgPasswordTooShort  = "This password is too short. It must contain at least 8 characters."
	MsgPasswordTooLong   = "This password is too long. It must contain at most 72 bytes."
	MsgPasswordNumeric   = "This password is entirely numeric."
	MsgPasswordSimilar   = "The password is too similar to the username."
	MsgPasswordMismatch  = "The two password fields didn't match."
	MsgInvalidCredential = "Please enter a correct username and password. Note that both fields may be case-sensitive."
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

// FieldErrors хранит сообщения об ошибках по именам полей формы
type FieldErrors map[string][]string

// Add добавляет сообщение для поля
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Has сообщает, есть ли ошибки у поля
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// First возвращает первое сообщение для поля или пустую строку
func (fe FieldErrors) First(field string) string {
	if msgs := fe[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error реализует интерфейс error
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(fe[field], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is позволяет сравнивать FieldErrors с apperrors.ErrValidation через errors.Is
func (fe FieldErrors) Is(target error) bool {
	return target == apperrors.ErrValidation
}

// AsFieldErrors извлекает FieldErrors из цепочки ошибок
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Ошибки адресуются по имени поля HTML-формы
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notnumeric", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, r := range s {
			if r < '0' || r > '9' {
				return true
			}
		}
		return s == ""
	})
	// bcrypt принимает не больше 72 байт; max считает руны, поэтому отдельное правило
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	return v
}

// messageFor переводит ошибку validator в сообщение для пользователя
func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "username":
		return MsgInvalidUsername
	case "email":
		return MsgInvalidEmail
	case "notnumeric":
		return MsgPasswordNumeric
	case "maxbytes":
		return MsgPasswordTooLong
	case "nefield":
		return MsgPasswordSimilar
	case "eqfield":
		return MsgPasswordMismatch
	case "min":
		if fe.Field() == "username" {
			return MsgUsernameTooShort
		}
		return MsgPasswordTooShort
	case "max":
		if fe.Field() == "username" {
			return MsgUsernameTooLong
		}
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	}
	return "Enter a valid value."
}

// collect прогоняет валидацию структуры и собирает FieldErrors; nil, если ошибок нет
func collect(s interface{}) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs := FieldErrors{}
		errs.Add(NonFieldErrors, err.Error())
		return errs
	}

	errs := FieldErrors{}
	for _, fe := range verrs {
		errs.Add(fe.Field(), messageFor(fe))
	}
	return errs
}
