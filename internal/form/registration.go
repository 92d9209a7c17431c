package form

import (
	"net/url"
	"strings"
)

// Registration - данные формы регистрации.
// Пароль хранится в открытом виде только до хеширования в AuthService.
type Registration struct {
	Username             string `form:"username" validate:"required,min=3,max=150,username"`
	Email                string `form:"email" validate:"omitempty,max=254,email"`
	Password             string `form:"password1" validate:"required,min=8,maxbytes=72,notnumeric,nefield=Username"`
	PasswordConfirmation string `form:"password2" validate:"required,eqfield=Password"`
}

// ParseRegistration извлекает и проверяет данные регистрации.
// Возвращает либо валидную форму, либо ошибки по полям.
func ParseRegistration(values url.Values) (Registration, FieldErrors) {
	reg := Registration{
		Username:             strings.TrimSpace(values.Get("username")),
		Email:                strings.TrimSpace(values.Get("email")),
		Password:             values.Get("password1"),
		PasswordConfirmation: values.Get("password2"),
	}

	if errs := collect(&reg); errs != nil {
		return reg, errs
	}
	return reg, nil
}

// Login - данные формы входа
type Login struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// ParseLogin извлекает и проверяет наличие имени пользователя и пароля
func ParseLogin(values url.Values) (Login, FieldErrors) {
	login := Login{
		Username: strings.TrimSpace(values.Get("username")),
		Password: values.Get("password"),
	}

	if errs := collect(&login); errs != nil {
		return login, errs
	}
	return login, nil
}
