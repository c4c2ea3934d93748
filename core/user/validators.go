package user

import (
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/eic-cefet/seminarios-v2-sub001/core"
)

const minPasswordLength = 8

var (
	pwdMinLenTag      = "pwdminlen"
	pwdMinLenText     = "password must contain at least 8 characters"
	pwdNoSpaceTag     = "pwdnospace"
	pwdNoSpaceText    = "password must not contain whitespace"
	pwdNotNumericTag  = "pwdnotnumeric"
	pwdNotNumericText = "password cannot be entirely numeric"
)

func registerPasswordValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(pwdMinLenTag, func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) >= minPasswordLength
	})
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)

	_ = validate.RegisterValidation(pwdNoSpaceTag, func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), " \t\n\r")
	})
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)

	_ = validate.RegisterValidation(pwdNotNumericTag, func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			if !unicode.IsDigit(r) {
				return true
			}
		}
		return false
	})
	core.RegisterCustomTranslation(validate, translator, pwdNotNumericTag, pwdNotNumericText)
}
