package server

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
)

// registerValidators adds domain rules to gin's binding validator.
// "msisdn" accepts any spelling of a Kenyan mobile number.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("msisdn", func(fl validator.FieldLevel) bool {
		return common.NormalizeMsisdn(fl.Field().String()) != ""
	})
}
