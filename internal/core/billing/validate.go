package billing

import (
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("payment_method", func(fl validator.FieldLevel) bool {
			return slices.Contains(PaymentMethods, fl.Field().String())
		})
	})
	return validate
}

// Validate checks the follow-up's fields.
func (f FollowUp) Validate() error {
	return validatorInstance().Struct(f)
}
