package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidators installs the custom binding tags used by the request DTOs.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	// money2dp: a positive amount with at most two decimal places.
	if err := v.RegisterValidation("money2dp", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		return IsMoney2DP(d)
	}); err != nil {
		return fmt.Errorf("failed to register 'money2dp': %w", err)
	}
	return nil
}

// IsMoney2DP reports whether d is positive with no more than two decimal places.
func IsMoney2DP(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2))
}
