package dto

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"shopledger/internal/core/types"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator:
//
//	money           non-negative amount with at most two fraction digits
//	positive_money  money greater than zero
//
// Field errors are reported under their JSON names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonName)
		v.RegisterCustomTypeFunc(moneyString, decimal.Decimal{})
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("positive_money", validatePositiveMoney)
	})
}

func jsonName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// moneyString lets rules see decimals as their canonical string.
func moneyString(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func parseMoney(fl validator.FieldLevel) (types.Money, bool) {
	if fl.Field().Kind() != reflect.String {
		return types.Zero(), false
	}
	m, err := types.ParseMoney(fl.Field().String())
	if err != nil {
		return types.Zero(), false
	}
	return m, true
}

func validateMoney(fl validator.FieldLevel) bool {
	m, ok := parseMoney(fl)
	return ok && !m.IsNegative() && m.Exponent() >= -types.MoneyScale
}

func validatePositiveMoney(fl validator.FieldLevel) bool {
	m, ok := parseMoney(fl)
	return ok && m.IsPositive() && m.Exponent() >= -types.MoneyScale
}

// FieldErrors converts validator errors into a field -> rule map.
func FieldErrors(err error) (map[string]string, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		out[field] = fe.Tag()
	}
	return out, true
}
