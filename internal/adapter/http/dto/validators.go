package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"merchant-wallet-engine/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
	bicRe        = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
	ibanRe       = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{11,30}$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidators(v)
	}
}

// RegisterValidators adds the custom tags used by the request DTOs.
func RegisterValidators(v *validator.Validate) {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("money", validateMoney)
	_ = v.RegisterValidation("safe_id", validateSafeID)
	_ = v.RegisterValidation("currency", validateCurrency)
	_ = v.RegisterValidation("operator", validateOperator)
	_ = v.RegisterValidation("bic", validateBIC)
	_ = v.RegisterValidation("iban", validateIBAN)
}

// decimalValue lets tags on decimal.Decimal fields see the exact decimal text.
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

// validateMoney accepts positive amounts with at most two decimal places.
func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	return err == nil && domain.ValidateAmount(d) == nil
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

func validateCurrency(fl validator.FieldLevel) bool {
	return domain.Currency(fl.Field().String()).Valid()
}

// validateOperator accepts the collection rails a merchant may request.
func validateOperator(fl validator.FieldLevel) bool {
	m := domain.PaymentMethod(fl.Field().String())
	return m.Valid() && m != domain.PaymentMethodManual
}

func validateBIC(fl validator.FieldLevel) bool {
	return bicRe.MatchString(normalizeBankCode(fl.Field().String()))
}

func validateIBAN(fl validator.FieldLevel) bool {
	return ibanRe.MatchString(normalizeBankCode(fl.Field().String()))
}

func normalizeBankCode(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// SanitizeStruct cleans the exported string and *string fields of a struct
// pointer in place. By default a value is trimmed and HTML-escaped. The
// sanitize tag changes that: "bankcode" upper-cases and strips spaces, and
// "-" leaves the field alone.
func SanitizeStruct(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return
	}
	rv = rv.Elem()
	rt := rv.Type()
	for i := range rt.NumField() {
		clean := cleanerFor(rt.Field(i).Tag.Get("sanitize"))
		if clean == nil {
			continue
		}
		f := rv.Field(i)
		if f.Kind() == reflect.Pointer && !f.IsNil() {
			f = f.Elem()
		}
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(clean(f.String()))
		}
	}
}

func cleanerFor(tag string) func(string) string {
	switch tag {
	case "-":
		return nil
	case "bankcode":
		return normalizeBankCode
	default:
		return func(s string) string { return html.EscapeString(strings.TrimSpace(s)) }
	}
}
