package validation

import (
	"errors"
	"reflect"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	tagRequired   = "required"
	tagFinite     = "finite"
	tagTotalPrice = "total_price_match"
)

// New returns a configured validator with the Number type and the
// total price checks registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// Number validates as its raw text; absent and falsy values as nil so
	// that "required" rejects them.
	v.RegisterCustomTypeFunc(numberValue, Number{})
	_ = v.RegisterValidation(tagFinite, func(fl validatorv10.FieldLevel) bool {
		_, ok := parseFinite(fl.Field().String())
		return ok
	})

	v.RegisterStructValidation(createStructValidation, CreateMaterialOrderRequest{})
	v.RegisterStructValidation(updateStructValidation, UpdateMaterialOrderRequest{})

	return v
}

func numberValue(field reflect.Value) interface{} {
	n, ok := field.Interface().(Number)
	if !ok || !n.present || n.falsy {
		return nil
	}
	return n.raw
}

// TotalMatches reports whether totalPrice equals quantity*unitPrice rounded
// half away from zero to two decimal places.
func TotalMatches(quantity, unitPrice, totalPrice float64) bool {
	return ComputeTotal(quantity, unitPrice).Equal(decimal.NewFromFloat(totalPrice))
}

// ComputeTotal returns quantity*unitPrice rounded to cents.
func ComputeTotal(quantity, unitPrice float64) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitPrice)).Round(2)
}

func createStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateMaterialOrderRequest)

	q, okQ := req.Quantity.Float64()
	p, okP := req.UnitPrice.Float64()
	total, okT := req.TotalPrice.Float64()
	if !okQ || !okP || !okT {
		// reported by the field validations
		return
	}
	if !TotalMatches(q, p, total) {
		sl.ReportError(req.TotalPrice, "totalPrice", "TotalPrice", tagTotalPrice, "")
	}
}

func updateStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(UpdateMaterialOrderRequest)

	numbers := []struct {
		value     Number
		field     string
		structFld string
	}{
		{req.Quantity, "quantity", "Quantity"},
		{req.UnitPrice, "unitPrice", "UnitPrice"},
		{req.TotalPrice, "totalPrice", "TotalPrice"},
	}
	for _, n := range numbers {
		if !n.value.Present() {
			continue
		}
		if _, ok := n.value.Float64(); !ok {
			sl.ReportError(n.value, n.field, n.structFld, tagFinite, "")
			return
		}
	}

	// The recheck only runs when the request carries all three values.
	if !req.Quantity.Present() || !req.UnitPrice.Present() || !req.TotalPrice.Present() {
		return
	}
	q, _ := req.Quantity.Float64()
	p, _ := req.UnitPrice.Float64()
	total, _ := req.TotalPrice.Float64()
	if !TotalMatches(q, p, total) {
		sl.ReportError(req.TotalPrice, "totalPrice", "TotalPrice", tagTotalPrice, "")
	}
}

// Check validates req and converts failures into a *ValidationError carrying
// the client-facing message. Missing fields take precedence over malformed
// numbers, which take precedence over a wrong total.
func Check(v *validatorv10.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validatorv10.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	tags := map[string]bool{}
	for _, fe := range verrs {
		tags[fe.Tag()] = true
	}
	switch {
	case tags[tagRequired]:
		return &ValidationError{Message: MsgAllFieldsRequired}
	case tags[tagFinite]:
		return &ValidationError{Message: MsgInvalidNumbers}
	default:
		return &ValidationError{Message: MsgTotalPriceIncorrect}
	}
}
