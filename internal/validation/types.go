package validation

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Messages returned to clients for rejected payloads.
const (
	MsgAllFieldsRequired   = "All fields are required."
	MsgInvalidNumbers      = "Quantity, Unit Price, and Total Price must be valid numbers."
	MsgTotalPriceIncorrect = "Error in Total Price: Your total price is incorrect"
	MsgInvalidRequestBody  = "Invalid request body."
)

// ValidationError is a rejected request. Message is safe to return to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Number is a numeric request field. Clients send either a JSON number or a
// string holding one; both are kept verbatim and parsed on demand.
type Number struct {
	raw     string
	present bool
	falsy   bool
}

// NumberOf builds a Number as if the client had sent the JSON number f.
func NumberOf(f float64) Number {
	return Number{raw: strconv.FormatFloat(f, 'f', -1, 64), present: true, falsy: f == 0}
}

// NumberFrom builds a Number as if the client had sent the JSON string s.
func NumberFrom(s string) Number {
	return Number{raw: s, present: true, falsy: s == ""}
}

// UnmarshalJSON accepts any JSON value; null leaves the field absent.
func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumberFrom(s)
		return nil
	case bytes.Equal(b, []byte("false")):
		n.falsy = true
	default:
		if f, err := strconv.ParseFloat(string(b), 64); err == nil && f == 0 {
			n.falsy = true
		}
	}
	n.raw = string(b)
	n.present = true
	return nil
}

// Present reports whether the field was sent with a non-null value.
func (n Number) Present() bool { return n.present }

// Float64 parses the field. ok is false for absent, non-numeric and
// non-finite values.
func (n Number) Float64() (f float64, ok bool) {
	if !n.present {
		return 0, false
	}
	return parseFinite(n.raw)
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CreateMaterialOrderRequest is the payload for POST /.
type CreateMaterialOrderRequest struct {
	MaterialID        string `json:"materialId" validate:"required"`
	ItemDescription   string `json:"itemDescription" validate:"required"`
	Supplier          string `json:"supplier" validate:"required"`
	Quantity          Number `json:"quantity" validate:"required,finite"`
	UnitOfMeasurement string `json:"unitOfMeasurement" validate:"required"`
	UnitPrice         Number `json:"unitPrice" validate:"required,finite"`
	TotalPrice        Number `json:"totalPrice" validate:"required,finite"`
	OrderDate         string `json:"orderDate" validate:"required"`
	Items             any    `json:"items,omitempty"`
	Status            string `json:"status,omitempty"`
}

// UpdateMaterialOrderRequest is the payload for PUT /:id. Nil and absent
// fields are left unchanged.
type UpdateMaterialOrderRequest struct {
	MaterialID        *string `json:"materialId"`
	ItemDescription   *string `json:"itemDescription"`
	Supplier          *string `json:"supplier"`
	Quantity          Number  `json:"quantity"`
	UnitOfMeasurement *string `json:"unitOfMeasurement"`
	UnitPrice         Number  `json:"unitPrice"`
	TotalPrice        Number  `json:"totalPrice"`
	OrderDate         *string `json:"orderDate"`
	Items             any     `json:"items"`
	Status            *string `json:"status"`
}

// IsEmpty reports whether the request carries no field to change.
func (r UpdateMaterialOrderRequest) IsEmpty() bool {
	return r.MaterialID == nil && r.ItemDescription == nil && r.Supplier == nil &&
		!r.Quantity.Present() && r.UnitOfMeasurement == nil && !r.UnitPrice.Present() &&
		!r.TotalPrice.Present() && r.OrderDate == nil && r.Items == nil && r.Status == nil
}
