package materialorders

import (
	"errors"
	"time"
)

// StatusPending is assigned when a create request carries no status.
const StatusPending = "Pending"

// ErrNotFound is returned when an id does not resolve to a material order.
var ErrNotFound = errors.New("material order not found")

// MaterialOrder is a procurement line item, stored as one document per order.
type MaterialOrder struct {
	ID                string      `json:"id" dynamodbav:"id"` // PK
	MaterialID        string      `json:"materialId" dynamodbav:"material_id"`
	ItemDescription   string      `json:"itemDescription" dynamodbav:"item_description"`
	Supplier          string      `json:"supplier" dynamodbav:"supplier"`
	Quantity          float64     `json:"quantity" dynamodbav:"quantity"`
	UnitOfMeasurement string      `json:"unitOfMeasurement" dynamodbav:"unit_of_measurement"`
	UnitPrice         float64     `json:"unitPrice" dynamodbav:"unit_price"`
	TotalPrice        float64     `json:"totalPrice" dynamodbav:"total_price"`
	OrderDate         string      `json:"orderDate" dynamodbav:"order_date"`
	Items             interface{} `json:"items,omitempty" dynamodbav:"items,omitempty"` // free-form
	Status            string      `json:"status" dynamodbav:"status"`
	CreatedAt         time.Time   `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt         time.Time   `json:"updatedAt" dynamodbav:"updated_at"`
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	MaterialID        *string
	ItemDescription   *string
	Supplier          *string
	Quantity          *float64
	UnitOfMeasurement *string
	UnitPrice         *float64
	TotalPrice        *float64
	OrderDate         *string
	Items             interface{}
	Status            *string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.MaterialID == nil && p.ItemDescription == nil && p.Supplier == nil &&
		p.Quantity == nil && p.UnitOfMeasurement == nil && p.UnitPrice == nil &&
		p.TotalPrice == nil && p.OrderDate == nil && p.Items == nil && p.Status == nil
}

// Apply merges the patch into o.
func (p Patch) Apply(o *MaterialOrder) {
	if p.MaterialID != nil {
		o.MaterialID = *p.MaterialID
	}
	if p.ItemDescription != nil {
		o.ItemDescription = *p.ItemDescription
	}
	if p.Supplier != nil {
		o.Supplier = *p.Supplier
	}
	if p.Quantity != nil {
		o.Quantity = *p.Quantity
	}
	if p.UnitOfMeasurement != nil {
		o.UnitOfMeasurement = *p.UnitOfMeasurement
	}
	if p.UnitPrice != nil {
		o.UnitPrice = *p.UnitPrice
	}
	if p.TotalPrice != nil {
		o.TotalPrice = *p.TotalPrice
	}
	if p.OrderDate != nil {
		o.OrderDate = *p.OrderDate
	}
	if p.Items != nil {
		o.Items = p.Items
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
}
