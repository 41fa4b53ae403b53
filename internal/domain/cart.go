package domain

// CartLine pairs a catalog item with a quantity. A cart never holds two
// lines for the same item id, and a line's quantity is at least 1 for as
// long as the line exists.
type CartLine struct {
	Item     CatalogItem `json:"item"`
	Quantity int         `json:"quantity"`
}

func (l CartLine) Subtotal() float64 {
	return l.Item.Price * float64(l.Quantity)
}

// CustomerField names one field of the checkout form.
type CustomerField string

const (
	FieldName    CustomerField = "name"
	FieldEmail   CustomerField = "email"
	FieldPhone   CustomerField = "phone"
	FieldAddress CustomerField = "address"
)

// CustomerInfo is the checkout form draft. All four fields are required
// non-empty at submission time; no shape validation beyond that.
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (c CustomerInfo) Field(f CustomerField) string {
	switch f {
	case FieldName:
		return c.Name
	case FieldEmail:
		return c.Email
	case FieldPhone:
		return c.Phone
	case FieldAddress:
		return c.Address
	}
	return ""
}

func (c *CustomerInfo) SetField(f CustomerField, value string) bool {
	switch f {
	case FieldName:
		c.Name = value
	case FieldEmail:
		c.Email = value
	case FieldPhone:
		c.Phone = value
	case FieldAddress:
		c.Address = value
	default:
		return false
	}
	return true
}
