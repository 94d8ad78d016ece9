// Package schema holds the static registry of insertable demo tables. The
// same descriptors drive both the showForm tool payloads and server-side
// validation of record create requests.
package schema

// FieldType enumerates the supported form field types.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldEmail   FieldType = "email"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
	FieldSelect  FieldType = "select"
)

// Option is one choice of a select field.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Validation carries optional constraints for a field. Pattern applies to
// text and email fields only; Min/Max to number fields only.
type Validation struct {
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Pattern string   `json:"pattern,omitempty"`
	Message string   `json:"message,omitempty"`
}

// FieldSchema describes a single insertable column.
type FieldSchema struct {
	Name        string      `json:"name"`
	Type        FieldType   `json:"type"`
	Label       string      `json:"label"`
	Required    bool        `json:"required"`
	Placeholder string      `json:"placeholder,omitempty"`
	Options     []Option    `json:"options,omitempty"`
	Validation  *Validation `json:"validation,omitempty"`
}

// TableSchema describes one insertable table. Field names are unique
// within a descriptor; order matters for validation reporting.
type TableSchema struct {
	Name        string        `json:"name"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Fields      []FieldSchema `json:"fields"`
}

func floatPtr(f float64) *float64 { return &f }

var tables = map[string]*TableSchema{
	"users": {
		Name:        "users",
		Label:       "User",
		Description: "Create a new user account",
		Fields: []FieldSchema{
			{
				Name:        "name",
				Type:        FieldText,
				Label:       "Full Name",
				Required:    true,
				Placeholder: "John Doe",
			},
			{
				Name:        "email",
				Type:        FieldEmail,
				Label:       "Email Address",
				Required:    true,
				Placeholder: "john@example.com",
				Validation: &Validation{
					Pattern: `^[^\s@]+@[^\s@]+\.[^\s@]+$`,
					Message: "Please enter a valid email address",
				},
			},
			{
				Name:     "status",
				Type:     FieldSelect,
				Label:    "Status",
				Required: true,
				Options: []Option{
					{Label: "Active", Value: "active"},
					{Label: "Inactive", Value: "inactive"},
					{Label: "Pending", Value: "pending"},
				},
			},
			{
				Name:        "city",
				Type:        FieldText,
				Label:       "City",
				Required:    false,
				Placeholder: "New York",
			},
		},
	},
	"orders": {
		Name:        "orders",
		Label:       "Order",
		Description: "Create a new order",
		Fields: []FieldSchema{
			{
				Name:        "customer",
				Type:        FieldText,
				Label:       "Customer Name",
				Required:    true,
				Placeholder: "John Doe",
			},
			{
				Name:        "total",
				Type:        FieldNumber,
				Label:       "Total Amount",
				Required:    true,
				Placeholder: "99.99",
				Validation: &Validation{
					Min:     floatPtr(0),
					Message: "Amount must be greater than 0",
				},
			},
			{
				Name:     "status",
				Type:     FieldSelect,
				Label:    "Order Status",
				Required: true,
				Options: []Option{
					{Label: "Pending", Value: "pending"},
					{Label: "Completed", Value: "completed"},
					{Label: "Shipped", Value: "shipped"},
					{Label: "Cancelled", Value: "cancelled"},
				},
			},
			{
				Name:        "city",
				Type:        FieldText,
				Label:       "Shipping City",
				Required:    false,
				Placeholder: "Los Angeles",
			},
		},
	},
	"products": {
		Name:        "products",
		Label:       "Product",
		Description: "Add a new product to inventory",
		Fields: []FieldSchema{
			{
				Name:        "name",
				Type:        FieldText,
				Label:       "Product Name",
				Required:    true,
				Placeholder: "Wireless Headphones",
			},
			{
				Name:        "price",
				Type:        FieldNumber,
				Label:       "Price",
				Required:    true,
				Placeholder: "49.99",
				Validation: &Validation{
					Min:     floatPtr(0),
					Message: "Price must be greater than 0",
				},
			},
			{
				Name:     "category",
				Type:     FieldSelect,
				Label:    "Category",
				Required: true,
				Options: []Option{
					{Label: "Electronics", Value: "electronics"},
					{Label: "Clothing", Value: "clothing"},
					{Label: "Home & Garden", Value: "home"},
					{Label: "Sports", Value: "sports"},
				},
			},
			{
				Name:        "stock",
				Type:        FieldNumber,
				Label:       "Stock Quantity",
				Required:    true,
				Placeholder: "100",
				Validation: &Validation{
					Min:     floatPtr(0),
					Message: "Stock must be 0 or greater",
				},
			},
		},
	},
}

// Get returns the schema for tableName, or nil if the table is unknown.
func Get(tableName string) *TableSchema {
	return tables[tableName]
}

// Names returns the registered table names.
func Names() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	return names
}
