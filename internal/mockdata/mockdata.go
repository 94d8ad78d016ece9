// Package mockdata simulates query execution for the demo. Result sets are
// pinned: the same hint always maps to the same canned dataset.
package mockdata

import "strings"

// Dataset identifies one of the canned result sets.
type Dataset string

const (
	DatasetUsers   Dataset = "users"
	DatasetOrders  Dataset = "orders"
	DatasetRevenue Dataset = "revenue"
)

// Row is one untyped result record. Keys are homogeneous within a dataset.
type Row map[string]any

var userRows = []Row{
	{"id": 1, "name": "John Doe", "email": "john@example.com", "status": "active", "city": "New York", "created_at": "2024-01-15"},
	{"id": 2, "name": "Jane Smith", "email": "jane@example.com", "status": "active", "city": "Los Angeles", "created_at": "2024-01-20"},
	{"id": 3, "name": "Bob Johnson", "email": "bob@example.com", "status": "inactive", "city": "Chicago", "created_at": "2024-02-01"},
	{"id": 4, "name": "Alice Williams", "email": "alice@example.com", "status": "active", "city": "New York", "created_at": "2024-02-10"},
	{"id": 5, "name": "Charlie Brown", "email": "charlie@example.com", "status": "pending", "city": "Miami", "created_at": "2024-02-15"},
	{"id": 6, "name": "Diana Prince", "email": "diana@example.com", "status": "active", "city": "Los Angeles", "created_at": "2024-02-20"},
	{"id": 7, "name": "Edward Norton", "email": "edward@example.com", "status": "inactive", "city": "Chicago", "created_at": "2024-02-25"},
	{"id": 8, "name": "Fiona Apple", "email": "fiona@example.com", "status": "active", "city": "New York", "created_at": "2024-03-01"},
}

var orderRows = []Row{
	{"id": 101, "customer": "John Doe", "total": 249.99, "status": "completed", "city": "New York"},
	{"id": 102, "customer": "Jane Smith", "total": 149.99, "status": "pending", "city": "Los Angeles"},
	{"id": 103, "customer": "Bob Johnson", "total": 399.99, "status": "completed", "city": "Chicago"},
	{"id": 104, "customer": "Alice Williams", "total": 89.99, "status": "shipped", "city": "New York"},
	{"id": 105, "customer": "Charlie Brown", "total": 199.99, "status": "completed", "city": "Miami"},
	{"id": 106, "customer": "Diana Prince", "total": 299.99, "status": "pending", "city": "Los Angeles"},
}

var revenueRows = []Row{
	{"month": "Jan 2024", "revenue": 42156},
	{"month": "Feb 2024", "revenue": 38912},
	{"month": "Mar 2024", "revenue": 45234},
	{"month": "Apr 2024", "revenue": 51890},
	{"month": "May 2024", "revenue": 48320},
	{"month": "Jun 2024", "revenue": 52100},
}

var datasets = map[Dataset][]Row{
	DatasetUsers:   userRows,
	DatasetOrders:  orderRows,
	DatasetRevenue: revenueRows,
}

// Match resolves a free-text hint to a dataset by case-insensitive keyword
// matching. Unmatched hints fall back to the users dataset.
func Match(hint string) Dataset {
	lower := strings.ToLower(hint)
	switch {
	case strings.Contains(lower, "user"):
		return DatasetUsers
	case strings.Contains(lower, "order"):
		return DatasetOrders
	case strings.Contains(lower, "revenue"), strings.Contains(lower, "sales"):
		return DatasetRevenue
	default:
		return DatasetUsers
	}
}

// Respond returns the rows for the dataset matched by hint. The returned
// slice is shared pinned data; callers must not mutate it.
func Respond(hint string) []Row {
	return datasets[Match(hint)]
}
