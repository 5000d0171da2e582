package domain

import "time"

// Clean record variants: typed, normalized rows produced by the rule set and
// published wholesale into the cleansed store. Nullable fields are pointers.
// Every cleansed table additionally carries a loaded_at lineage timestamp set
// by the store at publish time.

// Customer is a cleansed CRM customer row. ID is the business key.
type Customer struct {
	ID             int64
	CustomerNumber string
	FirstName      string
	LastName       string
	MaritalStatus  string
	Gender         string
	CreatedDate    *time.Time
}

// Product is a cleansed CRM product row. ID is the business key; the raw
// product key is split into CategoryID and ProductNumber. EndDate is
// recomputed from the next version's start date and is nil for the current
// version.
type Product struct {
	ID            int64
	ProductNumber string
	CategoryID    string
	Name          string
	Cost          float64
	Line          string
	StartDate     *time.Time
	EndDate       *time.Time
}

// SalesLine is a cleansed CRM sales order line. It has no business key of its
// own; ProductNumber and CustomerID reference other entities by value only.
// Price is nil when it cannot be derived (quantity zero).
type SalesLine struct {
	OrderNumber   string
	ProductNumber string
	CustomerID    *int64
	OrderDate     *time.Time
	ShipDate      *time.Time
	DueDate       *time.Time
	Sales         float64
	Quantity      int64
	Price         *float64
}

// CustomerDemo is a cleansed ERP customer demographics row. CustomerNumber is
// the business key, aligned with Customer.CustomerNumber after prefix and
// hyphen stripping.
type CustomerDemo struct {
	CustomerNumber string
	BirthDate      *time.Time
	Gender         string
}

// Location is a cleansed ERP customer location row. CustomerNumber is the
// business key, aligned with Customer.CustomerNumber after hyphen stripping.
type Location struct {
	CustomerNumber string
	Country        string
}

// Category is a cleansed ERP product category row. ID is the business key and
// matches Product.CategoryID by value.
type Category struct {
	ID          string
	Category    string
	Subcategory string
	Maintenance string
}
