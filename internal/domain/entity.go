package domain

// Entity identifies one of the record types flowing through the engine.
type Entity string

// Entities, in their batch processing order.
const (
	EntityCustomer     Entity = "customer"
	EntityProduct      Entity = "product"
	EntitySalesLine    Entity = "sales_line"
	EntityCustomerDemo Entity = "customer_demo"
	EntityLocation     Entity = "location"
	EntityCategory     Entity = "category"
)

// EntityOrder is the fixed sequence a batch run processes entities in.
// No entity's transform reads another's cleansed output, so the order is
// stable for reporting rather than for correctness.
var EntityOrder = []Entity{
	EntityCustomer,
	EntityProduct,
	EntitySalesLine,
	EntityCustomerDemo,
	EntityLocation,
	EntityCategory,
}

// ParseEntity validates an entity tag from user input (API filters, CLI flags).
func ParseEntity(s string) (Entity, error) {
	for _, e := range EntityOrder {
		if string(e) == s {
			return e, nil
		}
	}
	return "", ErrValidation("unknown entity %q", s)
}
