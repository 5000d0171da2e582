package rules

import (
	"math"
	"strconv"

	"refinery/internal/domain"
)

// salesTolerance is the half-cent slack allowed when comparing a source sales
// amount against quantity times price, absorbing decimal-to-float noise.
const salesTolerance = 0.005

// NormalizeSalesLine maps one raw CRM sales order line to a typed candidate.
// Sales lines carry no business key of their own. Dates arrive as 8-digit
// numeric strings. The financial fields are reconciled so that
// sales = quantity x price always holds in the output: price is rederived
// from sales when missing or zero, then sales is rederived from quantity and
// price when missing or inconsistent. Lines whose order date falls after the
// ship or due date are rejected for manual review.
func NormalizeSalesLine(raw domain.RawRecord) (domain.SalesLine, *Rejection) {
	var customerID *int64
	if s := clean(raw.Field("customer_id")); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return domain.SalesLine{}, reject("customer_id", domain.ReasonUnparsable)
		}
		customerID = &n
	}

	orderDate, rej := parseCompactDate(raw.Field("order_date"), "order_date")
	if rej != nil {
		return domain.SalesLine{}, rej
	}
	shipDate, rej := parseCompactDate(raw.Field("ship_date"), "ship_date")
	if rej != nil {
		return domain.SalesLine{}, rej
	}
	dueDate, rej := parseCompactDate(raw.Field("due_date"), "due_date")
	if rej != nil {
		return domain.SalesLine{}, rej
	}

	var quantity int64
	if s := clean(raw.Field("quantity")); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return domain.SalesLine{}, reject("quantity", domain.ReasonUnparsable)
		}
		quantity = n
	}

	price, rej := parseAmount(raw.Field("price"), "price")
	if rej != nil {
		return domain.SalesLine{}, rej
	}
	sales, rej := parseAmount(raw.Field("sales"), "sales")
	if rej != nil {
		return domain.SalesLine{}, rej
	}

	// Price first: rederive from sales/quantity when missing or zero, so a
	// trustworthy source sales amount is not clobbered by a zero price.
	if price == nil || *price == 0 {
		if quantity != 0 && sales != nil {
			p := *sales / float64(quantity)
			price = &p
		} else {
			price = nil
		}
	}

	expected := 0.0
	if price != nil {
		expected = float64(quantity) * *price
	}
	if sales == nil || math.Abs(*sales-expected) > salesTolerance {
		sales = &expected
	}

	if orderDate != nil && shipDate != nil && orderDate.After(*shipDate) {
		return domain.SalesLine{}, reject("order_date", domain.ReasonDateSequence)
	}
	if orderDate != nil && dueDate != nil && orderDate.After(*dueDate) {
		return domain.SalesLine{}, reject("order_date", domain.ReasonDateSequence)
	}

	return domain.SalesLine{
		OrderNumber:   clean(raw.Field("order_number")),
		ProductNumber: clean(raw.Field("product_number")),
		CustomerID:    customerID,
		OrderDate:     orderDate,
		ShipDate:      shipDate,
		DueDate:       dueDate,
		Sales:         *sales,
		Quantity:      quantity,
		Price:         price,
	}, nil
}
