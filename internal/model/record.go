package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the transaction category as labeled by Float's export.
type Category string

const (
	CategoryPurchase      Category = "purchase"
	CategoryInterest      Category = "interest"
	CategoryRefund        Category = "refund"
	CategoryReimbursement Category = "reimbursement"
)

// FloatRecord represents a parsed row of a Float export.
type FloatRecord struct {
	Reference   string // Float transaction ID; empty when the export omits it
	Date        time.Time
	Description string
	Merchant    string
	Spender     string
	Category    Category
	GLCode      string          // GL account full name, e.g. "Other Income:Interest Income"
	Subtotal    decimal.Decimal // pre-tax amount
	Tax         decimal.Decimal
	Total       decimal.Decimal // positive = money spent, negative = credit to the card
	Currency    string
}
