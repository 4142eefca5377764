package domain

import "github.com/shopspring/decimal"

// ProductRecord is a catalog entry as the payment service reports it. The
// payment service owns the product catalog alongside payments.
type ProductRecord struct {
	ID          string
	Name        string
	Description string
	Category    string
	Price       decimal.Decimal
	Currency    string
	Active      bool
	ImageURL    string
	STLFileURL  string
}
