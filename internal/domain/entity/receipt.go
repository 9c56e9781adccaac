package entity

import "github.com/shopspring/decimal"

// ReceiptHeader is the restaurant block printed at the top of a receipt
type ReceiptHeader struct {
	RestaurantName string `json:"restaurant_name"`
	Address        string `json:"address,omitempty"`
	Phone          string `json:"phone,omitempty"`
}

// ReceiptLine is one item on a receipt
type ReceiptLine struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// Receipt is composed from a bill at print time. It is not persisted.
type Receipt struct {
	Header        ReceiptHeader   `json:"header"`
	TokenNumber   int             `json:"token_number"`
	BillNumber    string          `json:"bill_number"`
	Date          string          `json:"date"`
	Platform      string          `json:"platform"`
	PaymentMethod string          `json:"payment_method"`
	Customer      string          `json:"customer,omitempty"`
	Lines         []ReceiptLine   `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	GST           decimal.Decimal `json:"gst"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	Total         decimal.Decimal `json:"total"`
}
