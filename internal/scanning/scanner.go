package scanning

import "context"

// ItemData is one line item read from a receipt
type ItemData struct {
	ShortDescription string  `json:"shortDescription"`
	Price            float64 `json:"price"`
}

// ReceiptData contains extracted information from a receipt
type ReceiptData struct {
	Retailer     string     `json:"retailer"`
	PurchaseDate string     `json:"purchaseDate"` // YYYY-MM-DD, empty if unreadable
	PurchaseTime string     `json:"purchaseTime"` // HH:MM, empty if unreadable
	Items        []ItemData `json:"items"`
}

// Scanner defines the interface for receipt scanning operations
type Scanner interface {
	// ScanReceipt analyzes a receipt image/PDF and extracts its fields and items
	ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*ReceiptData, error)
	// Close closes the scanner and releases resources
	Close() error
}
