package receipt

// Item is one line entry of a receipt
type Item struct {
	ShortDescription string `json:"shortDescription"`
	Price            string `json:"price"` // Raw text while editing, two decimals once normalized
}

// Receipt is the receipt draft as edited by the user and sent to the scoring service
type Receipt struct {
	Retailer     string `json:"retailer"`
	PurchaseDate string `json:"purchaseDate"` // ISO date, YYYY-MM-DD
	PurchaseTime string `json:"purchaseTime"` // 24h time, HH:MM
	Total        string `json:"total"`
	Items        []Item `json:"items"`
}

// Clone returns a copy of the receipt that shares no item storage with r
func (r Receipt) Clone() Receipt {
	r.Items = cloneItems(r.Items)
	return r
}

func cloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
