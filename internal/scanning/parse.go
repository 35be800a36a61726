package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

var (
	dateFormats = []string{
		"2006-01-02",
		"2006/01/02",
		"01/02/2006",
		"02-01-2006",
	}
	timeFormats = []string{
		"15:04",
		"15:04:05",
		"3:04 PM",
		"3:04PM",
		"03:04 PM",
	}
)

// parseReceiptJSON parses the JSON answer of an LLM into ReceiptData
func parseReceiptJSON(text string) (*ReceiptData, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[startIdx : endIdx+1]

	var data ReceiptData
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	data.Retailer = strings.TrimSpace(data.Retailer)
	// Unreadable dates and times are left empty for the user to fill in
	data.PurchaseDate = normalize(data.PurchaseDate, dateFormats, "2006-01-02")
	data.PurchaseTime = normalize(data.PurchaseTime, timeFormats, "15:04")

	items := data.Items[:0]
	for _, item := range data.Items {
		item.ShortDescription = strings.TrimSpace(item.ShortDescription)
		if item.ShortDescription == "" && item.Price == 0 {
			continue
		}
		items = append(items, item)
	}
	data.Items = items

	return &data, nil
}

// normalize reformats value to layout if it matches one of formats, else returns ""
func normalize(value string, formats []string, layout string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t.Format(layout)
		}
	}
	return ""
}
