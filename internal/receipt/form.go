package receipt

import (
	"errors"
	"fmt"
)

// Field names a scalar field of the receipt draft
type Field string

const (
	FieldRetailer     Field = "retailer"
	FieldPurchaseDate Field = "purchaseDate"
	FieldPurchaseTime Field = "purchaseTime"
)

// ItemField names an editable field of an item
type ItemField string

const (
	ItemFieldShortDescription ItemField = "shortDescription"
	ItemFieldPrice            ItemField = "price"
)

var (
	// ErrUnknownField is returned when a field name is not part of the draft
	ErrUnknownField = errors.New("unknown field")
	// ErrItemIndex is returned when an item index is outside the item list
	ErrItemIndex = errors.New("item index out of range")
)

// Form owns a receipt draft. Every operation that touches the item list
// recomputes the total before returning, so Total always matches Items.
//
// Form is not safe for concurrent use; callers serialize access.
type Form struct {
	draft Receipt
}

// NewForm creates a form holding an empty draft with a single empty item
func NewForm() *Form {
	f := &Form{
		draft: Receipt{
			Items: []Item{{}},
		},
	}
	f.recomputeTotal()
	return f
}

// Snapshot returns a copy of the current draft
func (f *Form) Snapshot() Receipt {
	return f.draft.Clone()
}

// Items returns a copy of the current item list
func (f *Form) Items() []Item {
	return cloneItems(f.draft.Items)
}

// UpdateField sets one scalar field. Values are not validated here.
func (f *Form) UpdateField(name Field, value string) error {
	switch name {
	case FieldRetailer:
		f.draft.Retailer = value
	case FieldPurchaseDate:
		f.draft.PurchaseDate = value
	case FieldPurchaseTime:
		f.draft.PurchaseTime = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// UpdateItem sets the description or price of the item at index
func (f *Form) UpdateItem(index int, field ItemField, value string) error {
	if index < 0 || index >= len(f.draft.Items) {
		return fmt.Errorf("%w: %d", ErrItemIndex, index)
	}
	switch field {
	case ItemFieldShortDescription:
		f.draft.Items[index].ShortDescription = value
	case ItemFieldPrice:
		f.draft.Items[index].Price = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	f.recomputeTotal()
	return nil
}

// AddItem appends an empty item
func (f *Form) AddItem() {
	f.draft.Items = append(f.draft.Items, Item{})
	f.recomputeTotal()
}

// DeleteItem removes the item at index. Deleting the last remaining item is a no-op.
func (f *Form) DeleteItem(index int) error {
	if index < 0 || index >= len(f.draft.Items) {
		return fmt.Errorf("%w: %d", ErrItemIndex, index)
	}
	if len(f.draft.Items) == 1 {
		return nil
	}
	items := make([]Item, 0, len(f.draft.Items)-1)
	items = append(items, f.draft.Items[:index]...)
	items = append(items, f.draft.Items[index+1:]...)
	f.draft.Items = items
	f.recomputeTotal()
	return nil
}

// Commit replaces the item list, e.g. with the result of ValidateAndFormat
func (f *Form) Commit(items []Item) {
	if len(items) == 0 {
		items = []Item{{}}
	}
	f.draft.Items = cloneItems(items)
	f.recomputeTotal()
}

// Prefill replaces the scalar fields and items with r. The total is recomputed
// from the items; r.Total is ignored.
func (f *Form) Prefill(r Receipt) {
	f.draft.Retailer = r.Retailer
	f.draft.PurchaseDate = r.PurchaseDate
	f.draft.PurchaseTime = r.PurchaseTime
	f.Commit(r.Items)
}

func (f *Form) recomputeTotal() {
	f.draft.Total = Total(f.draft.Items)
}

// Validation is the result of ValidateAndFormat
type Validation struct {
	Valid   bool
	Items   []Item
	Invalid []int // indexes of items whose price was blanked
}

// ValidateAndFormat normalizes every item price to two decimals. Items whose
// price is empty or not a non-negative number have it reset to "" and are
// listed in Invalid. The input slice is not modified.
func ValidateAndFormat(items []Item) Validation {
	out := Validation{
		Valid: true,
		Items: make([]Item, len(items)),
	}
	for i, item := range items {
		d, ok := parsePrice(item.Price)
		if !ok {
			item.Price = ""
			out.Valid = false
			out.Invalid = append(out.Invalid, i)
		} else {
			item.Price = formatPrice(d)
		}
		out.Items[i] = item
	}
	return out
}
