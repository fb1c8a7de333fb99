package domain

// ItemKind distinguishes the two sellable catalog kinds. Every consumption
// site switches on the kind explicitly; there is no field-sniffing.
type ItemKind string

const (
	KindProduct ItemKind = "product"
	KindService ItemKind = "service"
)

// ParseItemKind maps a string onto an ItemKind. Returns false for anything
// that is not a known kind.
func ParseItemKind(s string) (ItemKind, bool) {
	switch ItemKind(s) {
	case KindProduct:
		return KindProduct, true
	case KindService:
		return KindService, true
	default:
		return "", false
	}
}

// Valid reports whether the kind is one of the known kinds.
func (k ItemKind) Valid() bool {
	return k == KindProduct || k == KindService
}

// Kinds returns all known item kinds.
func Kinds() []ItemKind {
	return []ItemKind{KindProduct, KindService}
}

// CatalogEntry is a fetched product or service record usable for pricing and
// display. Entries are replaced wholesale on re-fetch and never mutated by
// the cart.
type CatalogEntry struct {
	ID          string   `json:"id"`
	Kind        ItemKind `json:"kind"`
	Name        string   `json:"name"`
	UnitPrice   int64    `json:"unit_price"` // cents
	Description string   `json:"description,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Category    string   `json:"category,omitempty"`

	// StockQuantity is set for products only.
	StockQuantity int `json:"stock_quantity,omitempty"`

	// Duration is set for services only, e.g. "30 minutes".
	Duration string `json:"duration,omitempty"`
}
