package domain

// UnknownItemName is the display name used for lines whose catalog entry
// cannot currently be found.
const UnknownItemName = "Unknown Item"

// EntryLookup is the read-only catalog view needed to resolve cart lines.
// The catalog store satisfies it; tests can use a plain map-backed fake.
type EntryLookup interface {
	GetEntry(kind ItemKind, id string) (CatalogEntry, bool)
}

// ResolvedLine is a CartLine joined with live catalog data at read time. It
// is derived, never stored.
type ResolvedLine struct {
	Kind      ItemKind `json:"kind"`
	ItemID    string   `json:"item_id"`
	Quantity  int      `json:"quantity"`
	Name      string   `json:"name"`
	UnitPrice int64    `json:"unit_price"` // cents
	Subtotal  int64    `json:"subtotal"`   // cents
	ImageURL  string   `json:"image_url,omitempty"`

	// Unresolved is true when the referenced catalog identity cannot be
	// found. Such lines price at zero and must be surfaced to the caller,
	// never treated as free.
	Unresolved bool `json:"unresolved"`
}

// CartSummary is the derived view of a cart against the current catalog.
type CartSummary struct {
	Lines              []ResolvedLine `json:"lines"`
	Total              int64          `json:"total"` // cents
	HasUnresolvedLines bool           `json:"has_unresolved_lines"`
}

// ResolveLine joins a cart line with its catalog entry. If the entry is
// absent the line resolves to a zero price and is flagged unresolved. Pure
// function of its inputs; it never fails.
func ResolveLine(line CartLine, catalog EntryLookup) ResolvedLine {
	entry, ok := catalog.GetEntry(line.Kind, line.ItemID)
	if !ok {
		return ResolvedLine{
			Kind:       line.Kind,
			ItemID:     line.ItemID,
			Quantity:   line.Quantity,
			Name:       UnknownItemName,
			UnitPrice:  0,
			Subtotal:   0,
			Unresolved: true,
		}
	}

	return ResolvedLine{
		Kind:      line.Kind,
		ItemID:    line.ItemID,
		Quantity:  line.Quantity,
		Name:      entry.Name,
		UnitPrice: entry.UnitPrice,
		Subtotal:  entry.UnitPrice * int64(line.Quantity),
		ImageURL:  entry.ImageURL,
	}
}

// ComputeSummary resolves every line against the catalog and sums subtotals.
// Amounts are integer cents, so summation is exact. The summary is recomputed
// on every call rather than cached; staleness is impossible by construction.
func ComputeSummary(lines []CartLine, catalog EntryLookup) CartSummary {
	summary := CartSummary{Lines: make([]ResolvedLine, 0, len(lines))}

	for _, line := range lines {
		resolved := ResolveLine(line, catalog)
		summary.Lines = append(summary.Lines, resolved)
		summary.Total += resolved.Subtotal
		if resolved.Unresolved {
			summary.HasUnresolvedLines = true
		}
	}

	return summary
}
