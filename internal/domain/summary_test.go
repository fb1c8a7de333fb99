package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vetty/storefront/pkg/errors"
)

type staticLookup map[string]CatalogEntry

func (l staticLookup) GetEntry(kind ItemKind, id string) (CatalogEntry, bool) {
	e, ok := l[string(kind)+"/"+id]
	return e, ok
}

func lookupWith(entries ...CatalogEntry) staticLookup {
	l := make(staticLookup, len(entries))
	for _, e := range entries {
		l[string(e.Kind)+"/"+e.ID] = e
	}
	return l
}

func TestComputeSummary(t *testing.T) {
	catalog := lookupWith(
		CatalogEntry{ID: "1", Kind: KindProduct, Name: "Flea Collar", UnitPrice: 1000},
		CatalogEntry{ID: "2", Kind: KindService, Name: "Grooming", UnitPrice: 2500},
	)

	t.Run("totals are exact integer cents", func(t *testing.T) {
		lines := []CartLine{
			{Kind: KindProduct, ItemID: "1", Quantity: 2},
			{Kind: KindService, ItemID: "2", Quantity: 1},
		}

		summary := ComputeSummary(lines, catalog)

		require.Len(t, summary.Lines, 2)
		assert.Equal(t, int64(2000), summary.Lines[0].Subtotal)
		assert.Equal(t, int64(2500), summary.Lines[1].Subtotal)
		assert.Equal(t, int64(4500), summary.Total)
		assert.False(t, summary.HasUnresolvedLines)
	})

	t.Run("total tracks catalog price changes", func(t *testing.T) {
		lines := []CartLine{{Kind: KindProduct, ItemID: "1", Quantity: 2}}

		before := ComputeSummary(lines, catalog)
		assert.Equal(t, int64(2000), before.Total)

		repriced := lookupWith(
			CatalogEntry{ID: "1", Kind: KindProduct, Name: "Flea Collar", UnitPrice: 1500},
		)
		after := ComputeSummary(lines, repriced)
		assert.Equal(t, int64(3000), after.Total)
	})

	t.Run("missing entry resolves to zero and is flagged", func(t *testing.T) {
		lines := []CartLine{
			{Kind: KindProduct, ItemID: "1", Quantity: 1},
			{Kind: KindProduct, ItemID: "gone", Quantity: 3},
		}

		summary := ComputeSummary(lines, catalog)

		require.Len(t, summary.Lines, 2)
		assert.True(t, summary.HasUnresolvedLines)
		assert.True(t, summary.Lines[1].Unresolved)
		assert.Equal(t, UnknownItemName, summary.Lines[1].Name)
		assert.Zero(t, summary.Lines[1].UnitPrice)
		assert.Zero(t, summary.Lines[1].Subtotal)
		assert.Equal(t, int64(1000), summary.Total)
	})

	t.Run("kind mismatch does not resolve", func(t *testing.T) {
		lines := []CartLine{{Kind: KindService, ItemID: "1", Quantity: 1}}

		summary := ComputeSummary(lines, catalog)

		assert.True(t, summary.HasUnresolvedLines)
	})

	t.Run("empty cart summarizes to zero", func(t *testing.T) {
		summary := ComputeSummary(nil, catalog)

		assert.Empty(t, summary.Lines)
		assert.Zero(t, summary.Total)
		assert.False(t, summary.HasUnresolvedLines)
	})
}

func TestBuildOrderRequest(t *testing.T) {
	catalog := lookupWith(
		CatalogEntry{ID: "1", Kind: KindProduct, Name: "Flea Collar", UnitPrice: 1000},
	)

	t.Run("snapshots prices and total", func(t *testing.T) {
		summary := ComputeSummary([]CartLine{{Kind: KindProduct, ItemID: "1", Quantity: 3}}, catalog)

		order, err := BuildOrderRequest(summary)

		require.NoError(t, err)
		require.Len(t, order.Items, 1)
		assert.Equal(t, int64(1000), order.Items[0].UnitPrice)
		assert.Equal(t, 3, order.Items[0].Quantity)
		assert.Equal(t, int64(3000), order.Total)
	})

	t.Run("rejects an empty cart", func(t *testing.T) {
		_, err := BuildOrderRequest(CartSummary{})

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrEmptyCart))
	})

	t.Run("rejects unresolved lines", func(t *testing.T) {
		summary := ComputeSummary([]CartLine{{Kind: KindProduct, ItemID: "gone", Quantity: 1}}, catalog)

		_, err := BuildOrderRequest(summary)

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrUnresolvedLines))
	})
}
