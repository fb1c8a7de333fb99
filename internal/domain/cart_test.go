package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddLine(t *testing.T) {
	t.Run("adds a new line", func(t *testing.T) {
		cart := &Cart{}
		cart.AddLine(KindProduct, "1", 2)

		require.Len(t, cart.Lines, 1)
		assert.Equal(t, KindProduct, cart.Lines[0].Kind)
		assert.Equal(t, "1", cart.Lines[0].ItemID)
		assert.Equal(t, 2, cart.Lines[0].Quantity)
	})

	t.Run("merges into an existing line", func(t *testing.T) {
		cart := &Cart{}
		cart.AddLine(KindProduct, "1", 2)
		cart.AddLine(KindProduct, "1", 3)

		require.Len(t, cart.Lines, 1)
		assert.Equal(t, 5, cart.Lines[0].Quantity)
	})

	t.Run("same id with different kinds stays separate", func(t *testing.T) {
		cart := &Cart{}
		cart.AddLine(KindProduct, "1", 1)
		cart.AddLine(KindService, "1", 1)

		assert.Len(t, cart.Lines, 2)
	})

	t.Run("merge preserves insertion order", func(t *testing.T) {
		cart := &Cart{}
		cart.AddLine(KindProduct, "1", 1)
		cart.AddLine(KindProduct, "2", 1)
		cart.AddLine(KindProduct, "1", 1)

		require.Len(t, cart.Lines, 2)
		assert.Equal(t, "1", cart.Lines[0].ItemID)
		assert.Equal(t, "2", cart.Lines[1].ItemID)
	})

	t.Run("non-positive quantity is ignored", func(t *testing.T) {
		cart := &Cart{}
		cart.AddLine(KindProduct, "1", 0)
		cart.AddLine(KindProduct, "1", -1)

		assert.Empty(t, cart.Lines)
	})
}

func TestCartSetQuantity(t *testing.T) {
	t.Run("sets the quantity of an existing line", func(t *testing.T) {
		cart := &Cart{}
		cart.AddLine(KindProduct, "1", 2)
		cart.SetQuantity(KindProduct, "1", 7)

		assert.Equal(t, 7, cart.Lines[0].Quantity)
	})

	t.Run("quantity below one leaves the line untouched", func(t *testing.T) {
		cart := &Cart{}
		cart.AddLine(KindProduct, "1", 1)

		cart.SetQuantity(KindProduct, "1", 0)
		require.Len(t, cart.Lines, 1)
		assert.Equal(t, 1, cart.Lines[0].Quantity)

		cart.SetQuantity(KindProduct, "1", -5)
		require.Len(t, cart.Lines, 1)
		assert.Equal(t, 1, cart.Lines[0].Quantity)
	})

	t.Run("absent line is a no-op", func(t *testing.T) {
		cart := &Cart{}
		cart.SetQuantity(KindProduct, "missing", 3)

		assert.Empty(t, cart.Lines)
	})
}

func TestCartRemoveLine(t *testing.T) {
	t.Run("removes an existing line", func(t *testing.T) {
		cart := &Cart{}
		cart.AddLine(KindProduct, "1", 1)
		cart.AddLine(KindService, "2", 1)

		cart.RemoveLine(KindProduct, "1")

		require.Len(t, cart.Lines, 1)
		assert.Equal(t, "2", cart.Lines[0].ItemID)
	})

	t.Run("removing an absent line is idempotent", func(t *testing.T) {
		cart := &Cart{}
		cart.AddLine(KindProduct, "1", 1)

		cart.RemoveLine(KindProduct, "missing")
		cart.RemoveLine(KindProduct, "1")
		cart.RemoveLine(KindProduct, "1")

		assert.Empty(t, cart.Lines)
	})
}

func TestCartCounts(t *testing.T) {
	cart := &Cart{}
	assert.True(t, cart.IsEmpty())
	assert.Zero(t, cart.LineCount())

	cart.AddLine(KindProduct, "1", 2)
	cart.AddLine(KindService, "2", 3)

	assert.False(t, cart.IsEmpty())
	assert.Equal(t, 5, cart.LineCount())

	cart.ClearLines()
	assert.True(t, cart.IsEmpty())
}
