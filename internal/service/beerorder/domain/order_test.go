package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAllocation_MergesByLineID(t *testing.T) {
	lineA := uuid.New()
	lineB := uuid.New()
	order := &BeerOrder{
		ID:     uuid.New(),
		Status: StatusAllocated,
		Lines: []BeerOrderLine{
			{ID: lineA, UPC: "0631234200036", OrderQuantity: 12},
			{ID: lineB, UPC: "0631234300019", OrderQuantity: 6},
		},
	}

	order.ApplyAllocation(&BeerOrderSnapshot{
		ID: order.ID,
		Lines: []BeerOrderLineSnapshot{
			{ID: lineA, QuantityAllocated: 12},
			{ID: uuid.New(), QuantityAllocated: 99}, // 快照里多出的行被忽略
		},
	})

	require.NotNil(t, order.Lines[0].QuantityAllocated)
	assert.Equal(t, 12, *order.Lines[0].QuantityAllocated)
	assert.Nil(t, order.Lines[1].QuantityAllocated, "unmatched line stays untouched")
	assert.Equal(t, StatusAllocated, order.Status, "allocation merge never writes status")
}

func TestSnapshot_RoundTripsLines(t *testing.T) {
	qty := 4
	order := &BeerOrder{
		ID:          uuid.New(),
		CustomerRef: "taproom-42",
		Status:      StatusNew,
		Lines: []BeerOrderLine{
			{ID: uuid.New(), UPC: "0631234200036", OrderQuantity: 12},
			{ID: uuid.New(), UPC: "0631234300019", OrderQuantity: 6, QuantityAllocated: &qty},
		},
	}

	snap := order.Snapshot()

	assert.Equal(t, order.ID, snap.ID)
	assert.Equal(t, "taproom-42", snap.CustomerRef)
	require.Len(t, snap.Lines, 2)
	assert.Equal(t, 0, snap.Lines[0].QuantityAllocated)
	assert.Equal(t, 4, snap.Lines[1].QuantityAllocated)
}
