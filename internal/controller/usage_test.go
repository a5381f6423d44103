package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagerTotalPages(t *testing.T) {
	p := NewPager(20)
	p.SetTotal(45)
	assert.Equal(t, 3, p.TotalPages())

	p.SetTotal(40)
	assert.Equal(t, 2, p.TotalPages())

	p.SetTotal(0)
	assert.Equal(t, 0, p.TotalPages())
}

func TestPagerClamping(t *testing.T) {
	p := NewPager(20)
	p.SetTotal(45)

	p.SetPage(5)
	assert.Equal(t, 2, p.Page(), "past the end clamps to the last page")

	p.SetPage(-1)
	assert.Equal(t, 0, p.Page(), "before the start clamps to the first page")
}

func TestPagerBoundsAreNoOps(t *testing.T) {
	p := NewPager(20)
	p.SetTotal(45)

	p.Prev()
	assert.Equal(t, 0, p.Page())

	p.SetPage(2)
	p.Next()
	assert.Equal(t, 2, p.Page())
}

func TestPagerOffsetAndLimit(t *testing.T) {
	p := NewPager(20)
	p.SetTotal(100)
	p.SetPage(2)

	assert.Equal(t, 20, p.Limit())
	assert.Equal(t, 40, p.Offset())
}

func TestPagerShrinkingTotalReclamps(t *testing.T) {
	p := NewPager(20)
	p.SetTotal(100)
	p.SetPage(4)

	p.SetTotal(45)
	assert.Equal(t, 2, p.Page())
}

func TestPagerDefaultPageSize(t *testing.T) {
	p := NewPager(0)
	assert.Equal(t, DefaultPageSize, p.Limit())
}
