package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{math.MinInt, MinQuantity},
		{-5, 1},
		{0, 1},
		{1, 1},
		{42, 42},
		{999, 999},
		{1000, 999},
		{2000, 999},
		{math.MaxInt, MaxQuantity},
	}
	for _, tc := range tests {
		got := ClampQuantity(tc.in)
		assert.Equal(t, tc.want, got, "ClampQuantity(%d)", tc.in)
	}
}

func TestClampQuantity_InRangeAndIdempotent(t *testing.T) {
	for q := -2000; q <= 2000; q += 7 {
		c := ClampQuantity(q)
		assert.GreaterOrEqual(t, c, MinQuantity)
		assert.LessOrEqual(t, c, MaxQuantity)
		assert.Equal(t, c, ClampQuantity(c))
	}
}

func TestNewCartItem_Clamps(t *testing.T) {
	p := Product{ID: "p1", Name: "Mouse", Price: 10.0, ImageURL: "https://img/p1.jpg"}

	item := NewCartItem(p, 2000)
	assert.Equal(t, CartItem{
		ProductID:   "p1",
		ProductName: "Mouse",
		Quantity:    999,
		Price:       10.0,
		ImageURL:    "https://img/p1.jpg",
	}, item)
}

func TestCartTotal(t *testing.T) {
	items := []CartItem{
		{ProductID: "a", Price: 0.1, Quantity: 3},
		{ProductID: "b", Price: 99.99, Quantity: 2},
	}
	assert.Equal(t, 0.3, items[0].Subtotal())
	assert.Equal(t, 200.28, CartTotal(items))
	assert.Equal(t, 5, CartCount(items))
	assert.Equal(t, 0.0, CartTotal(nil))
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "₩0"},
		{100, "₩100"},
		{1000, "₩1,000"},
		{15000, "₩15,000"},
		{99.99, "₩99"},
		{1234.5, "₩1,234"},
		{-100, "₩-100"},
		{123456789, "₩123,456,789"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatPrice(tc.in))
	}
}

func TestResult(t *testing.T) {
	l := Loading[[]Product]()
	assert.True(t, l.IsLoading())
	_, ok := l.Value()
	assert.False(t, ok)

	s := Success([]Product{{ID: "p1"}})
	assert.True(t, s.IsSuccess())
	v, ok := s.Value()
	assert.True(t, ok)
	assert.Len(t, v, 1)

	boom := errors.New("boom")
	e := Failure[Product](boom)
	assert.True(t, e.IsError())
	assert.ErrorIs(t, e.Err, boom)
	assert.Equal(t, "error", e.Status.String())
}
