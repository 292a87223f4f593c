package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculate_GroupDiscount(t *testing.T) {
	tests := []struct {
		name         string
		participants int
		wantDiscount string
		wantTotal    string
	}{
		{name: "single", participants: 1, wantDiscount: "0", wantTotal: "60"},
		{name: "three has no discount", participants: 3, wantDiscount: "0", wantTotal: "180"},
		{name: "four gets ten percent", participants: 4, wantDiscount: "24", wantTotal: "216"},
		{name: "ten gets ten percent", participants: 10, wantDiscount: "60", wantTotal: "540"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Calculate(dec("60"), tt.participants, "")
			require.NoError(t, err)
			assert.True(t, b.GroupDiscount.Equal(dec(tt.wantDiscount)), "discount = %s", b.GroupDiscount)
			assert.True(t, b.Total.Equal(dec(tt.wantTotal)), "total = %s", b.Total)
			assert.True(t, b.PromoDiscount.IsZero())
		})
	}
}

func TestCalculate_PromoCodeCaseInsensitive(t *testing.T) {
	for _, code := range []string{"DECOUVERTE20", "decouverte20", "  DecouVerte20 "} {
		b, err := Calculate(dec("60"), 4, code)
		require.NoError(t, err, code)

		assert.True(t, b.Subtotal.Equal(dec("240")))
		assert.True(t, b.GroupDiscount.Equal(dec("24")))
		assert.True(t, b.PromoDiscount.Equal(dec("43.2")), "promo = %s", b.PromoDiscount)
		assert.Equal(t, "172.80", b.Display())
		assert.Equal(t, PromoDecouverte, b.PromoCode)
	}
}

func TestCalculate_InvalidPromoCode(t *testing.T) {
	b, err := Calculate(dec("60"), 4, "XYZ")
	require.ErrorIs(t, err, ErrInvalidPromoCode)

	assert.True(t, b.PromoDiscount.IsZero())
	assert.True(t, b.Total.Equal(dec("216")))
	assert.Empty(t, b.PromoCode)
}

func TestCalculate_EmptyPromoIsSilent(t *testing.T) {
	b, err := Calculate(dec("45"), 2, "   ")
	require.NoError(t, err)
	assert.True(t, b.PromoDiscount.IsZero())
	assert.Equal(t, "90.00", b.Display())
}

func TestCalculate_RejectsBadInput(t *testing.T) {
	_, err := Calculate(dec("-1"), 1, "")
	assert.ErrorIs(t, err, ErrNegativePrice)

	_, err = Calculate(dec("60"), 0, "")
	assert.ErrorIs(t, err, ErrParticipants)
}

func TestBreakdown_RoundedKeepsFullPrecisionInternally(t *testing.T) {
	b, err := Calculate(dec("33.33"), 4, "DECOUVERTE20")
	require.NoError(t, err)

	// 133.32 - 13.332 = 119.988; promo 23.9976; total 95.9904
	assert.True(t, b.Total.Equal(dec("95.9904")), "total = %s", b.Total)

	r := b.Rounded()
	assert.Equal(t, "95.99", r.Total.StringFixed(2))
	assert.Equal(t, "13.33", r.GroupDiscount.StringFixed(2))
	assert.Equal(t, "24.00", r.PromoDiscount.StringFixed(2))
}
