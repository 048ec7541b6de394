package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sittara/table-reservation/internal/model"
)

func strPtr(s string) *string { return &s }

func TestResolveDepositNoneConfigured(t *testing.T) {
	r := &model.Restaurant{}
	got := ResolveDeposit(r, "19:00")
	assert.False(t, got.Required)
	assert.Zero(t, got.Amount)
}

func TestResolveDepositRestaurantDefault(t *testing.T) {
	r := &model.Restaurant{DepositRequired: true, DepositAmount: 250}
	got := ResolveDeposit(r, "13:00")
	assert.True(t, got.Required)
	assert.Equal(t, 250.0, got.Amount)
}

func TestResolveDepositFallbackAmount(t *testing.T) {
	// required but no amount configured falls back to the default
	r := &model.Restaurant{DepositRequired: true}
	got := ResolveDeposit(r, "13:00")
	assert.True(t, got.Required)
	assert.Equal(t, float64(DefaultDepositAmount), got.Amount)
}

func TestResolveDepositPeakBandOverridesDefault(t *testing.T) {
	// restaurant does not require deposits in general, only during the
	// 18:00-21:00 peak band
	r := &model.Restaurant{
		DepositAmount:    100,
		PeakDepositFrom:  strPtr("18:00"),
		PeakDepositUntil: strPtr("21:00"),
	}

	assert.False(t, ResolveDeposit(r, "17:30").Required)

	got := ResolveDeposit(r, "18:00")
	assert.True(t, got.Required)
	assert.Equal(t, 100.0, got.Amount)

	assert.True(t, ResolveDeposit(r, "20:30").Required)
	// band end is exclusive
	assert.False(t, ResolveDeposit(r, "21:00").Required)
}

func TestResolveDepositPeakBandWrapsMidnight(t *testing.T) {
	r := &model.Restaurant{
		PeakDepositFrom:  strPtr("22:00"),
		PeakDepositUntil: strPtr("01:00"),
	}
	assert.True(t, ResolveDeposit(r, "23:30").Required)
	assert.True(t, ResolveDeposit(r, "00:30").Required)
	assert.False(t, ResolveDeposit(r, "01:00").Required)
	assert.False(t, ResolveDeposit(r, "12:00").Required)
}

func TestResolveDepositHalfConfiguredBandIgnored(t *testing.T) {
	r := &model.Restaurant{PeakDepositFrom: strPtr("18:00")}
	assert.False(t, ResolveDeposit(r, "19:00").Required)
}
