package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	assert.Equal(t, 9500, (&FareOffer{Value: 9500, Price: 9000}).EffectivePrice())
	assert.Equal(t, 9000, (&FareOffer{Price: 9000}).EffectivePrice())
	assert.Equal(t, PriceUnknown, (&FareOffer{}).EffectivePrice())

	assert.True(t, (&FareOffer{Value: 1}).HasPrice())
	assert.False(t, (&FareOffer{}).HasPrice())
}

func TestDepartureDate(t *testing.T) {
	o := &FareOffer{DepartureAt: "2025-07-15T10:20:00+03:00", ReturnAt: "2025-07-22T08:00:00+03:00"}
	assert.Equal(t, "2025-07-15", o.DepartureDate())
	assert.Equal(t, "2025-07-22", o.ReturnDate())
	assert.Empty(t, (&FareOffer{}).DepartureDate())
}

func TestCheapestOffer(t *testing.T) {
	offers := []FareOffer{
		{Value: 12000},
		{Value: 9500},
		{},
		{Value: 9500},
	}
	assert.Equal(t, 1, CheapestOffer(offers), "ties go to the first offer in list order")
	assert.Equal(t, -1, CheapestOffer(nil))

	// An unpriced offer still wins over nothing at all.
	assert.Equal(t, 0, CheapestOffer([]FareOffer{{}}))
}
