package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingLink(t *testing.T) {
	assert.Equal(t,
		"https://www.aviasales.ru/search/MOW1507IST1",
		BookingLink("MOW", "IST", "15.07", "", "1", "", ""))

	assert.Equal(t,
		"https://www.aviasales.ru/search/MOW1507IST2207211",
		BookingLink("MOW", "IST", "15.07", "22.07", "211", "", ""))

	assert.Equal(t,
		"https://www.aviasales.ru/search/MOW1507IST1?marker=12345&sub_id=bot",
		BookingLink("MOW", "IST", "15.07", "", "1", "12345", "bot"))
}

func TestMapLink(t *testing.T) {
	assert.Equal(t,
		"https://www.aviasales.ru/map?params=MOW15072",
		MapLink("MOW", "15.07", "2", "", ""))
}

func TestNormalizeBookingLink(t *testing.T) {
	// Relative upstream fragments become absolute.
	assert.Equal(t,
		"https://www.aviasales.ru/search/MOW1507IST1",
		NormalizeBookingLink("/search/MOW1507IST1", ""))
	assert.Equal(t,
		"https://www.aviasales.ru/search/MOW1507IST1",
		NormalizeBookingLink("search/MOW1507IST1", ""))

	// Trailing passenger count is rewritten to the requested code.
	assert.Equal(t,
		"https://www.aviasales.ru/search/MOW1507IST211",
		NormalizeBookingLink("/search/MOW1507IST1", "211"))
	assert.Equal(t,
		"https://www.aviasales.ru/search/MOW1507IST2207211",
		NormalizeBookingLink("/search/MOW1507IST22071", "211"))

	// Absolute links keep their host.
	assert.Equal(t,
		"https://www.aviasales.ru/search/LED0109AER2",
		NormalizeBookingLink("https://www.aviasales.ru/search/LED0109AER1", "2"))

	assert.Empty(t, NormalizeBookingLink("", "211"))
}

func TestAddMarker(t *testing.T) {
	assert.Equal(t, "https://x.test/a", AddMarker("https://x.test/a", "", "sub"))
	assert.Equal(t, "https://x.test/a?marker=m1", AddMarker("https://x.test/a", "m1", ""))
	assert.Equal(t, "https://x.test/a?q=1&marker=m1&sub_id=s1", AddMarker("https://x.test/a?q=1", "m1", "s1"))
}
