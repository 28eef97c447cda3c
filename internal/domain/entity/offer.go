package entity

// PriceUnknown is the sentinel used when an offer carries neither a value
// nor a price field. Such offers lose every price comparison but stay in
// the merged result list.
const PriceUnknown = 999999

// FareOffer is one priced itinerary returned by the fare provider.
// Field names mirror the upstream grouped-prices payload; Origin and
// Destination are always overwritten with the codes the request was made
// with, because grouped responses do not reliably echo them.
type FareOffer struct {
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	DepartureAt  string `json:"departure_at,omitempty"`
	ReturnAt     string `json:"return_at,omitempty"`
	Value        int    `json:"value,omitempty"`
	Price        int    `json:"price,omitempty"`
	Airline      string `json:"airline,omitempty"`
	FlightNumber string `json:"flight_number,omitempty"`
	Transfers    int    `json:"transfers"`
	Duration     int    `json:"duration,omitempty"`
	Link         string `json:"link,omitempty"`
}

// EffectivePrice applies the value-or-price-or-sentinel extraction rule.
func (o *FareOffer) EffectivePrice() int {
	if o.Value > 0 {
		return o.Value
	}
	if o.Price > 0 {
		return o.Price
	}
	return PriceUnknown
}

// HasPrice reports whether a real price could be extracted.
func (o *FareOffer) HasPrice() bool {
	return o.EffectivePrice() != PriceUnknown
}

// DepartureDate returns the YYYY-MM-DD part of the departure timestamp.
func (o *FareOffer) DepartureDate() string {
	return datePart(o.DepartureAt)
}

// ReturnDate returns the YYYY-MM-DD part of the return timestamp.
func (o *FareOffer) ReturnDate() string {
	return datePart(o.ReturnAt)
}

func datePart(ts string) string {
	if len(ts) < 10 {
		return ""
	}
	return ts[:10]
}

// CheapestOffer returns the index of the cheapest offer under the
// EffectivePrice rule. Ties resolve to the first-encountered offer in
// list order. Returns -1 for an empty list.
func CheapestOffer(offers []FareOffer) int {
	best := -1
	bestPrice := 0
	for i := range offers {
		p := offers[i].EffectivePrice()
		if best == -1 || p < bestPrice {
			best = i
			bestPrice = p
		}
	}
	return best
}
