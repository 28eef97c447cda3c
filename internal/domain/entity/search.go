package entity

// SearchMode identifies how a logical search request fans out upstream.
type SearchMode string

const (
	ModeRoute                 SearchMode = "route"
	ModeOriginEverywhere      SearchMode = "origin_everywhere"
	ModeDestinationEverywhere SearchMode = "destination_everywhere"
)

// FlightFilter narrows fan-out results by connection count.
type FlightFilter string

const (
	FilterAll      FlightFilter = "all"
	FilterDirect   FlightFilter = "direct"
	FilterTransfer FlightFilter = "transfer"
)

// SearchRequest describes one logical user request. Exactly one side may
// be "everywhere"; the concrete side always carries an IATA code.
// Dates are DD.MM user dates.
type SearchRequest struct {
	Origin                string
	Destination           string
	OriginEverywhere      bool
	DestinationEverywhere bool
	DepartDate            string
	ReturnDate            string
	PassengerCode         string
	Filter                FlightFilter
}

// Mode derives the fan-out mode from the everywhere flags.
func (r *SearchRequest) Mode() SearchMode {
	switch {
	case r.OriginEverywhere:
		return ModeOriginEverywhere
	case r.DestinationEverywhere:
		return ModeDestinationEverywhere
	default:
		return ModeRoute
	}
}

// IsRoundTrip reports whether a return date was requested.
func (r *SearchRequest) IsRoundTrip() bool {
	return r.ReturnDate != ""
}

// SearchBundleVersion is the current cache record schema version.
// Records with any other version are rejected at read time.
const SearchBundleVersion = 1

// SearchResultBundle is the unit stored in the search cache: the full
// merged offer list for one logical request plus everything needed to
// re-derive booking links later. Write-once, read-many, gone after TTL.
type SearchResultBundle struct {
	Version          int          `json:"version"`
	Offers           []FareOffer  `json:"offers"`
	OriginIATA       string       `json:"origin_iata,omitempty"`
	DestIATA         string       `json:"dest_iata,omitempty"`
	OriginEverywhere bool         `json:"origin_everywhere"`
	DestEverywhere   bool         `json:"dest_everywhere"`
	IsRoundTrip      bool         `json:"is_roundtrip"`
	DepartDate       string       `json:"original_depart"`
	ReturnDate       string       `json:"original_return,omitempty"`
	DisplayDepart    string       `json:"display_depart"`
	DisplayReturn    string       `json:"display_return,omitempty"`
	PassengerCode    string       `json:"passengers_code"`
	PassengerDesc    string       `json:"passenger_desc"`
	Filter           FlightFilter `json:"flight_type"`
}

// SearchResult is what the orchestrator hands back to the caller on
// success: the merged offers, the headline (cheapest) offer and the
// cache id under which the bundle was persisted.
type SearchResult struct {
	Offers   []FareOffer
	Headline FareOffer
	CacheID  string
	Mode     SearchMode
}
