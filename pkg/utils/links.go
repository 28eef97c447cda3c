package utils

import (
	"fmt"
	"regexp"
	"strings"
)

const aviasalesBase = "https://www.aviasales.ru"

var searchRouteRe = regexp.MustCompile(`(/search/[A-Z]{3}\d{4}[A-Z]{3}(?:\d{4})?)\d*`)

// BookingLink builds an aviasales search deep link for a concrete route.
// Dates are DD.MM user dates; returnDate may be empty for one-way.
// The same link doubles as the fallback when no offers were found.
func BookingLink(origin, dest, departDate, returnDate, passengerCode, marker, subID string) string {
	route := origin + FormatLinkDate(departDate) + dest
	if returnDate != "" {
		route += FormatLinkDate(returnDate)
	}
	if passengerCode == "" {
		passengerCode = "1"
	}
	link := fmt.Sprintf("%s/search/%s%s", aviasalesBase, route, passengerCode)
	return AddMarker(link, marker, subID)
}

// MapLink builds the aviasales "all destinations" map link for an origin.
func MapLink(origin, departDate, passengerCode, marker, subID string) string {
	if passengerCode == "" {
		passengerCode = "1"
	}
	link := fmt.Sprintf("%s/map?params=%s%s%s", aviasalesBase, origin, FormatLinkDate(departDate), passengerCode)
	return AddMarker(link, marker, subID)
}

// NormalizeBookingLink makes an upstream deep-link fragment absolute and
// rewrites its trailing passenger count to the requested code.
func NormalizeBookingLink(link, passengerCode string) string {
	if link == "" {
		return ""
	}
	if passengerCode != "" {
		link = searchRouteRe.ReplaceAllString(link, "${1}"+passengerCode)
	}
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		if !strings.HasPrefix(link, "/") {
			link = "/" + link
		}
		link = aviasalesBase + link
	}
	return link
}

// AddMarker appends the affiliate marker and sub-id query parameters.
// Links pass through unchanged when no marker is configured.
func AddMarker(link, marker, subID string) string {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return link
	}
	sep := "?"
	if strings.Contains(link, "?") {
		sep = "&"
	}
	link += fmt.Sprintf("%smarker=%s", sep, marker)
	if subID != "" {
		link += fmt.Sprintf("&sub_id=%s", subID)
	}
	return link
}
