package utils

import (
	"fmt"
	"strings"
)

// Passenger codes follow the aviasales route convention: one digit per
// category, adults first, children and infants appended only when nonzero.
// "211" is 2 adults, 1 child, 1 infant; "9" is 9 adults.

// BuildPassengerCode builds a passenger code applying booking limits:
// at least 1 adult, at most 9 travellers total, infants never outnumber adults.
func BuildPassengerCode(adults, children, infants int) string {
	if adults < 1 {
		adults = 1
	}
	if children < 0 {
		children = 0
	}
	if infants < 0 {
		infants = 0
	}
	if total := adults + children + infants; total > 9 {
		remaining := 9 - adults
		if remaining < 0 {
			remaining = 0
		}
		if children > remaining {
			children = remaining
		}
		infants = remaining - children
		if infants < 0 {
			infants = 0
		}
	}
	if infants > adults {
		infants = adults
	}

	code := fmt.Sprintf("%d", adults)
	if children > 0 {
		code += fmt.Sprintf("%d", children)
	}
	if infants > 0 {
		code += fmt.Sprintf("%d", infants)
	}
	return code
}

// DecodePassengerCode splits a passenger code into its category counts.
func DecodePassengerCode(code string) (adults, children, infants int, err error) {
	if code == "" || len(code) > 3 {
		return 0, 0, 0, fmt.Errorf("invalid passenger code %q", code)
	}
	for i, r := range code {
		if r < '0' || r > '9' {
			return 0, 0, 0, fmt.Errorf("invalid passenger code %q", code)
		}
		n := int(r - '0')
		switch i {
		case 0:
			adults = n
		case 1:
			children = n
		case 2:
			infants = n
		}
	}
	if adults < 1 {
		return 0, 0, 0, fmt.Errorf("invalid passenger code %q: no adults", code)
	}
	return adults, children, infants, nil
}

// DescribePassengers renders a passenger code as human-readable text.
// Malformed codes fall back to "1 adult".
func DescribePassengers(code string) string {
	adults, children, infants, err := DecodePassengerCode(code)
	if err != nil {
		return "1 adult"
	}
	parts := []string{plural(adults, "adult")}
	if children > 0 {
		parts = append(parts, plural(children, "child"))
	}
	if infants > 0 {
		parts = append(parts, plural(infants, "infant"))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	if noun == "child" {
		return fmt.Sprintf("%d children", n)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
