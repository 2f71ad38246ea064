// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"regexp"
	"strconv"
)

// numericRE matches digit-only strings; signs, spaces and decimals are rejected.
var numericRE = regexp.MustCompile(`^[0-9]+$`)

// ParseNumeric parses a digit-only string into a non-negative int. It reports
// false for empty input, any non-digit character, or values overflowing int.
//
// Example:
//
//	n, ok := utils.ParseNumeric("42")  // 42, true
//	n, ok = utils.ParseNumeric("-1")   // 0, false
//	n, ok = utils.ParseNumeric("1e3")  // 0, false
func ParseNumeric(s string) (int, bool) {
	if !numericRE.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseID parses a numeric resource identifier from a path parameter.
func ParseID(s string) (int64, bool) {
	if !numericRE.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
