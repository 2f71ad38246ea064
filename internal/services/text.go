package services

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeText converts s to Unicode NFC so visually identical input is
// stored identically.
func normalizeText(s string) string {
	return norm.NFC.String(s)
}

// normalizeKey is normalizeText plus surrounding whitespace trimming, for
// identifiers such as slugs and usernames.
func normalizeKey(s string) string {
	return strings.TrimSpace(normalizeText(s))
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }
