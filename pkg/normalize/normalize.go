// Package normalize turns raw spreadsheet values (registration numbers,
// legal names, country labels) into the canonical keys used by the
// matching indexes. All functions are total: empty or unusable input
// yields an empty string, never an error.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// rcsPrefix matches an optional "RCS <ville>" prefix on registration
// numbers ("RCS Paris 123 456 789"). Applied after uppercasing.
var rcsPrefix = regexp.MustCompile(`^RCS\s+[A-ZÉÈÀÂÊÎÔÙÛÇ\s]+\s+`)

// Legal forms removed from company names before comparison. Whole tokens,
// with optional internal dots (S.A.S., SARL, GmbH, Ltd...). Longer forms
// first so SAS is not swallowed by SA.
var legalForms = regexp.MustCompile(strings.Join([]string{
	`\bS\.?A\.?S\.?U?\b`, `\bS\.?A\.?R\.?L\.?\b`, `\bS\.?A\.?\b`,
	`\bS\.?N\.?C\.?\b`, `\bS\.?C\.?I\.?\b`, `\bE\.?U\.?R\.?L\.?\b`,
	`\bG\.?I\.?E\.?\b`, `\bS\.?C\.?M\.?\b`, `\bS\.?C\.?P\.?\b`,
	`\bS\.?C\.?S\.?\b`, `\bS\.?C\.?\b`, `\bG\.?M\.?B\.?H\.?\b`,
	`\bA\.?G\.?\b`, `\bL\.?T\.?D\.?\b`, `\bP\.?L\.?C\.?\b`,
	`\bI\.?N\.?C\.?\b`, `\bL\.?L\.?C\.?\b`, `\bB\.?V\.?\b`,
	`\bN\.?V\.?\b`, `\bS\.?P\.?A\.?\b`, `\bS\.?R\.?L\.?\b`,
}, "|"))

var (
	nonAlnum   = regexp.MustCompile(`[^A-Z0-9\s]`)
	multiSpace = regexp.MustCompile(`\s+`)
	isoCode    = regexp.MustCompile(`^[A-Z]{2}$`)
)

// RegistrationID canonicalizes a registration number (RCS, SIREN,
// Handelsregister...): compatibility-fold the input so full-width digits
// become ASCII, strip an optional "RCS <ville>" prefix, then keep only
// ASCII alphanumerics uppercased.
//
// Leading zeros are kept as-is: "0123" and "123" stay distinct here so
// the approximate-id tier can surface the discrepancy instead of hiding it.
func RegistrationID(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s, _, _ = transform.String(norm.NFKC, s)
	s = strings.ToUpper(s)
	s = rcsPrefix.ReplaceAllString(s, "")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Name canonicalizes a company name for comparison: uppercase, strip
// accents, drop legal-form tokens, drop punctuation, collapse whitespace.
func Name(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	s = strings.ToUpper(s)
	s, _, _ = transform.String(stripAccents, s)
	s = legalForms.ReplaceAllString(s, " ")
	s = nonAlnum.ReplaceAllString(s, " ")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CountryToISO resolves a country label (French or English name, common
// abbreviation, or an ISO code already) to ISO 3166-1 alpha-2 uppercase.
// Unrecognized labels yield "" so the name+country tier is simply skipped
// for that row.
func CountryToISO(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	upper := strings.ToUpper(s)
	if isoCode.MatchString(upper) {
		return upper
	}
	key := strings.ToLower(s)
	noAccent, _, _ := transform.String(stripAccents, key)
	if iso, ok := countryCodes[noAccent]; ok {
		return iso
	}
	return countryCodes[key]
}
