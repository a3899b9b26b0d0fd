// Package format provides pure text formatting helpers for the
// dashboard: relative time, locale-style number grouping, currency
// symbols, escaping of untrusted text, and a restricted markdown
// renderer for deep-analysis content.
package format

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// RelativeTime formats the distance between t and now as a short
// human string: "just now", "12m ago", "3h ago", "2d ago".
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// Number formats v with the given decimal precision. Values whose
// rendered integer part has more than three digits get comma grouping;
// zero renders as the literal "0" regardless of precision.
func Number(v float64, decimals int) string {
	if v == 0 {
		return "0"
	}
	if decimals < 0 {
		decimals = 2
	}
	s := fmt.Sprintf("%.*f", decimals, v)
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}
	// Grouping is decided on the rendered digits, not the raw value:
	// 999.996 at two decimals rounds up to 1000.00 and gets grouped.
	if len(intPart) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(intPart) % 3
	if start > 0 {
		b.WriteString(intPart[:start])
	}
	for i := start; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

// currencySymbols maps ISO currency codes to display symbols.
var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"AUD": "A$",
	"CAD": "C$",
	"SGD": "S$",
	"AED": "AED ",
	"BRL": "R$",
}

// Currency returns the display symbol for an ISO code, falling back to
// the code itself followed by a space.
func Currency(code string) string {
	if sym, ok := currencySymbols[strings.ToUpper(code)]; ok {
		return sym
	}
	if code == "" {
		return ""
	}
	return code + " "
}

var ansiEscapeRe = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// EscapeText sanitizes backend- or user-supplied text before it is
// interpolated into the rendered surface: terminal escape sequences
// and control characters are removed, whitespace runs are collapsed.
func EscapeText(s string) string {
	s = ansiEscapeRe.ReplaceAllString(s, "")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' {
			b.WriteRune(' ')
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
