package format

import (
	"fmt"
	"strings"
	"time"
)

// FmtEuro formats an amount in euro cents.
// Example: FmtEuro(500, "el") => "5,00 €", FmtEuro(500, "en") => "€5.00"
func FmtEuro(cents int64, lang string) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	major := cents / 100
	minor := cents % 100
	switch strings.ToLower(lang) {
	case "en":
		s := fmt.Sprintf("€%s.%02d", thousandSep(major, ","), minor)
		if neg {
			return "-" + s
		}
		return s
	default:
		// Greek convention: dot thousands, comma decimals, trailing symbol.
		s := fmt.Sprintf("%s,%02d €", thousandSep(major, "."), minor)
		if neg {
			return "-" + s
		}
		return s
	}
}

// FmtTokens formats a token balance with thousand separators.
func FmtTokens(n int64, lang string) string {
	sep := "."
	if strings.ToLower(lang) == "en" {
		sep = ","
	}
	if n < 0 {
		return "-" + thousandSep(-n, sep)
	}
	return thousandSep(n, sep)
}

func thousandSep(n int64, sep string) string {
	s := fmt.Sprintf("%d", n)
	out := ""
	for i, c := range s {
		if i != 0 && (len(s)-i)%3 == 0 {
			out += sep
		}
		out += string(c)
	}
	return out
}

// FmtDate formats time in a locale-friendly short form.
func FmtDate(t time.Time, lang string) string {
	switch strings.ToLower(lang) {
	case "en":
		return t.Format("Jan 2, 2006")
	default:
		return t.Format("02/01/2006")
	}
}
