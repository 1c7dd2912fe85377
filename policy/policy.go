package policy

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinLength is the minimum password length in Unicode code points.
const MinLength = 12

// denyList holds substrings that disqualify a password regardless of its
// other properties. Matching is case-insensitive.
var denyList = []string{"password", "1234", "qwerty", "admin"}

// Report is the per-rule outcome of evaluating one password. Each field
// reflects a single rule; OK is true only when every rule holds.
type Report struct {
	OK     bool `json:"ok"`
	Length bool `json:"length"`
	Upper  bool `json:"upper"`
	Lower  bool `json:"lower"`
	Digit  bool `json:"digit"`
	Symbol bool `json:"symbol"`
	// Denied is true when the password contains a deny-listed substring.
	Denied bool `json:"denied"`
}

// Evaluate scores password against all structural rules and returns the
// full report. It never fails; a weak password is an unremarkable result,
// not an error.
func Evaluate(password string) Report {
	var r Report

	// Length counts code points, not bytes: a 12-rune password with
	// multi-byte runes must pass.
	r.Length = utf8.RuneCountInString(password) >= MinLength

	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			r.Upper = true
		case unicode.IsLower(c):
			r.Lower = true
		case unicode.IsDigit(c):
			r.Digit = true
		default:
			r.Symbol = true
		}
	}

	lowered := strings.ToLower(password)
	for _, denied := range denyList {
		if strings.Contains(lowered, denied) {
			r.Denied = true
			break
		}
	}

	r.OK = r.Length && r.Upper && r.Lower && r.Digit && r.Symbol && !r.Denied
	return r
}
