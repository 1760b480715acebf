package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Decimal is a number the API transmits as a decimal string, e.g. "12.34".
// Some deployments send bare JSON numbers instead; both decode, and the
// textual form is kept so values round-trip unchanged.
type Decimal string

// UnmarshalJSON accepts a JSON string, a JSON number, or null.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*d = ""
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("decimal: %w", err)
		}
		*d = Decimal(strings.TrimSpace(s))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("decimal: %w", err)
	}
	*d = Decimal(n.String())
	return nil
}

// MarshalJSON always encodes as a JSON string.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(d))
}

// Float parses the value, tolerating surrounding space and a trailing "%".
// Empty or unparseable values read as 0.
func (d Decimal) Float() float64 {
	s := strings.TrimSuffix(strings.TrimSpace(string(d)), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatFixed renders v with exactly prec digits after the decimal point.
func FormatFixed(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	// -0.00 reads as noise on a dashboard
	if strings.HasPrefix(s, "-") && strings.Trim(s[1:], "0.") == "" {
		return s[1:]
	}
	return s
}
