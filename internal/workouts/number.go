package workouts

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// LooseNumber is a user-entered numeric field kept as text.
// JSON accepts both strings and numbers.
type LooseNumber string

func (n *LooseNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = LooseNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*n = LooseNumber(num.String())
	return nil
}

// Float parses the longest numeric prefix ("20kg" is 20, "22,5" is 22.5).
// Text without a numeric prefix is 0.
func (n LooseNumber) Float() float64 {
	f, _ := n.parse()
	return f
}

// Int truncates Float toward zero. Values outside the int range are 0.
func (n LooseNumber) Int() int {
	f := n.Float()
	if math.IsNaN(f) || f >= float64(math.MaxInt) || f < float64(math.MinInt) {
		return 0
	}
	return int(f)
}

// Valid reports whether the text starts with a number.
func (n LooseNumber) Valid() bool {
	_, ok := n.parse()
	return ok
}

func (n LooseNumber) String() string {
	return string(n)
}

func (n LooseNumber) parse() (float64, bool) {
	s := strings.TrimSpace(string(n))

	var b strings.Builder
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		b.WriteByte(s[i])
		i++
	}

	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		b.WriteByte(s[i])
		digits++
	}
	if i < len(s) && (s[i] == '.' || s[i] == ',') {
		frac := 0
		j := i + 1
		for ; j < len(s) && isDigit(s[j]); j++ {
			frac++
		}
		if frac > 0 {
			b.WriteByte('.')
			b.WriteString(s[i+1 : j])
			digits += frac
		}
	}
	if digits == 0 {
		return 0, false
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
