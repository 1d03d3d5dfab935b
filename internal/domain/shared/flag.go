package shared

import (
	"bytes"
	"fmt"
	"strconv"
)

// Flag is a boolean that the remote API encodes inconsistently: as JSON
// booleans, as 0/1 integers, or as quoted "0"/"1". It always marshals as 0/1.
type Flag bool

// MarshalJSON encodes the flag as 1 or 0
func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

// UnmarshalJSON accepts true/false, numbers, quoted numbers and null
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", `""`:
		*f = false
		return nil
	case "true":
		*f = true
		return nil
	case "false":
		*f = false
		return nil
	}
	s := string(bytes.Trim(data, `"`))
	if b, err := strconv.ParseBool(s); err == nil {
		*f = Flag(b)
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid flag value %s", data)
	}
	*f = n != 0
	return nil
}

// Int returns the flag as 1 or 0
func (f Flag) Int() int {
	if f {
		return 1
	}
	return 0
}
