package shared

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Text is a string field the remote API sometimes sends as a number
// (file numbers, invoice indexes).
type Text string

// UnmarshalJSON accepts strings, numbers and null
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

// String returns the text
func (t Text) String() string {
	return string(t)
}

// Int parses the text as an integer, zero when it is not one
func (t Text) Int() int {
	n, _ := strconv.Atoi(string(t))
	return n
}
