// Package measurement holds measurement types, their attributes and the
// values recorded per customer.
package measurement

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/optica/admin/internal/domain/shared"
)

// Attribute is a single measured dimension, managed under settings
type Attribute struct {
	ID       int         `json:"id"`
	DetailID int         `json:"detail_id,omitempty"`
	Name     string      `json:"name"`
	IsActive shared.Flag `json:"is_active"`
}

func (a *Attribute) RecordID() int         { return a.ID }
func (a *Attribute) Active() bool          { return bool(a.IsActive) }
func (a *Attribute) SetActive(active bool) { a.IsActive = shared.Flag(active) }

// Key is the id measured values are stored under: the detail id when the
// attribute is attached to a type, else the attribute id.
func (a Attribute) Key() int {
	if a.DetailID != 0 {
		return a.DetailID
	}
	return a.ID
}

// AttributeInput is the attribute create/update form
type AttributeInput struct {
	Name      string      `json:"name" validate:"required,max=100"`
	IsActive  shared.Flag `json:"is_active"`
	CreatedBy int         `json:"created_by,omitempty"`
}

// Type groups attributes into a kind of measurement (e.g. "Frame")
type Type struct {
	ID         int         `json:"id"`
	Name       string      `json:"name"`
	IsActive   shared.Flag `json:"is_active"`
	Attributes []Attribute `json:"selected_attributes,omitempty"`
}

func (t *Type) RecordID() int         { return t.ID }
func (t *Type) Active() bool          { return bool(t.IsActive) }
func (t *Type) SetActive(active bool) { t.IsActive = shared.Flag(active) }

// TypeInput is the measurement type form. SelectedAttributes maps
// attribute ids to whether they are ticked.
type TypeInput struct {
	Name               string       `json:"name" validate:"required,max=100"`
	IsActive           shared.Flag  `json:"is_active"`
	SelectedAttributes map[int]bool `json:"selected_attributes"`
}

// SelectedIDs returns the ticked attribute ids in ascending order
func (in TypeInput) SelectedIDs() []int {
	ids := make([]int, 0, len(in.SelectedAttributes))
	for id, on := range in.SelectedAttributes {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// HasSelection reports whether at least one attribute is ticked
func (in TypeInput) HasSelection() bool {
	return len(in.SelectedIDs()) > 0
}

// Unit is the length unit of a recorded measurement
type Unit int

const (
	UnitInches Unit = iota + 1
	UnitCm
	UnitMtr
	UnitYrd
	UnitFt
)

// Units lists the selectable units in display order
var Units = []Unit{UnitInches, UnitCm, UnitMtr, UnitYrd, UnitFt}

var unitLabels = map[Unit]string{
	UnitInches: "Inches",
	UnitCm:     "Cm",
	UnitMtr:    "Mtr",
	UnitYrd:    "Yrd",
	UnitFt:     "Ft",
}

// IsValid reports whether u is a known unit
func (u Unit) IsValid() bool {
	_, ok := unitLabels[u]
	return ok
}

// Label returns the display name
func (u Unit) Label() string {
	if l, ok := unitLabels[u]; ok {
		return l
	}
	return fmt.Sprintf("Unit(%d)", int(u))
}

// OrDefault returns u, or UnitInches when u is unknown
func (u Unit) OrDefault() Unit {
	if u.IsValid() {
		return u
	}
	return UnitInches
}

// Values maps attribute keys to the typed values
type Values map[int]string

// Blank returns an empty value for every attribute
func Blank(attrs []Attribute) Values {
	v := make(Values, len(attrs))
	for _, a := range attrs {
		v[a.Key()] = ""
	}
	return v
}

// MarshalJSON encodes the keys as strings, the form the API expects
func (v Values) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(v))
	for k, val := range v {
		m[strconv.Itoa(k)] = val
	}
	return json.Marshal(m)
}

// Record is the measurement of one type saved for one customer
type Record struct {
	Type   int    `json:"type"`
	Unit   Unit   `json:"unit"`
	Notes  string `json:"notes"`
	Values Values `json:"userattributes"`
}

// Detail is the stored measurement as returned by the API. Older records
// carry the values as an attributes list instead of the userattributes map.
type Detail struct {
	Unit           Unit                       `json:"unit"`
	Notes          string                     `json:"notes"`
	UserAttributes map[string]json.RawMessage `json:"userattributes"`
	Attributes     []struct {
		ID    int             `json:"id"`
		Value json.RawMessage `json:"value"`
	} `json:"attributes"`
}

// Fill builds the form values for attrs from the stored detail. Attributes
// the detail does not mention stay blank.
func (d *Detail) Fill(attrs []Attribute) Values {
	v := Blank(attrs)
	if d == nil {
		return v
	}
	for _, a := range attrs {
		k := a.Key()
		if raw, ok := d.UserAttributes[strconv.Itoa(k)]; ok {
			if s := rawString(raw); s != "" {
				v[k] = s
				continue
			}
		}
		for _, x := range d.Attributes {
			if x.ID == k {
				v[k] = rawString(x.Value)
				break
			}
		}
	}
	return v
}

// rawString renders a JSON scalar as text; null and objects become ""
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
