package listing

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Synthetic attributes present on every normalized product record
const (
	AttrName               = "name"
	AttrLink               = "link"
	AttrPrice              = "price"
	AttrOldPrice           = "old-price"
	AttrDiscount           = "discount"
	AttrDiscountPercentage = "discount-percentage"
)

// SyntheticAttributes lists the attributes computed by the normalizer, in
// report order.
var SyntheticAttributes = []string{
	AttrName,
	AttrPrice,
	AttrDiscount,
	AttrDiscountPercentage,
	AttrOldPrice,
	AttrLink,
}

// Value is a record attribute value: either an integer or a string
type Value struct {
	num   int
	str   string
	isInt bool
}

// Int creates an integer value
func Int(n int) Value {
	return Value{num: n, isInt: true}
}

// String creates a string value
func String(s string) Value {
	return Value{str: s}
}

// IsInt reports whether the value was stored as an integer
func (v Value) IsInt() bool {
	return v.isInt
}

// AsInt reads the value as an integer. String values are parsed after
// trimming surrounding whitespace.
func (v Value) AsInt() (int, bool) {
	if v.isInt {
		return v.num, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.str))
	if err != nil {
		return 0, false
	}
	return n, true
}

// String returns the textual form used for regular expression matching
func (v Value) String() string {
	if v.isInt {
		return strconv.Itoa(v.num)
	}
	return v.str
}

// MarshalJSON encodes integers as JSON numbers and strings as JSON strings
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isInt {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

// Record is the normalized attribute map of one scraped listing entry.
// Attribute names are stored lower-case. A Record is never modified after
// NewRecord returns.
type Record struct {
	attrs map[string]Value
}

// NewRecord builds a record from attrs. The map is copied and keys are
// lower-cased; on a case-only collision the last key in sorted order wins.
func NewRecord(attrs map[string]Value) Record {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	copied := make(map[string]Value, len(attrs))
	for _, k := range keys {
		copied[strings.ToLower(k)] = attrs[k]
	}
	return Record{attrs: copied}
}

// Get returns the value of an attribute, compared case-insensitively
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.attrs[strings.ToLower(name)]
	return v, ok
}

// Has reports whether the record carries the attribute
func (r Record) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Len returns the number of attributes
func (r Record) Len() int {
	return len(r.attrs)
}

// Keys returns the attribute names in sorted order
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r.attrs))
	for k := range r.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extras returns the names of attributes that are not synthetic, sorted
func (r Record) Extras() []string {
	var extras []string
	for _, k := range r.Keys() {
		if !isSynthetic(k) {
			extras = append(extras, k)
		}
	}
	return extras
}

// Text returns the string form of an attribute, or "" when absent
func (r Record) Text(name string) string {
	v, ok := r.Get(name)
	if !ok {
		return ""
	}
	return v.String()
}

// Number returns the integer form of an attribute, or 0 when absent or not
// an integer
func (r Record) Number(name string) int {
	v, ok := r.Get(name)
	if !ok {
		return 0
	}
	n, _ := v.AsInt()
	return n
}

// Name returns the display name
func (r Record) Name() string { return r.Text(AttrName) }

// Link returns the absolute link
func (r Record) Link() string { return r.Text(AttrLink) }

// Equal reports whether both records carry the same attributes and values
func (r Record) Equal(other Record) bool {
	if len(r.attrs) != len(other.attrs) {
		return false
	}
	for k, v := range r.attrs {
		ov, ok := other.attrs[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the record as a flat JSON object
func (r Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.attrs)
}

func isSynthetic(name string) bool {
	for _, s := range SyntheticAttributes {
		if s == name {
			return true
		}
	}
	return false
}
