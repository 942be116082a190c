package dataset

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumeric
	KindText
	KindDate
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	case KindBoolean:
		return "boolean"
	default:
		return "missing"
	}
}

// Value is a closed tagged variant: exactly one of the payload fields is
// meaningful, selected by Kind. The zero Value is Missing.
type Value struct {
	Kind    Kind
	num     float64
	text    string
	date    time.Time
	boolean bool
}

// Missing returns the missing value.
func Missing() Value {
	return Value{Kind: KindMissing}
}

// Numeric creates a numeric value. NaN and infinities are stored as missing.
func Numeric(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing()
	}
	return Value{Kind: KindNumeric, num: f}
}

// Text creates a raw text value. Ingestion adapters produce these; the
// profiler decides what they actually are.
func Text(s string) Value {
	return Value{Kind: KindText, text: s}
}

// Date creates a date value normalized to UTC.
func Date(t time.Time) Value {
	return Value{Kind: KindDate, date: t.UTC()}
}

// Boolean creates a boolean value.
func Boolean(b bool) Value {
	return Value{Kind: KindBoolean, boolean: b}
}

func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// Float returns the numeric payload and whether the value is numeric.
func (v Value) Float() (float64, bool) {
	return v.num, v.Kind == KindNumeric
}

// Str returns the text payload and whether the value is text.
func (v Value) Str() (string, bool) {
	return v.text, v.Kind == KindText
}

// Time returns the date payload and whether the value is a date.
func (v Value) Time() (time.Time, bool) {
	return v.date, v.Kind == KindDate
}

// Bool returns the boolean payload and whether the value is a boolean.
func (v Value) Bool() (bool, bool) {
	return v.boolean, v.Kind == KindBoolean
}

// String renders the value for keys, reports and top-value tables.
func (v Value) String() string {
	switch v.Kind {
	case KindNumeric:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	case KindDate:
		if v.date.Hour() == 0 && v.date.Minute() == 0 && v.date.Second() == 0 {
			return v.date.Format("2006-01-02")
		}
		return v.date.Format(time.RFC3339)
	case KindBoolean:
		return strconv.FormatBool(v.boolean)
	default:
		return ""
	}
}

// MarshalJSON encodes the payload natively; missing becomes null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNumeric:
		return json.Marshal(v.num)
	case KindText:
		return json.Marshal(v.text)
	case KindDate:
		return json.Marshal(v.date.Format(time.RFC3339))
	case KindBoolean:
		return json.Marshal(v.boolean)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts numbers, strings, booleans and null. Strings stay
// text; date detection is the profiler's job.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = Missing()
	case float64:
		*v = Numeric(x)
	case bool:
		*v = Boolean(x)
	case string:
		*v = Text(x)
	default:
		*v = Text(string(data))
	}
	return nil
}
