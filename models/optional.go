package models

import (
	"bytes"
	"encoding/json"
)

// FieldState tells the merge resolver what an incoming field asks for.
type FieldState int

const (
	// Untouched means the field was not supplied at all.
	Untouched FieldState = iota
	// Clear means the field was supplied as an explicit null.
	Clear
	// Set means the field was supplied with a value.
	Set
)

func (s FieldState) String() string {
	switch s {
	case Clear:
		return "clear"
	case Set:
		return "set"
	default:
		return "untouched"
	}
}

// OptionalFloat is a nullable number with presence tracking.
// The zero value is Untouched.
type OptionalFloat struct {
	State FieldState
	Value float64
}

func SetFloat(v float64) OptionalFloat { return OptionalFloat{State: Set, Value: v} }
func ClearFloat() OptionalFloat        { return OptionalFloat{State: Clear} }

// FloatFrom maps a stored nullable value to Set or Clear.
func FloatFrom(v *float64) OptionalFloat {
	if v == nil {
		return ClearFloat()
	}
	return SetFloat(*v)
}

// Present reports whether the field was supplied, null or not.
func (o OptionalFloat) Present() bool { return o.State != Untouched }

// Ptr returns the value as a nullable pointer. Untouched and Clear both give nil.
func (o OptionalFloat) Ptr() *float64 {
	if o.State != Set {
		return nil
	}
	v := o.Value
	return &v
}

// UnmarshalJSON is only invoked for keys that are present in the payload,
// which is what makes Untouched distinguishable from Clear.
func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = ClearFloat()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = SetFloat(v)
	return nil
}

func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if o.State != Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// OptionalString is a nullable string with presence tracking.
type OptionalString struct {
	State FieldState
	Value string
}

func SetString(v string) OptionalString { return OptionalString{State: Set, Value: v} }
func ClearString() OptionalString       { return OptionalString{State: Clear} }

// StringFrom maps a stored nullable value to Set or Clear.
func StringFrom(v *string) OptionalString {
	if v == nil {
		return ClearString()
	}
	return SetString(*v)
}

func (o OptionalString) Present() bool { return o.State != Untouched }

func (o OptionalString) Ptr() *string {
	if o.State != Set {
		return nil
	}
	v := o.Value
	return &v
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = ClearString()
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = SetString(v)
	return nil
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.State != Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
