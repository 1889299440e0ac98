package services

import (
	"bytes"
	"encoding/json"
)

// OptionalString is a string input field that tells apart a missing key, an
// explicit null and a value. A JSON value of another type is recorded as
// Invalid rather than failing the whole body.
type OptionalString struct {
	Set     bool
	Null    bool
	Invalid bool
	Value   string
}

// Some is a supplied value.
func Some(value string) OptionalString {
	return OptionalString{Set: true, Value: value}
}

// Null is an explicit null.
func Null() OptionalString {
	return OptionalString{Set: true, Null: true}
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	*o = OptionalString{Set: true}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		o.Invalid = true
	}
	return nil
}
