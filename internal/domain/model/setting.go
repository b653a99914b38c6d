package model

import (
	"fmt"
	"strconv"
	"time"
)

// SettingType is the value type of a system configuration entry.
type SettingType string

const (
	SettingNumber  SettingType = "number"
	SettingString  SettingType = "string"
	SettingBoolean SettingType = "boolean"
)

// Keys read by the pricing engine.
const (
	SettingTaxRate               = "tax_rate"
	SettingFreeShippingThreshold = "free_shipping_threshold"
	SettingDefaultShippingCost   = "default_shipping_cost"
)

// Setting is a typed key/value system configuration entry.
type Setting struct {
	Key       string
	Value     string
	Type      SettingType
	Category  string
	Min       *float64
	Max       *float64
	UpdatedAt time.Time
	UpdatedBy *int64
}

// Validate checks a candidate value against the type and range rules of the entry.
func (s Setting) Validate(value string) error {
	switch s.Type {
	case SettingNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s must be a number", s.Key)
		}
		if s.Min != nil && n < *s.Min {
			return fmt.Errorf("%s must be at least %v", s.Key, *s.Min)
		}
		if s.Max != nil && n > *s.Max {
			return fmt.Errorf("%s must be at most %v", s.Key, *s.Max)
		}
	case SettingBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%s must be true or false", s.Key)
		}
	case SettingString:
	default:
		return fmt.Errorf("%s has unknown type %q", s.Key, s.Type)
	}
	return nil
}
