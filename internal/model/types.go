package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Variants maps a variant name ("thumb", "medium") to the public URL of the
// derived object. The map only ever gains keys over the record's lifetime.
type Variants map[string]string

// Complete reports whether every configured variant name is present.
func (v Variants) Complete(names []string) bool {
	for _, n := range names {
		if _, ok := v[n]; !ok {
			return false
		}
	}
	return true
}

func (v Variants) Value() (driver.Value, error) {
	if v == nil {
		v = Variants{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal Variants: %w", err)
	}
	return b, nil
}

func (v *Variants) Scan(src interface{}) error {
	if src == nil {
		*v = Variants{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("Variants.Scan: expected []byte, got %T", src)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal Variants: %w", err)
	}
	return nil
}
