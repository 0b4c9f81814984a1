package storage

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Float64Array stores an embedding vector as a JSON array in a TEXT column.
type Float64Array []float64

// Scan implements the sql.Scanner interface for Float64Array
func (f *Float64Array) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}

	switch v := value.(type) {
	case string:
		if v == "" || v == "[]" {
			*f = Float64Array{}
			return nil
		}
		return json.Unmarshal([]byte(v), f)
	case []byte:
		if len(v) == 0 || string(v) == "[]" {
			*f = Float64Array{}
			return nil
		}
		return json.Unmarshal(v, f)
	default:
		return fmt.Errorf("cannot scan type %T into Float64Array", value)
	}
}

// Value implements the driver.Valuer interface for Float64Array
func (f Float64Array) Value() (driver.Value, error) {
	if len(f) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
