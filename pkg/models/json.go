package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON stores an arbitrary JSON object in a jsonb column.
type JSON map[string]interface{}

// Value implements driver.Valuer for writing to the database.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner for reading from the database.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("models: JSON scan source is not []byte or string")
		}
		bytes = []byte(s)
	}

	return json.Unmarshal(bytes, j)
}
