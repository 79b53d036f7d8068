// File: /models/types.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TrailPointList is an ordered point sequence stored as a JSON column.
type TrailPointList []TrailPoint

// Value implements driver.Valuer interface for database storage
func (pl TrailPointList) Value() (driver.Value, error) {
	if pl == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]TrailPoint(pl))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for database retrieval
func (pl *TrailPointList) Scan(value interface{}) error {
	if value == nil {
		*pl = TrailPointList{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, pl)
	case string:
		return json.Unmarshal([]byte(v), pl)
	default:
		return fmt.Errorf("cannot scan %T into TrailPointList", value)
	}
}

// GormDataType returns the data type for GORM
func (TrailPointList) GormDataType() string {
	return "json"
}

// MarshalJSON keeps an empty list as [] rather than null.
func (pl TrailPointList) MarshalJSON() ([]byte, error) {
	if pl == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]TrailPoint(pl))
}

// UnmarshalJSON implements json.Unmarshaler interface
func (pl *TrailPointList) UnmarshalJSON(data []byte) error {
	var points []TrailPoint
	if err := json.Unmarshal(data, &points); err != nil {
		return err
	}
	*pl = TrailPointList(points)
	return nil
}

// Clone returns a copy that shares no backing storage with pl.
func (pl TrailPointList) Clone() TrailPointList {
	if pl == nil {
		return TrailPointList{}
	}
	out := make(TrailPointList, len(pl))
	for i, p := range pl {
		out[i] = p.Clone()
	}
	return out
}
