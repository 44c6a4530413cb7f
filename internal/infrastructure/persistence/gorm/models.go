// Package gorm provides GORM model definitions and repositories for session preferences
package gorm

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PreferenceModel is the persisted snapshot of one session's constraints
type PreferenceModel struct {
	SessionID        uuid.UUID   `gorm:"type:char(36);primaryKey"`
	Allergies        StringSlice `gorm:"type:json"`
	Conditions       StringSlice `gorm:"type:json"`
	DailyCalorieGoal int         `gorm:"default:0"`
	Plan             string      `gorm:"type:varchar(20)"`
	Locale           string      `gorm:"type:varchar(10);default:'en'"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides the table name
func (PreferenceModel) TableName() string {
	return "session_preferences"
}

// StringSlice custom type for handling string arrays in JSON columns
type StringSlice []string

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
