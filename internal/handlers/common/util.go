// Package common provides small, shared helpers used across handlers.
package common

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Jeomhps/formation-admin/internal/apperr"
)

// ParseID parses a positive integer id from a path or query value.
func ParseID(raw, entity string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperr.Validation("Missing "+entity+" ID", nil)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid "+entity+" ID", nil)
	}
	return id, nil
}

// FlexInt accepts a JSON number or a numeric string. null and "" leave it unset.
type FlexInt struct {
	v *int
}

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		n.v = nil
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
		if s == "" {
			n.v = nil
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("%s is not a whole number", s)
	}
	i := int(f)
	n.v = &i
	return nil
}

// Ptr returns nil when unset.
func (n FlexInt) Ptr() *int { return n.v }

// Date accepts RFC3339 timestamps, datetime-local values and plain dates.
type Date struct {
	time.Time
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string")
	}
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("%q is not a valid date", s)
}

// FormatTime renders times the way every response does.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// FirstNonEmpty returns the first non-blank argument.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
