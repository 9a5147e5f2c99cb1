package resources

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Timestamp is a server date-time. The backend sends local times without a
// zone; they are read as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s, ok, err := jsonString(data)
	if err != nil || !ok {
		return err
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return errors.Errorf("[Timestamp.UnmarshalJSON] unrecognised timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format("2006-01-02T15:04:05"))
}

// Date is a calendar date sent as yyyy-mm-dd.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s, ok, err := jsonString(data)
	if err != nil || !ok {
		return err
	}
	parsed, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return errors.Wrapf(err, "[Date.UnmarshalJSON] unrecognised date %q", s)
	}
	d.Time = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// jsonString reads a JSON string, reporting false for null or "".
func jsonString(data []byte) (string, bool, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", false, err
	}
	return s, s != "", nil
}
