package models

import (
	"strings"
	"time"
)

// PostSearch holds the optional post search filters. Set filters are AND-ed;
// an empty PostSearch matches every post. Dates and times are UTC.
type PostSearch struct {
	Query string
	// Day is midnight UTC of the requested calendar date.
	Day *time.Time
	// TimeOfDay is "HH:MM".
	TimeOfDay string
}

// ParsePostSearch validates raw query parameters.
func ParsePostSearch(query, date, timeOfDay string) (PostSearch, error) {
	s := PostSearch{Query: strings.TrimSpace(query)}

	if date = strings.TrimSpace(date); date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, time.UTC)
		if err != nil {
			return PostSearch{}, NewValidationError("date must be formatted as YYYY-MM-DD")
		}
		s.Day = &day
	}

	if timeOfDay = strings.TrimSpace(timeOfDay); timeOfDay != "" {
		t, err := time.Parse("15:04", timeOfDay)
		if err != nil {
			return PostSearch{}, NewValidationError("time must be formatted as HH:MM")
		}
		s.TimeOfDay = t.Format("15:04")
	}

	return s, nil
}

// IsEmpty reports whether no filter is set.
func (s PostSearch) IsEmpty() bool {
	return s.Query == "" && s.Day == nil && s.TimeOfDay == ""
}
