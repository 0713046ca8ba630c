package types

import "time"

// Record is one row of the event source after column synonyms are resolved.
// Values are trimmed but otherwise raw.
type Record struct {
	UID         string
	Title       string
	Description string
	Start       string
	End         string
	URL         string
	Location    string
}

// Event is a calendar entry ready to be written to a feed. Start and End are UTC;
// End is the zero time when the source row has no usable end.
type Event struct {
	UID         string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	URL         string
	Location    string
}

// HasEnd reports whether the event carries an end time.
func (e Event) HasEnd() bool {
	return !e.End.IsZero()
}

type BaseResponse[t any] struct {
	Data    t      `json:"data"`
	Message string `json:"message"`
}

type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
