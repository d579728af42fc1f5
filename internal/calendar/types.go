// Package calendar provides a thin, provider-dispatched pass-through to
// the calendar attached to a mail account. Gmail accounts use the Google
// Calendar API; Outlook accounts use the Graph events API. Unlike the
// mailbox layer there is no semantic translation here, only shape
// normalization.
package calendar

import "time"

// Event is the uniform calendar event shape.
type Event struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"allDay,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
	WebLink     string    `json:"webLink,omitempty"`
}

// EventInput describes an event to create.
type EventInput struct {
	Subject     string    `json:"subject"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	AllDay      bool      `json:"allDay,omitempty"`
	TimeZone    string    `json:"timeZone,omitempty"`
	Attendees   []string  `json:"attendees,omitempty"`
}
