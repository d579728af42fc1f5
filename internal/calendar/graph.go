package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

// Graph returns event times without a zone offset; the timeZone field
// carries the zone separately.
const graphTimeLayout = "2006-01-02T15:04:05.9999999"

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphLocation struct {
	DisplayName string `json:"displayName"`
}

type graphAttendee struct {
	EmailAddress struct {
		Name    string `json:"name,omitempty"`
		Address string `json:"address"`
	} `json:"emailAddress"`
	Type string `json:"type,omitempty"`
}

type graphEvent struct {
	ID        string          `json:"id,omitempty"`
	Subject   string          `json:"subject"`
	BodyPrev  string          `json:"bodyPreview,omitempty"`
	Body      *graphBody      `json:"body,omitempty"`
	Start     *graphDateTime  `json:"start,omitempty"`
	End       *graphDateTime  `json:"end,omitempty"`
	IsAllDay  bool            `json:"isAllDay,omitempty"`
	Location  *graphLocation  `json:"location,omitempty"`
	Attendees []graphAttendee `json:"attendees,omitempty"`
	WebLink   string          `json:"webLink,omitempty"`
}

type graphBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type graphEventList struct {
	Value []graphEvent `json:"value"`
}

func (s *Service) graphDo(ctx context.Context, tok *mailbox.Token, op, method, rawURL string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return mailbox.NewError(mailbox.KindProviderError, mailbox.ProviderOutlook, op, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return mailbox.NewError(mailbox.KindProviderError, mailbox.ProviderOutlook, op, err)
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := s.httpClient.Do(req)
	if err != nil {
		return mailbox.NewError(mailbox.KindProviderError, mailbox.ProviderOutlook, op,
			fmt.Errorf("%s %s: %w", method, rawURL, err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 8<<10))
		return mailbox.NewProviderError(mailbox.ProviderOutlook, op, res.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return mailbox.NewError(mailbox.KindProviderError, mailbox.ProviderOutlook, op, err)
	}
	return nil
}

func (s *Service) graphListEvents(ctx context.Context, tok *mailbox.Token, from, to time.Time, limit int) ([]Event, error) {
	q := url.Values{
		"startDateTime": {from.UTC().Format(time.RFC3339)},
		"endDateTime":   {to.UTC().Format(time.RFC3339)},
		"$orderby":      {"start/dateTime"},
		"$top":          {strconv.Itoa(limit)},
	}
	var list graphEventList
	if err := s.graphDo(ctx, tok, "listEvents", http.MethodGet, s.graphBaseURL+"/me/calendarView?"+q.Encode(), nil, &list); err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(list.Value))
	for _, e := range list.Value {
		events = append(events, fromGraphEvent(e))
	}
	return events, nil
}

func (s *Service) graphCreateEvent(ctx context.Context, tok *mailbox.Token, input EventInput) (*Event, error) {
	zone := input.TimeZone
	if zone == "" {
		zone = "UTC"
	}
	event := graphEvent{
		Subject:  input.Subject,
		IsAllDay: input.AllDay,
		Start:    &graphDateTime{DateTime: input.Start.Format(graphTimeLayout), TimeZone: zone},
		End:      &graphDateTime{DateTime: input.End.Format(graphTimeLayout), TimeZone: zone},
	}
	if input.Description != "" {
		event.Body = &graphBody{ContentType: "text", Content: input.Description}
	}
	if input.Location != "" {
		event.Location = &graphLocation{DisplayName: input.Location}
	}
	for _, email := range input.Attendees {
		var a graphAttendee
		a.EmailAddress.Address = email
		a.Type = "required"
		event.Attendees = append(event.Attendees, a)
	}

	var created graphEvent
	if err := s.graphDo(ctx, tok, "createEvent", http.MethodPost, s.graphBaseURL+"/me/events", event, &created); err != nil {
		return nil, err
	}
	out := fromGraphEvent(created)
	return &out, nil
}

func (s *Service) graphDeleteEvent(ctx context.Context, tok *mailbox.Token, eventID string) error {
	return s.graphDo(ctx, tok, "deleteEvent", http.MethodDelete, s.graphBaseURL+"/me/events/"+url.PathEscape(eventID), nil, nil)
}

func fromGraphEvent(e graphEvent) Event {
	out := Event{
		ID:      e.ID,
		Subject: e.Subject,
		AllDay:  e.IsAllDay,
		WebLink: e.WebLink,
	}
	if e.Body != nil {
		out.Description = e.Body.Content
	} else {
		out.Description = e.BodyPrev
	}
	if e.Location != nil {
		out.Location = e.Location.DisplayName
	}
	out.Start = graphTime(e.Start)
	out.End = graphTime(e.End)
	for _, a := range e.Attendees {
		out.Attendees = append(out.Attendees, a.EmailAddress.Address)
	}
	return out
}

func graphTime(dt *graphDateTime) time.Time {
	if dt == nil {
		return time.Time{}
	}
	loc := time.UTC
	if dt.TimeZone != "" && dt.TimeZone != "UTC" {
		if l, err := time.LoadLocation(dt.TimeZone); err == nil {
			loc = l
		}
	}
	if t, err := time.ParseInLocation(graphTimeLayout, dt.DateTime, loc); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339, dt.DateTime)
	return t
}
