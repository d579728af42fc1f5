package calendar

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/alexkarmel/superhuman-cli-sub000/internal/mailbox"
)

const primaryCalendar = "primary"

func (s *Service) googleService(ctx context.Context, tok *mailbox.Token) (*gcal.Service, error) {
	opts := append([]option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: tok.AccessToken})),
	}, s.googleOpts...)

	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, mailbox.NewError(mailbox.KindProviderError, mailbox.ProviderGmail, "newService", err)
	}
	return svc, nil
}

func wrapGoogleErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		detail := gerr.Message
		if detail == "" {
			detail = strings.TrimSpace(gerr.Body)
		}
		return mailbox.NewProviderError(mailbox.ProviderGmail, op, gerr.Code, detail)
	}
	return mailbox.NewError(mailbox.KindProviderError, mailbox.ProviderGmail, op, err)
}

func (s *Service) googleListEvents(ctx context.Context, tok *mailbox.Token, from, to time.Time, limit int) ([]Event, error) {
	svc, err := s.googleService(ctx, tok)
	if err != nil {
		return nil, err
	}

	res, err := svc.Events.List(primaryCalendar).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(int64(limit)).
		Context(ctx).Do()
	if err != nil {
		return nil, wrapGoogleErr("listEvents", err)
	}

	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, fromGoogleEvent(item))
	}
	return events, nil
}

func (s *Service) googleCreateEvent(ctx context.Context, tok *mailbox.Token, input EventInput) (*Event, error) {
	svc, err := s.googleService(ctx, tok)
	if err != nil {
		return nil, err
	}

	event := &gcal.Event{
		Summary:     input.Subject,
		Description: input.Description,
		Location:    input.Location,
	}
	if input.AllDay {
		event.Start = &gcal.EventDateTime{Date: input.Start.Format("2006-01-02")}
		event.End = &gcal.EventDateTime{Date: input.End.Format("2006-01-02")}
	} else {
		zone := input.TimeZone
		if zone == "" {
			zone = "UTC"
		}
		event.Start = &gcal.EventDateTime{DateTime: input.Start.Format(time.RFC3339), TimeZone: zone}
		event.End = &gcal.EventDateTime{DateTime: input.End.Format(time.RFC3339), TimeZone: zone}
	}
	for _, email := range input.Attendees {
		event.Attendees = append(event.Attendees, &gcal.EventAttendee{Email: email})
	}

	created, err := svc.Events.Insert(primaryCalendar, event).Context(ctx).Do()
	if err != nil {
		return nil, wrapGoogleErr("createEvent", err)
	}
	out := fromGoogleEvent(created)
	return &out, nil
}

func (s *Service) googleDeleteEvent(ctx context.Context, tok *mailbox.Token, eventID string) error {
	svc, err := s.googleService(ctx, tok)
	if err != nil {
		return err
	}
	if err := svc.Events.Delete(primaryCalendar, eventID).Context(ctx).Do(); err != nil {
		return wrapGoogleErr("deleteEvent", err)
	}
	return nil
}

func fromGoogleEvent(e *gcal.Event) Event {
	out := Event{
		ID:          e.Id,
		Subject:     e.Summary,
		Description: e.Description,
		Location:    e.Location,
		WebLink:     e.HtmlLink,
	}
	out.Start, out.AllDay = googleTime(e.Start)
	out.End, _ = googleTime(e.End)
	for _, a := range e.Attendees {
		out.Attendees = append(out.Attendees, a.Email)
	}
	return out
}

func googleTime(dt *gcal.EventDateTime) (time.Time, bool) {
	if dt == nil {
		return time.Time{}, false
	}
	if dt.Date != "" {
		t, _ := time.Parse("2006-01-02", dt.Date)
		return t, true
	}
	t, _ := time.Parse(time.RFC3339, dt.DateTime)
	return t, false
}
