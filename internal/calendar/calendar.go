package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"voicebot/internal/scheduler"
)

// Client — клиент Google Calendar на сервисном аккаунте. Занятость
// проверяется по всем перечисленным календарям, события создаются
// в первом из них.
type Client struct {
	srv         *gcal.Service
	calendarIDs []string
}

func NewClient(ctx context.Context, credentialsJSON []byte, calendarIDs string) (*Client, error) {
	config, err := google.JWTConfigFromJSON(credentialsJSON, gcal.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("не удалось разобрать учетные данные: %v", err)
	}

	srv, err := gcal.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("не удалось создать сервис календаря: %v", err)
	}

	ids := []string{}
	for _, id := range strings.Split(calendarIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		ids = []string{"primary"}
	}

	return &Client{srv: srv, calendarIDs: ids}, nil
}

// ListBusy объединяет занятые интервалы FreeBusy (без подписей) с
// событиями календаря (с подписями) за указанный промежуток. Повторы
// с одинаковым началом схлопывает планировщик.
func (c *Client) ListBusy(ctx context.Context, start, end time.Time) ([]scheduler.BusyInterval, error) {
	items := make([]*gcal.FreeBusyRequestItem, 0, len(c.calendarIDs))
	for _, id := range c.calendarIDs {
		items = append(items, &gcal.FreeBusyRequestItem{Id: id})
	}

	fb, err := c.srv.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin: start.Format(time.RFC3339),
		TimeMax: end.Format(time.RFC3339),
		Items:   items,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить занятость календаря: %v", err)
	}

	var intervals []scheduler.BusyInterval
	for _, cal := range fb.Calendars {
		for _, b := range cal.Busy {
			busyStart, err := time.Parse(time.RFC3339, b.Start)
			if err != nil {
				continue
			}
			busyEnd, err := time.Parse(time.RFC3339, b.End)
			if err != nil {
				continue
			}
			intervals = append(intervals, scheduler.BusyInterval{Start: busyStart, End: busyEnd})
		}
	}

	events, err := c.srv.Events.List(c.calendarIDs[0]).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		logrus.Warnf("Не удалось получить события с названиями: %v", err)
		return intervals, nil
	}

	for _, ev := range events.Items {
		evStart, err := parseEventTime(ev.Start)
		if err != nil {
			continue
		}
		evEnd, err := parseEventTime(ev.End)
		if err != nil {
			continue
		}
		intervals = append(intervals, scheduler.BusyInterval{
			Label: ev.Summary,
			Start: evStart,
			End:   evEnd,
		})
	}

	return intervals, nil
}

func (c *Client) CreateEvent(ctx context.Context, title string, start, end time.Time) (string, error) {
	event := &gcal.Event{
		Summary: title,
		Start:   &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:     &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}

	created, err := c.srv.Events.Insert(c.calendarIDs[0], event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("не удалось создать событие: %v", err)
	}

	return created.Id, nil
}

func parseEventTime(eventTime *gcal.EventDateTime) (time.Time, error) {
	if eventTime == nil {
		return time.Time{}, fmt.Errorf("не задано время события")
	}
	if eventTime.DateTime != "" {
		return time.Parse(time.RFC3339, eventTime.DateTime)
	}
	if eventTime.Date != "" {
		return time.Parse("2006-01-02", eventTime.Date)
	}
	return time.Time{}, fmt.Errorf("не удалось определить формат времени")
}
