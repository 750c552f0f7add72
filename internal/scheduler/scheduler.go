package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BusyInterval — занятый промежуток, полученный из календаря.
type BusyInterval struct {
	Label string // название события; пустое для интервала без подписи
	Start time.Time
	End   time.Time
}

// Describe возвращает строку для показа пользователю.
func (b BusyInterval) Describe() string {
	label := b.Label
	if label == "" {
		label = "занято"
	}
	return fmt.Sprintf("%s — %s", label, b.Start.Format("02.01.2006 15:04"))
}

// Calendar — внешний календарь, с которым сверяется планировщик.
type Calendar interface {
	ListBusy(ctx context.Context, start, end time.Time) ([]BusyInterval, error)
	CreateEvent(ctx context.Context, title string, start, end time.Time) (string, error)
}

type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeConflict
)

type Decision struct {
	Outcome   Outcome
	EventID   string // заполнено при OutcomeCreated
	Conflicts []BusyInterval
}

// PendingMeeting — предложенное событие, ожидающее подтверждения
// из-за пересечения со занятыми интервалами.
type PendingMeeting struct {
	ID        string
	Title     string
	Start     time.Time
	End       time.Time
	Conflicts []BusyInterval
	calendar  Calendar
}

var ErrNoPending = errors.New("нет встречи, ожидающей подтверждения")

// Checker проверяет предлагаемые встречи на пересечения и хранит
// не более одной ожидающей подтверждения встречи на пользователя.
type Checker struct {
	calendar Calendar

	mu      sync.Mutex
	pending map[int64]*PendingMeeting
}

func NewChecker(cal Calendar) *Checker {
	return &Checker{
		calendar: cal,
		pending:  make(map[int64]*PendingMeeting),
	}
}

// Propose создает событие сразу, если предлагаемый интервал свободен,
// иначе запоминает его как ожидающее подтверждения. Новое предложение
// молча заменяет прежнее ожидающее.
func (c *Checker) Propose(ctx context.Context, userID int64, title string, start, end time.Time) (Decision, error) {
	busy, err := c.calendar.ListBusy(ctx, start, end)
	if err != nil {
		return Decision{}, fmt.Errorf("ошибка при проверке занятости календаря: %w", err)
	}

	conflicts := dedupBusy(overlapping(busy, start, end))
	if len(conflicts) == 0 {
		eventID, err := c.calendar.CreateEvent(ctx, title, start, end)
		if err != nil {
			return Decision{}, fmt.Errorf("не удалось создать событие: %w", err)
		}
		logrus.Infof("Событие '%s' создано (ID: %s)", title, eventID)
		return Decision{Outcome: OutcomeCreated, EventID: eventID}, nil
	}

	meeting := &PendingMeeting{
		ID:        uuid.New().String(),
		Title:     title,
		Start:     start,
		End:       end,
		Conflicts: conflicts,
		calendar:  c.calendar,
	}

	c.mu.Lock()
	c.pending[userID] = meeting
	c.mu.Unlock()

	logrus.Infof("Встреча '%s' ожидает подтверждения: %d пересечений", title, len(conflicts))
	return Decision{Outcome: OutcomeConflict, Conflicts: conflicts}, nil
}

// Confirm создает ранее отложенную встречу и удаляет запись о ней.
func (c *Checker) Confirm(ctx context.Context, userID int64) (*PendingMeeting, error) {
	c.mu.Lock()
	meeting, ok := c.pending[userID]
	if ok {
		delete(c.pending, userID)
	}
	c.mu.Unlock()

	if !ok {
		return nil, ErrNoPending
	}

	if _, err := meeting.calendar.CreateEvent(ctx, meeting.Title, meeting.Start, meeting.End); err != nil {
		return nil, fmt.Errorf("не удалось создать событие: %w", err)
	}

	return meeting, nil
}

// Cancel удаляет отложенную встречу без создания события.
func (c *Checker) Cancel(userID int64) (*PendingMeeting, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	meeting, ok := c.pending[userID]
	if !ok {
		return nil, ErrNoPending
	}
	delete(c.pending, userID)
	return meeting, nil
}

func overlapping(busy []BusyInterval, start, end time.Time) []BusyInterval {
	var out []BusyInterval
	for _, b := range busy {
		if b.Start.Before(end) && b.End.After(start) {
			out = append(out, b)
		}
	}
	return out
}

// dedupBusy схлопывает интервалы с одинаковым началом, предпочитая
// записи с подписью. Приближение: различные события с одним началом
// сольются в одну строку отчета.
func dedupBusy(busy []BusyInterval) []BusyInterval {
	byStart := make(map[int64]BusyInterval)
	for _, b := range busy {
		existing, ok := byStart[b.Start.Unix()]
		if !ok || (existing.Label == "" && b.Label != "") {
			byStart[b.Start.Unix()] = b
		}
	}

	out := make([]BusyInterval, 0, len(byStart))
	for _, b := range byStart {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
