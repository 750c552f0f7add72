package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Event — результат разбора свободной фразы пользователя.
// Обе ветки разбора (регулярные выражения и языковая модель)
// возвращают одинаковую форму.
type Event struct {
	Title string
	Start time.Time
	End   time.Time
}

const DefaultTitle = "Встреча"

const defaultDuration = 60 * time.Minute

var (
	explicitTimeRe = regexp.MustCompile(`\b(\d{1,2})[:.]([0-5]\d)\b`)
	bareHourRe     = regexp.MustCompile(`(?:^|\s)в[ое]?\s+(\d{1,2})(?:\D|$)`)
	dayPartRe      = regexp.MustCompile(`(?:^|[^\p{L}])(утром|утра|днём|днем|дня|вечером|вечера|ночью|ночи)(?:[^\p{L}]|$)`)
	weekdayRe      = regexp.MustCompile(`(?:^|[^\p{L}])(понедельник|вторник|сред[ау]|четверг|пятниц[ау]|суббот[ау]|воскресенье)(?:[^\p{L}]|$)`)
)

var dayPartHours = map[string]int{
	"утром": 9, "утра": 9,
	"днём": 13, "днем": 13, "дня": 13,
	"вечером": 18, "вечера": 18,
	"ночью": 21, "ночи": 21,
}

var weekdays = map[string]time.Weekday{
	"понедельник": time.Monday,
	"вторник":     time.Tuesday,
	"среда":       time.Wednesday,
	"среду":       time.Wednesday,
	"четверг":     time.Thursday,
	"пятница":     time.Friday,
	"пятницу":     time.Friday,
	"суббота":     time.Saturday,
	"субботу":     time.Saturday,
	"воскресенье": time.Sunday,
}

// Parse разбирает фразу относительно момента now: сначала время
// (точное HH:MM — голый час после «в» — слово времени суток — следующий
// полный час), затем дата (день недели — послезавтра — завтра — сегодня —
// перенос на завтра, если время уже прошло).
func Parse(text string, now time.Time) Event {
	lower := strings.ToLower(text)

	hour, minute := -1, 0
	if m := explicitTimeRe.FindStringSubmatch(lower); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if h < 24 {
			hour, minute = h, mm
		}
	}
	if hour == -1 {
		if m := bareHourRe.FindStringSubmatch(lower); m != nil {
			if h, _ := strconv.Atoi(m[1]); h < 24 {
				hour = h
			}
		}
	}
	if hour == -1 {
		if m := dayPartRe.FindStringSubmatch(lower); m != nil {
			hour = dayPartHours[m[1]]
		}
	}
	hourKnown := hour != -1

	var base time.Time
	if hourKnown {
		base = time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	} else {
		// следующий полный час; time.Date нормализует 24-й час
		base = time.Date(now.Year(), now.Month(), now.Day(), now.Hour()+1, 0, 0, 0, now.Location())
	}

	start := base
	dateKnown := false
	switch {
	case weekdayRe.MatchString(lower):
		target := weekdays[weekdayRe.FindStringSubmatch(lower)[1]]
		offset := (int(target) - int(now.Weekday()) + 7) % 7
		start = base.AddDate(0, 0, offset)
		// тот же день недели с уже прошедшим временем означает следующую неделю
		if offset == 0 && hourKnown && !start.After(now) {
			start = start.AddDate(0, 0, 7)
		}
		dateKnown = true
	case strings.Contains(lower, "послезавтра"):
		start = base.AddDate(0, 0, 2)
		dateKnown = true
	case strings.Contains(lower, "завтра"):
		start = base.AddDate(0, 0, 1)
		dateKnown = true
	case strings.Contains(lower, "сегодня"):
		dateKnown = true
	}

	if !dateKnown && hourKnown && !start.After(now) {
		start = start.AddDate(0, 0, 1)
	}

	title := CleanTitle(text)
	if title == "" {
		title = DefaultTitle
	}

	return Event{
		Title: title,
		Start: start,
		End:   start.Add(defaultDuration),
	}
}
