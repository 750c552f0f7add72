package nlp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 10 января 2024 — среда
func wednesday(hour, minute int) time.Time {
	return time.Date(2024, time.January, 10, hour, minute, 0, 0, time.UTC)
}

func TestParseExplicitTime(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		now   time.Time
		start time.Time
	}{
		{
			name:  "завтра с точным временем",
			text:  "встреча завтра в 15:00 с Антоном",
			now:   wednesday(12, 0),
			start: time.Date(2024, time.January, 11, 15, 0, 0, 0, time.UTC),
		},
		{
			name:  "точное время с точкой",
			text:  "встреча завтра в 14.30",
			now:   wednesday(12, 0),
			start: time.Date(2024, time.January, 11, 14, 30, 0, 0, time.UTC),
		},
		{
			name:  "время в конце фразы",
			text:  "обсудить бюджет сегодня 18:45",
			now:   wednesday(12, 0),
			start: wednesday(18, 45),
		},
		{
			name:  "послезавтра",
			text:  "созвон послезавтра в 12:00",
			now:   wednesday(9, 0),
			start: time.Date(2024, time.January, 12, 12, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := Parse(tt.text, tt.now)
			assert.Equal(t, tt.start, event.Start)
			assert.Equal(t, tt.start.Add(time.Hour), event.End)
		})
	}
}

func TestParseBareHour(t *testing.T) {
	// время еще не прошло — сегодня
	event := Parse("созвон в 9", wednesday(8, 0))
	assert.Equal(t, wednesday(9, 0), event.Start)

	// время уже прошло — перенос на завтра
	event = Parse("созвон в 9", wednesday(10, 0))
	assert.Equal(t, time.Date(2024, time.January, 11, 9, 0, 0, 0, time.UTC), event.Start)
}

func TestParseBareNumberIsNotHour(t *testing.T) {
	// число без предлога «в» не считается часом
	event := Parse("купить 2 билета", wednesday(10, 30))
	assert.Equal(t, wednesday(11, 0), event.Start)
	assert.Contains(t, event.Title, "2")
}

func TestParseDayPart(t *testing.T) {
	tests := []struct {
		text string
		hour int
	}{
		{"поговорим утром", 9},
		{"обед днем", 13},
		{"встретимся вечером", 18},
		{"разбор ночью", 21},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			event := Parse(tt.text, wednesday(7, 0))
			assert.Equal(t, tt.hour, event.Start.Hour())
		})
	}
}

func TestParseWeekday(t *testing.T) {
	// пятница после среды — ближайшая, через два дня
	event := Parse("встреча в пятницу в 10:00", wednesday(12, 0))
	assert.Equal(t, time.Date(2024, time.January, 12, 10, 0, 0, 0, time.UTC), event.Start)

	// тот же день недели с прошедшим временем — следующая неделя
	event = Parse("созвон в среду в 10:00", wednesday(14, 0))
	assert.Equal(t, time.Date(2024, time.January, 17, 10, 0, 0, 0, time.UTC), event.Start)

	// тот же день недели, время впереди — сегодня
	event = Parse("созвон в среду в 16:00", wednesday(14, 0))
	assert.Equal(t, wednesday(16, 0), event.Start)
}

func TestParseDefaultStart(t *testing.T) {
	// без времени — следующий полный час
	event := Parse("обсудить планы", wednesday(10, 30))
	assert.Equal(t, wednesday(11, 0), event.Start)

	// поздний вечер — переход через полночь
	event = Parse("обсудить планы", wednesday(23, 15))
	assert.Equal(t, time.Date(2024, time.January, 11, 0, 0, 0, 0, time.UTC), event.Start)
}

func TestParseTitle(t *testing.T) {
	event := Parse("встреча завтра в 15:00 с Антоном", wednesday(12, 0))
	assert.Contains(t, event.Title, "Антоном")
	assert.NotContains(t, event.Title, "завтра")
	assert.NotContains(t, event.Title, "15:00")
	assert.NotContains(t, event.Title, " в ")

	// заголовок целиком из служебных слов — подставляется метка по умолчанию
	event = Parse("завтра в 15:00", wednesday(12, 0))
	require.Equal(t, DefaultTitle, event.Title)
}

func TestCleanTitleIdempotent(t *testing.T) {
	inputs := []string{
		"встреча завтра в 15:00 с Антоном",
		"созвон в 9 утром",
		"обед в пятницу днем",
		"просто текст без дат",
	}

	for _, input := range inputs {
		once := CleanTitle(input)
		assert.Equal(t, once, CleanTitle(once), "input: %s", input)
	}
}

func TestParseTodayKeyword(t *testing.T) {
	// «сегодня» запрещает перенос даже для прошедшего времени
	event := Parse("отчет сегодня в 9:00", wednesday(11, 0))
	assert.Equal(t, wednesday(9, 0), event.Start)
}
