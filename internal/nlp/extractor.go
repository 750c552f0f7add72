package nlp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

type extractedEvent struct {
	Title           string `json:"title"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	DurationMinutes int    `json:"duration_minutes"`
}

type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Extractor извлекает событие из фразы через языковую модель.
type Extractor struct {
	client completionClient
}

func NewExtractor(apiKey string) *Extractor {
	return &Extractor{client: openai.NewClient(apiKey)}
}

var russianWeekdays = map[time.Weekday]string{
	time.Monday:    "понедельник",
	time.Tuesday:   "вторник",
	time.Wednesday: "среда",
	time.Thursday:  "четверг",
	time.Friday:    "пятница",
	time.Saturday:  "суббота",
	time.Sunday:    "воскресенье",
}

func (e *Extractor) Extract(ctx context.Context, text string, now time.Time) (Event, error) {
	systemPrompt := fmt.Sprintf(
		"Ты извлекаешь событие из фразы пользователя. Сегодня %s (%s). "+
			"Верни строго JSON без пояснений: "+
			`{"title": "...", "date": "YYYY-MM-DD", "time": "HH:MM", "duration_minutes": 60}`,
		now.Format("2006-01-02"), russianWeekdays[now.Weekday()])

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4Dot1,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return Event{}, fmt.Errorf("ошибка при запросе к OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Event{}, errors.New("нет ответа от OpenAI")
	}

	return decodeExtracted(resp.Choices[0].Message.Content, now)
}

// ExtractOrParse пытается извлечь событие языковой моделью и при любой
// ошибке откатывается к детерминированному разбору. Форма результата
// одинакова для обеих веток.
func (e *Extractor) ExtractOrParse(ctx context.Context, text string, now time.Time) Event {
	if e == nil || e.client == nil {
		return Parse(text, now)
	}

	event, err := e.Extract(ctx, text, now)
	if err != nil {
		logrus.Warnf("Извлечение события моделью не удалось, используем разбор по правилам: %v", err)
		return Parse(text, now)
	}
	return event
}

func decodeExtracted(raw string, now time.Time) (Event, error) {
	raw = stripCodeFence(raw)

	var ext extractedEvent
	if err := json.Unmarshal([]byte(raw), &ext); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return Event{}, fmt.Errorf("не удалось разобрать ответ модели: %w", err)
		}
		if err := json.Unmarshal([]byte(repaired), &ext); err != nil {
			return Event{}, fmt.Errorf("не удалось разобрать ответ модели после восстановления: %w", err)
		}
	}

	start, err := time.ParseInLocation("2006-01-02 15:04", ext.Date+" "+ext.Time, now.Location())
	if err != nil {
		return Event{}, fmt.Errorf("некорректные дата или время в ответе модели: %w", err)
	}

	duration := time.Duration(ext.DurationMinutes) * time.Minute
	if duration <= 0 {
		duration = defaultDuration
	}

	title := strings.TrimSpace(ext.Title)
	if title == "" {
		title = DefaultTitle
	}

	return Event{
		Title: title,
		Start: start,
		End:   start.Add(duration),
	}, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
