package speech

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// Service распознает речь в голосовых сообщениях через Whisper.
type Service struct {
	client *openai.Client
}

func NewService(apiKey string) *Service {
	return &Service{client: openai.NewClient(apiKey)}
}

// Transcribe пишет аудио во временный файл и отправляет его на
// распознавание с подсказкой языка. Файл удаляется в любом исходе.
func (s *Service) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	tempFile, err := os.CreateTemp("", "voice-*.ogg")
	if err != nil {
		return "", fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	defer os.Remove(tempFile.Name())
	defer tempFile.Close()

	if _, err = tempFile.Write(audioData); err != nil {
		return "", fmt.Errorf("ошибка записи аудиоданных: %w", err)
	}

	resp, err := s.client.CreateTranscription(
		ctx,
		openai.AudioRequest{
			Model:    openai.Whisper1,
			FilePath: tempFile.Name(),
			Language: "ru",
		},
	)
	if err != nil {
		return "", fmt.Errorf("ошибка при транскрибации аудио: %w", err)
	}

	return resp.Text, nil
}
