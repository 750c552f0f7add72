package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	TelegramToken     string
	OpenAIKey         string
	TodoistToken      string
	TodoistProjectID  string
	GoogleCalendarID  string
	GoogleCredentials string
	GroupChatID       int64
	ServerHost        string
	ServerPort        string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Не найден файл .env")
	}

	cfg := &Config{
		TelegramToken:     getEnv("TELEGRAM_TOKEN", ""),
		OpenAIKey:         getEnv("OPENAI_KEY", ""),
		TodoistToken:      getEnv("TODOIST_TOKEN", ""),
		TodoistProjectID:  getEnv("TODOIST_PROJECT_ID", ""),
		GoogleCalendarID:  getEnv("GOOGLE_CALENDAR_ID", "primary"),
		GoogleCredentials: getEnv("GOOGLE_CREDENTIALS", ""),
		GroupChatID:       getEnvInt64("GROUP_CHAT_ID", 0),
		ServerHost:        getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
	}

	if cfg.TelegramToken == "" {
		logrus.Fatal("Не задан TELEGRAM_TOKEN")
	}
	if cfg.OpenAIKey == "" {
		logrus.Fatal("Не задан OPENAI_KEY")
	}
	if cfg.TodoistToken == "" {
		logrus.Fatal("Не задан TODOIST_TOKEN")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		logrus.Warnf("Некорректное значение %s: %v", key, err)
		return defaultValue
	}
	return parsed
}
