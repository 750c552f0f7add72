package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"voicebot/internal/calendar"
	"voicebot/internal/nlp"
	"voicebot/internal/scheduler"
	"voicebot/internal/session"
	"voicebot/internal/speech"
	"voicebot/internal/tasks"
	"voicebot/internal/telegram"
	"voicebot/pkg/config"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)

	cfg := config.LoadConfig()

	sessions := session.NewStore()
	speechService := speech.NewService(cfg.OpenAIKey)
	extractor := nlp.NewExtractor(cfg.OpenAIKey)
	tasksClient := tasks.NewClient(cfg.TodoistToken, cfg.TodoistProjectID)

	var checker *scheduler.Checker
	if cfg.GoogleCredentials != "" {
		calendarClient, err := calendar.NewClient(context.Background(), []byte(cfg.GoogleCredentials), cfg.GoogleCalendarID)
		if err != nil {
			logrus.Warnf("Не удалось инициализировать Google Calendar: %v", err)
		} else {
			logrus.Info("Google Calendar клиент инициализирован")
			checker = scheduler.NewChecker(calendarClient)
		}
	}

	telegramHandler, err := telegram.NewHandler(cfg, sessions, speechService, extractor, tasksClient, checker)
	if err != nil {
		logrus.Fatalf("Ошибка при инициализации Telegram бота: %v", err)
	}

	if err := telegramHandler.SetupWebhook(); err != nil {
		logrus.Warnf("Не удалось установить вебхук: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", telegramHandler.HandleWebhook)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: mux,
	}

	go func() {
		logrus.Infof("Сервер запущен на порту %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Ошибка при запуске сервера: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Завершение работы сервера...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Ошибка при остановке сервера: %v", err)
	}

	logrus.Info("Сервер остановлен")
}
