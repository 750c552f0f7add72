package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"voicebot/internal/nlp"
	"voicebot/internal/scheduler"
	"voicebot/internal/session"
	"voicebot/internal/speech"
	"voicebot/internal/tasks"
	"voicebot/pkg/config"
)

const (
	buttonTask    = "📝 Задача"
	buttonMeeting = "📅 Встреча"
	buttonBack    = "⬅️ Назад"

	callbackConfirm = "confirm_meeting"
	callbackCancel  = "cancel_meeting"
)

var modeKeyboard = tgbotapi.NewReplyKeyboard(
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(buttonTask),
		tgbotapi.NewKeyboardButton(buttonMeeting),
	),
	tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(buttonBack),
	),
)

type Handler struct {
	bot       *tgbotapi.BotAPI
	sessions  *session.Store
	speech    *speech.Service
	extractor *nlp.Extractor
	tasks     *tasks.Client
	checker   *scheduler.Checker // nil, когда календарь не настроен
	cfg       *config.Config
}

func NewHandler(
	cfg *config.Config,
	sessions *session.Store,
	speechService *speech.Service,
	extractor *nlp.Extractor,
	tasksClient *tasks.Client,
	checker *scheduler.Checker,
) (*Handler, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка при инициализации Telegram бота: %v", err)
	}

	logrus.Infof("Telegram бот запущен: %s", bot.Self.UserName)

	return &Handler{
		bot:       bot,
		sessions:  sessions,
		speech:    speechService,
		extractor: extractor,
		tasks:     tasksClient,
		checker:   checker,
		cfg:       cfg,
	}, nil
}

func (h *Handler) SetupWebhook() error {
	webhookURL := fmt.Sprintf("https://%s:%s/webhook", h.cfg.ServerHost, h.cfg.ServerPort)

	webhookConfig, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return fmt.Errorf("ошибка при создании конфига вебхука: %w", err)
	}

	if _, err := h.bot.Request(webhookConfig); err != nil {
		return fmt.Errorf("ошибка при установке вебхука: %v", err)
	}

	return nil
}

func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := h.bot.HandleUpdate(r)
	if err != nil {
		logrus.Errorf("Ошибка при обработке обновления: %v", err)
		return
	}

	h.handleUpdate(*update)
}

func (h *Handler) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := h.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("ошибка при отправке сообщения: %v", err)
	}
	return nil
}

func (h *Handler) handleUpdate(update tgbotapi.Update) {
	ctx := context.Background()

	if update.CallbackQuery != nil {
		h.handleCallback(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}
	msg := update.Message

	// транспорт может доставить одно и то же обновление повторно
	if h.sessions.SeenAndMark(msg.From.ID, msg.MessageID) {
		logrus.Infof("Пропуск повторного сообщения %d от пользователя %d", msg.MessageID, msg.From.ID)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("Паника при обработке сообщения %d: %v", msg.MessageID, r)
			h.SendMessage(msg.Chat.ID, "Произошла внутренняя ошибка, попробуйте еще раз")
		}
	}()

	switch {
	case msg.Voice != nil || msg.Audio != nil:
		h.handleVoiceMessage(ctx, msg)
	case msg.IsCommand():
		h.handleCommand(msg)
	case msg.Text != "":
		h.handleTextMessage(msg)
	}
}

func (h *Handler) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		h.replyWithKeyboard(msg.Chat.ID,
			"Привет! Выберите режим и пришлите голосовое сообщение: я создам задачу в Todoist или встречу в календаре.")
	default:
		h.SendMessage(msg.Chat.ID, "Неизвестная команда")
	}
}

func (h *Handler) handleTextMessage(msg *tgbotapi.Message) {
	userID := msg.From.ID

	switch msg.Text {
	case buttonTask:
		h.sessions.SetMode(userID, session.ModeTask)
		h.SendMessage(msg.Chat.ID, "Режим задач. Пришлите голосовое сообщение с текстом задачи.")
	case buttonMeeting:
		h.sessions.SetMode(userID, session.ModeMeeting)
		h.SendMessage(msg.Chat.ID, "Режим встреч. Пришлите голосовое сообщение, например: «встреча завтра в 15:00 с Антоном».")
	case buttonBack:
		h.sessions.ClearMode(userID)
		h.replyWithKeyboard(msg.Chat.ID, "Режим сброшен. Выберите новый режим.")
	default:
		h.replyWithKeyboard(msg.Chat.ID, "Я понимаю голосовые сообщения. Сначала выберите режим.")
	}
}

func (h *Handler) handleVoiceMessage(ctx context.Context, msg *tgbotapi.Message) {
	mode := h.sessions.GetMode(msg.From.ID)
	if mode == session.ModeUnset {
		h.replyWithKeyboard(msg.Chat.ID, "Сначала выберите режим: задача или встреча.")
		return
	}

	var fileID string
	if msg.Voice != nil {
		fileID = msg.Voice.FileID
	} else {
		fileID = msg.Audio.FileID
	}

	audioData, err := h.downloadFile(fileID)
	if err != nil {
		logrus.Errorf("Ошибка при загрузке аудио: %v", err)
		h.SendMessage(msg.Chat.ID, "Не удалось загрузить аудио файл")
		return
	}

	text, err := h.speech.Transcribe(ctx, audioData)
	if err != nil {
		logrus.Errorf("Ошибка при распознавании речи: %v", err)
		h.SendMessage(msg.Chat.ID, "Не удалось распознать текст.")
		return
	}

	logrus.Infof("Распознан текст пользователя %d: %s", msg.From.ID, text)

	switch mode {
	case session.ModeTask:
		h.handleTask(ctx, msg.Chat.ID, text)
	case session.ModeMeeting:
		h.handleMeeting(ctx, msg.Chat.ID, msg.From.ID, text)
	}

	if h.cfg.GroupChatID != 0 {
		if err := h.SendMessage(h.cfg.GroupChatID, text); err != nil {
			logrus.Errorf("Ошибка при отправке текста в группу: %v", err)
		}
	}
}

func (h *Handler) handleTask(ctx context.Context, chatID int64, text string) {
	if err := h.tasks.CreateTask(ctx, text); err != nil {
		logrus.Errorf("Ошибка при создании задачи: %v", err)
		h.SendMessage(chatID, fmt.Sprintf("Ошибка добавления задачи: %v", err))
		return
	}
	h.SendMessage(chatID, "Задача успешно добавлена в Todoist!")
}

func (h *Handler) handleMeeting(ctx context.Context, chatID, userID int64, text string) {
	if h.checker == nil {
		h.SendMessage(chatID, "Календарь не настроен")
		return
	}

	event := h.extractor.ExtractOrParse(ctx, text, time.Now())

	decision, err := h.checker.Propose(ctx, userID, event.Title, event.Start, event.End)
	if err != nil {
		logrus.Errorf("Ошибка при планировании встречи: %v", err)
		h.SendMessage(chatID, fmt.Sprintf("Не удалось запланировать встречу: %v", err))
		return
	}

	switch decision.Outcome {
	case scheduler.OutcomeCreated:
		h.SendMessage(chatID, fmt.Sprintf("Встреча '%s' создана: %s",
			event.Title, event.Start.Format("02.01.2006 15:04")))
	case scheduler.OutcomeConflict:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Встреча '%s' пересекается с занятым временем:\n", event.Title))
		for _, conflict := range decision.Conflicts {
			sb.WriteString("• " + conflict.Describe() + "\n")
		}
		sb.WriteString("\nСоздать встречу всё равно?")

		reply := tgbotapi.NewMessage(chatID, sb.String())
		reply.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("Создать", callbackConfirm),
				tgbotapi.NewInlineKeyboardButtonData("Отменить", callbackCancel),
			),
		)
		if _, err := h.bot.Send(reply); err != nil {
			logrus.Errorf("Ошибка при отправке запроса подтверждения: %v", err)
		}
	}
}

func (h *Handler) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logrus.Errorf("Ошибка при ответе на callback: %v", err)
	}

	if query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID

	if h.checker == nil {
		h.SendMessage(chatID, "Календарь не настроен")
		return
	}

	switch query.Data {
	case callbackConfirm:
		meeting, err := h.checker.Confirm(ctx, query.From.ID)
		if errors.Is(err, scheduler.ErrNoPending) {
			h.SendMessage(chatID, "Нет встречи, ожидающей подтверждения")
			return
		}
		if err != nil {
			logrus.Errorf("Ошибка при подтверждении встречи: %v", err)
			h.SendMessage(chatID, fmt.Sprintf("Не удалось создать встречу: %v", err))
			return
		}
		h.SendMessage(chatID, fmt.Sprintf("Встреча '%s' создана: %s",
			meeting.Title, meeting.Start.Format("02.01.2006 15:04")))
	case callbackCancel:
		if _, err := h.checker.Cancel(query.From.ID); errors.Is(err, scheduler.ErrNoPending) {
			h.SendMessage(chatID, "Нет встречи, ожидающей подтверждения")
			return
		}
		h.SendMessage(chatID, "Встреча отменена")
	}
}

func (h *Handler) downloadFile(fileID string) ([]byte, error) {
	fileURL, err := h.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении URL файла: %v", err)
	}

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка при загрузке файла: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка при чтении аудио данных: %v", err)
	}

	return data, nil
}

func (h *Handler) replyWithKeyboard(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = modeKeyboard
	if _, err := h.bot.Send(msg); err != nil {
		logrus.Errorf("Ошибка при отправке сообщения: %v", err)
	}
}
