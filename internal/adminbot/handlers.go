package adminbot

import (
	"fmt"
	"strconv"

	"github.com/AlekSi/pointer"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/gratefultolord/aid_docs_bot/internal/db"
	"github.com/gratefultolord/aid_docs_bot/internal/logger"
)

const (
	listLimit     = 20
	messagesLimit = 10
)

type BotService struct {
	botAPI          *tgbotapi.BotAPI
	notifier        *Notifier
	applicationRepo *db.ApplicationRepository
	adminRepo       *db.AdminRepository
	log             logger.Logger
	adminStates     map[int64]*AdminState
}

func New(
	botAPI *tgbotapi.BotAPI,
	notifier *Notifier,
	applicationRepo *db.ApplicationRepository,
	adminRepo *db.AdminRepository,
	log logger.Logger,
) *BotService {
	return &BotService{
		botAPI:          botAPI,
		notifier:        notifier,
		applicationRepo: applicationRepo,
		adminRepo:       adminRepo,
		log:             log,
		adminStates:     make(map[int64]*AdminState),
	}
}

func (b *BotService) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.botAPI.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}

		chatID := update.Message.Chat.ID
		text := update.Message.Text

		isAdmin, err := b.adminRepo.IsAdmin(chatID)
		if err != nil {
			b.log.Error("checking admin", err, logger.Person{ChatID: chatID})
		}
		if err != nil || !isAdmin {
			b.reply(chatID, "Доступ запрещен")
			continue
		}

		if _, exists := b.adminStates[chatID]; !exists {
			b.adminStates[chatID] = &AdminState{Step: StateMainMenu}
		}

		state := b.adminStates[chatID]

		if state.Step == StateMainMenu {
			b.handleMainMenuChoice(chatID, text)
			continue
		}

		switch state.Step {
		case StateViewingRequest:
			b.handleViewRequest(chatID, text)

		case StateChoosingFilter:
			b.handleFilter(chatID, text)

		case StateEnteringRejectReason:
			b.handleReason(chatID, text, db.StatusRejected)

		case StateEnteringRevisionReason:
			b.handleReason(chatID, text, db.StatusNeedsRevision)

		case StateAddingAdmin:
			b.handleAddingAdmin(chatID, text)

		default:
			b.log.Warn("unknown admin state", map[string]interface{}{"step": state.Step}, logger.Person{ChatID: chatID})
			b.handleMainMenu(chatID)
		}
	}
}

func (b *BotService) send(chatID int64, c tgbotapi.Chattable) {
	if _, err := b.botAPI.Send(c); err != nil {
		b.log.Error("sending message", err, logger.Person{ChatID: chatID})
	}
}

func (b *BotService) reply(chatID int64, text string) {
	b.send(chatID, tgbotapi.NewMessage(chatID, text))
}

func (b *BotService) handleMainMenuChoice(chatID int64, text string) {
	switch text {
	case "/start", BtnMainMenu:
		b.handleMainMenu(chatID)
	case BtnCheckRequests:
		b.handleCheckRequests(chatID)
	case BtnListRequests:
		b.handleListRequests(chatID)
	case BtnMessages:
		b.handleMessages(chatID)
	case BtnAddAdmin:
		b.handleAddAdmin(chatID)
	default:
		if id, ok := parseRequestID(text); ok {
			b.openRequest(chatID, id)
			return
		}
		b.handleMainMenu(chatID)
	}
}

func (b *BotService) handleMainMenu(chatID int64) {
	b.adminStates[chatID] = &AdminState{Step: StateMainMenu}

	msg := tgbotapi.NewMessage(chatID, "Главное меню:\nЧтобы открыть заявку, отправьте её номер, например #12")
	msg.ReplyMarkup = AdminMainMenu()
	b.send(chatID, msg)
}

func (b *BotService) handleCheckRequests(chatID int64) {
	app, err := b.applicationRepo.GetNextPending()
	if err != nil {
		b.log.Error("handleCheckRequests: loading pending application", err, logger.Person{ChatID: chatID})
		b.reply(chatID, "Ошибка при получении заявок.")
		return
	}

	if app == nil {
		msg := tgbotapi.NewMessage(chatID, "Нет новых заявок")
		msg.ReplyMarkup = AdminMainMenu()
		b.send(chatID, msg)
		b.adminStates[chatID] = &AdminState{Step: StateMainMenu}
		return
	}

	b.showRequest(chatID, app)
}

func (b *BotService) openRequest(chatID, id int64) {
	app, err := b.applicationRepo.GetByID(id)
	if err != nil {
		if errors.Cause(err) == db.ErrNotFound {
			b.reply(chatID, fmt.Sprintf("Заявка #%d не найдена", id))
			return
		}
		b.log.Error("openRequest: loading application", err, logger.Person{ChatID: chatID})
		b.reply(chatID, "Ошибка при получении заявки.")
		return
	}

	b.showRequest(chatID, app)
}

func (b *BotService) showRequest(chatID int64, app *db.Application) {
	docs, err := b.applicationRepo.ListDocuments(app.ID)
	if err != nil {
		b.log.Error("showRequest: loading documents", err, logger.Person{ChatID: chatID})
		b.reply(chatID, "Ошибка при получении документов заявки.")
		return
	}

	b.adminStates[chatID] = &AdminState{
		Step:      StateViewingRequest,
		RequestID: app.ID,
	}

	info := renderRequest(app, docs)
	if app.Status != db.StatusPending {
		info += "\n\nСтатус: " + statusTitles[app.Status]
	}

	msg := tgbotapi.NewMessage(chatID, info)
	msg.ReplyMarkup = RequestActionButtons()
	b.send(chatID, msg)

	for i, d := range docs {
		doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(d.FilePath))
		doc.Caption = fmt.Sprintf("%d. %s", i+1, d.Description)
		b.send(chatID, doc)
	}
}

func (b *BotService) handleListRequests(chatID int64) {
	b.adminStates[chatID].Step = StateChoosingFilter

	msg := tgbotapi.NewMessage(chatID, "Какие заявки показать?")
	msg.ReplyMarkup = FilterMenu()
	b.send(chatID, msg)
}

func (b *BotService) handleFilter(chatID int64, text string) {
	if text == BtnMainMenu {
		b.handleMainMenu(chatID)
		return
	}

	status, ok := statusFromTitle(text)
	if !ok {
		msg := tgbotapi.NewMessage(chatID, "Выберите статус")
		msg.ReplyMarkup = FilterMenu()
		b.send(chatID, msg)
		return
	}

	apps, err := b.applicationRepo.ListByStatus(status, listLimit)
	if err != nil {
		b.log.Error("handleFilter: listing applications", err, logger.Person{ChatID: chatID})
		b.reply(chatID, "Ошибка при получении заявок.")
		return
	}

	b.adminStates[chatID] = &AdminState{Step: StateMainMenu}

	text = "Заявок нет"
	if len(apps) > 0 {
		text = renderRequestList(apps) + "\n\nЧтобы открыть заявку, отправьте её номер"
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = AdminMainMenu()
	b.send(chatID, msg)
}

func (b *BotService) handleMessages(chatID int64) {
	messages, err := b.adminRepo.GetLatestMessages(messagesLimit)
	if err != nil {
		b.log.Error("handleMessages: loading messages", err, logger.Person{ChatID: chatID})
		b.reply(chatID, "Ошибка при получении сообщений")
		return
	}

	if len(messages) == 0 {
		msg := tgbotapi.NewMessage(chatID, "Сообщений от пользователей пока нет")
		msg.ReplyMarkup = AdminMainMenu()
		b.send(chatID, msg)
		return
	}

	for _, m := range messages {
		info := fmt.Sprintf(
			"От пользователя %s %s (user_id %d)\nСообщение: %s\n---",
			m.FirstName, m.LastName, m.TelegramUserID, m.Message,
		)
		b.reply(chatID, info)
	}

	msg := tgbotapi.NewMessage(chatID, "Возвращаемся в меню")
	msg.ReplyMarkup = AdminMainMenu()
	b.send(chatID, msg)
}

func (b *BotService) handleAddAdmin(chatID int64) {
	b.adminStates[chatID].Step = StateAddingAdmin

	msg := tgbotapi.NewMessage(chatID, "Введите chat_id нового админа")
	msg.ReplyMarkup = CancelMenu()
	b.send(chatID, msg)
}

func (b *BotService) handleViewRequest(chatID int64, text string) {
	state := b.adminStates[chatID]

	switch text {
	case BtnApprove:
		if err := b.applicationRepo.UpdateStatus(state.RequestID, db.StatusApproved, nil); err != nil {
			b.log.Error("handleViewRequest: approving application", err, logger.Person{ChatID: chatID})
			b.handleMainMenu(chatID)
			return
		}

		b.reply(chatID, "Заявка одобрена")
		b.notify(state.RequestID, db.StatusApproved, "")
		b.handleCheckRequests(chatID)

	case BtnReject:
		state.Step = StateEnteringRejectReason
		msg := tgbotapi.NewMessage(chatID, "Введите причину отклонения")
		msg.ReplyMarkup = CancelMenu()
		b.send(chatID, msg)

	case BtnRevision:
		state.Step = StateEnteringRevisionReason
		msg := tgbotapi.NewMessage(chatID, "Введите причину отправки на доработку")
		msg.ReplyMarkup = CancelMenu()
		b.send(chatID, msg)

	case BtnMainMenu:
		b.handleMainMenu(chatID)

	default:
		msg := tgbotapi.NewMessage(chatID, "Выберите действие")
		msg.ReplyMarkup = RequestActionButtons()
		b.send(chatID, msg)
	}
}

// handleReason finishes a rejection or a revision request once the officer
// typed the reason.
func (b *BotService) handleReason(chatID int64, text, status string) {
	state := b.adminStates[chatID]

	if text == BtnCancel {
		b.openRequest(chatID, state.RequestID)
		return
	}
	if text == "" {
		b.reply(chatID, "Причина не может быть пустой. Введите текст:")
		return
	}

	if err := b.applicationRepo.UpdateStatus(state.RequestID, status, pointer.ToString(text)); err != nil {
		b.log.Error("handleReason: updating status", err,
			map[string]interface{}{"status": status}, logger.Person{ChatID: chatID})
		b.handleMainMenu(chatID)
		return
	}

	if status == db.StatusRejected {
		b.reply(chatID, "Заявка отклонена")
	} else {
		b.reply(chatID, "Заявка отправлена на доработку")
	}

	b.notify(state.RequestID, status, text)
	b.handleCheckRequests(chatID)
}

// notify tells the applicant about a decision.
func (b *BotService) notify(applicationID int64, status, reason string) {
	app, err := b.applicationRepo.GetByID(applicationID)
	if err != nil {
		b.log.Error("notify: loading application", err, map[string]interface{}{"application_id": applicationID})
		return
	}

	if err := b.notifier.Notify(app.TelegramUserID, status, reason); err != nil {
		b.log.Error("notify: sending decision", err, logger.Person{ChatID: app.TelegramUserID})
	}
}

func (b *BotService) handleAddingAdmin(chatID int64, text string) {
	if text == BtnCancel {
		b.handleMainMenu(chatID)
		return
	}

	newChatID, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		msg := tgbotapi.NewMessage(chatID, "Некорректный chat_id. Введите еще раз")
		msg.ReplyMarkup = CancelMenu()
		b.send(chatID, msg)
		return
	}

	if err := b.adminRepo.Create(newChatID); err != nil {
		b.log.Error("handleAddingAdmin", err, logger.Person{ChatID: chatID})
		b.reply(chatID, "Ошибка при добавлении админа")
	} else {
		b.log.Info("admin added", map[string]interface{}{"new_chat_id": newChatID}, logger.Person{ChatID: chatID})
		b.reply(chatID, "Админ успешно добавлен")
	}

	b.handleMainMenu(chatID)
}
