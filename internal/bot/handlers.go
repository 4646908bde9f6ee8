package bot

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/AlekSi/pointer"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"github.com/gratefultolord/aid_docs_bot/internal/db"
	"github.com/gratefultolord/aid_docs_bot/internal/files"
	"github.com/gratefultolord/aid_docs_bot/internal/logger"
	"github.com/gratefultolord/aid_docs_bot/internal/ocr"
	"github.com/gratefultolord/aid_docs_bot/internal/survey"
)

const ocrTimeout = 30 * time.Second

// Messenger is the part of *tgbotapi.BotAPI the bot talks through.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

// ApplicationStore is the part of db.ApplicationRepository the bot uses.
type ApplicationStore interface {
	Create(app *db.Application, docs []db.ApplicationDocument) (int64, error)
	GetByID(id int64) (*db.Application, error)
	GetLatestByTelegramUserID(telegramUserID int64) (*db.Application, error)
	ListDocuments(applicationID int64) ([]db.ApplicationDocument, error)
	ReplaceDocuments(id, telegramUserID int64, docs []db.ApplicationDocument) error
}

type MessageStore interface {
	CreateMessage(telegramUserID int64, firstName, lastName, message string) error
}

// FileStore keeps the uploaded files; see files.FileService.
type FileStore interface {
	SaveFile(fileID string) (string, error)
	ReadFile(path string) ([]byte, error)
	DeleteFile(path string) error
	DeleteFiles(paths []string) error
}

// DocumentChecker validates an uploaded image against its document kind.
type DocumentChecker interface {
	Check(ctx context.Context, kind survey.DocumentKind, image []byte) (ocr.Result, error)
}

type BotService struct {
	botAPI          Messenger
	applicationRepo ApplicationStore
	adminRepo       MessageStore
	fileService     FileStore
	validator       DocumentChecker
	log             logger.Logger
	minDwellSeconds int
	userStates      map[int64]*UserState
	now             func() time.Time
}

// New builds the applicant bot. validator may be nil to skip OCR checks.
func New(
	botAPI Messenger,
	applicationRepo ApplicationStore,
	adminRepo MessageStore,
	fileService FileStore,
	validator DocumentChecker,
	log logger.Logger,
	minDwellSeconds int,
) *BotService {
	return &BotService{
		botAPI:          botAPI,
		applicationRepo: applicationRepo,
		adminRepo:       adminRepo,
		fileService:     fileService,
		validator:       validator,
		log:             log,
		minDwellSeconds: minDwellSeconds,
		userStates:      make(map[int64]*UserState),
		now:             time.Now,
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

		if _, exists := b.userStates[chatID]; !exists {
			b.userStates[chatID] = b.initialState(chatID)
		}

		state := b.userStates[chatID]

		switch state.Step {
		case StateStart:
			b.handleStartMenu(chatID, text)
		case StateFirstName:
			b.handleFirstName(chatID, text)
		case StateLastName:
			b.handleLastName(chatID, text)
		case StatePhoneNumber:
			b.handlePhoneNumber(chatID, text)
		case StateSurvey:
			b.handleSurvey(chatID, text)
		case StateDocuments:
			b.handleDocument(chatID, update.Message)
		case StateConfirm:
			b.handleConfirm(chatID, text, update.Message.From)
		case StateRevision:
			b.handleRevision(chatID, text)
		case StateWriteAdmin:
			b.handleWriteAdminMessage(chatID, update.Message)
		default:
			b.log.Warn(fmt.Sprintf("Unknown state %s", state.Step), logger.Person{ChatID: chatID})
			delete(b.userStates, chatID)
		}
	}
}

// initialState resumes an applicant whose application was sent back for
// revision; everybody else starts from the menu.
func (b *BotService) initialState(chatID int64) *UserState {
	app, err := b.applicationRepo.GetLatestByTelegramUserID(chatID)
	if err != nil {
		if errors.Cause(err) != db.ErrNotFound {
			b.log.Error("initialState: loading application", err, logger.Person{ChatID: chatID})
		}
		return &UserState{Step: StateStart}
	}

	if app.Status == db.StatusNeedsRevision {
		return &UserState{Step: StateRevision, ApplicationID: app.ID}
	}

	return &UserState{Step: StateStart}
}

func (b *BotService) send(chatID int64, c tgbotapi.Chattable) {
	if _, err := b.botAPI.Send(c); err != nil {
		b.log.Error("sending message", err, logger.Person{ChatID: chatID})
	}
}

func (b *BotService) reply(chatID int64, text string) {
	b.send(chatID, tgbotapi.NewMessage(chatID, text))
}

func (b *BotService) handleStartState(chatID int64) {
	welcomeText := "Здравствуйте! Этот бот поможет подать документы на получение стипендии.\n\n" +
		"Вы ответите на несколько вопросов о семье, после чего бот составит список нужных документов " +
		"и попросит загрузить их фото или сканы. Заявку проверит сотрудник фонда."

	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnStartSurvey)),
	}
	if b.hasApplication(chatID) {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnWriteAdmin)))
	}

	msg := tgbotapi.NewMessage(chatID, welcomeText)
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(rows...)
	b.send(chatID, msg)
}

func (b *BotService) handleStartMenu(chatID int64, text string) {
	switch text {
	case BtnStartSurvey:
		b.userStates[chatID].Step = StateFirstName

		msg := tgbotapi.NewMessage(chatID, "Укажите Ваше имя")
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		b.send(chatID, msg)

	case BtnWriteAdmin:
		if !b.hasApplication(chatID) {
			b.reply(chatID, "Вы сможете написать админу после отправки заявки.")
			return
		}
		b.handleWriteAdmin(chatID)

	case BtnReupload:
		// the officer may have asked for a revision after this state was created
		state := b.initialState(chatID)
		if state.Step != StateRevision {
			b.handleStartState(chatID)
			return
		}
		b.userStates[chatID] = state
		b.handleRevision(chatID, text)

	default:
		b.handleStartState(chatID)
	}
}

func (b *BotService) handleFirstName(chatID int64, firstName string) {
	if !IsValidName(firstName) {
		b.reply(chatID, "Пожалуйста, укажите Ваше имя")
		return
	}

	b.userStates[chatID].FirstName = strings.TrimSpace(firstName)
	b.userStates[chatID].Step = StateLastName

	b.reply(chatID, "Укажите Вашу фамилию")
}

func (b *BotService) handleLastName(chatID int64, lastName string) {
	if !IsValidName(lastName) {
		b.reply(chatID, "Пожалуйста, укажите Вашу фамилию")
		return
	}

	b.userStates[chatID].LastName = strings.TrimSpace(lastName)
	b.userStates[chatID].Step = StatePhoneNumber

	b.reply(chatID, "Укажите Ваш номер телефона")
}

func (b *BotService) handlePhoneNumber(chatID int64, text string) {
	normalized := NormalizePhoneNumber(text)

	if !IsValidPhoneNumber(normalized) {
		b.reply(chatID, "Неверный формат номера телефона. Пример: +79991234567")
		return
	}

	state := b.userStates[chatID]
	state.PhoneNumber = normalized
	state.Step = StateSurvey
	state.Survey = survey.New()

	b.sendQuestion(chatID)
}

func (b *BotService) sendQuestion(chatID int64) {
	q := b.userStates[chatID].Survey
	step := q.CurrentStep()

	question, ok := questions[step.Name]
	if !ok {
		b.log.Error(fmt.Sprintf("sendQuestion: no question for step %s", step.Name), logger.Person{ChatID: chatID})
		return
	}

	msg := tgbotapi.NewMessage(chatID, question.Text)
	msg.ReplyMarkup = questionKeyboard(question, q.CanGoBack())
	b.send(chatID, msg)
}

func (b *BotService) handleSurvey(chatID int64, text string) {
	q := b.userStates[chatID].Survey

	switch text {
	case BtnBack:
		q.Retreat()
		b.sendQuestion(chatID)
		return
	case BtnRestart:
		q.Reset()
		b.sendQuestion(chatID)
		return
	}

	field, value, ok := parseAnswer(q.CurrentStep().Name, text)
	if !ok || !q.Advance(field, value) {
		b.reply(chatID, "Пожалуйста, выберите один из вариантов на клавиатуре")
		b.sendQuestion(chatID)
		return
	}

	if q.Done() {
		b.showRequiredDocuments(chatID)
		return
	}

	b.sendQuestion(chatID)
}

func (b *BotService) showRequiredDocuments(chatID int64) {
	state := b.userStates[chatID]
	state.Documents = survey.Documents(state.Survey.Answers())
	state.Uploads = nil
	state.Step = StateDocuments

	b.reply(chatID, "Для заявки понадобятся следующие документы:\n\n"+renderDocuments(state.Documents))
	b.requestNextDocument(chatID)
}

func (b *BotService) requestNextDocument(chatID int64) {
	state := b.userStates[chatID]

	idx := len(state.Uploads)
	if idx >= len(state.Documents) {
		b.showConfirm(chatID)
		return
	}

	text := fmt.Sprintf("Загрузите фото или скан документа %d из %d:\n%s",
		idx+1, len(state.Documents), state.Documents[idx].Description)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnRestart)),
	)
	b.send(chatID, msg)
}

func (b *BotService) handleDocument(chatID int64, message *tgbotapi.Message) {
	if message.Text == BtnRestart {
		b.restart(chatID)
		return
	}

	var fileID string

	if message.Document != nil {
		fileID = message.Document.FileID
	} else if len(message.Photo) > 0 {
		fileID = message.Photo[len(message.Photo)-1].FileID
	} else {
		b.reply(chatID, "Пожалуйста, загрузите документ или фото.")
		return
	}

	filePath, err := b.fileService.SaveFile(fileID)
	if err != nil {
		b.log.Error("handleDocument: saving file", err, logger.Person{ChatID: chatID})
		b.reply(chatID, "Ошибка при сохранении файла. Попробуйте снова.")
		return
	}

	state := b.userStates[chatID]
	doc := state.Documents[len(state.Uploads)]

	verified, ok := b.checkDocument(chatID, doc, filePath)
	if !ok {
		if err := b.fileService.DeleteFile(filePath); err != nil {
			b.log.Warn("handleDocument: removing rejected file", err)
		}
		b.reply(chatID, "Не удалось распознать документ «"+doc.Description+"». "+
			"Загрузите, пожалуйста, более чёткое фото, на котором виден заголовок документа.")
		return
	}

	state.Uploads = append(state.Uploads, Upload{Path: filePath, OCRVerified: verified})
	b.requestNextDocument(chatID)
}

// checkDocument runs the OCR keyword check when it is enabled and applies
// to the file. verified is nil when no check was made; ok is false only
// when the check ran and found none of the expected keywords.
func (b *BotService) checkDocument(chatID int64, doc survey.Document, path string) (verified *bool, ok bool) {
	if b.validator == nil || !files.IsImage(path) {
		return nil, true
	}

	image, err := b.fileService.ReadFile(path)
	if err != nil {
		b.log.Error("checkDocument: reading file", err, logger.Person{ChatID: chatID})
		return nil, true
	}

	ctx, cancel := context.WithTimeout(context.Background(), ocrTimeout)
	defer cancel()

	res, err := b.validator.Check(ctx, doc.Kind, image)
	if err != nil {
		b.log.Warn("checkDocument: OCR failed, accepting unchecked", err, logger.Person{ChatID: chatID})
		return nil, true
	}
	if !res.Checked {
		return nil, true
	}
	if !res.Passed() {
		return nil, false
	}

	return pointer.ToBool(true), true
}

func (b *BotService) showConfirm(chatID int64) {
	state := b.userStates[chatID]
	state.Step = StateConfirm
	state.Gate = survey.NewFinishGate(b.minDwellSeconds)
	state.Gate.Arrive(b.now())

	text := "Все документы загружены:\n\n" + renderDocuments(state.Documents) +
		"\n\nПроверьте, пожалуйста, что фото читаемые, и отправьте заявку."
	if state.Gate.MinimumDwell > 0 {
		text += fmt.Sprintf("\nОтправить заявку можно будет через %d сек.", int(state.Gate.MinimumDwell.Seconds()))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnSubmit)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnRestart)),
	)
	b.send(chatID, msg)
}

func (b *BotService) handleConfirm(chatID int64, text string, from *tgbotapi.User) {
	state := b.userStates[chatID]

	switch text {
	case BtnRestart:
		b.restart(chatID)
		return
	case BtnSubmit:
	default:
		b.reply(chatID, "Пожалуйста, выберите один из вариантов на клавиатуре")
		return
	}

	now := b.now()
	if !state.Gate.CanFinish(now) {
		left := int(math.Ceil(state.Gate.Remaining(now).Seconds()))
		b.reply(chatID, fmt.Sprintf("Пожалуйста, проверьте документы ещё раз. Отправка станет доступна через %d сек.", left))
		return
	}

	records := documentRecords(state.Documents, state.Uploads)

	var err error
	if state.ApplicationID != 0 {
		err = b.resubmit(chatID, state.ApplicationID, records)
	} else {
		telegramUserID := chatID
		if from != nil {
			telegramUserID = from.ID
		}
		_, err = b.applicationRepo.Create(&db.Application{
			TelegramUserID: telegramUserID,
			FirstName:      state.FirstName,
			LastName:       state.LastName,
			PhoneNumber:    state.PhoneNumber,
			Answers:        db.Answers{Answers: state.Survey.Answers()},
		}, records)
	}
	if err != nil {
		b.log.Error("handleConfirm: saving application", err, logger.Person{ChatID: chatID})
		b.reply(chatID, "Произошла ошибка при сохранении заявки. Попробуйте позже")
		return
	}

	delete(b.userStates, chatID)

	msg := tgbotapi.NewMessage(chatID, "Спасибо! Ваша заявка принята, её проверка займёт до 3 рабочих дней. "+
		"Результат придёт в этот чат.")
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnWriteAdmin)),
	)
	b.send(chatID, msg)
}

// resubmit replaces the documents of an application under revision and
// removes the files it replaced.
func (b *BotService) resubmit(chatID, applicationID int64, records []db.ApplicationDocument) error {
	old, err := b.applicationRepo.ListDocuments(applicationID)
	if err != nil {
		return err
	}

	if err := b.applicationRepo.ReplaceDocuments(applicationID, chatID, records); err != nil {
		return err
	}

	paths := make([]string, 0, len(old))
	for _, d := range old {
		paths = append(paths, d.FilePath)
	}
	if err := b.fileService.DeleteFiles(paths); err != nil {
		b.log.Warn("resubmit: removing replaced files", err, logger.Person{ChatID: chatID})
	}

	return nil
}

// restart throws away the uploads. A new application goes back to the first
// question; a revision goes back to the first document.
func (b *BotService) restart(chatID int64) {
	state := b.userStates[chatID]

	if err := b.fileService.DeleteFiles(state.uploadedPaths()); err != nil {
		b.log.Warn("restart: removing uploads", err, logger.Person{ChatID: chatID})
	}
	state.Uploads = nil
	state.Gate = nil

	if state.ApplicationID != 0 {
		state.Step = StateDocuments
		b.requestNextDocument(chatID)
		return
	}

	state.Documents = nil
	state.Survey.Reset()
	state.Step = StateSurvey
	b.sendQuestion(chatID)
}

func (b *BotService) handleRevision(chatID int64, text string) {
	state := b.userStates[chatID]

	app, err := b.applicationRepo.GetByID(state.ApplicationID)
	if err != nil {
		b.log.Error("handleRevision: loading application", err, logger.Person{ChatID: chatID})
		b.reply(chatID, "Не удалось загрузить заявку. Попробуйте позже")
		delete(b.userStates, chatID)
		return
	}

	switch text {
	case BtnReupload:
		state.Documents = survey.Documents(app.Answers.Answers)
		state.Uploads = nil
		state.Step = StateDocuments

		b.reply(chatID, "Загрузите документы заново:\n\n"+renderDocuments(state.Documents))
		b.requestNextDocument(chatID)

	case BtnWriteAdmin:
		b.handleWriteAdmin(chatID)

	default:
		reason := "не указана"
		if app.RejectionReason != nil {
			reason = *app.RejectionReason
		}

		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"Ваша заявка требует доработки: %s\nНажмите кнопку, чтобы загрузить документы заново", reason))
		msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(BtnReupload),
				tgbotapi.NewKeyboardButton(BtnWriteAdmin),
			),
		)
		b.send(chatID, msg)
	}
}

func (b *BotService) handleWriteAdmin(chatID int64) {
	b.userStates[chatID].Step = StateWriteAdmin

	msg := tgbotapi.NewMessage(chatID, "Введите сообщение для администратора:")
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(BtnCancel),
		),
	)
	b.send(chatID, msg)
}

func (b *BotService) handleWriteAdminMessage(chatID int64, message *tgbotapi.Message) {
	if message.Text == BtnCancel {
		delete(b.userStates, chatID)
		b.handleStartState(chatID)
		return
	}

	if message.Text == "" {
		b.reply(chatID, "Сообщение не может быть пустым. Введите текст:")
		return
	}

	app, err := b.applicationRepo.GetLatestByTelegramUserID(chatID)
	if err != nil {
		b.log.Error("handleWriteAdminMessage: loading application", err, logger.Person{ChatID: chatID})
		b.reply(chatID, "Ошибка: у вас нет активной заявки. Сначала подайте заявку.")
		delete(b.userStates, chatID)
		return
	}

	err = b.adminRepo.CreateMessage(chatID, app.FirstName, app.LastName, message.Text)
	if err != nil {
		b.log.Error("handleWriteAdminMessage: saving message", err, logger.Person{ChatID: chatID})
		b.reply(chatID, "Ошибка при сохранении сообщения. Попробуйте позже.")
		return
	}

	// the next message re-reads the application status
	delete(b.userStates, chatID)

	msg := tgbotapi.NewMessage(chatID, "Сообщение отправлено администратору.")
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(BtnWriteAdmin)),
	)
	b.send(chatID, msg)
}

func (b *BotService) hasApplication(chatID int64) bool {
	_, err := b.applicationRepo.GetLatestByTelegramUserID(chatID)
	if err != nil {
		if errors.Cause(err) != db.ErrNotFound {
			b.log.Error("hasApplication", err, logger.Person{ChatID: chatID})
		}
		return false
	}

	return true
}
