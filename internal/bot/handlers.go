package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	billingdomain "github.com/kvartplata/kvartplata/internal/billing/domain"
	readingdomain "github.com/kvartplata/kvartplata/internal/meterreading/domain"
	residentdomain "github.com/kvartplata/kvartplata/internal/resident/domain"
	"github.com/kvartplata/kvartplata/internal/utility"
	"go.uber.org/zap"
)

const (
	callbackPayPrefix   = "pay_"
	callbackMeterPrefix = "meter_"
	callbackConfirm     = "confirm"
	callbackAttach      = "attach_receipt"
)

const (
	msgNoApartment    = "Вы не привязаны к квартире. Обратитесь к администратору."
	msgAllPaid        = "✅ Всё оплачено!"
	msgBadAmount      = "Некорректная сумма. Попробуйте снова:"
	msgBadReading     = "Некорректное показание. Введите число:"
	msgSomethingWrong = "Что-то пошло не так. Попробуйте ещё раз."
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	resident, err := b.residentSvc.EnsureResident(ctx, residentdomain.EnsureResidentRequest{
		TelegramID: msg.From.ID,
		FullName:   strings.TrimSpace(msg.From.FirstName + " " + msg.From.LastName),
	})
	if err != nil {
		b.log.Error("ensure resident failed", zap.Int64("telegram_id", msg.From.ID), zap.Error(err))
		b.send(msg.Chat.ID, msgSomethingWrong)
		return
	}

	if msg.IsCommand() {
		b.states.clear(msg.From.ID)
		switch msg.Command() {
		case "start":
			b.cmdStart(ctx, msg)
		case "my_apartment":
			b.cmdMyApartment(ctx, msg)
		case "pay":
			b.cmdPay(ctx, msg)
		case "reading":
			b.cmdReading(ctx, msg)
		case "web_login":
			b.cmdWebLogin(ctx, msg)
		default:
			b.send(msg.Chat.ID, "Неизвестная команда. Доступно: /pay, /my_apartment, /reading, /web_login")
		}
		return
	}

	conv := b.states.get(msg.From.ID)
	switch conv.State {
	case StateEnteringAmount:
		b.onAmountEntered(ctx, msg, conv)
	case StateConfirming:
		b.onReceiptAttached(ctx, msg, conv)
	case StateEnteringReading:
		b.onReadingEntered(ctx, msg, conv, resident.ID)
	default:
		b.send(msg.Chat.ID, "Доступные команды: /pay, /my_apartment, /reading, /web_login")
	}
}

func (b *Bot) cmdStart(ctx context.Context, msg *tgbotapi.Message) {
	apartment, err := b.residentSvc.FindApartment(ctx, msg.From.ID)
	if errors.Is(err, residentdomain.ErrNotFound) {
		b.send(msg.Chat.ID, "🏠 Добро пожаловать!\n"+msgNoApartment)
		return
	}
	if err != nil {
		b.log.Error("find apartment failed", zap.Error(err))
		b.send(msg.Chat.ID, msgSomethingWrong)
		return
	}

	b.send(msg.Chat.ID, fmt.Sprintf(
		"🏠 Добро пожаловать в %s!\nКоманды:\n/pay — оплатить начисления\n/my_apartment — мои долги\n/reading — передать показания\n/web_login — вход в веб-панель",
		apartment.Name))
}

func (b *Bot) cmdMyApartment(ctx context.Context, msg *tgbotapi.Message) {
	apartment, ok := b.apartmentOf(ctx, msg)
	if !ok {
		return
	}

	unpaid, err := b.billingSvc.ListUnpaidCharges(ctx, apartment.ID)
	if err != nil {
		b.log.Error("list unpaid charges failed", zap.Error(err))
		b.send(msg.Chat.ID, msgSomethingWrong)
		return
	}
	if len(unpaid) == 0 {
		b.send(msg.Chat.ID, fmt.Sprintf("🏠 %s\n%s", apartment.Name, msgAllPaid))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🏠 %s\n⚠️ Неоплаченные начисления:\n", apartment.Name)
	var total float64
	for _, u := range unpaid {
		fmt.Fprintf(&sb, "• %s %s: %.2f руб\n", u.Charge.UtilityType.Label(), formatPeriod(u.Charge), u.Debt())
		total += u.Debt()
	}
	fmt.Fprintf(&sb, "Итого: %.2f руб", total)
	b.send(msg.Chat.ID, sb.String())
}

func (b *Bot) cmdPay(ctx context.Context, msg *tgbotapi.Message) {
	apartment, ok := b.apartmentOf(ctx, msg)
	if !ok {
		return
	}

	unpaid, err := b.billingSvc.ListUnpaidCharges(ctx, apartment.ID)
	if err != nil {
		b.log.Error("list unpaid charges failed", zap.Error(err))
		b.send(msg.Chat.ID, msgSomethingWrong)
		return
	}
	if len(unpaid) == 0 {
		b.send(msg.Chat.ID, msgAllPaid)
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(unpaid))
	for _, u := range unpaid {
		label := fmt.Sprintf("%s %s — %.2f руб", u.Charge.UtilityType.Label(), formatPeriod(u.Charge), u.Debt())
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callbackPayPrefix+u.Charge.ID.String()),
		))
	}

	conv := b.states.get(msg.From.ID)
	conv.State = StateChoosingCharge
	b.sendWithKeyboard(msg.Chat.ID, "Выберите начисление:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) cmdReading(ctx context.Context, msg *tgbotapi.Message) {
	if _, ok := b.apartmentOf(ctx, msg); !ok {
		return
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(utility.All()))
	for _, t := range utility.All() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t.Label(), callbackMeterPrefix+string(t)),
		))
	}

	conv := b.states.get(msg.From.ID)
	conv.State = StateChoosingUtility
	b.sendWithKeyboard(msg.Chat.ID, "Выберите счётчик:", tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) cmdWebLogin(ctx context.Context, msg *tgbotapi.Message) {
	apartment, ok := b.apartmentOf(ctx, msg)
	if !ok {
		return
	}

	isAdmin, err := b.residentSvc.IsAdmin(ctx, msg.From.ID, apartment.ID)
	if err != nil {
		b.log.Error("admin check failed", zap.Error(err))
		b.send(msg.Chat.ID, msgSomethingWrong)
		return
	}
	if !isAdmin {
		b.send(msg.Chat.ID, "Только админ может получить доступ к веб-панели.")
		return
	}

	token, err := b.sessionSvc.Issue(ctx, msg.From.ID, apartment.ID)
	if err != nil {
		b.log.Error("issue session failed", zap.Error(err))
		b.send(msg.Chat.ID, msgSomethingWrong)
		return
	}

	b.send(msg.Chat.ID, fmt.Sprintf("Ссылка для входа:\n%s/login?token=%s\n(Действует 24 часа)", b.cfg.WebBaseURL, token))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	b.ackCallback(cb.ID)
	if cb.Message == nil || cb.From == nil {
		return
	}

	chatID := cb.Message.Chat.ID
	conv := b.states.get(cb.From.ID)
	data := cb.Data

	switch {
	case strings.HasPrefix(data, callbackPayPrefix):
		b.onChargeChosen(ctx, cb, conv, strings.TrimPrefix(data, callbackPayPrefix))

	case strings.HasPrefix(data, callbackMeterPrefix):
		if conv.State != StateChoosingUtility {
			return
		}
		t, err := utility.Parse(strings.TrimPrefix(data, callbackMeterPrefix))
		if err != nil {
			b.send(chatID, msgSomethingWrong)
			return
		}
		conv.UtilityType = t
		conv.State = StateEnteringReading
		b.edit(chatID, cb.Message.MessageID, fmt.Sprintf("%s\nВведите текущее показание счётчика:", t.Label()))

	case data == callbackAttach:
		if conv.State != StateConfirming {
			return
		}
		b.send(chatID, "Отправьте фото или PDF квитанции.")

	case data == callbackConfirm:
		if conv.State != StateConfirming {
			return
		}
		b.onPaymentConfirmed(ctx, cb, conv)
	}
}

func (b *Bot) onChargeChosen(ctx context.Context, cb *tgbotapi.CallbackQuery, conv *conversation, rawID string) {
	chatID := cb.Message.Chat.ID

	if conv.State != StateChoosingCharge {
		return
	}

	id, err := snowflake.ParseString(rawID)
	if err != nil {
		b.send(chatID, msgSomethingWrong)
		return
	}

	apartment, err := b.residentSvc.FindApartment(ctx, cb.From.ID)
	if err != nil {
		b.send(chatID, msgNoApartment)
		return
	}

	debt, err := b.billingSvc.Debt(ctx, id, apartment.ID)
	if err != nil {
		b.log.Error("charge debt lookup failed", zap.Error(err))
		b.send(chatID, msgSomethingWrong)
		return
	}

	conv.ChargeID = id
	conv.State = StateEnteringAmount
	b.edit(chatID, cb.Message.MessageID, fmt.Sprintf(
		"%s %s\nДолг: %.2f руб\nВведите сумму оплаты:",
		debt.Charge.UtilityType.Label(), formatPeriod(debt.Charge), debt.Debt))
}

func (b *Bot) onAmountEntered(ctx context.Context, msg *tgbotapi.Message, conv *conversation) {
	amount, err := parseAmount(msg.Text)
	if err != nil || amount <= 0 {
		b.send(msg.Chat.ID, msgBadAmount)
		return
	}

	apartment, err := b.residentSvc.FindApartment(ctx, msg.From.ID)
	if err != nil {
		b.send(msg.Chat.ID, msgNoApartment)
		return
	}

	debt, err := b.billingSvc.Debt(ctx, conv.ChargeID, apartment.ID)
	if err != nil {
		b.log.Error("charge debt lookup failed", zap.Error(err))
		b.send(msg.Chat.ID, msgSomethingWrong)
		return
	}
	if billingdomain.ExceedsDebt(amount, debt.Debt) {
		b.send(msg.Chat.ID, fmt.Sprintf("Сумма превышает долг (%.2f руб). Введите сумму ещё раз:", debt.Debt))
		return
	}

	conv.Amount = amount
	conv.State = StateConfirming

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", callbackConfirm),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📎 Прикрепить квитанцию", callbackAttach),
		),
	)
	b.sendWithKeyboard(msg.Chat.ID, fmt.Sprintf("Оплата %.2f руб. Подтвердить?", amount), keyboard)
}

func (b *Bot) onReceiptAttached(ctx context.Context, msg *tgbotapi.Message, conv *conversation) {
	fileID, ext := receiptFile(msg)
	if fileID == "" {
		b.send(msg.Chat.ID, "Нажмите «Подтвердить» или пришлите квитанцию файлом.")
		return
	}

	path, err := b.downloadReceipt(ctx, fileID, ext)
	if err != nil {
		b.log.Error("receipt download failed", zap.Error(err))
		b.send(msg.Chat.ID, "Не удалось сохранить квитанцию. Попробуйте ещё раз.")
		return
	}

	conv.ReceiptPath = path
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", callbackConfirm),
		),
	)
	b.sendWithKeyboard(msg.Chat.ID, "Квитанция получена! Подтвердите оплату:", keyboard)
}

func (b *Bot) onPaymentConfirmed(ctx context.Context, cb *tgbotapi.CallbackQuery, conv *conversation) {
	chatID := cb.Message.Chat.ID

	resident, err := b.residentSvc.EnsureResident(ctx, residentdomain.EnsureResidentRequest{
		TelegramID: cb.From.ID,
		FullName:   strings.TrimSpace(cb.From.FirstName + " " + cb.From.LastName),
	})
	if err != nil {
		b.log.Error("ensure resident failed", zap.Error(err))
		b.send(chatID, msgSomethingWrong)
		return
	}

	apartment, err := b.residentSvc.FindApartment(ctx, cb.From.ID)
	if err != nil {
		b.send(chatID, msgNoApartment)
		return
	}

	_, err = b.billingSvc.RecordPayment(ctx, billingdomain.RecordPaymentRequest{
		ChargeID:    conv.ChargeID,
		ApartmentID: apartment.ID,
		Amount:      conv.Amount,
		ConfirmedBy: resident.ID,
		ReceiptPath: conv.ReceiptPath,
	})
	switch {
	case errors.Is(err, billingdomain.ErrAmountExceedsDebt):
		// Someone else paid first; the remaining debt shrank under us.
		b.states.clear(cb.From.ID)
		b.edit(chatID, cb.Message.MessageID, "Долг уже уменьшился, сумма больше не подходит. Начните заново: /pay")
		return
	case err != nil:
		b.log.Error("record payment failed", zap.Error(err))
		b.send(chatID, msgSomethingWrong)
		return
	}

	b.states.clear(cb.From.ID)
	b.edit(chatID, cb.Message.MessageID, "✅ Оплата сохранена!")
}

func (b *Bot) onReadingEntered(ctx context.Context, msg *tgbotapi.Message, conv *conversation, residentID snowflake.ID) {
	value, err := parseAmount(msg.Text)
	if err != nil || value < 0 {
		b.send(msg.Chat.ID, msgBadReading)
		return
	}

	apartment, err := b.residentSvc.FindApartment(ctx, msg.From.ID)
	if err != nil {
		b.send(msg.Chat.ID, msgNoApartment)
		return
	}

	reading, err := b.readingSvc.Submit(ctx, readingdomain.SubmitReadingRequest{
		ApartmentID: apartment.ID,
		UtilityType: conv.UtilityType,
		Reading:     value,
		SubmittedBy: residentID,
	})
	switch {
	case errors.Is(err, readingdomain.ErrReadingDecreased):
		b.send(msg.Chat.ID, "Показание меньше предыдущего. Проверьте и введите снова:")
		return
	case errors.Is(err, readingdomain.ErrDuplicateReading):
		b.states.clear(msg.From.ID)
		b.send(msg.Chat.ID, "Показание за сегодня уже передано.")
		return
	case err != nil:
		b.log.Error("submit reading failed", zap.Error(err))
		b.send(msg.Chat.ID, msgSomethingWrong)
		return
	}

	b.states.clear(msg.From.ID)
	b.send(msg.Chat.ID, fmt.Sprintf("✅ Показание принято: %s — %.2f", reading.UtilityType.Label(), reading.Reading))
}

func (b *Bot) apartmentOf(ctx context.Context, msg *tgbotapi.Message) (residentdomain.Apartment, bool) {
	apartment, err := b.residentSvc.FindApartment(ctx, msg.From.ID)
	if errors.Is(err, residentdomain.ErrNotFound) {
		b.send(msg.Chat.ID, msgNoApartment)
		return residentdomain.Apartment{}, false
	}
	if err != nil {
		b.log.Error("find apartment failed", zap.Error(err))
		b.send(msg.Chat.ID, msgSomethingWrong)
		return residentdomain.Apartment{}, false
	}
	return apartment, true
}

func formatPeriod(c billingdomain.Charge) string {
	return fmt.Sprintf("%s – %s", c.PeriodStart.Format("02.01.2006"), c.PeriodEnd.Format("02.01.2006"))
}

// parseAmount accepts both "123.45" and "123,45".
func parseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}

// receiptFile picks the file to store as a receipt: the largest photo
// size, or an attached document.
func receiptFile(msg *tgbotapi.Message) (fileID, ext string) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, ".jpg"
	}
	if msg.Document != nil {
		ext := ".pdf"
		if i := strings.LastIndex(msg.Document.FileName, "."); i >= 0 {
			ext = msg.Document.FileName[i:]
		}
		return msg.Document.FileID, ext
	}
	return "", ""
}
