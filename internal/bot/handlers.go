package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"expensebot/internal/core"
	"expensebot/internal/log"
	"expensebot/internal/report"
	"expensebot/internal/services"
	"expensebot/internal/split"
	"expensebot/internal/store"
)

// API is the slice of the Telegram client the handlers need.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler dispatches incoming updates to the ledger service.
type Handler struct {
	api    API
	ledger *services.Ledger
	logger *log.Logger
}

// NewHandler creates a handler bound to a Telegram client and ledger.
func NewHandler(api API, ledger *services.Ledger, logger *log.Logger) *Handler {
	return &Handler{
		api:    api,
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentBot),
	}
}

// HandleUpdate processes one Telegram update end to end.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	msg := update.Message
	chatID := msg.Chat.ID
	username := senderName(msg)

	cmd := ParseMessage(msg.Text)
	logger := log.ForUpdate(h.logger, uuid.NewString(), chatID, username, commandName(cmd.Kind))
	ctx = log.WithContext(ctx, logger)

	logger.Debug("dispatching message", log.FieldUpdateID, update.UpdateID)

	switch cmd.Kind {
	case KindStart:
		h.reply(ctx, chatID, welcomeText)
	case KindInstructions:
		h.reply(ctx, chatID, instructionsText)
	case KindLastEntry:
		h.handleLastEntry(ctx, chatID)
	case KindView:
		h.handleView(ctx, chatID)
	case KindRemoveLastEntry:
		h.handleRemoveLastEntry(ctx, chatID)
	case KindSetBudget:
		h.handleSetBudget(ctx, chatID, username, cmd)
	case KindRemaining:
		h.handleRemaining(ctx, chatID)
	case KindExport:
		h.handleExport(ctx, chatID, cmd)
	case KindCompare:
		h.handleCompare(ctx, chatID, cmd)
	case KindCategory:
		h.handleCategory(ctx, chatID, cmd)
	case KindSummary:
		h.handleSummary(ctx, chatID, cmd)
	case KindSplit:
		h.handleSplit(ctx, chatID, cmd)
	case KindEntry:
		h.handleAddEntry(ctx, chatID, username, cmd.Rest)
	default:
		h.reply(ctx, chatID, unknownCommandText)
	}
}

func (h *Handler) handleAddEntry(ctx context.Context, chatID int64, username, text string) {
	amount, description, err := ParseEntry(text)
	if err != nil {
		h.reply(ctx, chatID, `Please send the amount and description in the format: "100 Grocery".`)
		return
	}

	conf, err := h.ledger.AddEntry(ctx, core.Entry{
		ChatID:     chatID,
		Amount:     amount,
		Category:   description,
		Username:   username,
		OccurredAt: time.Now(),
	})
	if err != nil {
		h.fail(ctx, chatID, "There was an error adding your entry. Please try again.", err)
		return
	}
	h.reply(ctx, chatID, FormatEntryConfirmation(description, conf))
}

func (h *Handler) handleLastEntry(ctx context.Context, chatID int64) {
	entry, err := h.ledger.LastEntry(ctx, chatID)
	if errors.Is(err, store.ErrNoEntries) {
		h.reply(ctx, chatID, "No entries found.")
		return
	}
	if err != nil {
		h.fail(ctx, chatID, "There was an error fetching your last entry. Please try again.", err)
		return
	}
	h.reply(ctx, chatID, FormatLastEntry(entry))
}

func (h *Handler) handleView(ctx context.Context, chatID int64) {
	entries, err := h.ledger.Entries(ctx, chatID)
	if err != nil {
		h.fail(ctx, chatID, "There was an error fetching your entries. Please try again.", err)
		return
	}
	if len(entries) == 0 {
		h.reply(ctx, chatID, "No entries found.")
		return
	}
	for _, part := range SplitMessage(FormatViewEntries(entries)) {
		h.reply(ctx, chatID, part)
	}
}

func (h *Handler) handleRemoveLastEntry(ctx context.Context, chatID int64) {
	entry, err := h.ledger.RemoveLastEntry(ctx, chatID)
	if errors.Is(err, store.ErrNoEntries) {
		h.reply(ctx, chatID, "No entries found.")
		return
	}
	if err != nil {
		h.fail(ctx, chatID, "There was an error removing the last entry. Please try again.", err)
		return
	}
	h.reply(ctx, chatID, FormatRemovedEntry(entry))
}

func (h *Handler) handleSetBudget(ctx context.Context, chatID int64, username string, cmd Command) {
	if len(cmd.Args) != 1 {
		h.reply(ctx, chatID, "Please provide a valid budget amount, e.g., /setbudget 7000")
		return
	}
	amount, err := core.ParseAmount(cmd.Args[0])
	if err != nil || !amount.IsPositive() {
		h.reply(ctx, chatID, "The budget must be a positive number.")
		return
	}
	if err := h.ledger.SetBudget(ctx, chatID, amount, username); err != nil {
		h.fail(ctx, chatID, "Error updating budget. Please try again.", err)
		return
	}
	h.reply(ctx, chatID, fmt.Sprintf("Budget has been updated to %s", amount))
}

func (h *Handler) handleRemaining(ctx context.Context, chatID int64) {
	now := time.Now()
	stats, err := h.ledger.MonthlyStats(ctx, chatID, now.Month(), now.Year())
	if err != nil {
		h.fail(ctx, chatID, "Error retrieving budget information. Please try again.", err)
		return
	}
	h.replyMarkdown(ctx, chatID, FormatRemainingBudget(stats))
}

func (h *Handler) handleExport(ctx context.Context, chatID int64, cmd Command) {
	token := ""
	if len(cmd.Args) > 0 {
		token = cmd.Args[0]
	}
	month, year, err := core.ParseMonth(token, time.Now())
	if err != nil {
		h.reply(ctx, chatID, "Invalid month format. Use: /export Jun or /export June or /export 6\n\n"+
			"Examples:\n"+
			"• /export (current month)\n"+
			"• /export Nov\n"+
			"• /export November\n"+
			"• /export 11")
		return
	}

	entries, err := h.ledger.MonthEntries(ctx, chatID, month, year)
	if err != nil {
		h.fail(ctx, chatID, "Error generating export. Please try again.", err)
		return
	}
	if len(entries) == 0 {
		h.reply(ctx, chatID, fmt.Sprintf("No transactions found for %s %d", core.MonthName(month), year))
		return
	}

	stats, err := h.ledger.MonthlyStats(ctx, chatID, month, year)
	if err != nil {
		h.fail(ctx, chatID, "Error generating export. Please try again.", err)
		return
	}

	csvData, err := report.CSV(entries)
	if err != nil {
		h.fail(ctx, chatID, "Error generating export. Please try again.", err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("expenses_%s_%d.csv", core.MonthName(month), year),
		Bytes: csvData,
	})
	if _, err := h.api.Send(doc); err != nil {
		h.fail(ctx, chatID, "Error generating export. Please try again.", err)
		return
	}
	h.replyMarkdown(ctx, chatID, FormatMonthOverview(stats))
}

func (h *Handler) handleCompare(ctx context.Context, chatID int64, cmd Command) {
	if len(cmd.Args) != 2 {
		h.reply(ctx, chatID, "Usage: /compare <month1> <month2>\n\nExample: /compare Oct Nov")
		return
	}

	now := time.Now()
	month1, year1, err1 := core.ParseMonth(cmd.Args[0], now)
	month2, year2, err2 := core.ParseMonth(cmd.Args[1], now)
	if err1 != nil || err2 != nil {
		h.reply(ctx, chatID, "Invalid month format. Use: /compare Oct Nov\n\n"+
			"Examples:\n"+
			"• /compare Oct Nov\n"+
			"• /compare October November\n"+
			"• /compare 10 11")
		return
	}

	stats1, err := h.ledger.MonthlyStats(ctx, chatID, month1, year1)
	if err != nil {
		h.fail(ctx, chatID, "Error generating comparison. Please try again.", err)
		return
	}
	stats2, err := h.ledger.MonthlyStats(ctx, chatID, month2, year2)
	if err != nil {
		h.fail(ctx, chatID, "Error generating comparison. Please try again.", err)
		return
	}
	h.replyMarkdown(ctx, chatID, FormatMonthComparison(stats1, stats2))
}

func (h *Handler) handleCategory(ctx context.Context, chatID int64, cmd Command) {
	if cmd.Rest == "" {
		h.reply(ctx, chatID, "Usage: /category <category>\n\nExample: /category Food")
		return
	}

	entries, total, err := h.ledger.CategoryEntries(ctx, chatID, cmd.Rest)
	if err != nil {
		h.fail(ctx, chatID, "Error fetching category entries. Please try again.", err)
		return
	}
	if len(entries) == 0 {
		h.reply(ctx, chatID, fmt.Sprintf("No entries found for category %q.", cmd.Rest))
		return
	}
	for _, part := range SplitMessage(FormatCategoryEntries(entries, cmd.Rest, total)) {
		h.replyMarkdown(ctx, chatID, part)
	}
}

func (h *Handler) handleSummary(ctx context.Context, chatID int64, cmd Command) {
	if len(cmd.Args) == 0 {
		h.reply(ctx, chatID, "Usage: /summary [daily|weekly|monthly|custom YYYY-MM-DD YYYY-MM-DD]")
		return
	}

	period := cmd.Args[0]
	now := time.Now()
	var r core.DateRange
	switch period {
	case "daily":
		r = core.DailyRange(now)
	case "weekly":
		r = core.WeeklyRange(now)
	case "monthly":
		r = core.MonthlyRange(now)
	case "custom":
		if len(cmd.Args) < 3 {
			h.reply(ctx, chatID, "Usage for custom period: /summary custom YYYY-MM-DD YYYY-MM-DD")
			return
		}
		var err error
		r, err = core.CustomRange(cmd.Args[1], cmd.Args[2])
		if err != nil {
			h.reply(ctx, chatID, "Invalid date format. Please use YYYY-MM-DD.")
			return
		}
	default:
		h.reply(ctx, chatID, "Invalid period specified. Use daily, weekly, monthly, or custom.")
		return
	}

	entries, err := h.ledger.Summary(ctx, chatID, r)
	if err != nil {
		h.fail(ctx, chatID, "Error generating the summary report. Please try again.", err)
		return
	}
	if len(entries) == 0 {
		h.reply(ctx, chatID, "No expense entries found for the selected period.")
		return
	}

	total, _ := report.Totals(entries)
	breakdown := report.CategoryBreakdown(entries)
	h.replyMarkdown(ctx, chatID, FormatSummary(period, r, total, breakdown))
}

func (h *Handler) handleSplit(ctx context.Context, chatID int64, cmd Command) {
	if cmd.Rest == "" {
		h.reply(ctx, chatID, "Usage: /split <total_amount> <description> @user1:amount @user2:amount ...")
		return
	}

	s, err := h.ledger.SplitExpense(ctx, chatID, cmd.Rest, time.Now())
	if err != nil {
		h.replySplitError(ctx, chatID, err)
		return
	}
	h.reply(ctx, chatID, FormatSplitSummary(s))
}

func (h *Handler) replySplitError(ctx context.Context, chatID int64, err error) {
	var malformed *split.MalformedParticipantError
	var mismatch *split.MismatchError
	var partial *services.PartialFailureError

	switch {
	case errors.Is(err, split.ErrMalformedSplit):
		h.reply(ctx, chatID, "Usage: /split <total_amount> <description> @user1:amount @user2:amount ...")
	case errors.Is(err, core.ErrInvalidAmount):
		h.reply(ctx, chatID, "Invalid total amount specified.")
	case errors.Is(err, split.ErrNoParticipants):
		h.reply(ctx, chatID, "Please specify at least one participant with a custom split amount (e.g., @alice:30).")
	case errors.As(err, &malformed):
		h.reply(ctx, chatID, fmt.Sprintf("Invalid format for participant: %s. Use @username:amount", malformed.Token))
	case errors.As(err, &mismatch):
		h.reply(ctx, chatID, fmt.Sprintf(
			"The sum of individual amounts (%s) does not match the total amount (%s). Please check your entries.",
			mismatch.Sum.StringFixed(2), mismatch.Total.StringFixed(2)))
	case errors.As(err, &partial):
		log.FromContext(ctx).Error("split partially failed",
			log.FieldOperation, log.OpSplit,
			log.FieldError, err.Error())
		h.reply(ctx, chatID, fmt.Sprintf(
			"Some shares could not be recorded (%s). The rest were saved. Please re-add the failed shares.",
			joinUsernames(partial.Failed)))
	default:
		h.fail(ctx, chatID, "Error processing custom split expense. Please try again.", err)
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	h.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) replyMarkdown(ctx context.Context, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	h.send(ctx, msg)
}

func (h *Handler) send(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := h.api.Send(c); err != nil {
		log.FromContext(ctx).Error("failed to send message", log.FieldError, err.Error())
	}
}

func (h *Handler) fail(ctx context.Context, chatID int64, userMsg string, err error) {
	log.FromContext(ctx).Error("command failed", log.FieldError, err.Error())
	h.reply(ctx, chatID, userMsg)
}

func senderName(msg *tgbotapi.Message) string {
	if msg.Chat.UserName != "" {
		return msg.Chat.UserName
	}
	if msg.Chat.FirstName != "" {
		return msg.Chat.FirstName
	}
	return "Unknown"
}

func joinUsernames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += "@" + n
	}
	return out
}

func commandName(k Kind) string {
	switch k {
	case KindStart:
		return "start"
	case KindInstructions:
		return "instructions"
	case KindLastEntry:
		return "lastentry"
	case KindView:
		return "view"
	case KindRemoveLastEntry:
		return "removelastentry"
	case KindSetBudget:
		return "setbudget"
	case KindRemaining:
		return "remaining"
	case KindExport:
		return "export"
	case KindCompare:
		return "compare"
	case KindCategory:
		return "category"
	case KindSummary:
		return "summary"
	case KindSplit:
		return "split"
	case KindEntry:
		return "entry"
	default:
		return "unknown"
	}
}
