package bot

import (
	"context"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"

	"expensebot/internal/log"
	"expensebot/internal/services"
	"expensebot/internal/store/memory"
)

type fakeAPI struct {
	sent []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) texts() []string {
	var out []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	texts := f.texts()
	if len(texts) == 0 {
		t.Fatal("no messages sent")
	}
	return texts[len(texts)-1]
}

func newTestHandler() (*Handler, *fakeAPI) {
	api := &fakeAPI{}
	ledger := services.NewLedger(memory.New(), nil, decimal.NewFromInt(6000), 4)
	logger := log.New(log.DefaultConfig())
	return NewHandler(api, ledger, logger), api
}

func update(text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: 42, UserName: "alice"},
		},
	}
}

func TestHandleUpdate_AddEntry(t *testing.T) {
	h, api := newTestHandler()

	h.HandleUpdate(context.Background(), update("100 Grocery"))

	reply := api.lastText(t)
	if !strings.Contains(reply, "Entry added for Grocery by alice!") {
		t.Errorf("unexpected reply: %s", reply)
	}
	if !strings.Contains(reply, "Remaining Amount: 5900") {
		t.Errorf("remaining budget missing: %s", reply)
	}
}

func TestHandleUpdate_AddEntryBadFormat(t *testing.T) {
	h, api := newTestHandler()

	h.HandleUpdate(context.Background(), update("just words"))

	if !strings.Contains(api.lastText(t), `format: "100 Grocery"`) {
		t.Errorf("unexpected reply: %s", api.lastText(t))
	}
}

func TestHandleUpdate_LastEntryEmpty(t *testing.T) {
	h, api := newTestHandler()

	h.HandleUpdate(context.Background(), update("/lastentry"))

	if api.lastText(t) != "No entries found." {
		t.Errorf("unexpected reply: %s", api.lastText(t))
	}
}

func TestHandleUpdate_SetBudgetAndRemaining(t *testing.T) {
	h, api := newTestHandler()
	ctx := context.Background()

	h.HandleUpdate(ctx, update("/setbudget 1000"))
	if !strings.Contains(api.lastText(t), "Budget has been updated to 1000") {
		t.Fatalf("unexpected reply: %s", api.lastText(t))
	}

	h.HandleUpdate(ctx, update("300 Rent"))
	h.HandleUpdate(ctx, update("/remaining"))

	reply := api.lastText(t)
	if !strings.Contains(reply, "Budget: 1000") || !strings.Contains(reply, "Remaining: 700") {
		t.Errorf("unexpected reply: %s", reply)
	}
}

func TestHandleUpdate_SetBudgetRejectsNonPositive(t *testing.T) {
	h, api := newTestHandler()

	h.HandleUpdate(context.Background(), update("/setbudget -5"))
	if !strings.Contains(api.lastText(t), "must be a positive number") {
		t.Errorf("unexpected reply: %s", api.lastText(t))
	}

	h.HandleUpdate(context.Background(), update("/setbudget"))
	if !strings.Contains(api.lastText(t), "/setbudget 7000") {
		t.Errorf("unexpected reply: %s", api.lastText(t))
	}
}

func TestHandleUpdate_ViewListsEntries(t *testing.T) {
	h, api := newTestHandler()
	ctx := context.Background()

	h.HandleUpdate(ctx, update("100 Grocery"))
	h.HandleUpdate(ctx, update("/view"))

	reply := api.lastText(t)
	if !strings.Contains(reply, "Your last 20 spends:") || !strings.Contains(reply, "Grocery") {
		t.Errorf("unexpected reply: %s", reply)
	}
}

func TestHandleUpdate_SummaryDaily(t *testing.T) {
	h, api := newTestHandler()
	ctx := context.Background()

	h.HandleUpdate(ctx, update("100 Grocery"))
	h.HandleUpdate(ctx, update("/summary daily"))

	reply := api.lastText(t)
	if !strings.Contains(reply, "Expense Summary (DAILY)") {
		t.Errorf("unexpected reply: %s", reply)
	}
	if !strings.Contains(reply, "Grocery: 100.00") {
		t.Errorf("category breakdown missing: %s", reply)
	}
}

func TestHandleUpdate_SummaryUsage(t *testing.T) {
	h, api := newTestHandler()

	h.HandleUpdate(context.Background(), update("/summary"))
	if !strings.Contains(api.lastText(t), "Usage: /summary") {
		t.Errorf("unexpected reply: %s", api.lastText(t))
	}

	h.HandleUpdate(context.Background(), update("/summary yearly"))
	if !strings.Contains(api.lastText(t), "Invalid period") {
		t.Errorf("unexpected reply: %s", api.lastText(t))
	}
}

func TestHandleUpdate_Split(t *testing.T) {
	h, api := newTestHandler()
	ctx := context.Background()

	h.HandleUpdate(ctx, update("/split 100 Dinner @alice:50 @bob:50"))

	reply := api.lastText(t)
	if !strings.Contains(reply, "Split 100 for Dinner") {
		t.Errorf("unexpected reply: %s", reply)
	}
	if !strings.Contains(reply, "@alice: 50") || !strings.Contains(reply, "@bob: 50") {
		t.Errorf("shares missing: %s", reply)
	}
}

func TestHandleUpdate_SplitMismatch(t *testing.T) {
	h, api := newTestHandler()

	h.HandleUpdate(context.Background(), update("/split 100 Dinner @alice:40 @bob:50"))

	if !strings.Contains(api.lastText(t), "does not match the total amount") {
		t.Errorf("unexpected reply: %s", api.lastText(t))
	}
}

func TestHandleUpdate_ExportEmptyMonth(t *testing.T) {
	h, api := newTestHandler()

	h.HandleUpdate(context.Background(), update("/export Jan"))

	if !strings.Contains(api.lastText(t), "No transactions found for January") {
		t.Errorf("unexpected reply: %s", api.lastText(t))
	}
}

func TestHandleUpdate_UnknownCommand(t *testing.T) {
	h, api := newTestHandler()

	h.HandleUpdate(context.Background(), update("/frobnicate"))

	if api.lastText(t) != unknownCommandText {
		t.Errorf("unexpected reply: %s", api.lastText(t))
	}
}

func TestHandleUpdate_IgnoresNonText(t *testing.T) {
	h, api := newTestHandler()

	h.HandleUpdate(context.Background(), tgbotapi.Update{})
	h.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 42}}})

	if len(api.sent) != 0 {
		t.Errorf("no replies expected, got %d", len(api.sent))
	}
}
