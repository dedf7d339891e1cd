// Package bot wires Telegram long polling to the ledger service: it
// parses incoming messages, dispatches commands and formats replies.
package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"expensebot/internal/log"
	"expensebot/internal/services"
)

// Bot runs the Telegram long-polling loop.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	logger  *log.Logger
}

// New authenticates against the Telegram API and prepares the
// dispatcher.
func New(token string, ledger *services.Ledger, logger *log.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate bot: %w", err)
	}

	return &Bot{
		api:     api,
		handler: NewHandler(api, ledger, logger),
		logger:  logger.WithComponent(log.ComponentBot),
	}, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if _, err := b.api.Request(tgbotapi.NewSetMyCommands(botCommands()...)); err != nil {
		b.logger.Warn("failed to register command list", log.FieldError, err.Error())
	}

	me, err := b.api.GetMe()
	if err != nil {
		return fmt.Errorf("failed to fetch bot identity: %w", err)
	}
	b.logger.Info("bot started", log.FieldOperation, log.OpStartup, log.FieldUsername, me.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handler.HandleUpdate(ctx, update)
	}

	b.logger.Info("bot stopped", log.FieldOperation, log.OpShutdown)
	return nil
}

func botCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Start the bot"},
		{Command: "instructions", Description: "Show instructions"},
		{Command: "lastentry", Description: "View the last entry"},
		{Command: "view", Description: "View recent entries"},
		{Command: "removelastentry", Description: "Remove the last entry"},
		{Command: "setbudget", Description: "Set your monthly budget"},
		{Command: "remaining", Description: "Check remaining budget for the current month"},
		{Command: "export", Description: "Export a month's transactions as CSV"},
		{Command: "compare", Description: "Compare spending between two months"},
		{Command: "category", Description: "Filter spending by category"},
		{Command: "summary", Description: "Summarize expenses for a period"},
		{Command: "split", Description: "Split an expense between participants"},
	}
}
