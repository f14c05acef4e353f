package bot

import (
	"context"
	"strings"
	"time"

	"waterme/internal/client"
)

const updatePollTimeoutSec = 30

func commandList() []client.TelegramBotCommand {
	return []client.TelegramBotCommand{
		{Command: "latest", Description: "Sends latest registered data sample for all the sensors of one controller"},
		{Command: "temperature", Description: "Sends latest registered reading for all the temperature sensors"},
		{Command: "humidity", Description: "Sends latest registered reading for all the humidity sensors"},
		{Command: "sms", Description: "Sends latest registered reading for all the soil moisture sensors"},
		{Command: "history", Description: "Sends the last <n> readings for <sensor>: /history <sensor> <n>"},
		{Command: "subscribe", Description: "Subscribes you to watering reminders: /subscribe <mac>"},
		{Command: "notifications", Description: "Turns watering reminders on or off: /notifications <on|off>"},
		{Command: "status", Description: "Sends sensor availability, thresholds and engine version"},
		{Command: "evaluate", Description: "Runs the watering evaluation now"},
	}
}

// Run drives the command router: long-polls for updates and dispatches every
// message to its handler. Blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Messenger.TelegramSetMyCommands(ctx, commandList()); err != nil {
		b.Logger.Errorf("Run: error setting bot command list, err: %v", err)
	}

	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := b.Messenger.TelegramGetUpdates(ctx, offset, updatePollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.Logger.Errorf("Run: error getting updates, err: %v", err)
			time.Sleep(3 * time.Second)
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			if upd.Message == nil {
				continue
			}
			b.dispatch(ctx, *upd.Message)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, msg client.TelegramMessage) {
	fields := strings.Fields(msg.Text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return
	}
	cmd := fields[0]
	// Group chats append the bot name: /history@WaterMeBot.
	if i := strings.Index(cmd, "@"); i != -1 {
		cmd = cmd[:i]
	}
	args := fields[1:]

	b.Logger.Debugf("dispatch: command %s from Telegram ID: %d", cmd, msg.From.ID)
	switch cmd {
	case "/start":
		b.handleStart(ctx, msg)
	case "/test":
		b.reply(ctx, msg.Chat.ID, "Sanity test")
	case "/latest":
		b.handleLatest(ctx, msg, args)
	case "/temperature":
		b.handleKindLatest(ctx, msg, args, "temp")
	case "/humidity":
		b.handleKindLatest(ctx, msg, args, "hum")
	case "/SMS", "/sms":
		b.handleKindLatest(ctx, msg, args, "SMS")
	case "/history":
		b.handleHistory(ctx, msg, args)
	case "/subscribe":
		b.handleSubscribe(ctx, msg, args)
	case "/notifications":
		b.handleNotifications(ctx, msg, args)
	case "/status":
		b.handleStatus(ctx, msg, args)
	case "/evaluate":
		b.handleEvaluate(ctx, msg)
	default:
		b.Logger.Debugf("dispatch: unknown command %s from Telegram ID: %d", cmd, msg.From.ID)
	}
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if err := b.Messenger.TelegramSendMessage(ctx, chatID, text); err != nil {
		b.Logger.Errorf("reply: error sending message to chat: %d, err: %v", chatID, err)
	}
}
