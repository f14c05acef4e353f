package bot

import (
	"context"
	"fmt"

	"waterme/internal/metrics"
	"waterme/internal/model"
)

const wateringReminder = "Your plants are thirsty! Time to water them."

// EvaluateAndNotify runs one watering evaluation pass over every controller in
// the store. Each controller is evaluated in isolation: a store, engine or
// delivery failure on one controller never aborts the others.
func (b *Bot) EvaluateAndNotify(ctx context.Context) {
	b.Logger.Info("EvaluateAndNotify: starting watering evaluation pass")
	metrics.EvaluationPasses.Inc()

	cs, err := b.Store.ControllersFindAll(ctx)
	if err != nil {
		b.Logger.Errorf("EvaluateAndNotify: error getting all Controllers from DB, err: %v", err)
		return
	}
	b.Logger.Infof("EvaluateAndNotify: retrieved %d Controller(s) from DB", len(cs))

	for _, c := range cs {
		if !b.inflight.TryAcquire(c.MacAddress) {
			b.Logger.Warnf("EvaluateAndNotify: evaluation already in flight for Controller %s, skipping", c.MacAddress)
			metrics.EvaluationsSkipped.Inc()
			continue
		}
		b.evaluateController(ctx, c)
		b.inflight.Release(c.MacAddress)
	}
	b.Logger.Info("EvaluateAndNotify: finished watering evaluation pass")
}

func (b *Bot) evaluateController(ctx context.Context, c model.Controller) {
	verdict, err := b.Engine.EngineVerdict(ctx, c.Sensors, c.Location)
	if err != nil {
		b.Logger.Errorf("evaluateController: error getting verdict for Controller %s, err: %v", c.MacAddress, err)
		return
	}
	if !verdict {
		b.Logger.Debugf("evaluateController: no watering needed for Controller %s", c.MacAddress)
		return
	}
	metrics.TrueVerdicts.Inc()

	if len(c.Users) == 0 {
		b.Logger.Debugf("evaluateController: no Users subscribed to Controller %s", c.MacAddress)
		return
	}
	us, err := b.Store.UsersFind(ctx, c.Users)
	if err != nil {
		b.Logger.Errorf("evaluateController: error resolving Users of Controller %s, err: %v", c.MacAddress, err)
		return
	}

	// At most one reminder per chat identity per pass, whatever the state of
	// the controller's reference set.
	notified := make(map[int64]struct{}, len(us))
	sent := 0
	for _, u := range us {
		if !u.Notifications {
			continue
		}
		if _, ok := notified[u.Telegram.UserID]; ok {
			continue
		}
		notified[u.Telegram.UserID] = struct{}{}

		text := fmt.Sprintf("%s (controller %s)", wateringReminder, c.MacAddress)
		if err := b.Messenger.TelegramSendMessage(ctx, u.Telegram.UserID, text); err != nil {
			b.Logger.Errorf("evaluateController: error sending reminder to Telegram ID: %d for Controller %s, err: %v",
				u.Telegram.UserID, c.MacAddress, err)
			metrics.RemindersFailed.Inc()
			continue
		}
		metrics.RemindersSent.Inc()
		sent++
	}
	b.Logger.Infof("evaluateController: sent %d reminder(s) for Controller %s", sent, c.MacAddress)
}
