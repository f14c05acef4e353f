package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"waterme/internal/client"
	"waterme/internal/metrics"
	"waterme/internal/model"
)

const (
	replySomethingWentWrong = "Something went wrong."
	replyNoReadings         = "No readings available."
	replyStartFirst         = "I don't know you yet. Send /start first."
)

func (b *Bot) handleStart(ctx context.Context, msg client.TelegramMessage) {
	u, err := b.Store.UserFindByTelegramID(ctx, msg.From.ID)
	switch {
	case err == nil:
		if u.Telegram.FirstName != msg.From.FirstName || u.Telegram.LastName != msg.From.LastName {
			if err := b.Store.UserUpdateTelegramNames(ctx, msg.From.ID, msg.From.FirstName, msg.From.LastName); err != nil {
				b.Logger.Errorf("handleStart: error refreshing Telegram names for Telegram ID: %d, err: %v", msg.From.ID, err)
			}
		}
	case errors.Is(err, mongo.ErrNoDocuments):
		_, err = b.Store.UserInsert(ctx, model.User{
			Telegram: model.Telegram{
				UserID:    msg.From.ID,
				FirstName: msg.From.FirstName,
				LastName:  msg.From.LastName,
			},
		})
		if err != nil {
			b.Logger.Errorf("handleStart: error inserting User with Telegram ID: %d, err: %v", msg.From.ID, err)
			b.reply(ctx, msg.Chat.ID, replySomethingWentWrong)
			return
		}
		b.Logger.Infof("handleStart: created User with Telegram ID: %d", msg.From.ID)
	default:
		b.Logger.Errorf("handleStart: error finding User with Telegram ID: %d, err: %v", msg.From.ID, err)
		b.reply(ctx, msg.Chat.ID, replySomethingWentWrong)
		return
	}

	var sb strings.Builder
	sb.WriteString("Welcome to WaterMe!\nThere are several commands available:\n")
	for _, c := range commandList() {
		fmt.Fprintf(&sb, "/%s -> %s\n", c.Command, c.Description)
	}
	b.reply(ctx, msg.Chat.ID, sb.String())
}

// controllerForUser picks the controller a read command targets: an explicit
// MAC argument first, then the user's first subscription, then the store's
// first controller (what unsubscribed users got from the very first bot).
func (b *Bot) controllerForUser(ctx context.Context, telegramID int64, mac string) (model.Controller, error) {
	if mac != "" {
		c, err := b.Store.ControllerFindByMac(ctx, mac)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return c, errors.Wrapf(ErrControllerNotFound, "MAC: %s", mac)
		}
		return c, err
	}

	u, err := b.Store.UserFindByTelegramID(ctx, telegramID)
	if err == nil && len(u.Microcontrollers) > 0 {
		cs, err := b.Store.ControllersFind(ctx, u.Microcontrollers)
		if err != nil {
			b.Logger.Errorf("controllerForUser: error resolving Controllers of Telegram ID: %d, err: %v", telegramID, err)
		} else if len(cs) > 0 {
			return cs[0], nil
		}
	} else if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		b.Logger.Errorf("controllerForUser: error finding User with Telegram ID: %d, err: %v", telegramID, err)
	}

	c, err := b.Store.ControllerFindFirst(ctx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return c, errors.Wrap(ErrControllerNotFound, "store has no Controllers")
	}
	return c, err
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func (b *Bot) handleLatest(ctx context.Context, msg client.TelegramMessage, args []string) {
	c, err := b.controllerForUser(ctx, msg.From.ID, firstArg(args))
	if err != nil {
		b.Logger.Errorf("handleLatest: error picking Controller for Telegram ID: %d, err: %v", msg.From.ID, err)
		b.reply(ctx, msg.Chat.ID, replySomethingWentWrong)
		return
	}

	var sb strings.Builder
	var recordedAt string
	for _, s := range c.Sensors {
		r, ok := s.LatestReading()
		if !ok {
			continue
		}
		recordedAt = r.Time
		fmt.Fprintf(&sb, "%s -> %s\n", s.Type, r.Value)
	}
	if sb.Len() == 0 {
		b.reply(ctx, msg.Chat.ID, replyNoReadings)
		return
	}
	b.reply(ctx, msg.Chat.ID, recordedAt+"\n"+sb.String())
}

// handleKindLatest serves /temperature, /humidity and /SMS: the latest reading
// of every sensor whose type contains the kind substring, one message per
// sensor, threshold bounds included.
func (b *Bot) handleKindLatest(ctx context.Context, msg client.TelegramMessage, args []string, kindSubstr string) {
	c, err := b.controllerForUser(ctx, msg.From.ID, firstArg(args))
	if err != nil {
		b.Logger.Errorf("handleKindLatest: error picking Controller for Telegram ID: %d, err: %v", msg.From.ID, err)
		b.reply(ctx, msg.Chat.ID, replySomethingWentWrong)
		return
	}

	found := false
	for _, s := range c.Sensors {
		if !strings.Contains(s.Type, kindSubstr) {
			continue
		}
		r, ok := s.LatestReading()
		if !ok {
			continue
		}
		found = true
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("%s : %s -> %s\nBetween the max: %g and %g",
			r.Time, s.Type, r.Value, s.WateringThreshold.Max, s.WateringThreshold.Min))
	}
	if !found {
		b.reply(ctx, msg.Chat.ID, replyNoReadings)
	}
}

func (b *Bot) handleHistory(ctx context.Context, msg client.TelegramMessage, args []string) {
	var sensorSubstr string
	var count int
	if len(args) >= 1 {
		sensorSubstr = args[0]
	}
	if len(args) >= 2 {
		// An unparseable count falls through as zero and yields the
		// no-readings reply, it is not an error.
		count, _ = strconv.Atoi(args[1])
	}

	c, err := b.controllerForUser(ctx, msg.From.ID, "")
	if err != nil {
		b.Logger.Errorf("handleHistory: error picking Controller for Telegram ID: %d, err: %v", msg.From.ID, err)
		b.reply(ctx, msg.Chat.ID, replySomethingWentWrong)
		return
	}

	readings := SensorHistory(c, sensorSubstr, count)
	if len(readings) == 0 {
		b.reply(ctx, msg.Chat.ID, replyNoReadings)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Readings requested for %s:\n", sensorSubstr)
	for _, r := range readings {
		fmt.Fprintf(&sb, "%s -> %s\n", r.Time, r.Value)
	}
	b.reply(ctx, msg.Chat.ID, sb.String())
}

func (b *Bot) handleSubscribe(ctx context.Context, msg client.TelegramMessage, args []string) {
	mac := firstArg(args)
	if mac == "" {
		b.reply(ctx, msg.Chat.ID, "Usage: /subscribe <mac address>")
		return
	}

	err := b.Subscribe(ctx, msg.From.ID, mac)
	switch {
	case err == nil:
		metrics.SubscriptionsCreated.Inc()
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf(
			"Subscribed! I will remind you when controller %s thinks the plants need watering.", mac))
	case errors.Is(err, ErrControllerNotFound):
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("No controller found with MAC address %s.", mac))
	case errors.Is(err, ErrUserNotFound):
		b.reply(ctx, msg.Chat.ID, replyStartFirst)
	case errors.Is(err, ErrAlreadySubscribed):
		b.reply(ctx, msg.Chat.ID, fmt.Sprintf("You are already subscribed to controller %s.", mac))
	default:
		b.Logger.Errorf("handleSubscribe: error subscribing Telegram ID: %d to MAC: %s, err: %v", msg.From.ID, mac, err)
		b.reply(ctx, msg.Chat.ID, replySomethingWentWrong)
	}
}

func (b *Bot) handleNotifications(ctx context.Context, msg client.TelegramMessage, args []string) {
	var enabled bool
	switch firstArg(args) {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		b.reply(ctx, msg.Chat.ID, "Usage: /notifications <on|off>")
		return
	}

	u, err := b.Store.UserFindByTelegramID(ctx, msg.From.ID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			b.reply(ctx, msg.Chat.ID, replyStartFirst)
			return
		}
		b.Logger.Errorf("handleNotifications: error finding User with Telegram ID: %d, err: %v", msg.From.ID, err)
		b.reply(ctx, msg.Chat.ID, replySomethingWentWrong)
		return
	}

	if err := b.Store.UserSetNotifications(ctx, u.ID, enabled); err != nil {
		b.Logger.Errorf("handleNotifications: error setting notifications for Telegram ID: %d, err: %v", msg.From.ID, err)
		b.reply(ctx, msg.Chat.ID, replySomethingWentWrong)
		return
	}
	if enabled {
		b.reply(ctx, msg.Chat.ID, "Watering reminders are on.")
	} else {
		b.reply(ctx, msg.Chat.ID, "Watering reminders are off.")
	}
}

func (b *Bot) handleStatus(ctx context.Context, msg client.TelegramMessage, args []string) {
	c, err := b.controllerForUser(ctx, msg.From.ID, firstArg(args))
	if err != nil {
		b.Logger.Errorf("handleStatus: error picking Controller for Telegram ID: %d, err: %v", msg.From.ID, err)
		b.reply(ctx, msg.Chat.ID, replySomethingWentWrong)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Controller %s (%s)\n", c.MacAddress, c.Location)

	version, err := b.Engine.EngineVersion(ctx)
	if err != nil {
		b.Logger.Errorf("handleStatus: error getting engine version, err: %v", err)
		version = "unknown"
	}
	fmt.Fprintf(&sb, "Evaluation engine: %s\n", version)

	for _, kind := range []string{
		client.SensorKindTemperature,
		client.SensorKindHumidity,
		client.SensorKindSoilMoisture,
		client.SensorKindExternalWeather,
	} {
		available, err := b.Engine.EngineSensorAvailable(ctx, c.Sensors, kind)
		if err != nil {
			b.Logger.Errorf("handleStatus: error getting %s availability for Controller %s, err: %v",
				kind, c.MacAddress, err)
			fmt.Fprintf(&sb, "%s: unknown\n", kind)
			continue
		}
		if available {
			fmt.Fprintf(&sb, "%s: available\n", kind)
		} else {
			fmt.Fprintf(&sb, "%s: unavailable\n", kind)
		}
	}

	for _, s := range c.Sensors {
		fmt.Fprintf(&sb, "%s watering threshold: max %g, min %g\n",
			s.Type, s.WateringThreshold.Max, s.WateringThreshold.Min)
	}
	b.reply(ctx, msg.Chat.ID, sb.String())
}

func (b *Bot) handleEvaluate(ctx context.Context, msg client.TelegramMessage) {
	b.reply(ctx, msg.Chat.ID, "Running the watering evaluation now.")
	b.EvaluateAndNotify(ctx)
}
