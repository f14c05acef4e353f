// Package bot holds the WaterMe core: the subscription manager, the periodic
// watering-evaluation pass with its notification fan-out, and the chat command
// handlers in front of them.
package bot

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"waterme/internal/client"
	"waterme/internal/model"
)

type Bot struct {
	Store     Store
	Messenger Messenger
	Engine    Engine
	Logger    logger

	inflight *inflightSet
}

func NewBot(store Store, messenger Messenger, engine Engine, l logger) *Bot {
	return &Bot{
		Store:     store,
		Messenger: messenger,
		Engine:    engine,
		Logger:    l,
		inflight:  newInflightSet(),
	}
}

// Store is the persistence collaborator, implemented by database.Database.
type Store interface {
	ControllerFindByMac(ctx context.Context, mac string) (model.Controller, error)
	ControllerFindFirst(ctx context.Context) (model.Controller, error)
	ControllersFindAll(ctx context.Context) ([]model.Controller, error)
	ControllersFind(ctx context.Context, ids []primitive.ObjectID) ([]model.Controller, error)
	ControllerAddUser(ctx context.Context, controllerID primitive.ObjectID, userID primitive.ObjectID) error
	UserInsert(ctx context.Context, u model.User) (primitive.ObjectID, error)
	UserFindByTelegramID(ctx context.Context, telegramID int64) (model.User, error)
	UsersFind(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error)
	UserAddController(ctx context.Context, userID primitive.ObjectID, controllerID primitive.ObjectID) error
	UserSetNotifications(ctx context.Context, userID primitive.ObjectID, enabled bool) error
	UserUpdateTelegramNames(ctx context.Context, telegramID int64, firstName string, lastName string) error
}

// Messenger is the chat-delivery collaborator, implemented by client.Client.
type Messenger interface {
	TelegramSendMessage(ctx context.Context, chatID int64, text string) error
	TelegramGetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]client.TelegramUpdate, error)
	TelegramSetMyCommands(ctx context.Context, commands []client.TelegramBotCommand) error
}

// Engine is the external watering-evaluation collaborator, implemented by
// client.Client. Its only contract consumed here is the boolean verdict plus
// availability flags and a version string.
type Engine interface {
	EngineVerdict(ctx context.Context, sensors []model.Sensor, location string) (bool, error)
	EngineSensorAvailable(ctx context.Context, sensors []model.Sensor, kind string) (bool, error)
	EngineVersion(ctx context.Context) (string, error)
}

type logger interface {
	Debug(v ...any)
	Info(v ...any)
	Warn(v ...any)
	Error(v ...any)
	Debugf(format string, v ...any)
	Infof(format string, v ...any)
	Warnf(format string, v ...any)
	Errorf(format string, v ...any)
}
