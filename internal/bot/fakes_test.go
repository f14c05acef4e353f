package bot

import (
	"context"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"waterme/internal/client"
	"waterme/internal/database"
	"waterme/internal/model"
)

type fakeStore struct {
	mu          sync.Mutex
	controllers []*model.Controller
	users       []*model.User
	// UsersFind fails when asked to resolve any of these IDs.
	failUserIDs map[primitive.ObjectID]bool
}

func (f *fakeStore) addController(c model.Controller) *model.Controller {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	f.controllers = append(f.controllers, &c)
	return f.controllers[len(f.controllers)-1]
}

func (f *fakeStore) addUser(u model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	f.users = append(f.users, &u)
	return f.users[len(f.users)-1]
}

func (f *fakeStore) ControllerFindByMac(_ context.Context, mac string) (model.Controller, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.controllers {
		if c.MacAddress == mac {
			return *c, nil
		}
	}
	return model.Controller{}, mongo.ErrNoDocuments
}

func (f *fakeStore) ControllerFindFirst(_ context.Context) (model.Controller, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.controllers) == 0 {
		return model.Controller{}, mongo.ErrNoDocuments
	}
	return *f.controllers[0], nil
}

func (f *fakeStore) ControllersFindAll(_ context.Context) ([]model.Controller, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var cs []model.Controller
	for _, c := range f.controllers {
		cs = append(cs, *c)
	}
	return cs, nil
}

func (f *fakeStore) ControllersFind(_ context.Context, ids []primitive.ObjectID) ([]model.Controller, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var cs []model.Controller
	for _, c := range f.controllers {
		for _, id := range ids {
			if c.ID == id {
				cs = append(cs, *c)
				break
			}
		}
	}
	return cs, nil
}

func (f *fakeStore) ControllerAddUser(_ context.Context, controllerID primitive.ObjectID, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.controllers {
		if c.ID != controllerID {
			continue
		}
		for _, existing := range c.Users {
			if existing == userID {
				return nil
			}
		}
		c.Users = append(c.Users, userID)
		return nil
	}
	return mongo.ErrNoDocuments
}

func (f *fakeStore) UserInsert(_ context.Context, u model.User) (primitive.ObjectID, error) {
	u.Notifications = true
	nu := f.addUser(u)
	return nu.ID, nil
}

func (f *fakeStore) UserFindByTelegramID(_ context.Context, telegramID int64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Telegram.UserID == telegramID {
			return *u, nil
		}
	}
	return model.User{}, mongo.ErrNoDocuments
}

func (f *fakeStore) UsersFind(_ context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var us []model.User
	for _, id := range ids {
		if f.failUserIDs[id] {
			return nil, mongo.ErrClientDisconnected
		}
	}
	for _, u := range f.users {
		for _, id := range ids {
			if u.ID == id {
				us = append(us, *u)
				break
			}
		}
	}
	return us, nil
}

func (f *fakeStore) UserAddController(_ context.Context, userID primitive.ObjectID, controllerID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID != userID {
			continue
		}
		for _, existing := range u.Microcontrollers {
			if existing == controllerID {
				return database.ErrNoDocumentsModified
			}
		}
		u.Microcontrollers = append(u.Microcontrollers, controllerID)
		return nil
	}
	return mongo.ErrNoDocuments
}

func (f *fakeStore) UserSetNotifications(_ context.Context, userID primitive.ObjectID, enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == userID {
			u.Notifications = enabled
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (f *fakeStore) UserUpdateTelegramNames(_ context.Context, telegramID int64, firstName string, lastName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Telegram.UserID == telegramID {
			u.Telegram.FirstName = firstName
			u.Telegram.LastName = lastName
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeMessenger struct {
	mu      sync.Mutex
	sent    []sentMessage
	sendErr error
}

func (f *fakeMessenger) TelegramSendMessage(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeMessenger) TelegramGetUpdates(_ context.Context, _ int64, _ int) ([]client.TelegramUpdate, error) {
	return nil, nil
}

func (f *fakeMessenger) TelegramSetMyCommands(_ context.Context, _ []client.TelegramBotCommand) error {
	return nil
}

func (f *fakeMessenger) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeEngine struct {
	mu       sync.Mutex
	verdicts map[string]bool // keyed by controller location
	errFor   map[string]error
	calls    int

	// When set, EngineVerdict signals started and then blocks until unblocked.
	started chan struct{}
	block   chan struct{}

	available bool
	version   string
}

func (f *fakeEngine) EngineVerdict(_ context.Context, _ []model.Sensor, location string) (bool, error) {
	f.mu.Lock()
	f.calls++
	started, block := f.started, f.block
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
		<-block
	}
	if err := f.errFor[location]; err != nil {
		return false, err
	}
	return f.verdicts[location], nil
}

func (f *fakeEngine) EngineSensorAvailable(_ context.Context, _ []model.Sensor, _ string) (bool, error) {
	return f.available, nil
}

func (f *fakeEngine) EngineVersion(_ context.Context) (string, error) {
	return f.version, nil
}

func (f *fakeEngine) verdictCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testLogger struct {
	t *testing.T
}

func newTestLogger(t *testing.T) testLogger { return testLogger{t: t} }

func (l testLogger) Debug(v ...any)                 { l.t.Log(v...) }
func (l testLogger) Info(v ...any)                  { l.t.Log(v...) }
func (l testLogger) Warn(v ...any)                  { l.t.Log(v...) }
func (l testLogger) Error(v ...any)                 { l.t.Log(v...) }
func (l testLogger) Debugf(format string, v ...any) { l.t.Logf(format, v...) }
func (l testLogger) Infof(format string, v ...any)  { l.t.Logf(format, v...) }
func (l testLogger) Warnf(format string, v ...any)  { l.t.Logf(format, v...) }
func (l testLogger) Errorf(format string, v ...any) { l.t.Logf(format, v...) }
