package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"waterme/internal/model"
)

func (db Database) UserInsert(ctx context.Context, u model.User) (id primitive.ObjectID, err error) {
	if u.Email == "" {
		u.Email = "not_set@example.com"
	}
	// Notifications are opt-out.
	u.Notifications = true
	u.Microcontrollers = []primitive.ObjectID{}
	u.CreatedAt = primitive.NewDateTimeFromTime(time.Now())
	u.UpdatedAt = primitive.NewDateTimeFromTime(time.Now())

	r, err := db.Collection(CollectionUsers).InsertOne(ctx, u)
	if err != nil {
		return id, errors.Wrapf(err, "error inserting User with Telegram ID: %d", u.Telegram.UserID)
	}
	return r.InsertedID.(primitive.ObjectID), nil
}

func (db Database) UserFindByTelegramID(ctx context.Context, telegramID int64) (model.User, error) {
	var u model.User
	err := db.Collection(CollectionUsers).FindOne(ctx, bson.M{"telegram.user_id": telegramID}).Decode(&u)
	return u, errors.Wrapf(err, "error finding User with Telegram ID: %d", telegramID)
}

// UsersFind resolves user references on a controller document.
func (db Database) UsersFind(ctx context.Context, ids []primitive.ObjectID) ([]model.User, error) {
	var us []model.User
	cur, err := db.Collection(CollectionUsers).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Users, ids: %v", ids)
	}
	if err = cur.All(ctx, &us); err != nil {
		return nil, errors.Wrapf(err, "error getting Users from cursor, ids: %v", ids)
	}
	return us, nil
}

// UserAddController appends a controller reference to the user's subscription
// set. The filter excludes users already holding the reference, so a concurrent
// duplicate subscribe loses here with ErrNoDocumentsModified.
func (db Database) UserAddController(ctx context.Context, userID primitive.ObjectID, controllerID primitive.ObjectID) error {
	res, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": userID, "microcontrollers": bson.M{"$ne": controllerID}},
		bson.M{
			"$push": bson.M{"microcontrollers": controllerID},
			"$set":  bson.M{"updated_at": primitive.NewDateTimeFromTime(time.Now())},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error adding Controller %s to User %s", controllerID.Hex(), userID.Hex())
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified,
			"User not modified when adding Controller %s to User %s", controllerID.Hex(), userID.Hex())
	}
	return nil
}

func (db Database) UserSetNotifications(ctx context.Context, userID primitive.ObjectID, enabled bool) error {
	_, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"notifications": enabled,
			"updated_at":    primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	return errors.Wrapf(err, "error setting notifications to %t for User %s", enabled, userID.Hex())
}

func (db Database) UserSetEmail(ctx context.Context, userID primitive.ObjectID, email string) error {
	_, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{
			"email":      email,
			"updated_at": primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	return errors.Wrapf(err, "error setting email for User %s", userID.Hex())
}

// UserUpdateTelegramNames refreshes display names from an incoming message.
// Identity stays telegram.user_id, names drift freely.
func (db Database) UserUpdateTelegramNames(ctx context.Context, telegramID int64, firstName string, lastName string) error {
	_, err := db.Collection(CollectionUsers).UpdateOne(
		ctx,
		bson.M{"telegram.user_id": telegramID},
		bson.M{"$set": bson.M{
			"telegram.first_name": firstName,
			"telegram.last_name":  lastName,
			"updated_at":          primitive.NewDateTimeFromTime(time.Now()),
		}},
	)
	return errors.Wrapf(err, "error updating Telegram names for User with Telegram ID: %d", telegramID)
}
