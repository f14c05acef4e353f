package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"waterme/internal/model"
)

func (db Database) ControllerFindByMac(ctx context.Context, mac string) (model.Controller, error) {
	var c model.Controller
	err := db.Collection(CollectionMicrocontrollers).FindOne(ctx, bson.M{"mac_address": mac}).Decode(&c)
	return c, errors.Wrapf(err, "error finding Controller with MAC: %s", mac)
}

// ControllerFindFirst returns the store's first controller, the pick used for
// chat commands from users with no subscription.
func (db Database) ControllerFindFirst(ctx context.Context) (model.Controller, error) {
	var c model.Controller
	err := db.Collection(CollectionMicrocontrollers).FindOne(ctx, bson.M{}).Decode(&c)
	return c, errors.Wrap(err, "error finding first Controller")
}

func (db Database) ControllersFindAll(ctx context.Context) ([]model.Controller, error) {
	var cs []model.Controller
	cur, err := db.Collection(CollectionMicrocontrollers).Find(ctx, bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "error getting cursor to find all Controllers")
	}
	if err = cur.All(ctx, &cs); err != nil {
		return nil, errors.Wrap(err, "error getting all Controllers from cursor")
	}
	return cs, nil
}

// ControllersFind resolves controller references on a user document.
func (db Database) ControllersFind(ctx context.Context, ids []primitive.ObjectID) ([]model.Controller, error) {
	var cs []model.Controller
	cur, err := db.Collection(CollectionMicrocontrollers).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Controllers, ids: %v", ids)
	}
	if err = cur.All(ctx, &cs); err != nil {
		return nil, errors.Wrapf(err, "error getting Controllers from cursor, ids: %v", ids)
	}
	return cs, nil
}

// ControllerAddUser appends a user reference to the controller's fan-out set.
// Adding an already-present reference is not an error, the set is unchanged.
func (db Database) ControllerAddUser(ctx context.Context, controllerID primitive.ObjectID, userID primitive.ObjectID) error {
	_, err := db.Collection(CollectionMicrocontrollers).UpdateOne(
		ctx,
		bson.M{"_id": controllerID},
		bson.M{
			"$addToSet": bson.M{"users": userID},
			"$set":      bson.M{"updated_at": primitive.NewDateTimeFromTime(time.Now())},
		},
	)
	return errors.Wrapf(err, "error adding User %s to Controller %s", userID.Hex(), controllerID.Hex())
}

// ControllerAppendReading pushes a reading onto the matching sensor's log.
// Returns ErrNoDocumentsModified when no sensor of that type exists yet.
func (db Database) ControllerAppendReading(ctx context.Context, mac string, sensorType string, r model.Reading) error {
	res, err := db.Collection(CollectionMicrocontrollers).UpdateOne(
		ctx,
		bson.M{"mac_address": mac, "sensors.type": sensorType},
		bson.M{
			"$push": bson.M{"sensors.$.readings": r},
			"$set":  bson.M{"updated_at": primitive.NewDateTimeFromTime(time.Now())},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error appending Reading to Controller %s, sensor type: %s", mac, sensorType)
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified,
			"Controller not modified when appending Reading, MAC: %s, sensor type: %s", mac, sensorType)
	}
	return nil
}

// ControllerAddSensor registers a new sensor on the controller unless a sensor
// of that type is already present.
func (db Database) ControllerAddSensor(ctx context.Context, mac string, s model.Sensor) error {
	res, err := db.Collection(CollectionMicrocontrollers).UpdateOne(
		ctx,
		bson.M{"mac_address": mac, "sensors.type": bson.M{"$ne": s.Type}},
		bson.M{
			"$push": bson.M{"sensors": s},
			"$set":  bson.M{"updated_at": primitive.NewDateTimeFromTime(time.Now())},
		},
	)
	if err != nil {
		return errors.Wrapf(err, "error adding Sensor to Controller %s, sensor type: %s", mac, s.Type)
	}
	if res.ModifiedCount == 0 {
		return errors.Wrapf(ErrNoDocumentsModified,
			"Controller not modified when adding Sensor, MAC: %s, sensor type: %s", mac, s.Type)
	}
	return nil
}
