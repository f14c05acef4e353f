package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Controller is one physical irrigation/sensor unit. Readings stay embedded in
// the controller document, ordered oldest first, exactly as the units push them.
type Controller struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"-"`
	MacAddress string               `bson:"mac_address" json:"mac_address"`
	Location   string               `bson:"location" json:"location"`
	Sensors    []Sensor             `bson:"sensors" json:"sensors"`
	Users      []primitive.ObjectID `bson:"users" json:"-"`
	CreatedAt  primitive.DateTime   `bson:"created_at" json:"-"`
	UpdatedAt  primitive.DateTime   `bson:"updated_at" json:"-"`
}

type Sensor struct {
	Type              string            `bson:"type" json:"type"`
	Readings          []Reading         `bson:"readings" json:"readings"`
	WateringThreshold WateringThreshold `bson:"watering_threshold" json:"watering_threshold"`
}

// Reading values are string-encoded on the wire and in the store; the backend
// never interprets them, it only relays them.
type Reading struct {
	Time  string `bson:"time" json:"time"`
	Value string `bson:"value" json:"value"`
}

type WateringThreshold struct {
	Max float64 `bson:"max" json:"max"`
	Min float64 `bson:"min" json:"min"`
}

// LatestReading returns the newest reading of the sensor, readings being
// append-only with index len-1 the most recent.
func (s Sensor) LatestReading() (Reading, bool) {
	if len(s.Readings) == 0 {
		return Reading{}, false
	}
	return s.Readings[len(s.Readings)-1], true
}
