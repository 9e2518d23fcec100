package implementation

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	srdmodels "gitlab.com/sensorgrid1/srd.sensor_server/src/production/SRD.Models"
)

type MongoSensorDataRepository struct {
	coll *mongo.Collection
}

func NewMongoSensorDataRepository(coll *mongo.Collection) *MongoSensorDataRepository {
	return &MongoSensorDataRepository{coll: coll}
}

// EnsureIndexes creates the compound index backing the recent-history query.
func (r *MongoSensorDataRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "device_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	return err
}

func (r *MongoSensorDataRepository) Insert(ctx context.Context, reading srdmodels.SensorReading) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := r.coll.InsertOne(ctx, reading)
	return err
}

func (r *MongoSensorDataRepository) InsertMany(ctx context.Context, readings []srdmodels.SensorReading) error {
	if len(readings) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	docs := make([]interface{}, 0, len(readings))
	for i := range readings {
		docs = append(docs, readings[i])
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}

func (r *MongoSensorDataRepository) RecentByDevice(ctx context.Context, deviceID string, limit int) ([]srdmodels.SensorReading, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{"device_id": deviceID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	readings := make([]srdmodels.SensorReading, 0, limit)
	if err := cursor.All(ctx, &readings); err != nil {
		return nil, err
	}

	return readings, nil
}
