/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/blnkfinance/tracsync/internal/syncerror"
	"github.com/blnkfinance/tracsync/model"
)

// Compile-time assertion that MongoDataSource satisfies the storage port.
var _ IDataSource = (*MongoDataSource)(nil)

var tracer = otel.Tracer("tracsync.database")

// MongoConfig holds what is needed to reach the work order collection.
type MongoConfig struct {
	Dns                string
	Database           string
	Collection         string
	MaxConnectAttempts int
	ConnectRetryDelay  time.Duration
}

// MongoDataSource stores work orders as documents in a MongoDB collection with a
// unique index on number.
type MongoDataSource struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoDataSource connects to MongoDB, retrying the initial ping according to cfg,
// and makes sure the unique number index exists.
//
// Parameters:
// - ctx: Context bounding the connection attempts.
// - cfg: Connection settings; empty fields fall back to the defaults.
//
// Returns:
// - *MongoDataSource: A connected data source.
// - error: A ConnectionError when MongoDB stays unreachable, or a PersistenceError if the index cannot be created.
func NewMongoDataSource(ctx context.Context, cfg MongoConfig) (*MongoDataSource, error) {
	if cfg.Dns == "" {
		cfg.Dns = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "tractian"
	}
	if cfg.Collection == "" {
		cfg.Collection = "workorders"
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.Dns).
		SetServerSelectionTimeout(5*time.Second))
	if err != nil {
		return nil, syncerror.NewConnectionError("invalid mongodb connection settings", err, nil)
	}

	ds := NewMongoDataSourceFromCollection(client.Database(cfg.Database).Collection(cfg.Collection))
	if err := ConnectWithRetries(ctx, ds, cfg.MaxConnectAttempts, cfg.ConnectRetryDelay); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	if err := ds.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, syncerror.NewPersistenceError("could not create work order indexes", err, nil)
	}

	logrus.WithFields(logrus.Fields{
		"database":   cfg.Database,
		"collection": cfg.Collection,
	}).Info("mongodb connected ✅")
	return ds, nil
}

// NewMongoDataSourceFromCollection wraps an existing collection handle.
func NewMongoDataSourceFromCollection(collection *mongo.Collection) *MongoDataSource {
	return &MongoDataSource{client: collection.Database().Client(), collection: collection}
}

func (m *MongoDataSource) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client.
func (m *MongoDataSource) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique index that backs the one-record-per-number guarantee.
func (m *MongoDataSource) EnsureIndexes(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: FieldNumber, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("number_unique"),
	})
	return err
}

// storageError wraps a driver failure raised after the connection was established.
// Timeouts and dropped connections are reported like any other failed operation;
// only ConnectWithRetries decides that the store is unreachable.
func storageError(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

func (m *MongoDataSource) FindByField(ctx context.Context, field string, value interface{}) (*model.WorkOrder, error) {
	ctx, span := tracer.Start(ctx, "Finding work order by field")
	defer span.End()
	span.SetAttributes(attribute.String("tracsync.field", field))

	var workOrder model.WorkOrder
	err := m.collection.FindOne(ctx, bson.M{field: value}).Decode(&workOrder)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, storageError(err, "find work order by %s", field)
	}
	return &workOrder, nil
}

func (m *MongoDataSource) Insert(ctx context.Context, workOrder *model.WorkOrder) (*model.WorkOrder, error) {
	ctx, span := tracer.Start(ctx, "Inserting work order")
	defer span.End()
	span.SetAttributes(attribute.Int64("tracsync.number", workOrder.Number))

	if _, err := m.collection.InsertOne(ctx, workOrder); err != nil {
		span.RecordError(err)
		if mongo.IsDuplicateKeyError(err) {
			return nil, errors.Wrapf(ErrDuplicateNumber, "insert work order %d", workOrder.Number)
		}
		return nil, storageError(err, "insert work order %d", workOrder.Number)
	}
	return workOrder, nil
}

// Update replaces the whole document whose number matches. It returns nil, nil when
// no document matched, for example because it was removed after the lookup.
func (m *MongoDataSource) Update(ctx context.Context, number int64, workOrder *model.WorkOrder) (*model.WorkOrder, error) {
	ctx, span := tracer.Start(ctx, "Replacing work order")
	defer span.End()
	span.SetAttributes(attribute.Int64("tracsync.number", number))

	result, err := m.collection.ReplaceOne(ctx, bson.M{FieldNumber: number}, workOrder)
	if err != nil {
		span.RecordError(err)
		return nil, storageError(err, "replace work order %d", number)
	}
	if result.MatchedCount == 0 {
		return nil, nil
	}
	return workOrder, nil
}

func (m *MongoDataSource) FindWhereSynced(ctx context.Context, isSynced bool) ([]model.WorkOrder, error) {
	ctx, span := tracer.Start(ctx, "Fetching work orders by sync state")
	defer span.End()
	span.SetAttributes(attribute.Bool("tracsync.is_synced", isSynced))

	cursor, err := m.collection.Find(ctx,
		bson.M{FieldIsSynced: isSynced},
		options.Find().SetSort(bson.D{{Key: FieldNumber, Value: 1}}))
	if err != nil {
		span.RecordError(err)
		return nil, storageError(err, "find work orders by sync state")
	}
	defer cursor.Close(ctx)

	workOrders := make([]model.WorkOrder, 0)
	if err := cursor.All(ctx, &workOrders); err != nil {
		span.RecordError(err)
		return nil, storageError(err, "decode work orders")
	}
	return workOrders, nil
}
