package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"driverpro-notifier/internal/common/database"
	"driverpro-notifier/internal/common/logger"
	"driverpro-notifier/internal/models"
)

// MongoStore implements Store over MongoDB change streams.
type MongoStore struct {
	reservations *mongo.Collection
	drivers      *mongo.Collection
	logger       logger.Logger
}

func NewMongoStore(client *database.MongoClient, reservationsColl, driversColl string, log logger.Logger) *MongoStore {
	return &MongoStore{
		reservations: client.Collection(reservationsColl),
		drivers:      client.Collection(driversColl),
		logger:       log.WithFields(map[string]interface{}{"component": "mongo-store"}),
	}
}

// changeDocument is the shape of a change stream event we care about.
type changeDocument struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID string `bson:"_id"`
	} `bson:"documentKey"`
	FullDocument             models.Reservation  `bson:"fullDocument"`
	FullDocumentBeforeChange *models.Reservation `bson:"fullDocumentBeforeChange"`
}

// operation type → change kind mapping. Deletes never match the status
// filter (no fullDocument) and are therefore invisible to this service.
func kindOf(operationType string) (ChangeKind, bool) {
	switch operationType {
	case "insert":
		return ChangeAdded, true
	case "update", "replace":
		return ChangeModified, true
	case "delete":
		return ChangeRemoved, true
	}
	return "", false
}

// buildPipeline translates a Filter into a change stream $match stage.
func buildPipeline(filter Filter) mongo.Pipeline {
	values := bson.A{}
	for _, v := range filter.Values {
		values = append(values, v)
	}

	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "update", "replace"}}}},
			{Key: "fullDocument." + filter.Field, Value: bson.D{{Key: "$in", Value: values}}},
		}}},
	}
}

// Subscribe opens a change stream filtered to the given predicate. Each
// delivered batch contains whatever events were immediately available, in
// stream order, plus the resume token after the last one.
func (s *MongoStore) Subscribe(ctx context.Context, filter Filter, resumeToken []byte) (Subscription, error) {
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if len(resumeToken) > 0 {
		opts = opts.SetResumeAfter(bson.Raw(resumeToken))
	}

	streamCtx, cancel := context.WithCancel(context.Background())

	stream, err := s.reservations.Watch(ctx, buildPipeline(filter), opts)
	if err != nil {
		cancel()
		return nil, err
	}

	sub := &mongoSubscription{
		stream:  stream,
		cancel:  cancel,
		changes: make(chan ChangeBatch),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
		logger:  s.logger,
	}
	go sub.consume(streamCtx)
	return sub, nil
}

// GetDriver fetches a driver document by id.
func (s *MongoStore) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	var drv models.Driver
	err := s.drivers.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&drv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &drv, nil
}

// mongoSubscription adapts a *mongo.ChangeStream to the Subscription port.
type mongoSubscription struct {
	stream  *mongo.ChangeStream
	cancel  context.CancelFunc
	changes chan ChangeBatch
	errs    chan error
	done    chan struct{}
	logger  logger.Logger
}

func (m *mongoSubscription) Changes() <-chan ChangeBatch { return m.changes }
func (m *mongoSubscription) Err() <-chan error           { return m.errs }

// Close releases the stream. The consuming goroutine owns stream teardown, so
// this only signals cancellation and waits for it to finish.
func (m *mongoSubscription) Close(ctx context.Context) error {
	m.cancel()
	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mongoSubscription) consume(ctx context.Context) {
	defer close(m.done)
	defer close(m.changes)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = m.stream.Close(closeCtx)
	}()

	for m.stream.Next(ctx) {
		events := make([]ChangeEvent, 0, 1)

		ev, ok := m.decodeCurrent()
		if ok {
			events = append(events, ev)
		}

		// Drain whatever else is immediately available so a burst of updates
		// is delivered as one ordered batch.
		for m.stream.TryNext(ctx) {
			if ev, ok := m.decodeCurrent(); ok {
				events = append(events, ev)
			}
		}

		if len(events) == 0 {
			continue
		}

		batch := ChangeBatch{
			Events:      events,
			ResumeToken: append([]byte(nil), m.stream.ResumeToken()...),
		}

		select {
		case m.changes <- batch:
		case <-ctx.Done():
			return
		}
	}

	if err := m.stream.Err(); err != nil && !errors.Is(err, context.Canceled) {
		m.errs <- err
	}
}

func (m *mongoSubscription) decodeCurrent() (ChangeEvent, bool) {
	var doc changeDocument
	if err := m.stream.Decode(&doc); err != nil {
		m.logger.Warn("failed to decode change event, skipping", map[string]interface{}{
			"error": err.Error(),
		})
		return ChangeEvent{}, false
	}

	kind, ok := kindOf(doc.OperationType)
	if !ok {
		return ChangeEvent{}, false
	}

	id := doc.DocumentKey.ID
	if id == "" {
		id = doc.FullDocument.ID
	}

	return ChangeEvent{
		Kind:        kind,
		DocumentID:  id,
		Reservation: doc.FullDocument,
		Previous:    doc.FullDocumentBeforeChange,
	}, true
}
