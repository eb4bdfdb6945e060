package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spendline/expense-approval/internal/core/domain"
	"github.com/spendline/expense-approval/internal/core/ports"
)

// ExpenseWatcher tails the expenses collection through a change stream and
// forwards every insert and update to a publisher. Change streams require
// MongoDB to run as a replica set.
type ExpenseWatcher struct {
	coll      *mongo.Collection
	publisher ports.ChangePublisher
	logger    zerolog.Logger

	newBackOff func() backoff.BackOff
}

func NewExpenseWatcher(db *mongo.Database, publisher ports.ChangePublisher, logger zerolog.Logger) *ExpenseWatcher {
	return &ExpenseWatcher{
		coll:      db.Collection(collectionExpenses),
		publisher: publisher,
		logger:    logger,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			b.MaxInterval = 30 * time.Second
			b.MaxElapsedTime = 0
			return b
		},
	}
}

type changeEvent struct {
	ID            bson.Raw            `bson:"_id"`
	OperationType string              `bson:"operationType"`
	ClusterTime   primitive.Timestamp `bson:"clusterTime"`
	FullDocument  *expenseDoc         `bson:"fullDocument"`
}

// Run blocks until ctx is cancelled, reopening the stream from the last
// resume token whenever it fails.
func (w *ExpenseWatcher) Run(ctx context.Context) error {
	var resumeToken bson.Raw
	b := backoff.WithContext(w.newBackOff(), ctx)

	for {
		err := w.watch(ctx, &resumeToken, b)
		if ctx.Err() != nil {
			w.logger.Info().Msg("expense watcher stopped")
			return nil
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			return fmt.Errorf("expense watcher: %w", err)
		}
		w.logger.Warn().Err(err).Dur("retry_in", wait).Msg("change stream interrupted")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

func (w *ExpenseWatcher) watch(ctx context.Context, resumeToken *bson.Raw, b backoff.BackOff) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"operationType": bson.M{"$in": bson.A{"insert", "update", "replace"}}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	if *resumeToken != nil {
		opts.SetResumeAfter(*resumeToken)
	}

	stream, err := w.coll.Watch(ctx, pipeline, opts)
	if err != nil {
		return fmt.Errorf("open change stream: %w", err)
	}
	defer stream.Close(context.WithoutCancel(ctx))

	w.logger.Info().Bool("resumed", *resumeToken != nil).Msg("change stream opened")
	b.Reset()

	for stream.Next(ctx) {
		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			w.logger.Error().Err(err).Msg("failed to decode change event")
			*resumeToken = stream.ResumeToken()
			continue
		}
		*resumeToken = stream.ResumeToken()

		change, err := ev.toChange()
		if err != nil {
			w.logger.Error().Err(err).Str("operation", ev.OperationType).Msg("skipping change event")
			continue
		}
		w.publisher.Publish(change)
	}

	if err := stream.Err(); err != nil {
		return err
	}
	return errors.New("change stream closed")
}

func (ev changeEvent) toChange() (domain.ExpenseChange, error) {
	if ev.FullDocument == nil {
		return domain.ExpenseChange{}, errors.New("change event without full document")
	}
	e, err := ev.FullDocument.toDomain()
	if err != nil {
		return domain.ExpenseChange{}, err
	}
	at := time.Unix(int64(ev.ClusterTime.T), 0).UTC()
	if ev.ClusterTime.T == 0 {
		at = time.Now().UTC()
	}
	return domain.ExpenseChange{
		Operation: domain.ChangeOperation(ev.OperationType),
		Expense:   e,
		At:        at,
	}, nil
}
