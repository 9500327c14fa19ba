package firestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/tinywideclouds/go-notification-trigger/internal/pipeline"
	"github.com/tinywideclouds/go-notification-trigger/pkg/dispatch"
)

// RecordProcessor is the part of pipeline.Processor the watcher needs.
type RecordProcessor interface {
	Process(ctx context.Context, notificationID string, decode pipeline.Decoder) pipeline.Outcome
}

// Watcher listens for documents created in a collection and hands each one
// to the processor exactly once per listener lifetime.
type Watcher struct {
	client     *firestore.Client
	collection string
	processor  RecordProcessor
	numWorkers int
	logger     *slog.Logger
}

func NewWatcher(client *firestore.Client, collection string, processor RecordProcessor, numWorkers int, logger *slog.Logger) *Watcher {
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &Watcher{
		client:     client,
		collection: collection,
		processor:  processor,
		numWorkers: numWorkers,
		logger:     logger.With("component", "FirestoreWatcher", "collection", collection),
	}
}

// Watch blocks until ctx is cancelled or the listener fails. Documents that
// already exist when the listener attaches are not processed. In-flight
// documents are allowed to finish before Watch returns.
func (w *Watcher) Watch(ctx context.Context) error {
	it := w.client.Collection(w.collection).Snapshots(ctx)
	defer it.Stop()

	var workers errgroup.Group
	workers.SetLimit(w.numWorkers)
	procCtx := context.WithoutCancel(ctx)

	var cutoff time.Time
	for {
		snap, err := it.Next()
		if err != nil {
			_ = workers.Wait()
			if errors.Is(err, iterator.Done) || ctx.Err() != nil || status.Code(err) == codes.Canceled {
				w.logger.Info("Snapshot listener stopped")
				return nil
			}
			return fmt.Errorf("snapshot listener on %q failed: %w", w.collection, err)
		}

		// The first snapshot is the current contents of the collection.
		if cutoff.IsZero() {
			cutoff = snap.ReadTime
			w.logger.Info("Snapshot listener attached", "existing_docs", snap.Size, "cutoff", cutoff)
			continue
		}

		for _, doc := range createdSince(snap.Changes, cutoff) {
			workers.Go(func() error {
				w.processor.Process(procCtx, doc.Ref.ID, func() (*dispatch.NotificationRecord, error) {
					return pipeline.DecodeSnapshot(doc)
				})
				return nil
			})
		}
	}
}

// createdSince keeps the documents that were added to the query results and
// created after cutoff. Modifications and removals are dropped.
func createdSince(changes []firestore.DocumentChange, cutoff time.Time) []*firestore.DocumentSnapshot {
	var docs []*firestore.DocumentSnapshot
	for _, change := range changes {
		if change.Kind != firestore.DocumentAdded || change.Doc == nil {
			continue
		}
		if !change.Doc.CreateTime.After(cutoff) {
			continue
		}
		docs = append(docs, change.Doc)
	}
	return docs
}
