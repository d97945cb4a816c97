// Package sink persists accepted leads outside the process. Each sink is an
// event handler on LeadSubmitted; a failing sink never affects the intake
// response or the other sinks.
package sink

import (
	"context"
	"fmt"

	"spartan_estimator/internal/adapters/storage"
	"spartan_estimator/internal/events"
	"spartan_estimator/internal/leads/domain"
	"spartan_estimator/platform/logger"
	"spartan_estimator/platform/metrics"

	json "github.com/goccy/go-json"
)

const (
	databaseSink = "database"
	archiveSink  = "archive"

	archiveContentType = "application/json"
)

// LeadWriter stores a lead row.
type LeadWriter interface {
	Insert(ctx context.Context, lead domain.Lead) error
}

// Database writes every accepted lead to Postgres.
type Database struct {
	repo    LeadWriter
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewDatabase(repo LeadWriter, m *metrics.Metrics, log *logger.Logger) *Database {
	return &Database{repo: repo, metrics: m, log: log}
}

func (d *Database) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadSubmitted{}.EventName(), d)
}

func (d *Database) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadSubmitted)
	if !ok {
		return nil
	}
	if err := d.repo.Insert(ctx, e.Lead); err != nil {
		d.log.SinkError(databaseSink, e.Lead.ID, err)
		d.metrics.ObserveSinkFailure(databaseSink)
		return err
	}
	return nil
}

// Archive writes every accepted lead as a JSON document to object storage.
type Archive struct {
	store   storage.ObjectStore
	bucket  string
	metrics *metrics.Metrics
	log     *logger.Logger
}

func NewArchive(store storage.ObjectStore, bucket string, m *metrics.Metrics, log *logger.Logger) *Archive {
	return &Archive{store: store, bucket: bucket, metrics: m, log: log}
}

func (a *Archive) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadSubmitted{}.EventName(), a)
}

func (a *Archive) Handle(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadSubmitted)
	if !ok {
		return nil
	}
	if err := a.put(ctx, e.Lead); err != nil {
		a.log.SinkError(archiveSink, e.Lead.ID, err)
		a.metrics.ObserveSinkFailure(archiveSink)
		return err
	}
	return nil
}

func (a *Archive) put(ctx context.Context, lead domain.Lead) error {
	data, err := json.MarshalIndent(lead, "", "  ")
	if err != nil {
		return fmt.Errorf("encode lead %s: %w", lead.ID, err)
	}
	return a.store.PutObject(ctx, a.bucket, ArchiveKey(lead), archiveContentType, data)
}

// ArchiveKey partitions archived leads by UTC submission day.
func ArchiveKey(lead domain.Lead) string {
	return fmt.Sprintf("leads/%s/%s.json", lead.SubmittedAt.UTC().Format("2006/01/02"), lead.ID)
}
