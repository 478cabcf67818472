package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vanshika/hopgraph/internal/dataset"
	"github.com/vanshika/hopgraph/internal/domain"
	"github.com/vanshika/hopgraph/internal/metrics"
)

// GraphWriter is the storage contract required by the bulk ingestor.
type GraphWriter interface {
	UpsertVertex(ctx context.Context, v domain.Vertex) error
	UpsertEdge(ctx context.Context, e domain.Edge) error
}

// LabelDefiner is implemented by stores that can declare an edge label before
// any edge uses it.
type LabelDefiner interface {
	DefineEdgeLabel(ctx context.Context, name string) error
}

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors:", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString(" ")
		b.WriteString(err.Error())
		b.WriteString(";")
	}
	return b.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkIngestor writes large vertex and edge sets using a worker pool.
type BulkIngestor struct {
	store   GraphWriter
	workers int
}

// NewBulkIngestor creates a new BulkIngestor with the provided concurrency.
func NewBulkIngestor(store GraphWriter, workers int) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	return &BulkIngestor{
		store:   store,
		workers: workers,
	}
}

// IngestDataset declares labels when the store supports it, then writes every
// vertex before any edge so edge endpoints exist.
func (bi *BulkIngestor) IngestDataset(ctx context.Context, ds *dataset.Dataset) error {
	if definer, ok := bi.store.(LabelDefiner); ok {
		for _, label := range ds.Labels() {
			if err := definer.DefineEdgeLabel(ctx, label); err != nil {
				return err
			}
		}
	}
	if err := bi.IngestVertices(ctx, ds.DomainVertices()); err != nil {
		return fmt.Errorf("ingest vertices: %w", err)
	}
	if err := bi.IngestEdges(ctx, ds.DomainEdges()); err != nil {
		return fmt.Errorf("ingest edges: %w", err)
	}
	return nil
}

// IngestVertices upserts vertices concurrently.
func (bi *BulkIngestor) IngestVertices(ctx context.Context, vertices []domain.Vertex) error {
	return bi.run(ctx, "vertex", len(vertices), func(idx int) error {
		return bi.store.UpsertVertex(ctx, vertices[idx])
	})
}

// IngestEdges upserts edges concurrently.
func (bi *BulkIngestor) IngestEdges(ctx context.Context, edges []domain.Edge) error {
	return bi.run(ctx, "edge", len(edges), func(idx int) error {
		return bi.store.UpsertEdge(ctx, edges[idx])
	})
}

func (bi *BulkIngestor) run(ctx context.Context, kind string, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			err := workerFn(idx)
			if err == nil {
				metrics.IngestedTotal.WithLabelValues(kind, "ok").Inc()
				continue
			}
			metrics.IngestedTotal.WithLabelValues(kind, "error").Inc()
			select {
			case errCh <- fmt.Errorf("%s %d: %w", kind, idx, err):
			case <-ctx.Done():
				return
			}
		}
	}

	for i := 0; i < bi.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	if err := ctx.Err(); err != nil {
		return err
	}

	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}
