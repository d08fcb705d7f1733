package suggest

import (
	"context"

	"go.uber.org/zap"

	"github.com/v0xg/seoaudit/internal/issues"
)

// DefaultBatchSize is the number of records sent per request.
const DefaultBatchSize = 50

// Suggester fills suggestions for one same-category batch. It returns the
// batch with the same records in the same order.
type Suggester interface {
	Suggest(ctx context.Context, category issues.Category, batch []issues.Record) []issues.Record
}

// Progress describes one completed batch.
type Progress struct {
	Category issues.Category
	Batch    int
	Batches  int
	Size     int
}

// Scheduler splits records into fixed-size batches and runs them through a
// Suggester one at a time.
type Scheduler struct {
	suggester Suggester
	batchSize int
	logger    *zap.Logger
	onBatch   func(Progress)
}

// NewScheduler creates a scheduler. A non-positive batch size selects DefaultBatchSize.
func NewScheduler(suggester Suggester, batchSize int, logger *zap.Logger) *Scheduler {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{suggester: suggester, batchSize: batchSize, logger: logger}
}

// OnBatch registers a callback invoked after each batch completes.
func (s *Scheduler) OnBatch(fn func(Progress)) {
	s.onBatch = fn
}

// Process returns records with suggestions filled, in input order. Each run of
// consecutive same-category records is chunked positionally; batches are
// processed strictly in sequence.
func (s *Scheduler) Process(ctx context.Context, records []issues.Record) []issues.Record {
	if len(records) == 0 {
		return []issues.Record{}
	}

	out := make([]issues.Record, 0, len(records))
	for start := 0; start < len(records); {
		end := start + 1
		for end < len(records) && records[end].Category == records[start].Category {
			end++
		}
		out = append(out, s.processCategory(ctx, records[start].Category, records[start:end])...)
		start = end
	}
	return out
}

func (s *Scheduler) processCategory(ctx context.Context, category issues.Category, records []issues.Record) []issues.Record {
	batches := (len(records) + s.batchSize - 1) / s.batchSize
	out := make([]issues.Record, 0, len(records))

	for start, batch := 0, 1; start < len(records); start, batch = start+s.batchSize, batch+1 {
		end := start + s.batchSize
		if end > len(records) {
			end = len(records)
		}

		s.logger.Info("generating suggestions",
			zap.String("category", category.String()),
			zap.Int("batch", batch),
			zap.Int("batches", batches),
			zap.Int("size", end-start))

		chunk := append([]issues.Record(nil), records[start:end]...)
		if filled := s.suggester.Suggest(ctx, category, chunk); len(filled) == len(chunk) {
			chunk = filled
		} else {
			s.logger.Warn("suggester changed batch size, keeping original records",
				zap.String("category", category.String()),
				zap.Int("sent", len(chunk)),
				zap.Int("returned", len(filled)))
		}
		for i := range chunk {
			if chunk[i].SuggestedFix == "" {
				chunk[i].SuggestedFix = chunk[i].DefaultFix()
			}
		}
		out = append(out, chunk...)

		if s.onBatch != nil {
			s.onBatch(Progress{Category: category, Batch: batch, Batches: batches, Size: end - start})
		}
	}
	return out
}
