package worker

import (
	"context"
	"sync"

	"github.com/okian/ritmo/internal/adapters/mq/queue"
	"github.com/okian/ritmo/internal/domain/model"
	"github.com/okian/ritmo/internal/domain/normalize"
)

const defaultThreshold = 2000

// batch normalizes rows into slots indexed like the input so output order
// never depends on which worker finished first.
type batch struct {
	n        *normalize.Normalizer
	rows     []model.RawRow
	records  []model.Record
	outcomes []normalize.Outcome
	wg       sync.WaitGroup
}

func newBatch(n *normalize.Normalizer, rows []model.RawRow) *batch {
	b := &batch{
		n:        n,
		rows:     rows,
		records:  make([]model.Record, len(rows)),
		outcomes: make([]normalize.Outcome, len(rows)),
	}
	b.wg.Add(len(rows))
	return b
}

// Fill implements queue.Target.
func (b *batch) Fill(_ context.Context, i int) {
	defer b.wg.Done()
	b.records[i], b.outcomes[i] = b.n.Row(b.rows[i])
}

// wait blocks until every slot is filled. If the workers stop first, the
// caller drains the queue itself.
func (b *batch) wait(ctx context.Context, p *Pool) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.idle:
	}
	p.drain(ctx)
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *batch) result() normalize.Batch {
	out := normalize.Batch{Records: make([]model.Record, 0, len(b.records))}
	for i := range b.records {
		out.Add(b.records[i], b.outcomes[i])
	}
	return out
}

// Normalize runs n over rows. Batches below the pool threshold run inline;
// larger ones are fanned out to the workers. Rows the queue rejects are
// normalized by the caller, so a full queue slows a batch down but never
// fails it. Without running workers every batch runs inline. The result
// keeps input order.
func (p *Pool) Normalize(ctx context.Context, n *normalize.Normalizer, rows []model.RawRow) (normalize.Batch, error) {
	if len(rows) < p.threshold || !p.Running() {
		return n.All(rows), nil
	}
	b := newBatch(n, rows)
	for i := range rows {
		if !p.queue.Enqueue(ctx, queue.Job{Target: b, Index: i}) {
			b.Fill(ctx, i)
		}
	}
	if err := b.wait(ctx, p); err != nil {
		return normalize.Batch{}, err
	}
	return b.result(), nil
}
