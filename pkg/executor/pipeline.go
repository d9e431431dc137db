package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	sfsfilesystem "github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"

	"github.com/arthur-debert/confman/pkg/errors"
)

// step is one pending change and the slot of its result
type step struct {
	id     string
	slot   int
	mutate func() Result
	ran    bool
}

// batch collects the changes of one mapping so they run as a single
// synthfs pipeline
type batch struct {
	prefix string
	steps  []*step
}

func newBatch(op, module string) *batch {
	return &batch{prefix: fmt.Sprintf("%s_%s", op, module)}
}

func (b *batch) add(slot int, mutate func() Result) {
	b.steps = append(b.steps, &step{
		id:     fmt.Sprintf("%s_%d", b.prefix, slot),
		slot:   slot,
		mutate: mutate,
	})
}

// run executes the steps of b in order and stores each outcome in
// results. A failing step never stops the ones after it.
func (e *Executor) run(ctx context.Context, b *batch, results []Result) {
	if len(b.steps) == 0 {
		return
	}

	sfs := synthfs.New()
	ops := make([]synthfs.Operation, 0, len(b.steps))
	for _, st := range b.steps {
		ops = append(ops, sfs.CustomOperationWithID(st.id, func(_ context.Context, _ sfsfilesystem.FileSystem) error {
			st.ran = true
			if err := ctx.Err(); err != nil {
				results[st.slot] = cancelled(results[st.slot].Record, err)
				return nil
			}
			start := e.now()
			res := st.mutate()
			res.Duration = time.Since(start)
			results[st.slot] = res
			return nil
		}))
	}

	options := synthfs.DefaultPipelineOptions()
	options.RollbackOnError = false

	e.logger.Debug().Str("batch", b.prefix).Int("operationCount", len(ops)).Msg("Executing synthfs operations")
	_, runErr := synthfs.RunWithOptions(ctx, e.root, options, ops...)

	for _, st := range b.steps {
		if st.ran {
			continue
		}
		rec := results[st.slot].Record
		if err := ctx.Err(); err != nil {
			results[st.slot] = cancelled(rec, err)
			continue
		}
		if runErr != nil {
			results[st.slot] = failed(results[st.slot], errors.Wrapf(runErr, errors.ErrInternal, "operation for %s did not run", rec.Destination).
				WithDetail("destination", rec.Destination))
			continue
		}
		results[st.slot] = failed(results[st.slot], errors.Newf(errors.ErrInternal, "operation for %s did not run", rec.Destination).
			WithDetail("destination", rec.Destination))
	}
}

func newRoot() sfsfilesystem.FullFileSystem {
	return synthfs.NewPathAwareFileSystem(sfsfilesystem.NewOSFileSystem("/"), "/").WithAbsolutePaths()
}
