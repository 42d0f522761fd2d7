package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Cyclone1070/fio/internal/errutil"
)

// Step is one entry of a batch script.
type Step struct {
	Op   string         `mapstructure:"op"`
	Args map[string]any `mapstructure:"args"`
	// OnError lists error kinds the step may fail with without stopping the
	// batch. Descendant kinds are tolerated too.
	OnError []string `mapstructure:"on_error"`
}

// Result records the outcome of a step that did not stop the batch.
type Result struct {
	Step   int
	Op     string
	Output string
	// Tolerated is the error the step failed with when one of its OnError
	// kinds matched.
	Tolerated error
}

// ParseScript decodes a JSON array of steps.
func ParseScript(data []byte) ([]Step, error) {
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errutil.Wrap(err, errutil.InvalidArgument, "script is not a JSON array of steps")
	}
	steps := make([]Step, 0, len(raw))
	if err := decode(raw, &steps); err != nil {
		return nil, errutil.Wrap(err, errutil.InvalidArgument, "invalid step")
	}
	for i, s := range steps {
		if s.Op == "" {
			return nil, errutil.Newf(errutil.InvalidArgument, "step %d: op is required", i+1)
		}
	}
	return steps, nil
}

// Runner executes scripts against a fixed set of ops.
type Runner struct {
	ops map[string]Op
	log log.FieldLogger
}

// NewRunner returns a Runner that dispatches to ops by name.
func NewRunner(logger log.FieldLogger, ops ...Op) *Runner {
	if logger == nil {
		logger = log.StandardLogger()
	}
	r := &Runner{ops: make(map[string]Op, len(ops)), log: logger}
	for _, op := range ops {
		r.ops[op.Name()] = op
	}
	return r
}

// Run executes steps in order. Each step runs in its own named frame, so an
// error that stops the batch records which step raised it. Results holds every
// step that completed or was tolerated.
func (r *Runner) Run(ctx context.Context, steps []Step) ([]Result, error) {
	results := make([]Result, 0, len(steps))
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return results, errutil.Wrap(err, errutil.Root, "batch cancelled")
		}

		res := Result{Step: i + 1, Op: step.Op}
		frame := fmt.Sprintf("step %d (%s)", res.Step, step.Op)
		clauses := []errutil.Clause{errutil.Named(frame)}

		tolerated, err := parseKinds(step.OnError)
		if err != nil {
			return results, errutil.Propagate(err, frame)
		}
		if len(tolerated) > 0 {
			clauses = append(clauses, errutil.Catch(func(err error) error {
				res.Tolerated = err
				return nil
			}, tolerated...))
		}

		err = errutil.Try(func() error {
			op, ok := r.ops[step.Op]
			if !ok {
				return errutil.Newf(errutil.InvalidArgument, "unknown op %q", step.Op)
			}
			out, err := op.Execute(ctx, step.Args)
			res.Output = out
			return err
		}, clauses...)
		if err != nil {
			return results, err
		}

		entry := r.log.WithFields(log.Fields{"step": res.Step, "op": step.Op})
		if res.Tolerated != nil {
			entry.WithError(res.Tolerated).Warn("step failed, continuing")
		} else {
			entry.Debug("step done")
		}
		results = append(results, res)
	}
	return results, nil
}

func parseKinds(names []string) ([]errutil.Kind, error) {
	kinds := make([]errutil.Kind, 0, len(names))
	for _, name := range names {
		k := errutil.Kind(name)
		if !errutil.Known(k) {
			return nil, errutil.Newf(errutil.InvalidArgument, "unknown error kind %q", name)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
