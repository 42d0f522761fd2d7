package adapter

import (
	"context"
	"encoding/json"

	"github.com/mitchellh/mapstructure"

	"github.com/Cyclone1070/fio/internal/errutil"
)

// Validator is implemented by requests that check their own fields.
type Validator interface {
	Validate() error
}

// Executor runs an operation with a typed request and response.
type Executor[Req, Resp any] func(context.Context, *Env, Req) (Resp, error)

// BaseOp implements Op for any typed executor by centralising argument
// decoding, validation and response marshaling.
type BaseOp[Req, Resp any] struct {
	name        string
	description string
	env         *Env
	executor    Executor[Req, Resp]
}

// NewBaseOp creates an Op named name that runs executor against env.
func NewBaseOp[Req, Resp any](name, description string, env *Env, executor Executor[Req, Resp]) *BaseOp[Req, Resp] {
	return &BaseOp[Req, Resp]{
		name:        name,
		description: description,
		env:         env,
		executor:    executor,
	}
}

// Name implements Op
func (b *BaseOp[Req, Resp]) Name() string {
	return b.name
}

// Description implements Op
func (b *BaseOp[Req, Resp]) Description() string {
	return b.description
}

// Execute implements Op. Unknown argument keys are rejected so typos in a
// script fail loudly instead of being ignored.
func (b *BaseOp[Req, Resp]) Execute(ctx context.Context, args map[string]any) (string, error) {
	var req Req
	if err := decode(args, &req); err != nil {
		return "", errutil.Wrap(err, errutil.InvalidArgument, "invalid arguments for "+b.name)
	}

	if v, ok := any(req).(Validator); ok {
		if err := v.Validate(); err != nil {
			return "", err
		}
	}

	resp, err := b.executor(ctx, b.env, req)
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return "", errutil.Wrap(err, errutil.Root, "failed to marshal response")
	}
	return string(out), nil
}

func decode(input, result any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      result,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
