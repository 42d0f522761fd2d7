package adapter

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Cyclone1070/fio/internal/errutil"
	"github.com/Cyclone1070/fio/internal/fsutil"
)

func newRunner(t *testing.T) (*Runner, *Env) {
	t.Helper()
	env := NewEnv(fsutil.NewMemory(), "utf-8", nil)
	return NewRunner(nil, Ops(env)...), env
}

func TestParseScript(t *testing.T) {
	steps, err := ParseScript([]byte(`[
		{"op": "mkdir", "args": {"path": "/d"}},
		{"op": "rmdir", "args": {"path": "/d"}, "on_error": ["NotFoundError"]}
	]`))
	require.NoError(t, err)
	require.Len(t, steps, 2)
	assert.Equal(t, "mkdir", steps[0].Op)
	assert.Equal(t, map[string]any{"path": "/d"}, steps[0].Args)
	assert.Equal(t, []string{"NotFoundError"}, steps[1].OnError)

	tests := []struct {
		name   string
		script string
	}{
		{"not json", `{`},
		{"not an array", `{"op": "pwd"}`},
		{"unknown key", `[{"op": "pwd", "retry": 3}]`},
		{"missing op", `[{"args": {}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript([]byte(tt.script))
			require.Error(t, err)
			assert.True(t, errutil.IsA(errutil.KindOf(err), errutil.InvalidArgument))
		})
	}
}

func TestRun_FileAndDirectoryOps(t *testing.T) {
	r, env := newRunner(t)
	steps := []Step{
		{Op: "mkdir", Args: map[string]any{"path": "/work/logs", "parents": true}},
		{Op: "chdir", Args: map[string]any{"path": "/work"}},
		{Op: "write_text", Args: map[string]any{"path": "notes.txt", "content": "one\ntwo\n"}},
		{Op: "write_text", Args: map[string]any{"path": "notes.txt", "content": "three\n", "mode": "a"}},
		{Op: "read_lines", Args: map[string]any{"path": "notes.txt"}},
		{Op: "read_text", Args: map[string]any{"path": "notes.txt", "limit": float64(3)}},
		{Op: "rename", Args: map[string]any{"from": "notes.txt", "to": "logs/notes.txt"}},
		{Op: "list", Args: map[string]any{"path": "logs"}},
		{Op: "pwd"},
	}

	results, err := r.Run(context.Background(), steps)
	require.NoError(t, err)
	require.Len(t, results, len(steps))

	assert.JSONEq(t, `{"written": 8}`, results[2].Output)
	assert.JSONEq(t, `{"lines": ["one\n", "two\n", "three\n"]}`, results[4].Output)
	assert.JSONEq(t, `{"content": "one"}`, results[5].Output)
	assert.JSONEq(t, `{"entries": ["notes.txt"]}`, results[7].Output)
	assert.JSONEq(t, `{"path": "/work"}`, results[8].Output)
	assert.True(t, env.Dirs.Exists("/work/logs/notes.txt"))
}

func TestRun_ListVisible(t *testing.T) {
	r, env := newRunner(t)
	require.NoError(t, util.WriteFile(env.FS.Backend(), "/p/.gitignore", []byte("*.tmp\n"), 0o644))
	require.NoError(t, util.WriteFile(env.FS.Backend(), "/p/a.tmp", nil, 0o644))
	require.NoError(t, util.WriteFile(env.FS.Backend(), "/p/b.txt", nil, 0o644))

	results, err := r.Run(context.Background(), []Step{
		{Op: "list", Args: map[string]any{"path": "/p", "visible": true}},
	})
	require.NoError(t, err)

	var resp ListResponse
	require.NoError(t, json.Unmarshal([]byte(results[0].Output), &resp))
	assert.Equal(t, []string{".gitignore", "b.txt"}, resp.Entries)
}

func TestRun_FailureNamesTheStep(t *testing.T) {
	r, _ := newRunner(t)
	results, err := r.Run(context.Background(), []Step{
		{Op: "mkdir", Args: map[string]any{"path": "/d"}},
		{Op: "rmdir", Args: map[string]any{"path": "/missing"}},
		{Op: "pwd"},
	})

	require.Error(t, err)
	assert.Len(t, results, 1, "the batch stops at the failing step")
	e := errutil.AsError(err)
	assert.Equal(t, errutil.NotFound, e.Kind)
	assert.Equal(t, []string{"step 2 (rmdir)"}, e.Frames)
}

func TestRun_ToleratedKinds(t *testing.T) {
	r, _ := newRunner(t)
	results, err := r.Run(context.Background(), []Step{
		{Op: "remove", Args: map[string]any{"path": "/missing"}, OnError: []string{"IOError"}},
		{Op: "mkdir", Args: map[string]any{"path": "/d"}},
		{Op: "mkdir", Args: map[string]any{"path": "/d"}, OnError: []string{"NotFoundError"}},
	})

	require.Error(t, err)
	assert.Equal(t, errutil.AlreadyExists, errutil.KindOf(err), "only listed kinds are tolerated")
	require.Len(t, results, 2)
	assert.Equal(t, errutil.NotFound, errutil.KindOf(results[0].Tolerated))
	assert.Empty(t, results[0].Output)
	assert.NoError(t, results[1].Tolerated)
}

func TestRun_InvalidSteps(t *testing.T) {
	r, _ := newRunner(t)

	tests := []struct {
		name string
		step Step
		want errutil.Kind
	}{
		{"unknown op", Step{Op: "format_disk"}, errutil.InvalidArgument},
		{"unknown argument", Step{Op: "pwd", Args: map[string]any{"verbose": true}}, errutil.InvalidArgument},
		{"wrong argument type", Step{Op: "mkdir", Args: map[string]any{"path": 12}}, errutil.InvalidArgument},
		{"missing path", Step{Op: "remove", Args: map[string]any{}}, errutil.InvalidArgument},
		{"negative limit", Step{Op: "read_text", Args: map[string]any{"path": "/x", "limit": -1}}, errutil.InvalidArgument},
		{"bad mode", Step{Op: "write_text", Args: map[string]any{"path": "/x", "mode": "q"}}, errutil.InvalidArgument},
		{"unknown tolerated kind", Step{Op: "pwd", OnError: []string{"NoSuchError"}}, errutil.InvalidArgument},
		{"unknown encoding", Step{Op: "read_text", Args: map[string]any{"path": "/x", "encoding": "klingon"}}, errutil.Encoding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Run(context.Background(), []Step{tt.step})
			require.Error(t, err)
			assert.Equal(t, tt.want, errutil.KindOf(err), "error: %v", err)
		})
	}
}

func TestRun_Cancelled(t *testing.T) {
	r, _ := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := r.Run(ctx, []Step{{Op: "pwd"}})
	require.Error(t, err)
	assert.Empty(t, results)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOps_Names(t *testing.T) {
	env := NewEnv(fsutil.NewMemory(), "utf-8", nil)
	seen := map[string]bool{}
	for _, op := range Ops(env) {
		assert.NotEmpty(t, op.Description())
		assert.False(t, seen[op.Name()], "duplicate op %s", op.Name())
		seen[op.Name()] = true
	}
	assert.Len(t, seen, 11)
}
