package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-gateway/pkg/binex"
	appErrors "github.com/noah-isme/school-gateway/pkg/errors"
)

type fakeCaller map[string]struct {
	body string
	err  error
}

func (f fakeCaller) Do(ctx context.Context, req binex.Request) ([]byte, error) {
	r := f[req.Task]
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.body), nil
}

func TestProbeClassifiesShapes(t *testing.T) {
	client := fakeCaller{
		"get_notices":    {body: `{"status":"success","data":[]}`},
		"get_homework":   {body: `[{"id":1}]`},
		"get_dues":       {body: `{"1":{"student_id":"1"}}`},
		"apply_leave":    {body: `{"status":"error","message":"duplicate"}`},
		"get_complaints": {err: appErrors.Clone(appErrors.ErrMalformedResponse, "not json")},
		"get_all_leaves": {err: appErrors.ErrBackendUnavailable},
	}
	results := run(context.Background(), client, []target{
		{Task: "get_notices", Critical: true},
		{Task: "get_homework"},
		{Task: "get_dues"},
		{Task: "apply_leave"},
		{Task: "get_complaints", Critical: true},
		{Task: "get_all_leaves"},
	})

	require.Len(t, results, 6)
	assert.Equal(t, binex.ShapeEnvelope, results[0].Shape)
	assert.Equal(t, binex.ShapeBareArray, results[1].Shape)
	assert.Equal(t, binex.ShapeObject, results[2].Shape)
	assert.Equal(t, binex.ShapeRejected, results[3].Shape)
	assert.Equal(t, binex.ShapeMalformed, results[4].Shape)
	assert.True(t, results[4].Failed())
	assert.Error(t, results[5].Error)
	assert.False(t, results[5].Failed())

	var out bytes.Buffer
	assert.Equal(t, 1, printReport(&out, results))
	assert.Contains(t, out.String(), "[FAIL] get_complaints")
	assert.Contains(t, out.String(), "[WARN] get_all_leaves")
}

func TestLoadTargets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "targets.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"targets":[{"task":"get_notices","params":{"q":"x"},"critical":true}]}`), 0o600))

	targets, err := loadTargets(path)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "x", targets[0].Params["q"])

	require.NoError(t, os.WriteFile(path, []byte(`{"targets":[]}`), 0o600))
	_, err = loadTargets(path)
	assert.Error(t, err)
}
