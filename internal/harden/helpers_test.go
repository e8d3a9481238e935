package harden

import (
	"testing"
	"time"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

// object evaluates src in vm and returns the resulting object.
func object(t *testing.T, vm *goja.Runtime, src string) *goja.Object {
	t.Helper()
	v, err := vm.RunString(src)
	require.NoError(t, err, "evaluating fixture")
	obj, ok := v.(*goja.Object)
	require.True(t, ok, "fixture did not produce an object: %v", v)
	return obj
}

// eval evaluates src in vm and exports the result.
func eval(t *testing.T, vm *goja.Runtime, src string) interface{} {
	t.Helper()
	v, err := vm.RunString(src)
	require.NoError(t, err)
	return v.Export()
}

// collectPaths walks root and returns the visited paths in order.
func collectPaths(t *testing.T, w *Walker, root *goja.Object) []string {
	t.Helper()
	var paths []string
	_, err := w.Walk(root, func(n Node) error {
		paths = append(paths, n.Path)
		return nil
	})
	require.NoError(t, err)
	return paths
}

type recordedPass struct {
	pass  string
	nodes int
}

type fakeRecorder struct {
	runs     []string
	passes   []recordedPass
	repaired int
	failed   int
}

func (r *fakeRecorder) RecordHardenRun(status string, _ time.Duration) {
	r.runs = append(r.runs, status)
}

func (r *fakeRecorder) RecordPass(pass string, nodes int) {
	r.passes = append(r.passes, recordedPass{pass: pass, nodes: nodes})
}

func (r *fakeRecorder) RecordRepairs(repaired, failed int) {
	r.repaired += repaired
	r.failed += failed
}
