package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.js")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestInspectJSON(t *testing.T) {
	out, err := execute(t, "inspect", "--output", "json")
	require.NoError(t, err)

	var res struct {
		RunID    string   `json:"run_id"`
		Frozen   int      `json:"frozen"`
		Visited  int      `json:"visited"`
		Repaired []string `json:"repaired"`
		Names    []string `json:"names"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.RunID)
	assert.Greater(t, res.Frozen, 0)
	assert.GreaterOrEqual(t, res.Visited, res.Frozen)
	assert.Contains(t, res.Names, "ObjectPrototype")
	assert.Contains(t, res.Repaired, "ObjectPrototype.__proto__")
}

func TestInspectYAML(t *testing.T) {
	out, err := execute(t, "inspect")
	require.NoError(t, err)

	var res map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	assert.Contains(t, res, "run_id")
	assert.Contains(t, res, "frozen")
	assert.Contains(t, res, "names")
}

func decodeRun(t *testing.T, out string) RunOutput {
	t.Helper()
	var res RunOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	return res
}

func TestRunScript(t *testing.T) {
	path := writeScript(t, `
		console.log('hi');
		Array.prototype.polluted = true;
		[1, 2].polluted === undefined
	`)

	out, err := execute(t, "run", path, "-o", "json")
	require.NoError(t, err)

	res := decodeRun(t, out)
	require.Len(t, res.Scripts, 1)
	script := res.Scripts[0]
	assert.Equal(t, path, script.File)
	assert.Equal(t, true, script.Value)
	require.Len(t, script.Console, 1)
	assert.Equal(t, "hi", script.Console[0].Message)
	assert.NotEmpty(t, script.SandboxID)
	require.NotNil(t, script.Hardening)
	assert.Greater(t, script.Hardening.Frozen, 0)

	// Built once, rebuilt on release
	assert.EqualValues(t, 2, res.Stats.HardenRuns)
	assert.EqualValues(t, 1, res.Stats.Executions)
}

func TestRunManyScriptsOnPool(t *testing.T) {
	t.Setenv("SANDBOX_POOL_SIZE", "2")
	paths := []string{
		writeScript(t, `globalThis.leak = 1; 'first'`),
		writeScript(t, `typeof leak`),
		writeScript(t, `Object.isFrozen(Array.prototype)`),
	}

	out, err := execute(t, append([]string{"run", "-o", "json"}, paths...)...)
	require.NoError(t, err)

	res := decodeRun(t, out)
	require.Len(t, res.Scripts, 3)
	for i, script := range res.Scripts {
		assert.Equal(t, paths[i], script.File, "results keep argument order")
	}
	assert.Equal(t, "first", res.Scripts[0].Value)
	assert.Equal(t, "undefined", res.Scripts[1].Value)
	assert.Equal(t, true, res.Scripts[2].Value)

	// Two pooled runtimes plus a rebuild after each script
	assert.EqualValues(t, 5, res.Stats.HardenRuns)
	assert.EqualValues(t, 3, res.Stats.Executions)
}

func TestRunScriptError(t *testing.T) {
	bad := writeScript(t, `throw new Error('bad')`)
	good := writeScript(t, `1 + 1`)

	out, err := execute(t, "run", bad, good, "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)

	res := decodeRun(t, out)
	require.Len(t, res.Scripts, 2)
	assert.Contains(t, res.Scripts[0].Error, "bad")
	assert.Empty(t, res.Scripts[1].Error, "one failing script does not stop the others")
	assert.EqualValues(t, 2, res.Scripts[1].Value)
	assert.EqualValues(t, 1, res.Stats.ExecutionFails)
}

func TestRunHardeningDisabled(t *testing.T) {
	t.Setenv("HARDEN_ENABLED", "false")
	path := writeScript(t, `Object.isFrozen(Object.prototype)`)

	out, err := execute(t, "run", path, "-o", "json")
	require.NoError(t, err)

	res := decodeRun(t, out)
	require.Len(t, res.Scripts, 1)
	assert.Equal(t, false, res.Scripts[0].Value)
	assert.Nil(t, res.Scripts[0].Hardening)
}

func TestRunMissingFile(t *testing.T) {
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
}

func TestInvalidOutput(t *testing.T) {
	_, err := execute(t, "inspect", "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "inspect", "--log-level", "loud")
	assert.Error(t, err)
}
