package firmware

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbforge/kbforge/keymap"
)

// fakeRunner records the invocation and plays back a canned outcome.
type fakeRunner struct {
	code   int
	output string
	err    error
	before func() // runs at invocation time, e.g. to drop an artifact

	gotDir  string
	gotArgv []string
	calls   int
}

func (f *fakeRunner) Run(_ context.Context, dir string, argv []string) (int, string, error) {
	f.calls++
	f.gotDir = dir
	f.gotArgv = append([]string(nil), argv...)
	if f.before != nil {
		f.before()
	}
	return f.code, f.output, f.err
}

type failingCheckout struct{ err error }

func (f failingCheckout) Sync(context.Context) error { return f.err }

func testDefinition() *keymap.Definition {
	return &keymap.Definition{
		Keyboard: "planck",
		Keymap:   "mine",
		Layout:   "LAYOUT_planck_grid",
		Layers:   [][]string{{"KC_A", "KC_B"}, {"KC_C", "KC_D"}},
	}
}

// newTestTree creates a firmware tree containing the definition's keyboard.
func newTestTree(t *testing.T, def *keymap.Definition) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "keyboards", def.Keyboard), 0o755))
	return root
}

func TestCompile_When_UnknownKeyboard(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{}
	c := New(t.TempDir(), WithRunner(runner), WithJobSource(StaticJobSource("")))

	res := c.Compile(context.Background(), testDefinition())

	assert.Equal(t, CodePrecondition, res.ReturnCode)
	assert.Equal(t, "Unknown keyboard!", res.Output)
	assert.Empty(t, res.Command)
	assert.Nil(t, res.Firmware)
	assert.Zero(t, runner.calls, "build must not run after a precondition failure")
}

func TestCompile_When_KeymapCollision(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	root := newTestTree(t, def)
	existing := filepath.Join(root, "keyboards", def.Keyboard, "keymaps", def.Keymap)
	require.NoError(t, os.MkdirAll(existing, 0o755))
	marker := filepath.Join(existing, "keymap.c")
	require.NoError(t, os.WriteFile(marker, []byte("// original"), 0o644))

	runner := &fakeRunner{}
	c := New(root, WithRunner(runner))

	res := c.Compile(context.Background(), def)

	assert.Equal(t, CodePrecondition, res.ReturnCode)
	assert.Contains(t, res.Output, existing)
	assert.Contains(t, res.Output, "Keymap name collision!")
	assert.Empty(t, res.Command)
	assert.Zero(t, runner.calls)

	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "// original", string(data), "existing keymap must not be overwritten")
}

func TestCompile_When_ParentScopedCollision(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	def.Keyboard = "clueboard/66/rev3"
	root := newTestTree(t, def)
	sibling := filepath.Join(root, "keyboards", "clueboard", "66", "keymaps", def.Keymap)
	require.NoError(t, os.MkdirAll(sibling, 0o755))

	c := New(root, WithRunner(&fakeRunner{}))

	res := c.Compile(context.Background(), def)

	assert.Equal(t, CodePrecondition, res.ReturnCode)
	assert.Contains(t, res.Output, sibling)
}

func TestCompile_When_BuildSucceeds(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	root := newTestTree(t, def)
	runner := &fakeRunner{
		code:   0,
		output: "Build complete\n",
		before: func() {
			_ = os.WriteFile(filepath.Join(root, "planck_mine.hex"), []byte("fw"), 0o644)
		},
	}
	c := New(root, WithRunner(runner), WithJobSource(StaticJobSource("job-42")))

	res := c.Compile(context.Background(), def)

	assert.Equal(t, 0, res.ReturnCode)
	assert.True(t, res.OK())
	assert.Equal(t, []string{"make", "COLOR=false", "planck:mine"}, res.Command)
	assert.Equal(t, res.Command, runner.gotArgv)
	assert.Equal(t, root, runner.gotDir)
	assert.Equal(t, "Build complete\n", res.Output)
	assert.Equal(t, "planck_mine.hex", res.FirmwareFilename)
	assert.Equal(t, []byte("fw"), res.Firmware)
	assert.Equal(t, "job-42", res.JobID)
	assert.Empty(t, res.Exception)

	written, err := os.ReadFile(filepath.Join(root, "keyboards", "planck", "keymaps", "mine", "keymap.c"))
	require.NoError(t, err)
	want, err := keymap.Resolver{Root: root}.Render(def.Keyboard, def.Layout, def.Layers)
	require.NoError(t, err)
	assert.Equal(t, want, string(written))
}

func TestCompile_When_BuildFails(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	root := newTestTree(t, def)
	runner := &fakeRunner{code: 2, output: "make: *** [planck:mine] Error 2\n"}
	c := New(root, WithRunner(runner))

	res := c.Compile(context.Background(), def)

	assert.Equal(t, 2, res.ReturnCode)
	assert.Equal(t, "failed", res.Status())
	assert.Equal(t, "make: *** [planck:mine] Error 2\n", res.Output)
	assert.Empty(t, res.FirmwareFilename, "no artifact lookup after a failed build")
	assert.Nil(t, res.Firmware)
}

func TestCompile_When_RunnerErrors(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	root := newTestTree(t, def)
	runner := &fakeRunner{err: errors.New("spawn failed")}
	c := New(root, WithRunner(runner))

	res := c.Compile(context.Background(), def)

	assert.Equal(t, CodeException, res.ReturnCode)
	assert.NotEmpty(t, res.Exception)
	assert.NotEmpty(t, res.Stacktrace)
	assert.Equal(t, res.Stacktrace, res.Output, "output falls back to the trace when empty")
}

func TestCompile_When_CheckoutFails(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	root := newTestTree(t, def)
	runner := &fakeRunner{}
	c := New(root,
		WithRunner(runner),
		WithCheckout(failingCheckout{err: errors.New("network down")}),
	)

	res := c.Compile(context.Background(), def)

	assert.Equal(t, CodeException, res.ReturnCode)
	assert.Contains(t, res.Stacktrace, "network down")
	assert.Zero(t, runner.calls)
}

func TestCompile_When_ArtifactMissingAfterSuccess(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	root := newTestTree(t, def)
	runner := &fakeRunner{code: 0, output: "done\n"}
	c := New(root, WithRunner(runner))

	res := c.Compile(context.Background(), def)

	assert.Equal(t, CodeException, res.ReturnCode)
	assert.NotEmpty(t, res.Exception)
	assert.Equal(t, "done\n", res.Output, "existing build output is preserved")
	assert.NotEmpty(t, res.Stacktrace)
}

func TestCompile_NeverPanics(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	root := newTestTree(t, def)
	runner := &fakeRunner{before: func() { panic("boom") }}
	c := New(root, WithRunner(runner))

	var res *Result
	assert.NotPanics(t, func() {
		res = c.Compile(context.Background(), def)
	})
	assert.Equal(t, CodeException, res.ReturnCode)
	assert.Equal(t, "string", res.Exception)
	assert.Contains(t, res.Stacktrace, "boom")
}

func TestCompile_When_NoJobContext(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	root := newTestTree(t, def)
	runner := &fakeRunner{code: 1, output: "no rule\n"}
	c := New(root, WithRunner(runner), WithJobSource(StaticJobSource("")))

	res := c.Compile(context.Background(), def)

	assert.Empty(t, res.JobID)
	assert.Equal(t, 1, res.ReturnCode)
}

func TestWriteKeymap_CreatesDirectory(t *testing.T) {
	t.Parallel()

	def := testDefinition()
	root := newTestTree(t, def)
	c := New(root, WithRunner(&fakeRunner{}))

	path, err := c.WriteKeymap(def)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "keyboards", "planck", "keymaps", "mine", "keymap.c"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\t[0] = LAYOUT_planck_grid(KC_A, KC_B),")
	assert.Contains(t, string(data), "\t[1] = LAYOUT_planck_grid(KC_C, KC_D)")
}
