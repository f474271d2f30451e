package firmware

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/kbforge/kbforge/keymap"
)

// ErrUnknownKeyboard is the precondition failure for a keyboard with no
// directory in the firmware tree.
var ErrUnknownKeyboard = errors.New("Unknown keyboard!")

// KeymapExistsError is the precondition failure for a keymap name that is
// already taken at one of the candidate paths. Builds never overwrite an
// existing keymap.
type KeymapExistsError struct {
	Path string
}

func (e *KeymapExistsError) Error() string {
	return fmt.Sprintf("Keymap name collision! %s already exists!", e.Path)
}

// Compiler coordinates one keymap build: sync the tree, check preconditions,
// render and persist the keymap source, run the build tool, collect the
// artifact. Every failure along the way is captured into the returned Result;
// Compile never returns an error and never lets a panic escape.
type Compiler struct {
	tree     Tree
	runner   Runner
	checkout Checkout
	jobs     JobSource
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithRunner overrides the build command runner.
func WithRunner(r Runner) Option {
	return func(c *Compiler) { c.runner = r }
}

// WithCheckout overrides the tree checkout strategy.
func WithCheckout(co Checkout) Option {
	return func(c *Compiler) { c.checkout = co }
}

// WithJobSource sets the provider of the current job identifier.
func WithJobSource(js JobSource) Option {
	return func(c *Compiler) { c.jobs = js }
}

// New creates a Compiler for the firmware tree at root. By default it runs
// builds with ExecRunner, leaves the tree as-is (NopCheckout), and reads the
// job id from the environment.
func New(root string, opts ...Option) *Compiler {
	c := &Compiler{
		tree:     Tree{Root: root},
		runner:   &ExecRunner{},
		checkout: NopCheckout{},
		jobs:     EnvJobSource{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tree exposes the compiler's path conventions.
func (c *Compiler) Tree() Tree { return c.tree }

// Compile builds firmware for the given keymap definition.
//
// The returned Result is terminal in exactly one of three states:
// CodePrecondition (-1) with a human-readable message, the build tool's own
// exit code with its combined output, or CodeException (-3) with an
// exception kind and captured trace.
//
// The keymap-collision check and the later directory creation are not
// atomic: two concurrent builds of the same keyboard:keymap pair can race.
// The tree is assumed to be owned by one job at a time by scheduler
// convention.
func (c *Compiler) Compile(ctx context.Context, def *keymap.Definition) (res *Result) {
	res = newResult(def.Keyboard, def.Keymap, def.Layout)
	defer func() {
		if r := recover(); r != nil {
			capture(res, fmt.Sprintf("%T", r), fmt.Sprintf("panic: %v\n\n%s", r, debug.Stack()))
		}
	}()

	if c.jobs != nil {
		if id, ok := c.jobs.CurrentJobID(); ok {
			res.JobID = id
		}
	}

	if err := c.checkout.Sync(ctx); err != nil {
		capture(res, errKind(err), err.Error())
		return res
	}

	if err := c.checkPreconditions(def.Keyboard, def.Keymap); err != nil {
		res.ReturnCode = CodePrecondition
		res.Command = nil
		res.Output = err.Error()
		return res
	}

	if _, err := c.WriteKeymap(def); err != nil {
		capture(res, errKind(err), err.Error())
		return res
	}

	code, output, err := c.runner.Run(ctx, c.tree.Root, res.Command)
	if err != nil {
		capture(res, errKind(err), err.Error())
		return res
	}
	res.ReturnCode = code
	res.Output = output

	if code == 0 {
		name, data, err := c.tree.LoadArtifact(def.Keyboard, def.Keymap)
		if err != nil {
			capture(res, errKind(err), err.Error())
			return res
		}
		res.FirmwareFilename = name
		res.Firmware = data
	}
	return res
}

// WriteKeymap renders the keymap source and persists it into the tree,
// creating the keymap directory as needed. Returns the path written.
func (c *Compiler) WriteKeymap(def *keymap.Definition) (string, error) {
	source, err := keymap.Resolver{Root: c.tree.Root}.Render(def.Keyboard, def.Layout, def.Layers)
	if err != nil {
		return "", err
	}

	dir := c.tree.KeymapDir(def.Keyboard, def.Keymap)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "keymap.c")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// checkPreconditions verifies the keyboard exists and the keymap name is
// free. Runs before any mutation; a failure here means nothing was written.
func (c *Compiler) checkPreconditions(keyboard, keymapName string) error {
	if _, err := os.Stat(c.tree.KeyboardDir(keyboard)); err != nil {
		return ErrUnknownKeyboard
	}
	for _, candidate := range c.tree.KeymapCandidates(keyboard, keymapName) {
		if _, err := os.Stat(candidate); err == nil {
			return &KeymapExistsError{Path: candidate}
		}
	}
	return nil
}

// capture records an unexpected failure on the result. Output falls back to
// the trace so callers always have diagnostic text.
func capture(res *Result, kind, trace string) {
	res.ReturnCode = CodeException
	res.Exception = kind
	res.Stacktrace = trace
	if res.Output == "" {
		res.Output = trace
	}
}

// errKind labels an error by the concrete type of its root cause, e.g.
// "*fs.PathError".
func errKind(err error) string {
	cause := err
	for {
		next := errors.Unwrap(cause)
		if next == nil {
			return fmt.Sprintf("%T", cause)
		}
		cause = next
	}
}
