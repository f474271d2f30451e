// kbforge renders QMK-style keymap source from declarative layer
// descriptions and orchestrates firmware builds.
//
// Usage:
//
//	kbforge render -f keymap.yaml > keymap.c
//	kbforge compile -f keymap.yaml
//	kbforge compile -f keymap.yaml -format json | jq .status
//
// Output modes for compile (auto-detected):
//
//	terminal  — styled Unicode output (default when TTY)
//	plain     — terse plain text (default when piped)
//	json      — structured JSON for automation
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/kbforge/kbforge/firmware"
	"github.com/kbforge/kbforge/internal/tui"
	"github.com/kbforge/kbforge/internal/version"
	"github.com/kbforge/kbforge/keymap"
	"github.com/kbforge/kbforge/pkg/render"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, _ io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "render":
		return runRender(args[1:], stdout, stderr)
	case "compile":
		return runCompile(args[1:], stdout, stderr)
	case "version":
		fmt.Fprintln(stdout, version.Formatted())
		return 0
	case "-h", "-help", "--help", "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "kbforge: unknown command %q\n", args[0])
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: kbforge <command> [flags]

Commands:
  render    render keymap.c source to stdout
  compile   build firmware for a keymap definition
  version   print version information

Run kbforge <command> -h for command flags.
`)
}

// definitionFlags registers the flags shared by render and compile, returning
// a loader that reads the definition file and applies any overrides.
func definitionFlags(fs *flag.FlagSet) func() (*keymap.Definition, error) {
	file := fs.String("f", "keymap.yaml", "Keymap definition file")
	keyboard := fs.String("keyboard", "", "Override the keyboard")
	km := fs.String("keymap", "", "Override the keymap name")
	layout := fs.String("layout", "", "Override the layout macro")

	return func() (*keymap.Definition, error) {
		def, err := keymap.LoadDefinition(*file)
		if err != nil {
			return nil, err
		}
		if *keyboard != "" {
			def.Keyboard = *keyboard
		}
		if *km != "" {
			def.Keymap = *km
		}
		if *layout != "" {
			def.Layout = *layout
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		return def, nil
	}
}

func runRender(args []string, stdout, stderr io.Writer) int {
	cfg := firmware.LoadProjectConfig()

	fs := flag.NewFlagSet("kbforge render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	load := definitionFlags(fs)
	firmwareDir := fs.String("firmware-dir", cfg.FirmwareDir, "Firmware source tree root")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	def, err := load()
	if err != nil {
		fmt.Fprintf(stderr, "kbforge: %v\n", err)
		return 1
	}

	source, err := keymap.Resolver{Root: *firmwareDir}.Render(def.Keyboard, def.Layout, def.Layers)
	if err != nil {
		fmt.Fprintf(stderr, "kbforge: %v\n", err)
		return 1
	}
	fmt.Fprint(stdout, source)
	return 0
}

func runCompile(args []string, stdout, stderr io.Writer) int {
	cfg := firmware.LoadProjectConfig()

	fs := flag.NewFlagSet("kbforge compile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	load := definitionFlags(fs)
	firmwareDir := fs.String("firmware-dir", cfg.FirmwareDir, "Firmware source tree root")
	formatFlag := fs.String("format", "auto", "Output format: auto, terminal, plain, json")
	themeFlag := fs.String("theme", cfg.Theme, "Theme: default, orca, mono")
	noProgress := fs.Bool("no-progress", false, "Disable the live progress display")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	format := resolveFormat(*formatFlag, stdout)
	validFormats := map[string]bool{"terminal": true, "plain": true, "json": true}
	if !validFormats[format] {
		fmt.Fprintf(stderr, "kbforge: unknown format %q (expected auto, terminal, plain, json)\n", *formatFlag)
		return 2
	}

	def, err := load()
	if err != nil {
		fmt.Fprintf(stderr, "kbforge: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := &firmware.ExecRunner{}
	opts := []firmware.Option{firmware.WithRunner(runner)}
	if cfg.Checkout {
		opts = append(opts, firmware.WithCheckout(&firmware.GitCheckout{
			Tree:    firmware.Tree{Root: *firmwareDir},
			RepoURL: cfg.RepoURL,
			Runner:  &firmware.ExecRunner{},
		}))
	}
	compiler := firmware.New(*firmwareDir, opts...)

	var res *firmware.Result
	if format == "terminal" && isTTYWriter(stdout) && !*noProgress {
		label := def.Keyboard + ":" + def.Keymap
		res, _ = tui.Run(ctx, label, func(onLine func(string)) *firmware.Result {
			runner.OnLine = onLine
			return compiler.Compile(ctx, def)
		})
	} else {
		res = compiler.Compile(ctx, def)
	}

	fmt.Fprint(stdout, selectRenderer(format, *themeFlag, stdout).Render(res))
	if res.OK() {
		return 0
	}
	return 1
}

// resolveFormat maps "auto" to terminal for TTYs and plain for pipes.
func resolveFormat(formatFlag string, stdout io.Writer) string {
	if formatFlag != "auto" {
		return formatFlag
	}
	if isTTYWriter(stdout) {
		return "terminal"
	}
	return "plain"
}

func selectRenderer(format, theme string, stdout io.Writer) render.Renderer {
	switch format {
	case "json":
		return render.NewJSON()
	case "plain":
		return render.NewPlain()
	default:
		width, _ := termSize(stdout)
		return render.NewTerminal(render.ThemeByName(theme), width)
	}
}

// isTTYWriter reports whether w is a terminal.
func isTTYWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// termSize returns the terminal dimensions for w, defaulting to 80x24.
func termSize(w io.Writer) (width, height int) {
	width, height = 80, 24
	if f, ok := w.(*os.File); ok {
		if tw, th, err := term.GetSize(int(f.Fd())); err == nil {
			if tw > 0 {
				width = tw
			}
			if th > 0 {
				height = th
			}
		}
	}
	return width, height
}
