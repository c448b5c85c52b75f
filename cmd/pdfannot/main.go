package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/wudi/pdfedit/builder"
	"github.com/wudi/pdfedit/document"
	"github.com/wudi/pdfedit/ir/raw"
	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/recovery"
	"github.com/wudi/pdfedit/scripting"
	"github.com/wudi/pdfedit/writer"
)

type options struct {
	files       []string
	verbose     bool
	veryVerbose bool
	debug       bool
	strict      bool
	maxErrors   int
	annots      string
	sample      bool
	script      string
	show        string
	out         string
}

var errUsage = errors.New("usage")

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "pdfannot: %v\n", err)
		}
		os.Exit(2)
	}
	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "pdfannot: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("pdfannot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: pdfannot [-vVd] [-strict | -maxerrors n] [-annots layout.json] [-sample] [-js script.js] [-show id] [-o out.pdf] file.pdf [...]\n")
		fs.PrintDefaults()
	}
	fs.BoolVar(&opts.verbose, "v", false, "Print document information")
	fs.BoolVar(&opts.veryVerbose, "V", false, "Also print page and object ids")
	fs.BoolVar(&opts.debug, "d", false, "Log parser and writer details")
	fs.BoolVar(&opts.strict, "strict", false, "Fail on the first damaged object instead of skipping it")
	fs.IntVar(&opts.maxErrors, "maxerrors", 0, "Fail after skipping this many damaged objects (0: no limit)")
	fs.StringVar(&opts.annots, "annots", "", "JSON file of annotations to add")
	fs.BoolVar(&opts.sample, "sample", false, "Highlight a fixed region on every page")
	fs.StringVar(&opts.script, "js", "", "Run a JavaScript file against each document")
	fs.StringVar(&opts.show, "show", "", "Print one object, given as \"N G R\", \"N G\" or \"N\"")
	fs.StringVar(&opts.out, "o", "", "Output path (single input only; default: update the input in place)")
	if err := fs.Parse(args); err != nil {
		return options{}, errUsage
	}
	opts.files = fs.Args()
	if len(opts.files) == 0 {
		fs.Usage()
		return options{}, errUsage
	}
	if opts.out != "" && len(opts.files) > 1 {
		return options{}, fmt.Errorf("-o needs exactly one input file")
	}
	if opts.veryVerbose {
		opts.verbose = true
	}
	return opts, nil
}

func newLogger(opts options, stderr io.Writer) observability.Logger {
	if !opts.verbose && !opts.debug {
		return observability.NopLogger{}
	}
	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	return observability.NewSlog(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	log := newLogger(opts, stderr)
	var layout []annotationSpec
	if opts.annots != "" {
		var err error
		if layout, err = readLayout(opts.annots); err != nil {
			return err
		}
	}
	for _, path := range opts.files {
		if err := processFile(ctx, path, opts, layout, log, stdout); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func processFile(ctx context.Context, path string, opts options, layout []annotationSpec, log observability.Logger, stdout io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	rec := recovery.Strategy(recovery.NewLenient(opts.maxErrors))
	if opts.strict {
		rec = recovery.Strict()
	}
	loadOpts := []document.Option{document.WithLogger(log), document.WithRecovery(rec)}
	if opts.debug {
		loadOpts = append(loadOpts, document.WithTracer(observability.LogTracer(log)))
	}
	doc, err := document.Load(ctx, data, loadOpts...)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if opts.verbose {
		printInfo(stdout, path, doc, opts.veryVerbose)
	}
	if opts.show != "" {
		ref, err := doc.LookupID(opts.show)
		if err != nil {
			return err
		}
		v, _ := doc.Get(ref)
		if _, err := stdout.Write(writer.RenderObject(ref, v)); err != nil {
			return err
		}
	}

	a := builder.NewAnnotator(doc)
	if opts.sample {
		if err := annotateSample(a, doc.PageCount()); err != nil {
			return err
		}
	}
	if err := applyLayout(doc, a, layout); err != nil {
		return err
	}
	if opts.script != "" {
		if err := runScript(ctx, opts.script, doc, stdout); err != nil {
			return err
		}
	}

	if len(doc.Edits()) == 0 {
		return nil
	}
	out := opts.out
	if out == "" {
		out = path
	}
	var wopts []writer.Option
	if opts.veryVerbose {
		wopts = append(wopts, writer.WithInterceptor(writeReport{w: stdout}))
	}
	saved, err := writer.NewIncremental(wopts...).Save(ctx, doc)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	if err := replaceFile(out, saved); err != nil {
		return err
	}
	log.Info("saved", observability.String("path", out))
	return nil
}

// replaceFile writes data to a temporary file next to path and renames it
// over path, so path holds either its old bytes or all of data.
func replaceFile(path string, data []byte) (err error) {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Chmod(mode); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}

func printInfo(w io.Writer, path string, doc *document.Document, all bool) {
	fmt.Fprintf(w, "PDF object information\n")
	fmt.Fprintf(w, "\tFilename:\t\t%s\n", path)
	fmt.Fprintf(w, "\tNumber of pages:\t%d\n", doc.PageCount())
	if all {
		fmt.Fprintf(w, "\tPages:\t\t\t%s\n", joinRefs(doc.Pages()))
	}
	fmt.Fprintf(w, "\tNumber of objects:\t%d\n", doc.ObjectCount())
	if all {
		fmt.Fprintf(w, "\tObjects:\t\t%s\n", joinRefs(doc.Refs()))
	}
	fmt.Fprintf(w, "\tNext object number:\t%d\n", doc.NextObjectNumber())
	fmt.Fprintf(w, "\tNext generation:\t%d\n", doc.NextGeneration())
	if n := len(doc.Diagnostics()); n > 0 {
		fmt.Fprintf(w, "\tDiagnostics:\t\t%d\n", n)
		if all {
			for _, d := range doc.Diagnostics() {
				fmt.Fprintf(w, "\t\t%s\n", d)
			}
		}
	}
}

func joinRefs[T fmt.Stringer](refs []T) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ", ")
}

// writeReport lists each object appended by a save.
type writeReport struct{ w io.Writer }

func (writeReport) BeforeWrite(context.Context, raw.ObjectRef, raw.Object) error { return nil }

func (r writeReport) AfterWrite(_ context.Context, ref raw.ObjectRef, n int64) error {
	_, err := fmt.Fprintf(r.w, "\twrote %s (%d bytes)\n", ref, n)
	return err
}

func runScript(ctx context.Context, path string, doc *document.Document, stdout io.Writer) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	rt := scripting.NewRuntime()
	dom := scripting.NewDocumentDOM(doc, func(msg string) { fmt.Fprintln(stdout, msg) })
	if err := rt.Bind(dom); err != nil {
		return err
	}
	if _, err := rt.Run(ctx, filepath.Base(path), string(src)); err != nil {
		return fmt.Errorf("script: %w", err)
	}
	return nil
}
