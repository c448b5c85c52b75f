package scripting

import (
	"context"
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// Runtime is an Engine backed by goja. It is not safe for concurrent use.
type Runtime struct {
	vm *goja.Runtime
}

func NewRuntime() *Runtime {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	return &Runtime{vm: vm}
}

// Run compiles and executes src. Cancelling ctx interrupts a running
// script; the runtime stays usable afterwards.
func (r *Runtime) Run(ctx context.Context, name, src string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prog, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	done := make(chan struct{})
	defer close(done)
	defer r.vm.ClearInterrupt()
	go func() {
		select {
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := r.vm.RunProgram(prog)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			if cause, ok := interrupted.Value().(error); ok {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return val.Export(), nil
}

// Bind installs dom as the script globals. getAnnots(n) returns null for a
// page that does not exist.
func (r *Runtime) Bind(dom DOM) error {
	app := r.vm.NewObject()
	if err := app.Set("alert", func(msg string) { dom.Alert(msg) }); err != nil {
		return err
	}
	if err := r.vm.Set("app", app); err != nil {
		return err
	}
	if err := r.vm.Set("numPages", dom.NumPages()); err != nil {
		return err
	}
	return r.vm.Set("getAnnots", func(page int) goja.Value {
		annots, err := dom.Annotations(page)
		if err != nil {
			return goja.Null()
		}
		return r.vm.ToValue(annots)
	})
}

// Validate compiles src without running it and reports syntax errors.
func Validate(name, src string) error {
	_, err := goja.Compile(name, src, false)
	return err
}
