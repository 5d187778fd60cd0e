package behaviours

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/require"
	"github.com/joeycumines/treetick/internal/blackboard"
	"github.com/joeycumines/treetick/internal/bt"
)

// ErrNoTickFunction is returned for a script that does not define tick.
var ErrNoTickFunction = errors.New("script does not define a tick function")

// StatusModule is the native module exporting the status names, e.g.
// require("treetick:status").success.
const StatusModule = "treetick:status"

// ScriptAccess lists the blackboard keys a script may read and write.
type ScriptAccess struct {
	Read  []string
	Write []string
}

// Script is an action written in JavaScript. The source must define
// tick(bb), returning "running", "success" or "failure", and may define
// initialise(bb) and terminate(bb, status). bb exposes the behaviour's
// blackboard client:
//
//	bb.get(name)                     // throws if unset or not readable
//	bb.set(name, value[, overwrite]) // overwrite defaults to true
//	bb.exists(name)
//	bb.unset(key)
//	bb.feedback(message)
//
// Any other return value from tick fails the leaf. Scripts may require()
// CommonJS modules from disk (see [WithModuleDir]) and [StatusModule], and
// console output goes to the bt logger.
type Script struct {
	client     *blackboard.Client
	vm         *goja.Runtime
	bb         goja.Value
	tick       goja.Callable
	initialise goja.Callable
	terminate  goja.Callable
	leaf       *bt.Leaf
}

// NewScript compiles and loads source. Syntax errors, a missing tick
// function and key registration failures are returned.
func NewScript(name, source string, access ScriptAccess, opts ...Option) (*bt.Leaf, error) {
	program, err := goja.Compile(name, source, true)
	if err != nil {
		return nil, fmt.Errorf("behaviours: script %q: %w", name, err)
	}
	o := resolveOptions(opts)
	s := &Script{client: o.newClient(name), vm: goja.New()}
	registry := require.NewRegistry(require.WithLoader(sourceLoader(o.moduleDir)))
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(scriptPrinter(name)))
	registry.RegisterNativeModule(StatusModule, statusModule)
	registry.Enable(s.vm)
	console.Enable(s.vm)
	for _, key := range access.Read {
		mustRead(s.client, key)
	}
	for _, key := range access.Write {
		if err := s.client.RegisterKey(key, blackboard.Write); err != nil {
			return nil, err
		}
	}
	if _, err := s.vm.RunProgram(program); err != nil {
		return nil, fmt.Errorf("behaviours: script %q: %w", name, err)
	}
	var ok bool
	if s.tick, ok = goja.AssertFunction(s.vm.Get("tick")); !ok {
		return nil, fmt.Errorf("behaviours: script %q: %w", name, ErrNoTickFunction)
	}
	s.initialise, _ = goja.AssertFunction(s.vm.Get("initialise"))
	s.terminate, _ = goja.AssertFunction(s.vm.Get("terminate"))
	s.bb = s.exposeToJS()
	s.leaf = bt.NewLeaf(name, s)
	return attach(s.leaf, s.client), nil
}

func sourceLoader(dir string) require.SourceLoader {
	return func(path string) ([]byte, error) {
		if dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, require.ModuleFileDoesNotExistError
		}
		return data, err
	}
}

func statusModule(_ *goja.Runtime, module *goja.Object) {
	exports := module.Get("exports").(*goja.Object)
	for _, status := range []bt.Status{bt.Running, bt.Success, bt.Failure} {
		name := strings.ToLower(status.String())
		_ = exports.Set(name, name)
	}
}

// scriptPrinter sends console output to the bt logger.
type scriptPrinter string

func (p scriptPrinter) Log(s string)   { bt.Logger().Info(s, "behaviour", string(p)) }
func (p scriptPrinter) Warn(s string)  { bt.Logger().Warn(s, "behaviour", string(p)) }
func (p scriptPrinter) Error(s string) { bt.Logger().Error(s, "behaviour", string(p)) }

func (s *Script) exposeToJS() goja.Value {
	obj := s.vm.NewObject()
	_ = obj.Set("get", func(name string) goja.Value {
		value, err := s.client.Get(name)
		if err != nil {
			panic(s.vm.NewGoError(err))
		}
		return s.vm.ToValue(value)
	})
	_ = obj.Set("set", func(name string, value any, overwrite ...bool) bool {
		ok, err := s.client.Set(name, value, len(overwrite) == 0 || overwrite[0])
		if err != nil {
			panic(s.vm.NewGoError(err))
		}
		return ok
	})
	_ = obj.Set("exists", func(name string) bool {
		ok, err := s.client.Exists(name)
		if err != nil {
			panic(s.vm.NewGoError(err))
		}
		return ok
	})
	_ = obj.Set("unset", func(key string) bool {
		ok, err := s.client.Unset(key)
		if err != nil {
			panic(s.vm.NewGoError(err))
		}
		return ok
	})
	_ = obj.Set("feedback", func(message string) {
		s.leaf.SetFeedbackMessage(message)
	})
	return obj
}

func (s *Script) Initialise(l *bt.Leaf) {
	if s.initialise == nil {
		return
	}
	if _, err := s.initialise(goja.Undefined(), s.bb); err != nil {
		bt.Logger().Warn("script initialise failed", "behaviour", l.Name(), "error", err)
	}
}

func (s *Script) Update(l *bt.Leaf) (bt.Status, error) {
	result, err := s.tick(goja.Undefined(), s.bb)
	if err != nil {
		return bt.Invalid, err
	}
	status, err := bt.ParseStatus(result.String())
	if err != nil || status == bt.Invalid {
		l.SetFeedbackMessage(fmt.Sprintf("tick returned %q", result.String()))
		return bt.Failure, nil
	}
	return status, nil
}

func (s *Script) Terminate(l *bt.Leaf, status bt.Status) {
	if s.terminate == nil {
		return
	}
	if _, err := s.terminate(goja.Undefined(), s.bb, s.vm.ToValue(strings.ToLower(status.String()))); err != nil {
		bt.Logger().Warn("script terminate failed", "behaviour", l.Name(), "error", err)
	}
}
