package runtime

import (
	"fmt"
	"os"
	"path/filepath"
)

// Host is the embedding environment's side of the engine contract.
type Host interface {
	// CanCompileDynamicCode gates eval and the Function constructor.
	CanCompileDynamicCode(a *Agent, realm *Realm, source string) error
	// EnqueueJob schedules a job; the default appends to the agent queue.
	EnqueueJob(a *Agent, job Job)
	// LoadImportedModule resolves specifier relative to referrer and calls
	// done exactly once.
	LoadImportedModule(a *Agent, referrer interface{}, specifier string, done func(ModuleRecord, error))
	// ReportUncaught receives exceptions that escaped a job.
	ReportUncaught(a *Agent, exc *Exception)
	// PromiseRejectionTracker observes rejections without handlers
	// ("reject") and handlers added later ("handle").
	PromiseRejectionTracker(a *Agent, promise *Object, operation string)
}

// DefaultHost allows dynamic code, queues jobs on the agent and logs
// uncaught errors. It cannot load modules.
type DefaultHost struct{}

func (DefaultHost) CanCompileDynamicCode(a *Agent, realm *Realm, source string) error {
	return nil
}

func (DefaultHost) EnqueueJob(a *Agent, job Job) {
	a.EnqueueJob(job)
}

func (DefaultHost) LoadImportedModule(a *Agent, referrer interface{}, specifier string, done func(ModuleRecord, error)) {
	done(nil, fmt.Errorf("cannot load module %q: no module loader configured", specifier))
}

func (DefaultHost) ReportUncaught(a *Agent, exc *Exception) {
	a.Log.Errorf("uncaught exception in job: %s", exc.StackString())
}

func (DefaultHost) PromiseRejectionTracker(a *Agent, promise *Object, operation string) {
	if operation == "reject" {
		a.Log.Debugf("promise rejected without handler")
	}
}

// DenyDynamicCode wraps a host and refuses every eval and Function call.
type DenyDynamicCode struct {
	Host
}

func (d DenyDynamicCode) CanCompileDynamicCode(a *Agent, realm *Realm, source string) error {
	return a.NewEvalError("Code generation from strings disallowed for this context")
}

// ModuleCompiler turns module source text into a module record.
type ModuleCompiler func(a *Agent, specifier, source string) (ModuleRecord, error)

// MapModuleHost serves modules from an in-memory map keyed by specifier.
// Records are cached so each specifier is compiled once.
type MapModuleHost struct {
	DefaultHost
	Sources map[string]string
	Compile ModuleCompiler

	cache map[string]ModuleRecord
}

func (h *MapModuleHost) LoadImportedModule(a *Agent, referrer interface{}, specifier string, done func(ModuleRecord, error)) {
	if m, ok := h.cache[specifier]; ok {
		done(m, nil)
		return
	}
	src, ok := h.Sources[specifier]
	if !ok {
		done(nil, fmt.Errorf("cannot find module %q", specifier))
		return
	}
	m, err := h.Compile(a, specifier, src)
	if err != nil {
		done(nil, fmt.Errorf("compiling module %q: %w", specifier, err))
		return
	}
	if h.cache == nil {
		h.cache = make(map[string]ModuleRecord)
	}
	h.cache[specifier] = m
	a.Log.Debugf("loaded module %s", specifier)
	done(m, nil)
}

// FileModuleHost loads modules from the file system. A specifier is
// resolved against the directory of the importing module, or against Root
// when there is no importing module. Records are keyed by absolute path.
type FileModuleHost struct {
	DefaultHost
	Root    string
	Compile ModuleCompiler

	cache map[string]ModuleRecord
}

// Resolve returns the absolute path specifier names when imported from
// referrer.
func (h *FileModuleHost) Resolve(referrer interface{}, specifier string) (string, error) {
	if filepath.IsAbs(specifier) {
		return filepath.Clean(specifier), nil
	}
	base := h.Root
	if r, ok := referrer.(interface{ Specifier() string }); ok && filepath.IsAbs(r.Specifier()) {
		base = filepath.Dir(r.Specifier())
	}
	return filepath.Abs(filepath.Join(base, specifier))
}

func (h *FileModuleHost) LoadImportedModule(a *Agent, referrer interface{}, specifier string, done func(ModuleRecord, error)) {
	path, err := h.Resolve(referrer, specifier)
	if err != nil {
		done(nil, fmt.Errorf("resolving module %q: %w", specifier, err))
		return
	}
	if m, ok := h.cache[path]; ok {
		done(m, nil)
		return
	}
	src, err := os.ReadFile(path)
	if err != nil {
		done(nil, fmt.Errorf("cannot read module %q: %w", specifier, err))
		return
	}
	m, err := h.Compile(a, path, string(src))
	if err != nil {
		done(nil, fmt.Errorf("compiling module %q: %w", path, err))
		return
	}
	if h.cache == nil {
		h.cache = make(map[string]ModuleRecord)
	}
	h.cache[path] = m
	a.Log.Debugf("loaded module %s", path)
	done(m, nil)
}
