package ij

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"legacy-bridge/internal/affinity"
	"legacy-bridge/internal/logging"
)

var (
	// ErrStopped reports work submitted to an engine that is not running.
	ErrStopped = errors.New("legacy engine not running")
	// ErrUnknownCommand reports a command name with no registered command.
	ErrUnknownCommand = errors.New("unknown command")
)

// ClassSource instantiates classes by name for RunPlugIn.
type ClassSource interface {
	Instantiate(name string) (any, error)
}

// PlugIn is implemented by classes RunPlugIn can set up.
type PlugIn interface {
	Setup(ctx context.Context, engine *Engine, arg string) error
}

// Options configures an Engine.
type Options struct {
	// Name names the engine's worker in logs and affinity tags.
	Name    string
	Classes ClassSource
	Hooks   Hooks
	Logger  *zap.Logger
}

// Engine is one instance of the legacy engine.
type Engine struct {
	name    string
	classes ClassSource
	hooks   Hooks
	log     *zap.Logger
	tag     *affinity.Tag
	windows *WindowManager
	outputs *OutputTracker

	runMu   sync.Mutex
	running bool
	busy    bool
	tasks   chan task
	quit    chan struct{}
	done    chan struct{}

	mu       sync.Mutex
	progress float64
	status   string
	logLines []string
	commands map[string]Command
	lastID   int
}

type task struct {
	ctx  context.Context
	fn   func(context.Context) error
	done chan error
}

// NewEngine creates a stopped engine with the built-in commands registered.
func NewEngine(opts Options) *Engine {
	if opts.Name == "" {
		opts.Name = "legacy"
	}

	e := &Engine{
		name:     opts.Name,
		classes:  opts.Classes,
		hooks:    opts.Hooks,
		log:      logging.OrNop(opts.Logger).Named("ij"),
		tag:      affinity.NewTag(opts.Name),
		windows:  &WindowManager{},
		outputs:  newOutputTracker(),
		commands: make(map[string]Command),
	}

	registerBuiltins(e)

	return e
}

// Name returns the engine name.
func (e *Engine) Name() string {
	return e.name
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *zap.Logger {
	return e.log
}

// Classes returns the source RunPlugIn instantiates from.
func (e *Engine) Classes() ClassSource {
	return e.classes
}

// Windows returns the engine's window manager.
func (e *Engine) Windows() *WindowManager {
	return e.windows
}

// Outputs returns the engine's output tracker.
func (e *Engine) Outputs() *OutputTracker {
	return e.outputs
}

// Start launches the worker goroutine. Starting a running engine is a no-op.
func (e *Engine) Start() {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.running {
		return
	}

	e.tasks = make(chan task)
	e.quit = make(chan struct{})
	e.done = make(chan struct{})
	e.running = true

	go e.loop(e.tasks, e.quit, e.done)

	e.log.Debug("legacy worker started", zap.String("engine", e.name))
}

// Stop ends the worker goroutine. It waits for the worker unless a task is
// running, since the caller may be that task; the worker then exits as soon
// as the task returns. Done reports the exit.
func (e *Engine) Stop() {
	e.runMu.Lock()
	if !e.running {
		e.runMu.Unlock()
		return
	}

	close(e.quit)
	e.running = false
	busy, done := e.busy, e.done
	e.runMu.Unlock()

	if busy {
		e.log.Debug("legacy worker stopping after current task", zap.String("engine", e.name))
		return
	}

	<-done
	e.log.Debug("legacy worker stopped", zap.String("engine", e.name))
}

// Done returns a channel closed when the worker of the last Start exits, or
// nil if the engine was never started.
func (e *Engine) Done() <-chan struct{} {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	return e.done
}

func (e *Engine) loop(tasks <-chan task, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		select {
		case <-quit:
			return
		case t := <-tasks:
			e.setBusy(true)
			err := e.exec(t)
			e.setBusy(false)
			t.done <- err
		}
	}
}

func (e *Engine) setBusy(on bool) {
	e.runMu.Lock()
	e.busy = on
	e.runMu.Unlock()
}

func (e *Engine) exec(t task) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("legacy task panicked: %v", p)
		}
	}()

	return t.fn(t.ctx)
}

// Do runs fn on the engine's worker goroutine and waits for it. Calls made
// from the worker itself run inline.
func (e *Engine) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if e.tag.Owns(ctx) {
		return fn(ctx)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	e.runMu.Lock()
	tasks, quit, running := e.tasks, e.quit, e.running
	e.runMu.Unlock()

	if !running {
		return ErrStopped
	}

	t := task{ctx: e.tag.Bind(ctx), fn: fn, done: make(chan error, 1)}

	select {
	case tasks <- t:
	case <-quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ShowProgress sets the progress bar to progress, in [0, 1].
func (e *Engine) ShowProgress(ctx context.Context, progress float64) {
	e.invoke(ctx, OpShowProgress, e, []any{progress}, func() any {
		e.setProgress(progress)
		return nil
	})
}

// ShowProgressRatio sets the progress bar to current/final.
func (e *Engine) ShowProgressRatio(ctx context.Context, current, final int) {
	e.invoke(ctx, OpShowProgressRatio, e, []any{current, final}, func() any {
		if final > 0 {
			e.setProgress(float64(current) / float64(final))
		}

		return nil
	})
}

func (e *Engine) setProgress(p float64) {
	e.mu.Lock()
	e.progress = p
	e.mu.Unlock()
}

// ShowStatus writes text to the status bar.
func (e *Engine) ShowStatus(ctx context.Context, text string) {
	e.invoke(ctx, OpShowStatus, e, []any{text}, func() any {
		e.mu.Lock()
		e.status = text
		e.mu.Unlock()

		return nil
	})
}

// Log appends message to the log window.
func (e *Engine) Log(ctx context.Context, message string) {
	e.invoke(ctx, OpLog, e, []any{message}, func() any {
		e.mu.Lock()
		e.logLines = append(e.logLines, message)
		e.mu.Unlock()

		return nil
	})
}

func (e *Engine) Progress() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.progress
}

func (e *Engine) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.status
}

// LogLines returns the contents of the log window.
func (e *Engine) LogLines() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]string(nil), e.logLines...)
}

// RunPlugIn instantiates className and, when it is a PlugIn, sets it up
// with arg. It returns the instance.
func (e *Engine) RunPlugIn(ctx context.Context, className, arg string) (any, error) {
	if e.classes == nil {
		return nil, fmt.Errorf("run plugin %s: no class source", className)
	}

	inst, err := e.classes.Instantiate(className)
	if err != nil {
		return nil, fmt.Errorf("run plugin %s: %w", className, err)
	}

	if p, ok := inst.(PlugIn); ok {
		if err := p.Setup(ctx, e, arg); err != nil {
			return nil, fmt.Errorf("run plugin %s: %w", className, err)
		}
	}

	e.log.Debug("plugin ran", zap.String("class", className))

	return inst, nil
}

// NewImage creates an image around proc and tracks it as an output.
func (e *Engine) NewImage(title string, proc Processor) *ImagePlus {
	e.mu.Lock()
	e.lastID--
	id := e.lastID
	e.mu.Unlock()

	imp := &ImagePlus{engine: e, id: id, title: title, proc: proc, cal: NewCalibration()}
	e.outputs.Add(imp)

	return imp
}

// RegisterCommand makes cmd runnable under name, replacing any previous one.
func (e *Engine) RegisterCommand(name string, cmd Command) {
	e.mu.Lock()
	e.commands[name] = cmd
	e.mu.Unlock()
}

// Commands returns the registered command names, sorted.
func (e *Engine) Commands() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	names := make([]string, 0, len(e.commands))
	for n := range e.commands {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}

// RunCommand runs the named command on imp and redraws it.
func (e *Engine) RunCommand(ctx context.Context, imp *ImagePlus, name, options string) error {
	e.mu.Lock()
	cmd, ok := e.commands[name]
	e.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}

	if err := cmd(ctx, imp, options); err != nil {
		return fmt.Errorf("command %q: %w", name, err)
	}

	if imp != nil {
		imp.UpdateAndDraw(ctx)
	}

	return nil
}
