package application

import (
	"context"
	"sync"
	"time"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/ports"
)

// fakeProcess is an in-memory stand-in for a spawned script: tests push
// stdout lines through emit and finish the process with an exit status.
type fakeProcess struct {
	id    string
	lines chan string

	mu     sync.Mutex
	sent   []string
	tail   []string
	exited bool
	exit   domain.ExitStatus

	waitCh chan struct{}
}

func newFakeProcess(id string) *fakeProcess {
	return &fakeProcess{
		id:     id,
		lines:  make(chan string, 16),
		waitCh: make(chan struct{}),
	}
}

func (p *fakeProcess) ID() string {
	return p.id
}

func (p *fakeProcess) Send(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exited {
		return domain.ErrBrokenPipe
	}
	p.sent = append(p.sent, line)
	return nil
}

func (p *fakeProcess) Lines() <-chan string {
	return p.lines
}

func (p *fakeProcess) StderrTail() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.tail...)
}

func (p *fakeProcess) Kill() error {
	p.finish(domain.Killed())
	return nil
}

func (p *fakeProcess) Wait() domain.ExitStatus {
	<-p.waitCh
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exit
}

func (p *fakeProcess) emit(line string) {
	p.lines <- line
}

func (p *fakeProcess) finish(status domain.ExitStatus) {
	p.mu.Lock()
	if p.exited {
		p.mu.Unlock()
		return
	}
	p.exited = true
	p.exit = status
	p.mu.Unlock()

	close(p.lines)
	close(p.waitCh)
}

func (p *fakeProcess) sentLines() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.sent...)
}

type fakeRunner struct {
	mu      sync.Mutex
	started []*fakeProcess
	next    int
	failErr error
}

func (r *fakeRunner) Start(_ context.Context, _ ports.ProcessSpec) (ports.Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return nil, r.failErr
	}
	r.next++
	p := newFakeProcess("proc-" + string(rune('a'+r.next-1)))
	r.started = append(r.started, p)
	return p, nil
}

// fakeClock freezes Now and lets tests fire pending After timers.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := make(chan time.Time, 1)
	c.timers = append(c.timers, timer)
	return timer
}

func (c *fakeClock) fire() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, timer := range c.timers {
		select {
		case timer <- c.now:
		default:
		}
	}
	c.timers = nil
}

type fakeWindow struct {
	mu     sync.Mutex
	shows  int
	hides  int
	closed bool
}

func (w *fakeWindow) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.shows++
}

func (w *fakeWindow) Hide() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hides++
}

func (w *fakeWindow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

type fakeController struct {
	mu      sync.Mutex
	created map[domain.WindowKind]*fakeWindow
	failErr error
}

func newFakeController() *fakeController {
	return &fakeController{created: map[domain.WindowKind]*fakeWindow{}}
}

func (c *fakeController) CreateWindow(kind domain.WindowKind) (ports.WindowHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failErr != nil {
		return nil, c.failErr
	}
	w := &fakeWindow{}
	c.created[kind] = w
	return w, nil
}

func (c *fakeController) window(kind domain.WindowKind) (*fakeWindow, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w, ok := c.created[kind]
	return w, ok
}

type fakeCatalog struct {
	scripts map[string]domain.Script
}

func (c *fakeCatalog) GetByName(_ context.Context, name string) (domain.Script, error) {
	if s, ok := c.scripts[name]; ok {
		return s, nil
	}
	return domain.Script{}, domain.ErrScriptNotFound
}

func (c *fakeCatalog) List(context.Context) ([]domain.Script, error) {
	out := make([]domain.Script, 0, len(c.scripts))
	for _, s := range c.scripts {
		out = append(out, s)
	}
	return out, nil
}
