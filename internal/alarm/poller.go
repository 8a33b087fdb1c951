// Package alarm delivers task alarms: a coarse periodic poller with
// at-most-once-until-reset semantics, and the sound resolution chain that
// picks what to play when an alarm fires.
package alarm

import (
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/taskmatrix/internal/model"
)

// DefaultInterval bounds worst-case delivery latency to just under one
// minute past the nominal alarm time.
const DefaultInterval = time.Minute

// Event is one delivered alarm.
type Event struct {
	Task model.Task
	At   time.Time
}

// TaskSource supplies a fresh read-only task snapshot each poll tick.
type TaskSource interface {
	Snapshot() []model.Task
}

type Clock func() time.Time

// Poller scans the task list on a fixed cadence and fires each due alarm
// exactly once until it is explicitly reset. The fired-set lives only for
// the poller's lifetime; it is never persisted.
type Poller struct {
	mu       sync.Mutex
	fired    map[string]struct{}
	source   TaskSource
	clock    Clock
	interval time.Duration
	out      chan Event
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopped  bool
	dropped  uint64
	logger   *log.Logger
}

type Option func(*Poller)

func WithClock(clock Clock) Option {
	return func(p *Poller) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithBuffer(size int) Option {
	return func(p *Poller) {
		if size > 0 {
			p.out = make(chan Event, size)
		}
	}
}

func NewPoller(source TaskSource, opts ...Option) *Poller {
	p := &Poller{
		fired:    make(map[string]struct{}),
		source:   source,
		clock:    time.Now,
		interval: DefaultInterval,
		out:      make(chan Event, 16),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// C is the stream of delivered alarms.
func (p *Poller) C() <-chan Event {
	return p.out
}

func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true
	go p.loop()
}

func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started || p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.stopCh)
	p.mu.Unlock()
	<-p.doneCh
}

// Tick scans one snapshot at the given instant, in list order. Every task
// whose alarm is due and not yet in the fired-set is marked fired and
// published. Malformed tasks are skipped so one bad record cannot stall
// the loop. Returns the tasks fired on this tick.
func (p *Poller) Tick(tasks []model.Task, now time.Time) []model.Task {
	firedNow := make([]model.Task, 0)
	for _, task := range tasks {
		if strings.TrimSpace(task.ID) == "" {
			p.logger.Warn("skipping task with empty id in alarm scan")
			continue
		}
		if !task.AlarmDue(now) {
			continue
		}
		if !p.markFired(task.ID) {
			continue
		}
		firedNow = append(firedNow, task)
		p.publish(Event{Task: task, At: now})
	}
	return firedNow
}

// ResetAlarm forgets a delivered alarm so the same task can fire again for
// a new alarm time. Callers invoke this whenever the user edits a task's
// alarm configuration.
func (p *Poller) ResetAlarm(taskID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.fired, taskID)
}

// Fired reports whether the task's alarm has been delivered and not reset.
func (p *Poller) Fired(taskID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.fired[taskID]
	return ok
}

func (p *Poller) Dropped() uint64 {
	return atomic.LoadUint64(&p.dropped)
}

func (p *Poller) markFired(taskID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.fired[taskID]; ok {
		return false
	}
	p.fired[taskID] = struct{}{}
	return true
}

func (p *Poller) publish(ev Event) {
	select {
	case p.out <- ev:
	default:
		atomic.AddUint64(&p.dropped, 1)
		p.logger.Warn("alarm event dropped, consumer is slow", "task", ev.Task.ID)
	}
}

func (p *Poller) loop() {
	defer close(p.doneCh)
	defer close(p.out)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if p.source == nil {
				continue
			}
			p.Tick(p.source.Snapshot(), p.clock())
		case <-p.stopCh:
			return
		}
	}
}
