package application

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/ports"
)

// Pending is one outstanding request awaiting its response. It settles
// exactly once: either a matching resolve or a cancel, never both and
// never neither.
type Pending struct {
	id       string
	expected domain.Kind
	created  time.Time
	outcome  chan domain.Outcome
}

func (p *Pending) ID() string {
	return p.id
}

// Outcome yields the settlement. The channel is buffered, so the
// settling side never blocks on a caller that has not started waiting.
func (p *Pending) Outcome() <-chan domain.Outcome {
	return p.outcome
}

// Correlator assigns correlation ids and tracks the pending requests of
// one session. Ids are monotonically increasing and scoped to the
// session; there is no cross-session or process-wide counter.
type Correlator struct {
	clock  ports.Clock
	logger *zap.Logger

	mu      sync.Mutex
	lastID  uint64
	pending map[string]*Pending
}

func NewCorrelator(clock ports.Clock, logger *zap.Logger) *Correlator {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Correlator{
		clock:   clock,
		logger:  logger,
		pending: map[string]*Pending{},
	}
}

// NextID returns the next correlation id for this session.
func (c *Correlator) NextID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastID++
	return strconv.FormatUint(c.lastID, 10)
}

// Register creates the pending request for id. At most one pending
// request may exist per id.
func (c *Correlator) Register(id string, expected domain.Kind) (*Pending, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.pending[id]; exists {
		return nil, fmt.Errorf("correlation id %q already registered", id)
	}

	p := &Pending{
		id:       id,
		expected: expected,
		created:  c.clock.Now(),
		outcome:  make(chan domain.Outcome, 1),
	}
	c.pending[id] = p
	return p, nil
}

// Resolve settles the pending request for id with a script-provided
// value. A kind mismatch is a protocol error: it is logged and the
// response discarded, leaving the request pending. An unknown id (for
// example a late submit after cancellation) is logged at debug level
// and discarded; it never surfaces to the script.
func (c *Correlator) Resolve(id string, kind domain.Kind, value *string) bool {
	c.mu.Lock()
	p, ok := c.pending[id]
	if !ok {
		c.mu.Unlock()
		c.logger.Debug("discarding response",
			zap.Error(domain.ErrUnknownCorrelation),
			zap.String("id", id),
			zap.String("kind", string(kind)))
		return false
	}
	if kind != p.expected {
		c.mu.Unlock()
		c.logger.Warn("protocol error: response kind mismatch",
			zap.String("id", id),
			zap.String("expected", string(p.expected)),
			zap.String("got", string(kind)))
		return false
	}
	delete(c.pending, id)
	c.mu.Unlock()

	p.outcome <- domain.Submitted(value)
	return true
}

// Cancel settles the pending request for id with the given terminal
// outcome. Returns false if no such request is pending, which makes
// cancellation idempotent and safe to race against Resolve.
func (c *Correlator) Cancel(id string, outcome domain.Outcome) bool {
	c.mu.Lock()
	p, ok := c.pending[id]
	if ok {
		delete(c.pending, id)
	}
	c.mu.Unlock()

	if !ok {
		return false
	}
	p.outcome <- outcome
	return true
}

// CancelAll settles every outstanding request. Invoked on session
// teardown so no caller waits forever on a dead session.
func (c *Correlator) CancelAll(outcome domain.Outcome) {
	c.mu.Lock()
	drained := make([]*Pending, 0, len(c.pending))
	for id, p := range c.pending {
		drained = append(drained, p)
		delete(c.pending, id)
	}
	c.mu.Unlock()

	for _, p := range drained {
		p.outcome <- outcome
	}
}

// PendingCount reports the number of outstanding requests.
func (c *Correlator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
