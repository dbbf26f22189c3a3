package process

import "sync"

// tailBuffer retains the last n lines written to it.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	lines []string
	start int
	count int
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{
		limit: limit,
		lines: make([]string, limit),
	}
}

func (b *tailBuffer) Add(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count < b.limit {
		b.lines[(b.start+b.count)%b.limit] = line
		b.count++
		return
	}
	b.lines[b.start] = line
	b.start = (b.start + 1) % b.limit
}

func (b *tailBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, 0, b.count)
	for i := 0; i < b.count; i++ {
		out = append(out, b.lines[(b.start+i)%b.limit])
	}
	return out
}
