//go:build unix

// Package process spawns script processes in their own process group
// and pumps their stdio line by line. Killing a session reaps every
// descendant the script forked; a stalled script never blocks another
// session's pump or the dispatcher.
package process

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/ports"
)

const (
	defaultStderrTailLines = 40
	// Protocol lines can carry whole editor buffers; one scanner token
	// may be large.
	maxLineBytes    = 4 << 20
	lineChanBuffer  = 64
	initialScanSize = 64 << 10
)

type Runner struct {
	logger *zap.Logger
}

var _ ports.ProcessRunner = (*Runner)(nil)

func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

func (r *Runner) Start(ctx context.Context, spec ports.ProcessSpec) (ports.Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cmd *exec.Cmd
	if spec.Interpreter != "" {
		cmd = exec.Command(spec.Interpreter, append([]string{spec.Path}, spec.Args...)...)
	} else {
		cmd = exec.Command(spec.Path, spec.Args...)
	}
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}

	tailLines := spec.StderrTailLines
	if tailLines <= 0 {
		tailLines = defaultStderrTailLines
	}

	if spec.PTY {
		return r.startPTY(cmd, tailLines)
	}
	return r.startPiped(cmd, tailLines)
}

func (r *Runner) startPiped(cmd *exec.Cmd, tailLines int) (ports.Process, error) {
	// Own process group: a group-wide kill reaps every descendant.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdin pipe: %v", domain.ErrSpawnFailed, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %v", domain.ErrSpawnFailed, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stderr pipe: %v", domain.ErrSpawnFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSpawnFailed, err)
	}

	p := newProc(cmd, stdin, r.logger, tailLines)

	var pumps errgroup.Group
	pumps.Go(func() error {
		p.pumpStdout(stdout)
		return nil
	})
	pumps.Go(func() error {
		p.pumpStderr(stderr)
		return nil
	})
	go p.reap(&pumps)

	return p, nil
}

type proc struct {
	id     string
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	logger *zap.Logger

	lines chan string
	tail  *tailBuffer

	kill     chan struct{}
	waitDone chan struct{}
	status   domain.ExitStatus
}

var _ ports.Process = (*proc)(nil)

func newProc(cmd *exec.Cmd, stdin io.WriteCloser, logger *zap.Logger, tailLines int) *proc {
	return &proc{
		id:       uuid.Must(uuid.NewV7()).String(),
		cmd:      cmd,
		stdin:    stdin,
		logger:   logger,
		lines:    make(chan string, lineChanBuffer),
		tail:     newTailBuffer(tailLines),
		kill:     make(chan struct{}),
		waitDone: make(chan struct{}),
	}
}

func (p *proc) ID() string {
	return p.id
}

func (p *proc) Send(line string) error {
	select {
	case <-p.waitDone:
		return domain.ErrBrokenPipe
	default:
	}

	if _, err := io.WriteString(p.stdin, line+"\n"); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBrokenPipe, err)
	}
	return nil
}

func (p *proc) Lines() <-chan string {
	return p.lines
}

func (p *proc) StderrTail() []string {
	return p.tail.Lines()
}

// Kill signals the whole process group. Idempotent; a process group
// that is already gone is a no-op.
func (p *proc) Kill() error {
	select {
	case <-p.kill:
		return nil
	default:
		close(p.kill)
	}

	err := unix.Kill(-p.cmd.Process.Pid, unix.SIGKILL)
	if err != nil && err != unix.ESRCH {
		return fmt.Errorf("kill process group %d: %w", p.cmd.Process.Pid, err)
	}
	return nil
}

func (p *proc) Wait() domain.ExitStatus {
	<-p.waitDone
	return p.status
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialScanSize), maxLineBytes)
	return scanner
}

func (p *proc) pumpStdout(stdout io.Reader) {
	scanner := newLineScanner(stdout)
	for scanner.Scan() {
		p.lines <- scanner.Text()
	}
	if err := scanner.Err(); err != nil {
		p.logger.Debug("stdout pump ended", zap.String("process", p.id), zap.Error(err))
	}
}

func (p *proc) pumpStderr(stderr io.Reader) {
	scanner := newLineScanner(stderr)
	for scanner.Scan() {
		line := scanner.Text()
		p.tail.Add(line)
		p.logger.Debug("script stderr", zap.String("process", p.id), zap.String("line", line))
	}
}

// reap waits for both pumps to drain, then collects the exit status.
// The lines channel closes before waitDone so session read loops finish
// their backlog first.
func (p *proc) reap(pumps *errgroup.Group) {
	_ = pumps.Wait()
	close(p.lines)

	err := p.cmd.Wait()
	_ = p.stdin.Close()

	p.status = p.classifyExit(err)
	close(p.waitDone)
}

func (p *proc) classifyExit(waitErr error) domain.ExitStatus {
	killed := false
	select {
	case <-p.kill:
		killed = true
	default:
	}

	switch {
	case killed:
		return domain.Killed()
	case waitErr == nil:
		return domain.Exited()
	default:
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			return domain.Crashed(exitErr.ExitCode())
		}
		p.logger.Warn("wait failed", zap.String("process", p.id), zap.Error(waitErr))
		return domain.Crashed(-1)
	}
}
