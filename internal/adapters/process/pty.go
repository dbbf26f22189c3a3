//go:build unix

package process

import (
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/creack/pty"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/scriptpad-app/scriptpad/internal/domain"
	"github.com/scriptpad-app/scriptpad/internal/ports"
)

// startPTY attaches the script to a pseudo-terminal for scripts that
// need an interactive terminal. pty.Start puts the child in its own
// session, so the group-wide kill still reaps descendants. Line framing
// is unchanged; stderr is merged into the terminal stream, so the
// stderr tail stays empty for pty sessions.
func (r *Runner) startPTY(cmd *exec.Cmd, tailLines int) (ports.Process, error) {
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSpawnFailed, err)
	}

	p := newProc(cmd, ptmx, r.logger, tailLines)

	var pumps errgroup.Group
	pumps.Go(func() error {
		p.pumpPTY(ptmx)
		return nil
	})
	go func() {
		_ = pumps.Wait()
		close(p.lines)

		waitErr := cmd.Wait()
		_ = ptmx.Close()
		p.status = p.classifyExit(waitErr)
		close(p.waitDone)
	}()

	return p, nil
}

func (p *proc) pumpPTY(ptmx io.Reader) {
	scanner := newLineScanner(ptmx)
	for scanner.Scan() {
		p.lines <- scanner.Text()
	}
	// EIO is the pty's EOF: the slave side closed.
	if err := scanner.Err(); err != nil && !errors.Is(err, unix.EIO) {
		p.logger.Debug("pty pump ended", zap.String("process", p.id), zap.Error(err))
	}
}
