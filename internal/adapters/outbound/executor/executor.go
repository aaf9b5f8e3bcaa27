// Package executor runs one entry point at a time as an isolated
// subprocess. Nothing is connected to the child's stdin, so interactive
// prompts fail fast instead of hanging; stdout and stderr are captured
// into fixed-capacity sinks; on timeout the whole process group is
// killed.
package executor

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

const (
	// maxCaptureBytes bounds each captured stream.
	maxCaptureBytes = 64 * 1024

	// defaultGrace is how long a server-style command may start up
	// before its ports are probed.
	defaultGrace = 5 * time.Second
)

// serverWords mark commands that are expected to keep running and serve
// rather than terminate.
var serverWords = []string{"start", "serve", "dev", "server"}

// Runner implements domain.EntryPointRunner. When Prober is nil the
// live-probe path is disabled and every command is waited on directly.
type Runner struct {
	Prober      domain.ServerProbe
	Ports       []int
	GracePeriod time.Duration
}

func New() *Runner {
	return &Runner{GracePeriod: defaultGrace}
}

func (r *Runner) Run(ctx context.Context, ep domain.EntryPoint, timeout time.Duration) domain.ExecutionResult {
	res := domain.ExecutionResult{EntryPoint: ep, State: domain.StateRunning}
	start := time.Now()

	cmd := exec.Command(ep.Command[0], ep.Command[1:]...)
	cmd.Dir = ep.WorkingDir
	setProcGroup(cmd)

	outSink := newCapSink(maxCaptureBytes)
	errSink := newCapSink(maxCaptureBytes)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return spawnFailure(res, start, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return spawnFailure(res, start, err)
	}

	if err := cmd.Start(); err != nil {
		return spawnFailure(res, start, err)
	}

	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(outSink, stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(errSink, stderr)
		return err
	})

	// The pipes must be drained before Wait is called on the command.
	waitCh := make(chan error, 1)
	go func() {
		_ = g.Wait()
		waitCh <- cmd.Wait()
	}()

	if r.Prober != nil && looksLikeServer(ep) {
		r.awaitServer(cmd, waitCh, timeout, &res)
	} else {
		r.await(ctx, cmd, waitCh, timeout, &res)
	}

	res.Stdout = outSink.String()
	res.Stderr = errSink.String()
	res.DurationMs = time.Since(start).Milliseconds()
	return res
}

// await races process exit against the effective timeout. This is the
// orchestrator's only suspension point.
func (r *Runner) await(ctx context.Context, cmd *exec.Cmd, waitCh chan error, timeout time.Duration, res *domain.ExecutionResult) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-waitCh:
		recordExit(res, err)
	case <-timer.C:
		killTree(cmd)
		<-waitCh
		res.TimedOut = true
		res.State = domain.StateTimedOut
	case <-ctx.Done():
		// An interrupted run is not a timeout; the entry point never
		// exhausted its own window.
		killTree(cmd)
		<-waitCh
		res.ExecError = ctx.Err().Error()
		res.State = domain.StateCanceled
	}
}

// awaitServer gives a server-style command a startup grace period, then
// probes its ports, terminates the process tree, and synthesizes the
// exit code from liveness. A command that dies during the grace period
// is classified like any other exit.
func (r *Runner) awaitServer(cmd *exec.Cmd, waitCh chan error, timeout time.Duration, res *domain.ExecutionResult) {
	grace := r.GracePeriod
	if timeout < grace {
		grace = timeout
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case err := <-waitCh:
		recordExit(res, err)
	case <-timer.C:
		probe := r.Prober.Probe(r.Ports)
		res.Probe = &probe
		killTree(cmd)
		<-waitCh

		code := 1
		if probe.Alive {
			code = 0
		}
		res.ExitCode = &code
		res.State = domain.StateCompleted
	}
}

func recordExit(res *domain.ExecutionResult, err error) {
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The process did start; a wait or capture failure is an
			// execution fault, not a spawn failure.
			res.ExecError = err.Error()
			res.State = domain.StateFailed
			return
		}
		code = exitCode(exitErr)
	}
	res.ExitCode = &code
	res.State = domain.StateCompleted
}

func spawnFailure(res domain.ExecutionResult, start time.Time, err error) domain.ExecutionResult {
	res.SpawnError = err.Error()
	res.State = domain.StateSpawnFailed
	res.DurationMs = time.Since(start).Milliseconds()
	return res
}

func looksLikeServer(ep domain.EntryPoint) bool {
	text := strings.ToLower(ep.Label + " " + ep.CommandLine())
	for _, w := range serverWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
