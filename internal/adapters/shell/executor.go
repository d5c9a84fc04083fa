// Package shell provides a pty-based executor for running the project build.
package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/harvest/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Builder = (*Executor)(nil)

// Terminal size reported to build commands. Build tools format progress output
// for the terminal width they detect.
const (
	termRows = 40
	termCols = 120
)

// Executor implements ports.Builder using os/exec and pty.
type Executor struct{}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Build runs command inside dir and waits for it to complete.
//
// The command runs attached to a pseudo terminal so build tools keep their
// interactive formatting; the pty merges both streams, which are copied to stdout.
// stderr only receives output when the command cannot be attached to a pty.
func (e *Executor) Build(
	ctx context.Context,
	dir string,
	command, env []string,
	stdout, stderr io.Writer,
) error {
	if len(command) == 0 {
		return zerr.New("empty command")
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	cmdEnv := resolveEnvironment(os.Environ(), env)

	name := command[0]
	executable := name
	if !filepath.IsAbs(name) && !strings.ContainsRune(name, filepath.Separator) {
		lp, err := lookPath(name, cmdEnv)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "executable not found"), "command", name)
		}
		executable = lp
	}

	cmd := exec.CommandContext(ctx, executable, command[1:]...) //nolint:gosec // configured build command
	cmd.Args[0] = name
	cmd.Dir = dir
	cmd.Env = cmdEnv

	proc, err := start(cmd, stdout, stderr)
	if err != nil {
		return zerr.With(err, "dir", dir)
	}

	if err := proc.Wait(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
	}

	return nil
}

// process is a started command.
type process interface {
	Wait() error
}

type ptyProcess struct {
	cmd    *exec.Cmd
	ptmx   *os.File
	ioDone <-chan struct{}
}

func (p *ptyProcess) Wait() error {
	err := p.cmd.Wait()

	// The copy loop finishes once the pty reports EOF after the process exited.
	<-p.ioDone
	return err
}

type pipeProcess struct {
	cmd *exec.Cmd
}

func (p *pipeProcess) Wait() error {
	return p.cmd.Wait()
}

// start launches cmd in a pty, falling back to plain pipes when no pty can be allocated.
func start(cmd *exec.Cmd, stdout, stderr io.Writer) (process, error) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		if err := cmd.Start(); err != nil {
			return nil, zerr.Wrap(err, "failed to start command")
		}
		return &pipeProcess{cmd: cmd}, nil
	}

	_ = pty.Setsize(ptmx, &pty.Winsize{Rows: termRows, Cols: termCols})

	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Start(); err != nil {
		_ = tty.Close()
		_ = ptmx.Close()
		return nil, zerr.Wrap(err, "failed to start pty")
	}
	// The child holds its own copy of the tty.
	_ = tty.Close()

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()

		// Reading a pty whose child exited returns EIO on Linux; that is the
		// normal end of output and is not reported.
		_, _ = io.Copy(stdout, ptmx)
	}()

	return &ptyProcess{
		cmd:    cmd,
		ptmx:   ptmx,
		ioDone: ioDone,
	}, nil
}

// resolveEnvironment layers the configured variables over the inherited environment.
// The build sees the full parent environment: package managers depend on far more
// than a fixed allow-list. The result is sorted for reproducible process launches.
func resolveEnvironment(sysEnv, extra []string) []string {
	envMap := make(map[string]string, len(sysEnv)+len(extra))
	for _, list := range [][]string{sysEnv, extra} {
		for _, entry := range list {
			k, v, ok := strings.Cut(entry, "=")
			if ok && k != "" {
				envMap[k] = v
			}
		}
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	slices.Sort(result)
	return result
}

// lookPath searches for an executable in the directories named by the PATH
// entry of env rather than the PATH of the current process.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
