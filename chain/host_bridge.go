package chain

import (
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/crytic/cheatvm/utils"
	"github.com/pkg/errors"
)

// HostBridge is the only component permitted to touch the real operating system on behalf of cheat codes:
// subprocess execution, environment variables, the wall clock, and file reads. It is passed into the TestChain as
// an explicit handle rather than accessed as ambient global state, so tests can inject a fake bridge.
type HostBridge interface {
	// RunCommand spawns the named program with the given arguments in the given working directory, waits for it to
	// exit, and captures its output. A nonzero exit status is reported through exitCode, not err; err is reserved
	// for spawn failures (e.g. executable not found).
	RunCommand(dir string, name string, args ...string) (exitCode int, stdout []byte, stderr []byte, err error)

	// Getenv reads an environment variable, reporting whether it was set.
	Getenv(key string) (string, bool)

	// Setenv sets an environment variable.
	Setenv(key string, value string) error

	// Environ returns all environment variables as "KEY=VALUE" strings, in the host's enumeration order.
	Environ() []string

	// UnixTimeMilli returns the wall clock time as milliseconds since the Unix epoch.
	UnixTimeMilli() int64

	// Sleep blocks the calling context for at least the given duration.
	Sleep(duration time.Duration)

	// ReadFile reads the file at the given path.
	ReadFile(path string) ([]byte, error)
}

// systemHostBridge implements HostBridge against the real operating system.
type systemHostBridge struct{}

// NewSystemHostBridge creates a HostBridge backed by the real operating system.
func NewSystemHostBridge() HostBridge {
	return &systemHostBridge{}
}

// RunCommand spawns the given command and waits for it to exit, capturing stdout and stderr.
func (b *systemHostBridge) RunCommand(dir string, name string, args ...string) (int, []byte, []byte, error) {
	command := exec.Command(name, args...)
	command.Dir = dir

	stdout, stderr, _, err := utils.RunCommandWithOutputAndError(command)
	if err != nil {
		// A nonzero exit status is part of the result, not a bridge failure.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), stdout, stderr, nil
		}
		return 0, nil, nil, errors.WithStack(err)
	}
	return 0, stdout, stderr, nil
}

// Getenv reads an environment variable from the process environment.
func (b *systemHostBridge) Getenv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Setenv sets an environment variable in the process environment.
func (b *systemHostBridge) Setenv(key string, value string) error {
	return errors.WithStack(os.Setenv(key, value))
}

// Environ returns the process environment.
func (b *systemHostBridge) Environ() []string {
	return os.Environ()
}

// UnixTimeMilli returns the current wall clock time in milliseconds since the Unix epoch.
func (b *systemHostBridge) UnixTimeMilli() int64 {
	return time.Now().UnixMilli()
}

// Sleep blocks for at least the given duration.
func (b *systemHostBridge) Sleep(duration time.Duration) {
	time.Sleep(duration)
}

// ReadFile reads the file at the given path. Relative paths resolve against the process working directory; callers
// wanting a different root should join it beforehand (see TestChain.resolvePath).
func (b *systemHostBridge) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	return data, errors.WithStack(err)
}
