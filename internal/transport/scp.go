package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/technomancy/scpaste/internal/config"
	"github.com/technomancy/scpaste/internal/logfields"
)

// SCP publishes over the system scp and ssh binaries so existing host keys,
// agents, and ssh_config entries all apply unchanged.
type SCP struct {
	user string
	host string
	path string
	port int
}

// NewSCP builds an SCP transport for the configured destination.
func NewSCP(cfg config.SCPConfig) *SCP {
	return &SCP{
		user: cfg.User,
		host: cfg.Host,
		path: strings.TrimRight(cfg.Path, "/"),
		port: cfg.Port,
	}
}

// Copy uploads localPath to remoteName in the destination directory.
func (s *SCP) Copy(ctx context.Context, localPath, remoteName string) error {
	args := []string{"-q", "-o", "BatchMode=yes"}
	if s.port != 0 && s.port != 22 {
		args = append(args, "-P", strconv.Itoa(s.port))
	}
	args = append(args, localPath, s.copySpec(remoteName))

	slog.Debug("copying artifact", logfields.Remote(s.target()), logfields.Path(remoteName))

	// #nosec G204 -- invoking scp with fixed binary name and controlled args
	cmd := exec.CommandContext(ctx, "scp", args...)
	if _, err := cmd.Output(); err != nil {
		return fmt.Errorf("scp %s: %w", remoteName, withStderr(err))
	}
	return nil
}

// ListDir lists the destination directory over ssh, one name per line.
func (s *SCP) ListDir(ctx context.Context) ([]string, error) {
	args := []string{"-o", "BatchMode=yes"}
	if s.port != 0 && s.port != 22 {
		args = append(args, "-p", strconv.Itoa(s.port))
	}
	args = append(args, s.target(), "ls -1 "+shellQuote(s.path))

	slog.Debug("listing destination", logfields.Remote(s.target()))

	// #nosec G204 -- invoking ssh with fixed binary name and controlled args
	cmd := exec.CommandContext(ctx, "ssh", args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ssh ls %s: %w", s.target(), withStderr(err))
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// target is the ssh destination, user@host or bare host.
func (s *SCP) target() string {
	if s.user == "" {
		return s.host
	}
	return s.user + "@" + s.host
}

// copySpec is the scp remote operand. The path is quoted for the remote
// shell so names containing spaces survive the transfer.
func (s *SCP) copySpec(remoteName string) string {
	return s.target() + ":" + shellQuote(s.path+"/"+remoteName)
}

// shellQuote single-quotes a string for a POSIX remote shell.
func shellQuote(v string) string {
	return "'" + strings.ReplaceAll(v, "'", `'\''`) + "'"
}

// withStderr folds captured stderr into exec errors so the reason a remote
// command failed survives into logs.
func withStderr(err error) error {
	var ee *exec.ExitError
	if errors.As(err, &ee) && len(ee.Stderr) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(ee.Stderr)))
	}
	return err
}
