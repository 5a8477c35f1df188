package publish

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/tartampluch/go-register/internal/config"
)

// Runner executes a command in dir and returns its combined output.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs real processes.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	// Output is matched against English messages.
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// GitPublisher commits the snapshot and pushes it to the configured remote.
type GitPublisher struct {
	Runner  Runner
	Dir     string
	Message string
}

const nothingToCommit = "nothing to commit"

func (g *GitPublisher) Publish(ctx context.Context, path string) error {
	dir := g.Dir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = path
	}
	msg := g.Message
	if msg == "" {
		msg = config.DefaultCommitMsg
	}

	if err := g.git(ctx, dir, "add", rel); err != nil {
		return err
	}
	if err := g.git(ctx, dir, "commit", "-m", msg); err != nil {
		// An unchanged snapshot still gets pushed; a previous push may have failed.
		if !strings.Contains(err.Error(), nothingToCommit) {
			return err
		}
		slog.Info(config.MsgGitNothing, config.LogKeyComponent, config.CompPublish)
	}
	if err := g.git(ctx, dir, "push"); err != nil {
		return err
	}

	slog.Info(config.MsgPublishDone,
		config.LogKeyComponent, config.CompPublish,
		config.LogKeyMode, config.PublishModeGit,
		config.LogKeyPath, path)
	return nil
}

func (g *GitPublisher) git(ctx context.Context, dir string, args ...string) error {
	out, err := g.Runner.Run(ctx, dir, "git", args...)
	slog.Debug(config.MsgGitRun, config.LogKeyComponent, config.CompPublish,
		config.LogKeyArgs, args,
		config.LogKeyOutput, string(out))
	if err != nil {
		return fmt.Errorf("%s: git %s: %w: %s", config.ErrGitCommand, args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}
