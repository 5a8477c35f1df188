// Package publish pushes the portal snapshot to where the portal reads it.
package publish

import (
	"context"
	"fmt"

	"github.com/tartampluch/go-register/internal/config"
)

// Publisher ships a written snapshot file.
type Publisher interface {
	Publish(ctx context.Context, path string) error
}

// New returns the publisher selected by s.Publish.Mode, or nil for "none".
func New(ctx context.Context, s config.PublishSettings) (Publisher, error) {
	switch s.Mode {
	case "", config.PublishModeNone:
		return nil, nil
	case config.PublishModeGit:
		return &GitPublisher{
			Runner:  ExecRunner{},
			Dir:     s.GitDir,
			Message: s.CommitMessage,
		}, nil
	case config.PublishModeS3:
		p, err := NewS3Publisher(ctx, s.S3Region, s.S3Bucket, s.S3Key)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrPublishMode, s.Mode)
	}
}
