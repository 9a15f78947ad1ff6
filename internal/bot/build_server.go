package bot

import (
	"context"

	"gitlab.com/dumpyara/dumpyarabot/internal/jenkins"
	"gitlab.com/dumpyara/dumpyarabot/internal/models"
)

// BuildServer starts, finds and cancels dump builds.
type BuildServer interface {
	FindBuild(ctx context.Context, job, url string) (*jenkins.Build, error)
	TriggerBuild(ctx context.Context, job string, params map[string]string) error
	Cancel(ctx context.Context, job string, id int) (jenkins.CancelResult, error)
}

// UserRecorder stores who issued which command.
type UserRecorder interface {
	RecordCommand(ctx context.Context, user *models.User, command string) error
}

var _ BuildServer = (*jenkins.Client)(nil)
