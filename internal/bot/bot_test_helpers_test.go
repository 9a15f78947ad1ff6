package bot

import (
	"context"
	"sync"
	"testing"

	"gitlab.com/dumpyara/dumpyarabot/internal/config"
	"gitlab.com/dumpyara/dumpyarabot/internal/jenkins"
	"gitlab.com/dumpyara/dumpyarabot/internal/models"
)

const (
	testChatID      = int64(-1001234)
	testAdminID     = int64(123456)
	testBotUsername = "dumpyarabot"
)

type triggeredBuild struct {
	Job    string
	Params map[string]string
}

type cancelCall struct {
	Job string
	ID  int
}

// fakeBuildServer records calls and returns canned results.
type fakeBuildServer struct {
	mu sync.Mutex

	Existing     *jenkins.Build
	FindErr      error
	TriggerErr   error
	CancelResult jenkins.CancelResult
	CancelErr    error

	FindCalls []string
	Triggered []triggeredBuild
	Cancelled []cancelCall
}

func (f *fakeBuildServer) FindBuild(_ context.Context, job, url string) (*jenkins.Build, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FindCalls = append(f.FindCalls, job+" "+url)
	return f.Existing, f.FindErr
}

func (f *fakeBuildServer) TriggerBuild(_ context.Context, job string, params map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TriggerErr != nil {
		return f.TriggerErr
	}
	f.Triggered = append(f.Triggered, triggeredBuild{Job: job, Params: params})
	return nil
}

func (f *fakeBuildServer) Cancel(_ context.Context, job string, id int) (jenkins.CancelResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Cancelled = append(f.Cancelled, cancelCall{Job: job, ID: id})
	return f.CancelResult, f.CancelErr
}

type recordedCommand struct {
	UserID  int64
	Command string
}

// fakeUserRecorder records RecordCommand calls.
type fakeUserRecorder struct {
	mu       sync.Mutex
	Err      error
	Commands []recordedCommand
}

func (f *fakeUserRecorder) RecordCommand(_ context.Context, user *models.User, command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Commands = append(f.Commands, recordedCommand{UserID: user.ID, Command: command})
	return f.Err
}

// setupTestBot creates a Bot wired to fakes.
func setupTestBot(t *testing.T, builds *fakeBuildServer) *Bot {
	t.Helper()

	cfg := &config.Config{
		TelegramBotToken:   "test-token",
		JenkinsURL:         "https://jenkins.example.com",
		JenkinsJob:         config.DefaultJenkinsJob,
		JenkinsPrivateJob:  config.DefaultJenkinsPrivateJob,
		WhitelistedUserIDs: []int64{testAdminID},
	}

	return &Bot{
		cfg:      cfg,
		builds:   builds,
		metrics:  newBotMetrics(),
		username: testBotUsername,
	}
}
