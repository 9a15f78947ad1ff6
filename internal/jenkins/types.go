package jenkins

// Build is a single build of a Jenkins job.
type Build struct {
	Number int
	// Result is empty while the build is still running.
	Result     string
	URL        string
	Parameters map[string]string
}

// Building reports whether the build has not finished yet.
func (b Build) Building() bool {
	return b.Result == ""
}

// Succeeded reports whether the build finished successfully.
func (b Build) Succeeded() bool {
	return b.Result == ResultSuccess
}

// ResultSuccess is the Jenkins result string of a successful build.
const ResultSuccess = "SUCCESS"

// CancelResult describes what a cancel request hit.
type CancelResult int

// Cancel outcomes.
const (
	CancelledBuild CancelResult = iota + 1
	CancelledQueueItem
)

func (r CancelResult) String() string {
	switch r {
	case CancelledBuild:
		return "build"
	case CancelledQueueItem:
		return "queue item"
	default:
		return "unknown"
	}
}

type buildsResponse struct {
	AllBuilds []buildPayload `json:"allBuilds"`
}

type buildPayload struct {
	Number  int             `json:"number"`
	Result  *string         `json:"result"`
	URL     string          `json:"url"`
	Actions []actionPayload `json:"actions"`
}

type actionPayload struct {
	Parameters []parameterPayload `json:"parameters"`
}

type parameterPayload struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}
