package bot

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"gitlab.com/dumpyara/dumpyarabot/internal/options"
)

var (
	errMissingURL   = errors.New("missing url")
	errInvalidURL   = errors.New("invalid url")
	errMissingJobID = errors.New("missing job id")
	errInvalidJobID = errors.New("invalid job id")
)

// dumpRequest is a parsed /dump command.
type dumpRequest struct {
	URL     string
	Options options.Options
}

// cancelRequest is a parsed /cancel command.
type cancelRequest struct {
	JobID   int
	Private bool
}

// splitCommand splits "/Cmd@BotName rest" into the lowercased command, the
// addressed bot username and the trimmed rest. ok is false when text is not a command.
func splitCommand(text string) (command, mention, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", "", false
	}

	head := text
	if idx := strings.IndexFunc(text, unicode.IsSpace); idx != -1 {
		head, args = text[:idx], strings.TrimSpace(text[idx:])
	}
	command, mention, addressed := strings.Cut(head, "@")
	if addressed && mention == "" {
		return "", "", "", false
	}
	return strings.ToLower(command), mention, args, true
}

// isCommand reports whether text invokes command on the bot named username.
// Commands addressed to another bot with @name are not ours. "/dumpster" is not "/dump".
func isCommand(text, command, username string) bool {
	name, mention, _, ok := splitCommand(text)
	if !ok || name != command {
		return false
	}
	return mention == "" || strings.EqualFold(mention, username)
}

// extractCommandArgs strips the /command prefix (and optional @botname suffix)
// from a message and returns the remaining trimmed arguments.
func extractCommandArgs(text string) string {
	_, _, args, _ := splitCommand(text)
	return args
}

// parseDumpArgs parses "<url> [options...]".
func parseDumpArgs(args string) (dumpRequest, error) {
	tokens := strings.Fields(args)
	if len(tokens) == 0 {
		return dumpRequest{}, errMissingURL
	}

	if !isDumpURL(tokens[0]) {
		return dumpRequest{}, errInvalidURL
	}

	return dumpRequest{
		URL:     tokens[0],
		Options: options.Parse(tokens),
	}, nil
}

func isDumpURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// parseCancelArgs parses "<job_id> [p]".
func parseCancelArgs(args string) (cancelRequest, error) {
	tokens := strings.Fields(args)
	if len(tokens) == 0 {
		return cancelRequest{}, errMissingJobID
	}

	id, err := strconv.Atoi(tokens[0])
	if err != nil || id <= 0 {
		return cancelRequest{}, errInvalidJobID
	}

	return cancelRequest{
		JobID:   id,
		Private: options.Parse(tokens).Private,
	}, nil
}
