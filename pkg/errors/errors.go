package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession            = errors.New("gateway has no live session")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrRemoteFault          = errors.New("remote service fault")
)

// RemoteError reports a failed remote call with the HTTP status the
// service answered with. It unwraps to ErrRemoteFault.
type RemoteError struct {
	Op         string
	StatusCode int
}

func (e RemoteError) Error() string {
	return fmt.Sprintf("remote call %s failed with HTTP %d", e.Op, e.StatusCode)
}

func (e RemoteError) Unwrap() error {
	return ErrRemoteFault
}

// Recorder accumulates the non-fatal errors of one extraction run.
// It replaces shared mutable state: the driver owns one Recorder per
// run and hands the collected messages out in its summary.
type Recorder struct {
	messages []string
}

func (r *Recorder) Record(message string) {
	r.messages = append(r.messages, message)
}

func (r *Recorder) Recordf(format string, args ...any) {
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
}

func (r *Recorder) Count() int {
	return len(r.messages)
}

// Messages returns the recorded messages in record order.
func (r *Recorder) Messages() []string {
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}
