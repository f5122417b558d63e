package presentersvc

import (
	"context"
	"sync"

	"github.com/trezcool/akademik/core"
)

// Recorder is a Presenter that records what would have been shown.
// Confirmations are answered from a queue, then with Default.
type Recorder struct {
	Default bool

	mu      sync.Mutex
	notices []core.Notice
	prompts []string
	answers []bool
	notice  core.Notice
}

var _ core.Presenter = (*Recorder)(nil)

func NewRecorder(answers ...bool) *Recorder {
	return &Recorder{answers: answers}
}

func (r *Recorder) Notify(kind core.NoticeKind, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notice = core.Notice{Kind: kind, Message: message, Visible: true}
	r.notices = append(r.notices, r.notice)
}

func (r *Recorder) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, message)
	if len(r.answers) == 0 {
		return r.Default, nil
	}
	answer := r.answers[0]
	r.answers = r.answers[1:]
	return answer, nil
}

// Answer queues answers for the next confirmations.
func (r *Recorder) Answer(answers ...bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers = append(r.answers, answers...)
}

// Notice returns the visible notice.
func (r *Recorder) Notice() core.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notice
}

func (r *Recorder) Dismiss() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notice.Visible = false
}

// Notices returns every notice shown so far.
func (r *Recorder) Notices() []core.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Notice(nil), r.notices...)
}

// Prompts returns every confirmation message asked so far.
func (r *Recorder) Prompts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.prompts...)
}

// Reset forgets recorded notices and prompts.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
	r.prompts = nil
	r.notice = core.Notice{}
}
