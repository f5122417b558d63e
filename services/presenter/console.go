package presentersvc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/labstack/gommon/color"

	"github.com/trezcool/akademik/core"
)

// Console presents notices and confirmations on a terminal.
type Console struct {
	// Interactive tells whether answers can be read from the input. When false, Confirm declines.
	Interactive bool
	// AssumeYes answers yes to every confirmation without prompting.
	AssumeYes bool

	out      io.Writer
	color    *color.Color
	requests chan struct{}
	lines    chan readResult

	confirmMu sync.Mutex
	reading   bool // a line was requested and not received yet
	stale     bool // the pending line belongs to an abandoned prompt
	eof       bool

	mu     sync.Mutex
	notice core.Notice
}

var _ core.Presenter = (*Console)(nil)

type readResult struct {
	line string
	err  error
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	c := color.New()
	c.SetOutput(out) // disables colors when `out` is not a terminal
	p := &Console{
		Interactive: true,
		out:         out,
		color:       c,
		requests:    make(chan struct{}, 1),
		lines:       make(chan readResult, 1),
	}
	go p.readLines(in)
	return p
}

// readLines reads one line per request.
func (p *Console) readLines(in io.Reader) {
	rdr := bufio.NewReader(in)
	for range p.requests {
		line, err := rdr.ReadString('\n')
		p.lines <- readResult{line: line, err: err}
		if err != nil {
			close(p.lines)
			return
		}
	}
}

func (p *Console) Notify(kind core.NoticeKind, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.notice = core.Notice{Kind: kind, Message: message, Visible: true}
	switch kind {
	case core.NoticeSuccess:
		_, _ = fmt.Fprintln(p.out, p.color.Green("✔ "+message))
	default:
		_, _ = fmt.Fprintln(p.out, p.color.Red("✘ "+message))
	}
}

// Notice returns the last notice.
func (p *Console) Notice() core.Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notice
}

func (p *Console) Dismiss() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notice.Visible = false
}

func (p *Console) Confirm(ctx context.Context, message string) (bool, error) {
	if p.AssumeYes {
		return true, nil
	}
	if !p.Interactive {
		_, _ = fmt.Fprintf(p.out, "%s [y/N]: N (non-interactive)\n", message)
		return false, nil
	}

	p.confirmMu.Lock()
	defer p.confirmMu.Unlock()
	if p.eof {
		return false, io.EOF
	}

	_, _ = fmt.Fprintf(p.out, "%s [y/N]: ", p.color.Yellow(message))
	for {
		if !p.reading {
			p.reading = true
			p.requests <- struct{}{}
		}

		select {
		case <-ctx.Done():
			p.stale = true
			_, _ = fmt.Fprintln(p.out)
			return false, ctx.Err()
		case res, ok := <-p.lines:
			p.reading = false
			if !ok {
				p.eof = true
				return false, io.EOF
			}
			if res.err != nil {
				p.eof = true
			}
			if p.stale { // typed for a prompt nobody waits on anymore
				p.stale = false
				if p.eof {
					return false, io.EOF
				}
				continue
			}

			answer := core.CleanString(res.line, true /* lower */)
			if res.err != nil && answer == "" {
				return false, res.err
			}
			return answer == "y" || strings.HasPrefix(answer, "yes"), nil
		}
	}
}
