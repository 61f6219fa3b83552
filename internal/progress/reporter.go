package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback during repository scans.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Scanning services"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	total int
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(os.Stderr, "Starting scan of %d services\n", total)
}

func (r *CIReporter) Update(current int, message string) {
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", current, r.total, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(os.Stderr, "Scan complete")
}

// Event is one progress update, suitable for JSON delivery to watchers.
type Event struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
	Done    bool   `json:"done"`
}

// FuncReporter forwards progress events to a callback, typically a
// websocket broadcast.
type FuncReporter struct {
	Emit  func(Event)
	total int
}

func (r *FuncReporter) Start(total int) {
	r.total = total
	r.Emit(Event{Total: total})
}

func (r *FuncReporter) Update(current int, message string) {
	r.Emit(Event{Current: current, Total: r.total, Message: message})
}

func (r *FuncReporter) Finish() {
	r.Emit(Event{Current: r.total, Total: r.total, Done: true})
}

// Multi fans progress out to several reporters.
type Multi []Reporter

func (m Multi) Start(total int) {
	for _, r := range m {
		r.Start(total)
	}
}

func (m Multi) Update(current int, message string) {
	for _, r := range m {
		r.Update(current, message)
	}
}

func (m Multi) Finish() {
	for _, r := range m {
		r.Finish()
	}
}
