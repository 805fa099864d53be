// Package console abstracts user-facing progress reporting so that
// long-running pipelines can report without binding to a terminal.
package console

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Console receives user-facing progress and warnings. Implementations
// must be safe to call with no terminal attached.
type Console interface {
	// Progressf reports a step of a long-running operation
	Progressf(format string, args ...interface{})

	// Infof reports neutral information
	Infof(format string, args ...interface{})

	// Warnf reports a recoverable problem
	Warnf(format string, args ...interface{})

	// Successf reports a completed operation
	Successf(format string, args ...interface{})
}

// Terminal renders console messages with pterm prefixes.
type Terminal struct{}

// NewTerminal creates a pterm-backed console.
func NewTerminal() *Terminal {
	return &Terminal{}
}

func (c *Terminal) Progressf(format string, args ...interface{}) {
	pterm.Info.WithPrefix(pterm.Prefix{Text: " TASK", Style: pterm.Info.Prefix.Style}).
		Printfln(format, args...)
}

func (c *Terminal) Infof(format string, args ...interface{}) {
	pterm.Info.Printfln(format, args...)
}

func (c *Terminal) Warnf(format string, args ...interface{}) {
	pterm.Warning.Printfln(format, args...)
}

func (c *Terminal) Successf(format string, args ...interface{}) {
	pterm.Success.Printfln(format, args...)
}

// Recorder captures console messages for assertions in tests.
type Recorder struct {
	Messages []string
}

func (r *Recorder) record(kind, format string, args []interface{}) {
	r.Messages = append(r.Messages, kind+": "+fmt.Sprintf(format, args...))
}

func (r *Recorder) Progressf(format string, args ...interface{}) { r.record("progress", format, args) }
func (r *Recorder) Infof(format string, args ...interface{})     { r.record("info", format, args) }
func (r *Recorder) Warnf(format string, args ...interface{})     { r.record("warn", format, args) }
func (r *Recorder) Successf(format string, args ...interface{})  { r.record("success", format, args) }
