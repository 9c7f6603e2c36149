// Package health collects a diagnostic snapshot of a minichat install: the
// runtime, the config file, the terminal and the chat backend.
package health

import (
	"context"
	"errors"
	"os"
	"runtime"
	"time"

	"golang.org/x/term"
)

// Options selects what Collect inspects.
type Options struct {
	ConfigPath string
	LogFile    string
	Provider   string
	Model      string
	// BuildError is set when no backend could be built from the config.
	BuildError error
	// Probe checks that the backend answers. Nil skips the check.
	Probe        func(ctx context.Context) error
	ProbeTimeout time.Duration
}

const defaultProbeTimeout = 5 * time.Second

func (o Options) normalize() Options {
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = defaultProbeTimeout
	}
	return o
}

// Snapshot is the result of Collect.
type Snapshot struct {
	Status    string       `json:"status" yaml:"status"`
	Runtime   RuntimeInfo  `json:"runtime" yaml:"runtime"`
	Config    FileInfo     `json:"config" yaml:"config"`
	Log       *FileInfo    `json:"log,omitempty" yaml:"log,omitempty"`
	Terminal  TerminalInfo `json:"terminal" yaml:"terminal"`
	Backend   BackendInfo  `json:"backend" yaml:"backend"`
	Timestamp string       `json:"timestamp" yaml:"timestamp"`
}

// RuntimeInfo describes the Go runtime.
type RuntimeInfo struct {
	Version string `json:"version" yaml:"version"`
	OS      string `json:"os" yaml:"os"`
	Arch    string `json:"arch" yaml:"arch"`
}

// FileInfo describes a file on disk.
type FileInfo struct {
	Path      string `json:"path" yaml:"path"`
	Exists    bool   `json:"exists" yaml:"exists"`
	SizeBytes int64  `json:"sizeBytes,omitempty" yaml:"sizeBytes,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// TerminalInfo tells whether the chat can run here.
type TerminalInfo struct {
	StdinTTY  bool `json:"stdinTTY" yaml:"stdinTTY"`
	StdoutTTY bool `json:"stdoutTTY" yaml:"stdoutTTY"`
	Cols      int  `json:"cols,omitempty" yaml:"cols,omitempty"`
	Rows      int  `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// BackendInfo reports the configured backend and whether it answered.
type BackendInfo struct {
	Provider  string `json:"provider" yaml:"provider"`
	Model     string `json:"model,omitempty" yaml:"model,omitempty"`
	Probed    bool   `json:"probed" yaml:"probed"`
	Reachable bool   `json:"reachable" yaml:"reachable"`
	LatencyMs int64  `json:"latencyMs,omitempty" yaml:"latencyMs,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

// The frame drawn by the chat needs this much room.
const (
	minCols = 78
	minRows = 23
)

// Collect returns a health snapshot. Status is "healthy" when the backend
// answered (or was not probed) and the terminal can host the chat,
// "degraded" otherwise.
func Collect(ctx context.Context, opts Options) Snapshot {
	opts = opts.normalize()

	s := Snapshot{
		Status: "healthy",
		Runtime: RuntimeInfo{
			Version: runtime.Version(),
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
		},
		Config:    inspectFile(opts.ConfigPath),
		Terminal:  inspectTerminal(),
		Backend:   probeBackend(ctx, opts),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if opts.LogFile != "" {
		info := inspectFile(opts.LogFile)
		s.Log = &info
	}

	if s.Backend.Error != "" || !s.Terminal.usable() {
		s.Status = "degraded"
	}
	return s
}

func (t TerminalInfo) usable() bool {
	if !t.StdinTTY || !t.StdoutTTY {
		return false
	}
	// Unknown size is given the benefit of the doubt.
	return t.Cols == 0 || (t.Cols >= minCols && t.Rows >= minRows)
}

func inspectTerminal() TerminalInfo {
	info := TerminalInfo{
		StdinTTY:  term.IsTerminal(int(os.Stdin.Fd())),
		StdoutTTY: term.IsTerminal(int(os.Stdout.Fd())),
	}
	if info.StdoutTTY {
		if cols, rows, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			info.Cols, info.Rows = cols, rows
		}
	}
	return info
}

func inspectFile(path string) FileInfo {
	info := FileInfo{Path: path}
	if path == "" {
		return info
	}

	stat, err := os.Stat(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			info.Error = err.Error()
		}
		return info
	}
	info.Exists = true
	info.SizeBytes = stat.Size()
	info.UpdatedAt = stat.ModTime().Format(time.RFC3339)
	return info
}

func probeBackend(ctx context.Context, opts Options) BackendInfo {
	info := BackendInfo{Provider: opts.Provider, Model: opts.Model}
	if opts.BuildError != nil {
		info.Error = opts.BuildError.Error()
		return info
	}
	if opts.Probe == nil {
		return info
	}

	ctx, cancel := context.WithTimeout(ctx, opts.ProbeTimeout)
	defer cancel()

	start := time.Now()
	err := opts.Probe(ctx)
	info.Probed = true
	info.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Reachable = true
	return info
}
