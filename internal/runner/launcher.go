// Package runner executes the catalog's external tools: direct exec with no
// shell in between, combined stdout+stderr capture, and every failure folded
// into a terminal Result rather than a fault.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultMaxOutput caps the combined capture buffer.
const DefaultMaxOutput = 1 << 20 // 1 MiB

// DefaultSearchPaths are appended to the child's PATH after the inherited
// value so tools installed by common package managers resolve regardless of
// how the parent process was launched (e.g. from a desktop launcher with a
// minimal environment).
func DefaultSearchPaths() []string {
	paths := []string{
		"/usr/local/bin",
		"/opt/homebrew/bin",
		"/opt/local/bin",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".local", "bin"),
			filepath.Join(home, "go", "bin"),
		)
	}
	return paths
}

// Launcher runs one external program to completion and reports the outcome.
// The zero value is usable; fields tune capture and environment handling.
type Launcher struct {
	// MaxOutput bounds the combined capture in bytes. Zero means
	// DefaultMaxOutput. Output beyond the cap is discarded, not buffered.
	MaxOutput int

	// ExtraPaths overrides DefaultSearchPaths for PATH augmentation.
	ExtraPaths []string

	// Dir is the child's working directory. Empty means inherit.
	Dir string
}

// Run executes path with args verbatim and blocks until the process exits.
// No shell is involved: the path is executed directly, so metacharacters in
// args carry no meaning. path must be absolute; PATH lookup is deliberately
// not performed.
//
// All failure modes collapse into the returned Result:
//   - normal termination: Succeeded iff exit code 0, ExitCode set, Text
//     holding the combined output (NoOutput when the capture is empty)
//   - launch failure (missing, not executable, relative path): Failed with
//     a diagnostic that includes the underlying system error, ExitCode nil
//
// Run blocks the calling goroutine; callers that must not block dispatch it
// on a worker (see runtime.ToolEngine).
func (l *Launcher) Run(ctx context.Context, path string, args []string) Result {
	if !filepath.IsAbs(path) {
		return Result{
			Status: StatusFailed,
			Text:   fmt.Sprintf("launch failed: executable path %q is not absolute", path),
		}
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = l.Dir
	cmd.Env = AugmentPATH(os.Environ(), l.extraPaths())

	// One writer for both streams: os/exec serializes writes when Stdout
	// and Stderr are the same non-file writer, which is exactly the
	// combined-output contract.
	var buf bytes.Buffer
	capture := &limitWriter{buf: &buf, limit: l.maxOutput()}
	cmd.Stdout = capture
	cmd.Stderr = capture

	runErr := cmd.Run()

	text := buf.String()
	if text == "" {
		text = NoOutput
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			code := exitErr.ExitCode()
			return Result{
				Status:    StatusFailed,
				Text:      text,
				ExitCode:  &code,
				Truncated: capture.truncated,
			}
		}
		// The process never started; runErr carries the OS diagnostic.
		return Result{
			Status: StatusFailed,
			Text:   fmt.Sprintf("launch failed: %v", runErr),
		}
	}

	code := 0
	return Result{
		Status:    StatusSucceeded,
		Text:      text,
		ExitCode:  &code,
		Truncated: capture.truncated,
	}
}

// RunTool is Run applied to a catalog entry.
func (l *Launcher) RunTool(ctx context.Context, tool Tool) Result {
	return l.Run(ctx, tool.Path, tool.Args)
}

func (l *Launcher) maxOutput() int {
	if l.MaxOutput > 0 {
		return l.MaxOutput
	}
	return DefaultMaxOutput
}

func (l *Launcher) extraPaths() []string {
	if l.ExtraPaths != nil {
		return l.ExtraPaths
	}
	return DefaultSearchPaths()
}

// AugmentPATH returns a copy of env with extra directories appended to the
// PATH entry, after the inherited value, skipping directories already on it.
// A missing PATH entry is created from extra alone.
func AugmentPATH(env []string, extra []string) []string {
	out := make([]string, 0, len(env)+1)
	found := false
	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, "PATH="); ok {
			found = true
			out = append(out, "PATH="+appendPathDirs(v, extra))
			continue
		}
		out = append(out, kv)
	}
	if !found && len(extra) > 0 {
		out = append(out, "PATH="+strings.Join(extra, string(os.PathListSeparator)))
	}
	return out
}

func appendPathDirs(path string, extra []string) string {
	sep := string(os.PathListSeparator)
	present := make(map[string]struct{})
	for _, dir := range strings.Split(path, sep) {
		present[dir] = struct{}{}
	}
	for _, dir := range extra {
		if _, ok := present[dir]; ok {
			continue
		}
		present[dir] = struct{}{}
		path += sep + dir
	}
	return path
}

// limitWriter keeps up to limit bytes and silently discards the rest,
// reporting full consumption so the child never sees a short write.
type limitWriter struct {
	buf       *bytes.Buffer
	limit     int
	truncated bool
}

func (w *limitWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.buf.Len()
	if remaining <= 0 {
		if len(p) > 0 {
			w.truncated = true
		}
		return len(p), nil
	}
	if len(p) > remaining {
		w.truncated = true
		w.buf.Write(p[:remaining])
		return len(p), nil
	}
	return w.buf.Write(p)
}
