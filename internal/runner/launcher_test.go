package runner

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestRun_SucceededWithOutput(t *testing.T) {
	l := &Launcher{}
	res := l.Run(context.Background(), "/bin/sh", []string{"-c", "printf hello-from-tool"})

	if res.Status != StatusSucceeded {
		t.Fatalf("Status = %v, want succeeded (text: %q)", res.Status, res.Text)
	}
	if res.Text != "hello-from-tool" {
		t.Errorf("Text = %q, want %q", res.Text, "hello-from-tool")
	}
	if res.ExitCode == nil || *res.ExitCode != 0 {
		t.Errorf("ExitCode = %v, want 0", res.ExitCode)
	}
	if !res.Launched() {
		t.Error("Launched() = false, want true")
	}
}

func TestRun_EmptyOutputPlaceholder(t *testing.T) {
	l := &Launcher{}
	res := l.Run(context.Background(), "/bin/sh", []string{"-c", "exit 0"})

	if res.Status != StatusSucceeded {
		t.Fatalf("Status = %v, want succeeded", res.Status)
	}
	if res.Text != NoOutput {
		t.Errorf("Text = %q, want placeholder %q", res.Text, NoOutput)
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	l := &Launcher{}
	res := l.Run(context.Background(), "/bin/sh", []string{"-c", "echo boom >&2; exit 3"})

	if res.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", res.Status)
	}
	if res.ExitCode == nil || *res.ExitCode != 3 {
		t.Errorf("ExitCode = %v, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Text, "boom") {
		t.Errorf("Text = %q, want stderr captured in combined output", res.Text)
	}
}

func TestRun_CombinedCapture(t *testing.T) {
	l := &Launcher{}
	res := l.Run(context.Background(), "/bin/sh", []string{"-c", "echo out; echo err >&2"})

	if !strings.Contains(res.Text, "out") || !strings.Contains(res.Text, "err") {
		t.Errorf("Text = %q, want both stdout and stderr", res.Text)
	}
}

func TestRun_LaunchFailureMissing(t *testing.T) {
	l := &Launcher{}
	res := l.Run(context.Background(), "/nonexistent/no-such-tool-xyz", nil)

	if res.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", res.Status)
	}
	if res.ExitCode != nil {
		t.Errorf("ExitCode = %v, want nil for launch failure", *res.ExitCode)
	}
	if res.Launched() {
		t.Error("Launched() = true, want false")
	}
	if !strings.Contains(res.Text, "launch failed") || len(res.Text) <= len("launch failed: ") {
		t.Errorf("Text = %q, want diagnostic with underlying error", res.Text)
	}
}

func TestRun_RelativePathRejected(t *testing.T) {
	l := &Launcher{}
	res := l.Run(context.Background(), "ls", nil)

	if res.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed", res.Status)
	}
	if res.ExitCode != nil {
		t.Errorf("ExitCode = %v, want nil", *res.ExitCode)
	}
	if !strings.Contains(res.Text, "not absolute") {
		t.Errorf("Text = %q, want absolute-path diagnostic", res.Text)
	}
}

func TestRun_ListRoot(t *testing.T) {
	l := &Launcher{}
	res := l.Run(context.Background(), "/bin/ls", []string{"-la", "/"})

	if res.Status != StatusSucceeded {
		t.Fatalf("Status = %v, want succeeded (text: %q)", res.Status, res.Text)
	}
	if res.ExitCode == nil || *res.ExitCode != 0 {
		t.Errorf("ExitCode = %v, want 0", res.ExitCode)
	}
	if len(strings.Split(strings.TrimSpace(res.Text), "\n")) < 1 || res.Text == NoOutput {
		t.Errorf("Text = %q, want at least one listing line", res.Text)
	}
}

func TestRun_GitStatusOutsideRepo(t *testing.T) {
	gitPath, err := exec.LookPath("git")
	if err != nil {
		t.Skip("git not installed")
	}

	l := &Launcher{Dir: t.TempDir()}
	res := l.Run(context.Background(), gitPath, []string{"status"})

	if res.Status != StatusFailed {
		t.Fatalf("Status = %v, want failed outside a repository", res.Status)
	}
	if res.ExitCode == nil || *res.ExitCode == 0 {
		t.Errorf("ExitCode = %v, want non-zero", res.ExitCode)
	}
	if res.Text == "" {
		t.Error("Text is empty, want diagnostic output")
	}
}

func TestRun_OutputTruncation(t *testing.T) {
	l := &Launcher{MaxOutput: 64}
	res := l.Run(context.Background(), "/bin/sh", []string{"-c", "dd if=/dev/zero bs=200 count=1 2>/dev/null"})

	if !res.Truncated {
		t.Error("Truncated = false, want true")
	}
	if len(res.Text) > 64 {
		t.Errorf("len(Text) = %d, want <= 64", len(res.Text))
	}
}

func TestRun_NoShellInterpretation(t *testing.T) {
	// Metacharacters must be passed verbatim, not expanded.
	l := &Launcher{}
	res := l.Run(context.Background(), "/bin/echo", []string{"$HOME", ";", "id"})

	if res.Status != StatusSucceeded {
		t.Skipf("/bin/echo unavailable: %s", res.Text)
	}
	if !strings.Contains(res.Text, "$HOME") {
		t.Errorf("Text = %q, want literal $HOME (no shell expansion)", res.Text)
	}
}

func TestAugmentPATH(t *testing.T) {
	tests := []struct {
		name  string
		env   []string
		extra []string
		want  string
	}{
		{
			name:  "appends after inherited value",
			env:   []string{"HOME=/home/u", "PATH=/usr/bin:/bin"},
			extra: []string{"/usr/local/bin"},
			want:  "PATH=/usr/bin:/bin:/usr/local/bin",
		},
		{
			name:  "skips directories already present",
			env:   []string{"PATH=/usr/bin:/usr/local/bin"},
			extra: []string{"/usr/local/bin", "/opt/homebrew/bin"},
			want:  "PATH=/usr/bin:/usr/local/bin:/opt/homebrew/bin",
		},
		{
			name:  "creates PATH when missing",
			env:   []string{"HOME=/home/u"},
			extra: []string{"/usr/local/bin", "/opt/local/bin"},
			want:  "PATH=/usr/local/bin:/opt/local/bin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AugmentPATH(tt.env, tt.extra)
			found := ""
			for _, kv := range got {
				if strings.HasPrefix(kv, "PATH=") {
					found = kv
					break
				}
			}
			if found != tt.want {
				t.Errorf("PATH entry = %q, want %q", found, tt.want)
			}
		})
	}
}

func TestAugmentPATH_PreservesOtherVars(t *testing.T) {
	env := []string{"HOME=/home/u", "PATH=/bin", "TERM=xterm"}
	got := AugmentPATH(env, []string{"/usr/local/bin"})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0] != "HOME=/home/u" || got[2] != "TERM=xterm" {
		t.Errorf("non-PATH entries disturbed: %v", got)
	}
}

func TestAugmentPATH_RealEnvironment(t *testing.T) {
	got := AugmentPATH(os.Environ(), DefaultSearchPaths())
	var path string
	for _, kv := range got {
		if strings.HasPrefix(kv, "PATH=") {
			path = kv
		}
	}
	if !strings.Contains(path, "/usr/local/bin") {
		t.Errorf("augmented PATH %q missing /usr/local/bin", path)
	}
}
