package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/srodi/appimpact/pkg/engine"
	"github.com/srodi/appimpact/pkg/insight"
	"github.com/srodi/appimpact/pkg/report"
	"github.com/srodi/appimpact/pkg/ui"
)

// bannerWidth is the column count of the wordmark.
const bannerWidth = 80

const recentWarningLimit = 3

// view renders published snapshots for a person watching the terminal.
type view struct {
	out      io.Writer
	insights *insight.Registry
	interval time.Duration
	recent   *recentHook
}

func newView(out io.Writer, insights *insight.Registry, interval time.Duration) *view {
	return &view{out: out, insights: insights, interval: interval, recent: newRecentHook(recentWarningLimit)}
}

// print writes one snapshot without any screen control, for --once.
func (v *view) print(snap engine.Snapshot) error {
	_, err := io.WriteString(v.out, v.render(snap, 0))
	return err
}

// follow redraws on every published snapshot until ctx is done. While the
// alternate screen is up and logs would go to stderr, they are muted and the
// latest warnings are shown in the view instead.
func (v *view) follow(ctx context.Context, orch *engine.Orchestrator, logger *logrus.Logger, logToFile bool) error {
	stdoutFD := int(os.Stdout.Fd())
	interactive := term.IsTerminal(stdoutFD)

	logger.AddHook(v.recent)
	if interactive && !logToFile {
		prev := logger.Out
		logger.SetOutput(io.Discard)
		defer logger.SetOutput(prev)
	}

	cleanup := enableSingleView()
	defer cleanup()

	draw := func() {
		width := 0
		if interactive {
			if w, _, err := term.GetSize(stdoutFD); err == nil {
				width = w
			}
			clearScreen(v.out)
		}
		io.WriteString(v.out, v.render(orch.Snapshot(), width))
	}

	draw()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-orch.Updates():
			draw()
		}
	}
}

func (v *view) render(snap engine.Snapshot, width int) string {
	var buf bytes.Buffer
	if width == 0 || width >= bannerWidth {
		buf.WriteString(ui.Banner())
	} else {
		fmt.Fprintf(&buf, "appimpact  •  %s\n\n", ui.Tagline)
	}
	fmt.Fprintf(&buf, "appimpact (press Ctrl+C to exit)\n")
	updated := "never"
	if !snap.UpdatedAt.IsZero() {
		updated = snap.UpdatedAt.Format(time.RFC3339)
	}
	fmt.Fprintf(&buf, "Updated: %s | Interval: %v | Cycle: %d\n\n", updated, v.interval, snap.Cycle)

	if focus := report.SelectFocus(snap.Apps); focus != nil {
		fmt.Fprintf(&buf, "[!] Focus: %s (pid %d)\n", focus.Name, focus.PID)
		fmt.Fprintf(&buf, "   Reason: %s - %s\n", report.Details(*focus), report.FocusSummary(*focus))
		for _, line := range strings.Split(report.Tooltip(*focus, v.insights), "\n") {
			fmt.Fprintf(&buf, "   %s\n", line)
		}
		buf.WriteString("\n")
	}

	fmt.Fprintf(&buf, "[Top %d apps by impact]\n", len(snap.Apps))
	if err := report.Render(&buf, snap.Apps); err != nil {
		fmt.Fprintf(&buf, "render failed: %v\n", err)
	}

	if warnings := v.recent.Lines(); len(warnings) > 0 {
		buf.WriteString("\n[Recent warnings]\n")
		for _, w := range warnings {
			fmt.Fprintf(&buf, "%s\n", w)
		}
	}
	return buf.String()
}

func clearScreen(w io.Writer) {
	io.WriteString(w, "\033[H\033[2J")
}

func enableSingleView() func() {
	stdoutFD := int(os.Stdout.Fd())
	stdinFD := int(os.Stdin.Fd())
	if !term.IsTerminal(stdoutFD) {
		return func() {}
	}

	fmt.Print("\033[?1049h") // switch to alternate buffer
	fmt.Print("\033[?25l")   // hide cursor

	var restore []func()
	if term.IsTerminal(stdinFD) {
		if undoEcho, err := disableInputEcho(stdinFD); err != nil {
			logrus.WithError(err).Debug("unable to suppress stdin echo")
		} else if undoEcho != nil {
			restore = append(restore, undoEcho)
		}
	}

	return func() {
		for i := len(restore) - 1; i >= 0; i-- {
			restore[i]()
		}
		fmt.Print("\033[?25h")   // show cursor
		fmt.Print("\033[?1049l") // restore main buffer
	}
}

// recentHook keeps the last few warning-or-worse log lines for the view.
type recentHook struct {
	mu    sync.Mutex
	limit int
	lines []string
}

func newRecentHook(limit int) *recentHook {
	return &recentHook{limit: limit}
}

func (h *recentHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel, logrus.WarnLevel}
}

func (h *recentHook) Fire(entry *logrus.Entry) error {
	line := fmt.Sprintf("%s %s: %s", entry.Time.Format("15:04:05"), strings.ToUpper(entry.Level.String()), entry.Message)
	if err, ok := entry.Data[logrus.ErrorKey]; ok {
		line += fmt.Sprintf(" (%v)", err)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lines = append(h.lines, line)
	if len(h.lines) > h.limit {
		h.lines = h.lines[len(h.lines)-h.limit:]
	}
	return nil
}

// Lines returns the retained lines, oldest first.
func (h *recentHook) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.lines...)
}
