// Package ui renders run events: a line-oriented console reporter and a
// Bubble Tea progress view.
package ui

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/lumipallolabs/rex/internal/core"
	"github.com/lumipallolabs/rex/internal/scanner"
)

// Console prints run events as plain status lines
type Console struct {
	out     io.Writer
	lastPct int
}

// NewConsole creates a console reporter writing to out
func NewConsole(out io.Writer) *Console {
	return &Console{out: out, lastPct: -1}
}

// Handle is registered with core.Controller.OnEvent
func (c *Console) Handle(e core.Event) {
	switch ev := e.(type) {
	case core.RunStartedEvent:
		fmt.Fprintf(c.out, "%s %s (%s)\n", TitleStyle.Render("Carving"), PathStyle.Render(ev.Target), FormatSize(ev.Size))
		fmt.Fprintf(c.out, "%s %s\n", TitleStyle.Render("Session"), PathStyle.Render(ev.SessionDir))

	case core.ProgressEvent:
		c.progress(ev.Progress)

	case core.CarvedEvent:
		fmt.Fprintln(c.out, CarvedLine(ev.Result))

	case core.PhaseChangedEvent:
		if ev.Phase == core.PhaseMirroring {
			fmt.Fprintln(c.out, TitleStyle.Render("Mirroring live files"))
		}

	case core.MirrorCompletedEvent:
		if ev.Err == nil {
			fmt.Fprintf(c.out, "  %s %d files, %s\n", SuccessStyle.Render("mirrored"), ev.Stats.Files, FormatSize(ev.Stats.Bytes))
		}

	case core.RunCompletedEvent:
		if ev.Err == nil {
			fmt.Fprintln(c.out, SummaryLine(ev.Summary))
		}
	}
}

// progress prints once per ten percent when the size is known
func (c *Console) progress(p scanner.Progress) {
	if p.Size <= 0 {
		return
	}
	pct := int(p.Percent()*10) * 10
	if pct <= c.lastPct {
		return
	}
	c.lastPct = pct
	fmt.Fprintf(c.out, "  %s %3d%% %s / %s\n", OffsetStyle.Render("scanned"), pct, FormatSize(p.Offset), FormatSize(p.Size))
}

// CarvedLine formats one recovered file
func CarvedLine(r scanner.CarveResult) string {
	line := fmt.Sprintf("  %s %s %s %s",
		ExtBadge.Render(r.Ext),
		filepath.Base(r.Path),
		OffsetStyle.Render("@"+FormatOffset(r.Offset)),
		FormatSize(r.Size))
	if r.Digest != "" {
		line += " " + OffsetStyle.Render(r.Digest)
	}
	return line
}

// SummaryLine formats the end-of-run summary
func SummaryLine(s core.Summary) string {
	line := fmt.Sprintf("%s %d carved", SuccessStyle.Render("Done:"), s.Scan.Carved)
	if s.Scan.Failed > 0 {
		line += ", " + WarningStyle.Render(fmt.Sprintf("%d failed", s.Scan.Failed))
	}
	if s.Mirrored && s.MirrorErr == nil {
		line += fmt.Sprintf(", %d live files", s.Mirror.Files)
	}
	line += fmt.Sprintf(" in %s -> %s", FormatElapsed(s.Duration), s.SessionDir)
	return line
}
