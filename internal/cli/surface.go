package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formwizard/pkg/widget"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// terminalSurface renders the controller's presentation requests as
// terminal output.
type terminalSurface struct {
	out    io.Writer
	styles styles
	logger *slog.Logger

	mu       sync.Mutex
	redirect string
	alerts   []string
}

var _ wizard.Surface = (*terminalSurface)(nil)

func newTerminalSurface(out io.Writer, logger *slog.Logger) *terminalSurface {
	return &terminalSurface{out: out, styles: newStyles(), logger: logger}
}

func (s *terminalSurface) SetSubmitEnabled(enabled bool) {
	s.logger.Debug("submit control", "enabled", enabled)
}

func (s *terminalSurface) ScrollTo(target wizard.ScrollTarget) {
	s.logger.Debug("scroll", "kind", string(target.Kind), "widget", target.WidgetUID)
}

func (s *terminalSurface) Alert(message string) {
	s.mu.Lock()
	s.alerts = append(s.alerts, message)
	s.mu.Unlock()
	fmt.Fprintln(s.out, s.styles.severity(widget.SeverityInfo).Render("! "+message))
}

func (s *terminalSurface) Navigate(url string) {
	s.mu.Lock()
	s.redirect = url
	s.mu.Unlock()
	fmt.Fprintln(s.out, s.styles.muted.Render("-> redirect: "+url))
}

func (s *terminalSurface) redirected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redirect
}
