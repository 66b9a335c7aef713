package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/goliatone/go-formwizard/internal/prompt"
	"github.com/goliatone/go-formwizard/internal/telemetry"
	"github.com/goliatone/go-formwizard/pkg/httpapi"
	"github.com/goliatone/go-formwizard/pkg/widget"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// maxRounds bounds the validate and re-prompt cycles of one step.
const maxRounds = 5

type runFlags struct {
	formUID     string
	answers     string
	interactive bool
}

func newRunCommand(app *App) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <page>",
		Short: "Walk a form step by step and submit it",
		Long: `Load the page, pick a wizard form and walk it:
  1. load the widgets of each step from the server
  2. fill them from the answers file or by prompting
  3. validate each step before moving on
  4. submit the completed form

<page> is a URL or a local HTML file. Local files need --base-url.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd.Context(), args[0], flags.formUID)
		},
	}
	cmd.Flags().StringVar(&flags.formUID, "form", "", "uid of the form to run (default: the first)")
	cmd.Flags().StringVar(&flags.answers, "answers", "", "YAML file of field values")
	cmd.Flags().BoolVar(&flags.interactive, "interactive", true, "prompt for fields the answers do not cover")
	return cmd
}

func (app *App) run(ctx context.Context, page, formUID string) error {
	cfg := app.Config
	logger := app.Logger
	st := newStyles()

	provider, err := telemetry.Setup(ctx)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}
	defer func() {
		if err := provider.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("trace flush failed", "error", err)
		}
	}()

	answers, err := loadAnswers(cfg.AnswersFile)
	if err != nil {
		return NewExitError(ExitFailure, err)
	}

	body, pageURL, err := app.loadPage(ctx, page)
	if err != nil {
		return NewExitError(ExitFailure, err)
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		if pageURL == "" {
			return NewExitError(ExitFailure, fmt.Errorf("--base-url is required for local page %s", page))
		}
		baseURL = pageBase(pageURL)
	}

	opts := []httpapi.Option{
		httpapi.WithHTTPClient(app.HTTPClient),
		httpapi.WithTimeout(cfg.Timeout),
		httpapi.WithLogger(logger),
		httpapi.WithTracer(otel.Tracer("github.com/goliatone/go-formwizard/internal/cli")),
	}
	for name, value := range cfg.Headers {
		opts = append(opts, httpapi.WithHeader(name, value))
	}
	client, err := httpapi.New(baseURL, opts...)
	if err != nil {
		return NewExitError(ExitFailure, err)
	}

	location, err := wizard.NewMemoryLocation(pageURL)
	if err != nil {
		return NewExitError(ExitFailure, err)
	}
	surface := newTerminalSurface(app.Out, logger)
	controllers, err := wizard.Discover(body, client,
		wizard.WithSurface(surface),
		wizard.WithLocation(location),
		wizard.WithLogger(logger),
	)
	if err != nil {
		return NewExitError(ExitFailure, err)
	}
	ctrl, err := pickForm(controllers, formUID)
	if err != nil {
		return NewExitError(ExitFailure, err)
	}

	unsubscribe := ctrl.On(wizard.EventForward, func(evt wizard.Event) {
		logger.Info("step loaded", "form", evt.FormUID, "step", evt.Step)
	})
	defer unsubscribe()

	interactive := cfg.Interactive && app.Driver != nil
	if !interactive && answers.Empty() {
		logger.Warn("prompts are disabled and no answers were given; fields keep their defaults")
	}
	w := &walker{app: app, ctrl: ctrl, surface: surface, answers: answers, interactive: interactive, styles: st}
	return w.walk(ctx)
}

// loadPage reads page from the network or disk and returns its markup and,
// for URLs, the URL itself.
func (app *App) loadPage(ctx context.Context, page string) (string, string, error) {
	if parsed, err := url.Parse(page); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, page, nil)
		if err != nil {
			return "", "", err
		}
		for name, value := range app.Config.Headers {
			req.Header.Set(name, value)
		}
		resp, err := app.HTTPClient.Do(req)
		if err != nil {
			return "", "", fmt.Errorf("fetch page: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return "", "", fmt.Errorf("fetch page: unexpected status %s", resp.Status)
		}
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", "", fmt.Errorf("fetch page: %w", err)
		}
		return string(raw), page, nil
	}
	raw, err := os.ReadFile(page)
	if err != nil {
		return "", "", fmt.Errorf("read page: %w", err)
	}
	return string(raw), "", nil
}

// pageBase is the URL relative endpoints resolve against from pageURL, the
// way a browser resolves them from the document.
func pageBase(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	parsed.RawQuery, parsed.Fragment = "", ""
	if idx := strings.LastIndex(parsed.Path, "/"); idx >= 0 {
		parsed.Path = parsed.Path[:idx+1]
	} else {
		parsed.Path = "/"
	}
	parsed.RawPath = ""
	return parsed.String()
}

func pickForm(controllers []*wizard.Controller, uid string) (*wizard.Controller, error) {
	if uid == "" {
		return controllers[0], nil
	}
	for _, c := range controllers {
		if c.UID() == uid {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no form with uid %q", uid)
}

// walker drives one controller from the first step to submission.
type walker struct {
	app         *App
	ctrl        *wizard.Controller
	surface     *terminalSurface
	answers     *Answers
	interactive bool
	styles      styles
}

func (w *walker) walk(ctx context.Context) error {
	if err := w.ctrl.Start(ctx); err != nil && !w.recoverable(err) {
		return w.fail(err)
	}
	rounds := 0
	lastStep := -1
	for {
		state := w.ctrl.State()
		if state.Phase == wizard.PhaseReady || w.surface.redirected() != "" {
			fmt.Fprintln(w.app.Out, w.styles.success.Render("form submitted"))
			return nil
		}
		if state.CurrentStep == lastStep {
			rounds++
		} else {
			lastStep, rounds = state.CurrentStep, 0
		}
		if rounds >= maxRounds {
			return NewExitError(ExitValidation, fmt.Errorf("step %d did not validate after %d attempts", state.CurrentStep, rounds))
		}

		w.renderStep(state)
		if err := w.fill(ctx, state.CurrentStep, rounds > 0); err != nil {
			return w.fail(err)
		}
		err := w.ctrl.Submit(ctx)
		if err == nil {
			continue
		}
		if !w.recoverable(err) {
			return w.fail(err)
		}
		w.renderMessages()
		if !w.interactive {
			return exitFor(err)
		}
	}
}

// recoverable reports errors a new round of input can fix.
func (w *walker) recoverable(err error) bool {
	var validationErr *wizard.ValidationError
	if errors.As(err, &validationErr) {
		return true
	}
	var apiErr *httpapi.Error
	return errors.As(err, &apiErr) && !apiErr.Transport() && apiErr.Status < http.StatusInternalServerError
}

func (w *walker) fail(err error) error {
	w.renderMessages()
	return exitFor(err)
}

func exitFor(err error) error {
	switch {
	case errors.Is(err, prompt.ErrAborted), errors.Is(err, context.Canceled):
		return NewExitError(ExitAborted, err)
	default:
		var validationErr *wizard.ValidationError
		if errors.As(err, &validationErr) {
			return NewExitError(ExitValidation, err)
		}
		return NewExitError(ExitFailure, err)
	}
}

// fill applies the answers for step and prompts for what they leave out.
// On a retry only the fields of widgets in error are prompted again.
func (w *walker) fill(ctx context.Context, step int, retry bool) error {
	fields := describeStep(w.ctrl)
	values := normalizeAnswers(w.answers.ForStep(step), fields)
	if unmatched := w.ctrl.Fill(values); len(unmatched) > 0 {
		w.app.Logger.Debug("answers without a control", "step", step, "names", unmatched)
	}
	if !w.interactive {
		return nil
	}

	errored := erroredWidgets(w.ctrl)
	if retry && len(errored) > 0 {
		if err := w.app.Driver.Info(ctx, "Some fields were rejected, please correct them."); err != nil {
			return err
		}
	}
	for _, field := range fields {
		_, answered := values[field.Name]
		if retry {
			if !errored[field.WidgetUID] {
				continue
			}
		} else if answered {
			continue
		}
		value, err := prompt.Ask(ctx, w.app.Driver, field.Field)
		if err != nil {
			return err
		}
		w.ctrl.Fill(map[string]any{field.Name: value})
	}
	return nil
}

// normalizeAnswers turns YAML booleans given for checkboxes into the value
// the checkbox submits.
func normalizeAnswers(values map[string]any, fields []stepField) map[string]any {
	for _, field := range fields {
		if field.Kind != prompt.KindCheckbox {
			continue
		}
		checked, ok := values[field.Name].(bool)
		if !ok {
			continue
		}
		if !checked {
			values[field.Name] = nil
			continue
		}
		value := "on"
		if len(field.Options) > 0 {
			value = field.Options[0].Value
		}
		values[field.Name] = value
	}
	return values
}

func (w *walker) renderStep(state wizard.State) {
	header := fmt.Sprintf("Step %d of %d", state.CurrentStep, state.TotalSteps)
	if title := w.ctrl.Title(); title != "" {
		fmt.Fprintln(w.app.Out, w.styles.title.Render(title))
	}
	fmt.Fprintln(w.app.Out, w.styles.step.Render(header))
}

func (w *walker) renderMessages() {
	for _, msg := range w.ctrl.Messages() {
		fmt.Fprintln(w.app.Out, w.styles.severity(msg.Severity).Render(msg.Text))
	}
	for _, wdg := range w.ctrl.Widgets() {
		if wdg.State() != widget.StateError {
			continue
		}
		for _, msg := range wdg.Messages() {
			label := strings.TrimPrefix(wdg.UID(), w.ctrl.UID()+"_")
			fmt.Fprintln(w.app.Out, w.styles.label.Render(label+":")+" "+w.styles.severity(msg.Severity).Render(msg.Text))
		}
	}
}
