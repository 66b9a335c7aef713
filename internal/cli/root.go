package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/internal/config"
	"github.com/goliatone/go-formwizard/internal/prompt"
)

// App holds the dependencies shared by every command. Zero fields get their
// process defaults in NewRootCommand.
type App struct {
	Out        io.Writer
	Err        io.Writer
	HTTPClient *http.Client
	Driver     prompt.Driver

	// Config and Logger are populated before a command runs.
	Config *config.Config
	Logger *slog.Logger
}

type rootFlags struct {
	configPath string
	headers    map[string]string
}

// NewRootCommand builds the formwizard command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	if app.Out == nil {
		app.Out = os.Stdout
	}
	if app.Err == nil {
		app.Err = os.Stderr
	}
	if app.HTTPClient == nil {
		app.HTTPClient = http.DefaultClient
	}
	if app.Driver == nil {
		app.Driver = prompt.NewSurveyDriver(survey.WithShowCursor(true))
	}

	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "formwizard",
		Short:         "Fill and submit multi-step server driven forms",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.configure(cmd, flags)
		},
	}
	root.SetOut(app.Out)
	root.SetErr(app.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/formwizard/config.yaml)")
	pf.String("base-url", "", "base URL for form endpoints (default: the page URL)")
	pf.Duration("timeout", 0, "per request timeout")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.Bool("log-json", false, "log as JSON")
	pf.StringToStringVar(&flags.headers, "header", nil, "extra request header, name=value (repeatable)")

	root.AddCommand(newRunCommand(app))
	root.AddCommand(newInspectCommand(app))
	return root
}

var flagKeys = map[string]string{
	"base-url":    "base_url",
	"timeout":     "timeout",
	"log-level":   "log.level",
	"log-json":    "log.json",
	"answers":     "answers_file",
	"interactive": "interactive",
}

func (app *App) configure(cmd *cobra.Command, flags *rootFlags) error {
	loader := config.NewLoader()
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := loader.BindFlag(key, flag); err != nil {
			return err
		}
	}
	cfg, err := loader.Load(flags.configPath)
	if err != nil {
		return NewExitError(ExitFailure, err)
	}
	for name, value := range flags.headers {
		cfg.Headers[name] = value
	}
	app.Config = cfg
	app.Logger = newLogger(app.Err, cfg.Log)
	if file := loader.ConfigFile(); file != "" {
		app.Logger.Debug("config loaded", "file", file)
	}
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Execute runs the command tree with args and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	app := &App{}
	root := NewRootCommand(app)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	fmt.Fprintln(app.Err, "error:", err)
	if code, ok := IsExitError(err); ok {
		return code
	}
	if errors.Is(err, prompt.ErrAborted) || errors.Is(err, context.Canceled) {
		return ExitAborted
	}
	return ExitFailure
}
