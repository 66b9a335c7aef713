package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func newInspectCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <page>",
		Short: "List the wizard forms of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.inspect(cmd.Context(), args[0])
		},
	}
}

func (app *App) inspect(ctx context.Context, page string) error {
	body, _, err := app.loadPage(ctx, page)
	if err != nil {
		return NewExitError(ExitFailure, err)
	}
	forms, err := wizard.ParseForms(body)
	if err != nil {
		return NewExitError(ExitFailure, err)
	}
	st := newStyles()
	for i, form := range forms {
		if i > 0 {
			fmt.Fprintln(app.Out)
		}
		fmt.Fprintln(app.Out, st.title.Render(form.UID))
		rows := [][2]string{
			{"name", form.Name},
			{"steps", strconv.Itoa(form.Steps)},
			{"weight", strconv.Itoa(form.Weight)},
			{"action", strings.TrimSpace(strings.ToUpper(form.Method) + " " + form.Action)},
			{"widgets", form.GetWidgetsEP},
			{"validation", form.ValidationEP},
			{"hash", strconv.FormatBool(form.UpdateLocationHash)},
			{"areas", strings.Join(form.Areas, ", ")},
			{"assets", strings.Join(form.Assets, ", ")},
		}
		for _, row := range rows {
			value := row[1]
			if value == "" {
				value = st.muted.Render("-")
			}
			fmt.Fprintf(app.Out, "  %s %s\n", st.label.Render(fmt.Sprintf("%-10s", row[0])), value)
		}
	}
	return nil
}
