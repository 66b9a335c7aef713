package wizard_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/goliatone/go-formwizard/pkg/wizard"
)

const discoverPage = `<!doctype html>
<html><body>
<form id="signup" action="submit" method="post" data-steps="2" data-weight="5"
      data-assets="widgets.js, widgets.css" data-update-location-hash="true">
  <div class="form-title"><h4>Sign up</h4></div>
  <div class="form-messages"></div>
  <div class="form-area" data-form-area="hidden"></div>
  <div class="form-area" data-form-area="body"></div>
</form>
<form data-get-widgets-ep="custom/widgets" data-validation-ep="custom/validate" data-weight="1">
  <div class="form-area" data-form-area="sidebar"></div>
</form>
<form id="search" action="/search"></form>
</body></html>`

func TestParseForms(t *testing.T) {
	forms, err := wizard.ParseForms(discoverPage)
	if err != nil {
		t.Fatalf("parse forms: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("expected 2 wizard forms, got %d", len(forms))
	}

	signup := forms[0]
	if signup.UID != "signup" || signup.Steps != 2 || signup.Weight != 5 || !signup.UpdateLocationHash {
		t.Fatalf("unexpected signup form: %+v", signup)
	}
	if diff := cmp.Diff([]string{"widgets.js", "widgets.css"}, signup.Assets); diff != "" {
		t.Fatalf("assets (-want +got):\n%s", diff)
	}

	custom := forms[1]
	if _, err := uuid.Parse(custom.UID); err != nil {
		t.Fatalf("expected generated uuid, got %q", custom.UID)
	}
	if custom.GetWidgetsEP != "custom/widgets" || custom.ValidationEP != "custom/validate" || custom.Steps != 1 {
		t.Fatalf("unexpected custom form: %+v", custom)
	}
	if diff := cmp.Diff([]string{"hidden", "header", "body", "footer", "sidebar"}, custom.Areas); diff != "" {
		t.Fatalf("areas (-want +got):\n%s", diff)
	}
	if !custom.HasArea("sidebar") || custom.HasArea("nav") {
		t.Fatalf("unexpected area lookup")
	}
}

func TestParseForms_Errors(t *testing.T) {
	if _, err := wizard.ParseForms(`<form action="/x"></form>`); !errors.Is(err, wizard.ErrNoForms) {
		t.Fatalf("expected ErrNoForms, got %v", err)
	}
	if _, err := wizard.ParseForms(`<form data-steps="many"></form>`); err == nil {
		t.Fatalf("expected invalid steps error")
	}
}

func TestDiscover_OrdersByWeightAndRenders(t *testing.T) {
	fs := newFakeServer(t, signupSteps())
	controllers, err := wizard.Discover(discoverPage, fs.client(t))
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(controllers) != 2 {
		t.Fatalf("expected 2 controllers, got %d", len(controllers))
	}
	c := controllers[1]
	if c.UID() != "signup" {
		t.Fatalf("expected heavier form last, got %q", c.UID())
	}
	if c.Title() != "Sign up" {
		t.Fatalf("title = %q", c.Title())
	}
	form := c.Form()
	if form.Method != "POST" || form.GetWidgetsEP != wizard.DefaultGetWidgetsEP {
		t.Fatalf("expected defaults, got %+v", form)
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	out, err := c.HTML()
	if err != nil {
		t.Fatalf("html: %v", err)
	}
	for _, want := range []string{
		`data-form-area="body"><div data-uid="signup_title"`,
		`data-form-area="hidden"><div data-uid="signup_token"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %s", want, out)
		}
	}
}
