package wizard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/goliatone/go-formwizard/pkg/httpapi"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// fakeServer stands in for the server framework's form endpoints.
type fakeServer struct {
	t   *testing.T
	srv *httptest.Server

	mu            sync.Mutex
	steps         map[int][]string
	failWidgets   map[int]int
	validation    map[int]string
	submitStatus  int
	submitBody    string
	widgetCalls   []int
	widgetUIDs    []string
	validateCalls []int
	lastValidate  url.Values
	submitted     url.Values
	submitCount   int
}

func newFakeServer(t *testing.T, steps map[int][]string) *fakeServer {
	t.Helper()
	fs := &fakeServer{
		t:            t,
		steps:        steps,
		failWidgets:  map[int]int{},
		validation:   map[int]string{},
		submitStatus: http.StatusOK,
		submitBody:   `{}`,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /form/widgets/{uid}/{step}", fs.handleWidgets)
	mux.HandleFunc("POST /form/validate/{uid}/{step}", fs.handleValidate)
	mux.HandleFunc("POST /submit", fs.handleSubmit)
	fs.srv = httptest.NewServer(mux)
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) step(r *http.Request) int {
	step, err := strconv.Atoi(r.PathValue("step"))
	if err != nil {
		fs.t.Errorf("bad step %q", r.PathValue("step"))
	}
	return step
}

func (fs *fakeServer) handleWidgets(w http.ResponseWriter, r *http.Request) {
	step := fs.step(r)
	fs.mu.Lock()
	fs.widgetCalls = append(fs.widgetCalls, step)
	fs.widgetUIDs = append(fs.widgetUIDs, r.PathValue("uid"))
	status := fs.failWidgets[step]
	fragments := fs.steps[step]
	fs.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		return
	}
	_ = json.NewEncoder(w).Encode(fragments)
}

func (fs *fakeServer) handleValidate(w http.ResponseWriter, r *http.Request) {
	step := fs.step(r)
	if err := r.ParseForm(); err != nil {
		fs.t.Errorf("parse form: %v", err)
	}
	fs.mu.Lock()
	fs.validateCalls = append(fs.validateCalls, step)
	fs.lastValidate = r.PostForm
	body, ok := fs.validation[step]
	fs.mu.Unlock()

	if !ok {
		body = `{"status": true}`
	}
	_, _ = w.Write([]byte(body))
}

func (fs *fakeServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		fs.t.Errorf("parse form: %v", err)
	}
	fs.mu.Lock()
	fs.submitted = r.PostForm
	fs.submitCount++
	status, body := fs.submitStatus, fs.submitBody
	fs.mu.Unlock()

	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (fs *fakeServer) client(t *testing.T) *httpapi.Client {
	t.Helper()
	client, err := httpapi.New(fs.srv.URL + "/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func (fs *fakeServer) calls() (widgets, validates []int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]int(nil), fs.widgetCalls...), append([]int(nil), fs.validateCalls...)
}

func (fs *fakeServer) submission() (url.Values, int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.submitted, fs.submitCount
}

type recordingSurface struct {
	mu          sync.Mutex
	enabled     []bool
	scrolls     []wizard.ScrollTarget
	alerts      []string
	navigations []string
}

func (s *recordingSurface) SetSubmitEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = append(s.enabled, enabled)
}

func (s *recordingSurface) ScrollTo(target wizard.ScrollTarget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scrolls = append(s.scrolls, target)
}

func (s *recordingSurface) Alert(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, message)
}

func (s *recordingSurface) Navigate(target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.navigations = append(s.navigations, target)
}

func (s *recordingSurface) lastScroll() wizard.ScrollTarget {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.scrolls) == 0 {
		return wizard.ScrollTarget{}
	}
	return s.scrolls[len(s.scrolls)-1]
}

func (s *recordingSurface) submitEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.enabled) > 0 && s.enabled[len(s.enabled)-1]
}

const (
	titleFragment = `<div data-uid="title" data-form-area="body"><input type="text" name="title" value="Hello"></div>`
	tokenFragment = `<div data-uid="token" data-form-area="hidden" data-hidden="True"><input type="hidden" name="token" value="t"></div>`
	tagsFragment  = `<div data-uid="tags"><input type="checkbox" name="tags[]" value="go" checked><input type="checkbox" name="tags[]" value="rust"></div>`
)

func signupSteps() map[int][]string {
	return map[int][]string{
		1: {titleFragment, tokenFragment},
		2: {tagsFragment},
	}
}

func newController(t *testing.T, fs *fakeServer, form wizard.Form, opts ...wizard.Option) *wizard.Controller {
	t.Helper()
	if form.UID == "" {
		form.UID = "signup"
	}
	if form.Action == "" {
		form.Action = "submit"
	}
	c, err := wizard.New(form, fs.client(t), opts...)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return c
}

func visibility(c *wizard.Controller) map[string]bool {
	out := map[string]bool{}
	for _, w := range c.State().Widgets {
		out[w.UID] = w.Visible
	}
	return out
}
