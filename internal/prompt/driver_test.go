package prompt

import (
	"testing"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

func TestNewSurveyDriver_AppliesAskOpts(t *testing.T) {
	d, ok := NewSurveyDriver(survey.WithShowCursor(true), survey.WithPageSize(5)).(*surveyDriver)
	if !ok {
		t.Fatalf("expected a survey driver")
	}

	var options survey.AskOptions
	for _, opt := range d.opts {
		if err := opt(&options); err != nil {
			t.Fatalf("apply ask option: %v", err)
		}
	}
	if !options.PromptConfig.ShowCursor || options.PromptConfig.PageSize != 5 {
		t.Fatalf("prompt config = %+v", options.PromptConfig)
	}
}

func TestTranslateSurveyErr(t *testing.T) {
	if err := translateSurveyErr(terminal.InterruptErr); err != ErrAborted {
		t.Fatalf("interrupt = %v, want ErrAborted", err)
	}
}
