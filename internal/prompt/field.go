package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrRequired is returned by the required-field validator.
var ErrRequired = errors.New("prompt: value is required")

// Kind selects the prompt used for a field.
type Kind string

const (
	KindText        Kind = "text"
	KindPassword    Kind = "password"
	KindTextArea    Kind = "textarea"
	KindCheckbox    Kind = "checkbox"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multiselect"
)

// Option is one choice of a select or checkbox group.
type Option struct {
	Value string
	Label string
}

func (o Option) display() string {
	if strings.TrimSpace(o.Label) != "" {
		return o.Label
	}
	return o.Value
}

// Field describes one form control to ask a value for.
type Field struct {
	Name     string
	Label    string
	Help     string
	Kind     Kind
	Options  []Option
	Default  []string
	Required bool
}

func (f Field) message() string {
	if strings.TrimSpace(f.Label) != "" {
		return f.Label
	}
	return f.Name
}

func (f Field) defaultValue() string {
	if len(f.Default) == 0 {
		return ""
	}
	return f.Default[0]
}

// Ask prompts for f through d. Text kinds return a string, KindSelect the
// chosen option value, KindMultiSelect a []string of values and KindCheckbox
// the checkbox value or nil when left unchecked.
func Ask(ctx context.Context, d Driver, f Field) (any, error) {
	if d == nil {
		return nil, fmt.Errorf("prompt: no driver for %q", f.Name)
	}
	var validator func(string) error
	if f.Required {
		validator = required
	}

	switch f.Kind {
	case KindPassword:
		return d.Password(ctx, InputConfig{Message: f.message(), Help: f.Help, Validator: validator})

	case KindTextArea:
		return d.TextArea(ctx, TextAreaConfig{Message: f.message(), Help: f.Help, Default: f.defaultValue()})

	case KindCheckbox:
		value := "on"
		if len(f.Options) > 0 {
			value = f.Options[0].Value
		}
		checked, err := d.Confirm(ctx, ConfirmConfig{
			Message: f.message(),
			Help:    f.Help,
			Default: contains(f.Default, value),
		})
		if err != nil || !checked {
			return nil, err
		}
		return value, nil

	case KindSelect:
		if len(f.Options) == 0 {
			return nil, fmt.Errorf("prompt: %q has no options", f.Name)
		}
		idx, err := d.Select(ctx, SelectConfig{
			Message:      f.message(),
			Help:         f.Help,
			Options:      labels(f.Options),
			DefaultIndex: optionIndex(f.Options, f.defaultValue()),
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(f.Options) {
			return nil, fmt.Errorf("prompt: %q: selection out of range", f.Name)
		}
		return f.Options[idx].Value, nil

	case KindMultiSelect:
		var defaults []int
		for _, value := range f.Default {
			if idx := optionIndex(f.Options, value); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
		indices, err := d.MultiSelect(ctx, SelectConfig{
			Message:  f.message(),
			Help:     f.Help,
			Options:  labels(f.Options),
			Defaults: defaults,
		})
		if err != nil {
			return nil, err
		}
		values := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(f.Options) {
				values = append(values, f.Options[idx].Value)
			}
		}
		return values, nil

	default:
		return d.Input(ctx, InputConfig{
			Message:   f.message(),
			Help:      f.Help,
			Default:   f.defaultValue(),
			Validator: validator,
		})
	}
}

func required(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrRequired
	}
	return nil
}

func labels(options []Option) []string {
	out := make([]string, len(options))
	for i, option := range options {
		out[i] = option.display()
	}
	return out
}

func optionIndex(options []Option, value string) int {
	for i, option := range options {
		if option.Value == value {
			return i
		}
	}
	return -1
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
