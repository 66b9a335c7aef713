package prompt

import (
	"context"
	"errors"
	"sync"
)

// ErrNotScripted is returned by Scripted when it runs out of answers.
var ErrNotScripted = errors.New("prompt: no scripted answer")

// Scripted is a Driver that replays canned answers in order, per prompt
// kind. Asked records the message of every prompt it served.
type Scripted struct {
	mu sync.Mutex

	Inputs    []string
	Passwords []string
	Confirms  []bool
	Selects   []int
	Multi     [][]int
	TextAreas []string

	Asked []string
	Infos []string
}

func (s *Scripted) record(message string) {
	s.Asked = append(s.Asked, message)
}

func (s *Scripted) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(cfg.Message)
	if len(s.Inputs) == 0 {
		return "", ErrNotScripted
	}
	value := s.Inputs[0]
	s.Inputs = s.Inputs[1:]
	if cfg.Validator != nil {
		if err := cfg.Validator(value); err != nil {
			return "", err
		}
	}
	return value, nil
}

func (s *Scripted) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(cfg.Message)
	if len(s.Passwords) == 0 {
		return "", ErrNotScripted
	}
	value := s.Passwords[0]
	s.Passwords = s.Passwords[1:]
	return value, nil
}

func (s *Scripted) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(cfg.Message)
	if len(s.Confirms) == 0 {
		return false, ErrNotScripted
	}
	value := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return value, nil
}

func (s *Scripted) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(cfg.Message)
	if len(s.Selects) == 0 {
		return -1, ErrNotScripted
	}
	value := s.Selects[0]
	s.Selects = s.Selects[1:]
	return value, nil
}

func (s *Scripted) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(cfg.Message)
	if len(s.Multi) == 0 {
		return nil, ErrNotScripted
	}
	value := s.Multi[0]
	s.Multi = s.Multi[1:]
	return value, nil
}

func (s *Scripted) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(cfg.Message)
	if len(s.TextAreas) == 0 {
		return "", ErrNotScripted
	}
	value := s.TextAreas[0]
	s.TextAreas = s.TextAreas[1:]
	return value, nil
}

func (s *Scripted) Info(_ context.Context, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Infos = append(s.Infos, msg)
	return nil
}
