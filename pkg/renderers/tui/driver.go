package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// Question describes one terminal prompt. Choices is only read by Choose and
// ChooseMany; Preset holds the pre-ticked choices of ChooseMany.
type Question struct {
	Prompt   string
	Help     string
	Default  string
	Choices  []string
	Preset   []string
	Validate func(string) error
}

// PromptDriver is the terminal seen by the session walk. Choose and ChooseMany
// answer with choice values, never positions.
type PromptDriver interface {
	Ask(ctx context.Context, q Question) (string, error)
	Choose(ctx context.Context, q Question) (string, error)
	ChooseMany(ctx context.Context, q Question) ([]string, error)
	Confirm(ctx context.Context, prompt string, fallback bool) (bool, error)
	Notify(ctx context.Context, msg string) error
}

// surveyDriver renders questions with survey on the process terminal.
type surveyDriver struct {
	notices io.Writer
}

// NewSurveyDriver returns the interactive driver. Notices go to w, or stdout
// when w is nil.
func NewSurveyDriver(w io.Writer) PromptDriver {
	if w == nil {
		w = os.Stdout
	}
	return &surveyDriver{notices: w}
}

func (d *surveyDriver) Ask(ctx context.Context, q Question) (string, error) {
	var answer string
	err := ask(ctx, &survey.Input{Message: q.Prompt, Help: q.Help, Default: q.Default}, &answer, q.Validate)
	return answer, err
}

func (d *surveyDriver) Choose(ctx context.Context, q Question) (string, error) {
	if len(q.Choices) == 0 {
		return "", fmt.Errorf("tui: %q has no choices", q.Prompt)
	}
	prompt := &survey.Select{Message: q.Prompt, Help: q.Help, Options: q.Choices}
	if contains(q.Choices, q.Default) {
		prompt.Default = q.Default
	}
	var answer string
	err := ask(ctx, prompt, &answer, nil)
	return answer, err
}

func (d *surveyDriver) ChooseMany(ctx context.Context, q Question) ([]string, error) {
	if len(q.Choices) == 0 {
		return nil, nil
	}
	prompt := &survey.MultiSelect{Message: q.Prompt, Help: q.Help, Options: q.Choices}
	var preset []string
	for _, choice := range q.Preset {
		if contains(q.Choices, choice) {
			preset = append(preset, choice)
		}
	}
	if len(preset) > 0 {
		prompt.Default = preset
	}
	var answers []string
	err := ask(ctx, prompt, &answers, nil)
	return answers, err
}

func (d *surveyDriver) Confirm(ctx context.Context, prompt string, fallback bool) (bool, error) {
	var answer bool
	err := ask(ctx, &survey.Confirm{Message: prompt, Default: fallback}, &answer, nil)
	return answer, err
}

func (d *surveyDriver) Notify(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.notices, msg)
	return err
}

// ask runs a single survey prompt. An interrupt becomes ErrAborted.
func ask(ctx context.Context, prompt survey.Prompt, answer any, validate func(string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans interface{}) error {
			text, _ := ans.(string)
			return validate(text)
		}))
	}
	err := survey.AskOne(prompt, answer, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
