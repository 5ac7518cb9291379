// Package prompt wraps promptui for the interactive parts of musterctl:
// delete confirmations, required inputs and pickers. Prompts refuse to
// run when stdin is not a terminal so piped invocations fail fast
// instead of garbling the stream.
package prompt

import (
	"errors"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrAborted is returned when the user cancels a prompt with Ctrl+C.
var ErrAborted = errors.New("aborted")

// ErrNotTerminal is returned when a prompt is requested but stdin is
// piped or redirected.
var ErrNotTerminal = errors.New("stdin is not a terminal; pass the value as a flag instead")

// IsTerminal reports whether stdin is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsAborted reports whether err means the user cancelled.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) ||
		errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrAbort)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Confirm asks a yes/no question. Enter takes the default; Ctrl+C
// returns ErrAborted.
func Confirm(label string, defaultYes bool) (bool, error) {
	if !IsTerminal() {
		return false, ErrNotTerminal
	}

	hint := "y/N"
	if defaultYes {
		hint = "Y/n"
	}
	p := promptui.Prompt{
		Label:     label + " [" + hint + "]",
		IsConfirm: true,
	}

	answer, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return false, ErrAborted
		}
		// promptui reports a "no" answer as ErrAbort
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		if answer == "" {
			return defaultYes, nil
		}
		return false, err
	}

	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// ConfirmWithForce skips the prompt when force is set, the --force flag
// path of destructive commands.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}

// InputRequired reads a non-empty line.
func InputRequired(label string) (string, error) {
	if !IsTerminal() {
		return "", ErrNotTerminal
	}

	p := promptui.Prompt{
		Label: label,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("value required")
			}
			return nil
		},
	}

	value, err := p.Run()
	return value, wrapError(err)
}

// SelectString presents a picker over items and returns the chosen one.
func SelectString(label string, items []string) (string, error) {
	if !IsTerminal() {
		return "", ErrNotTerminal
	}

	p := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
	}

	_, choice, err := p.Run()
	return choice, wrapError(err)
}
