package game

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ncruces/zenity"

	"github.com/iburimskiy/quantum-field/internal/manifest"
)

const dialogTitle = "New Manifestation"

// ErrCanceled is returned by a Prompter when the user dismisses a dialog.
var ErrCanceled = errors.New("dialog canceled")

// Prompter asks the user for a new manifestation. Prompt blocks; the game
// calls it off the frame loop.
type Prompter interface {
	Prompt() (manifest.Input, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func() (manifest.Input, error)

func (f PrompterFunc) Prompt() (manifest.Input, error) { return f() }

// ZenityPrompter collects the manifestation through a chain of native
// dialogs.
type ZenityPrompter struct{}

func (ZenityPrompter) Prompt() (manifest.Input, error) {
	title, err := zenity.Entry("What do you wish to manifest?", zenity.Title(dialogTitle))
	if err != nil {
		return manifest.Input{}, dialogError(err)
	}

	description, err := zenity.Entry("Describe it in detail (optional)", zenity.Title(dialogTitle))
	if err != nil {
		return manifest.Input{}, dialogError(err)
	}

	choice, err := zenity.List("Category", categoryChoices(),
		zenity.Title(dialogTitle),
		zenity.DefaultItems(categoryChoice(manifest.Personal)),
	)
	if err != nil {
		return manifest.Input{}, dialogError(err)
	}

	levels := make([]string, 10)
	for i := range levels {
		levels[i] = strconv.Itoa(i + 1)
	}
	level, err := zenity.List("Intensity", levels,
		zenity.Title(dialogTitle),
		zenity.DefaultItems("5"),
	)
	if err != nil {
		return manifest.Input{}, dialogError(err)
	}

	return parseInput(title, description, choice, level)
}

func dialogError(err error) error {
	if errors.Is(err, zenity.ErrCanceled) {
		return ErrCanceled
	}
	return fmt.Errorf("dialog failed: %w", err)
}

func categoryChoice(c manifest.Category) string {
	name := string(c)
	return c.Icon() + " " + strings.ToUpper(name[:1]) + name[1:]
}

func categoryChoices() []string {
	out := make([]string, len(manifest.Categories))
	for i, c := range manifest.Categories {
		out[i] = categoryChoice(c)
	}
	return out
}

// parseInput turns raw dialog answers into an Input. Validation is left to
// the manager.
func parseInput(title, description, choice, level string) (manifest.Input, error) {
	in := manifest.Input{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Category:    manifest.Other,
	}
	for _, c := range manifest.Categories {
		if choice == categoryChoice(c) || strings.EqualFold(choice, string(c)) {
			in.Category = c
			break
		}
	}

	intensity, err := strconv.Atoi(strings.TrimSpace(level))
	if err != nil {
		return manifest.Input{}, fmt.Errorf("%w: intensity %q", manifest.ErrInvalid, level)
	}
	in.Intensity = intensity
	return in, nil
}
