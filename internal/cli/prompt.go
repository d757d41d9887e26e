package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/ErykKul/DataSync/internal/diff"
)

// Session menu choices.
const (
	choiceFilter = "filter"
	choiceMode   = "mode"
	choiceSubmit = "submit"
	choiceQuit   = "quit"
)

// Prompter asks the user for decisions during an interactive compare.
type Prompter interface {
	// ConfirmRefresh asks whether to check the comparison job once more
	// after automatic polling gave up.
	ConfirmRefresh(attempts int) (bool, error)
	// Menu asks for the next session action.
	Menu() (string, error)
	// SelectFilter returns "all" or a status name.
	SelectFilter() (string, error)
	// SelectMode returns a selection mode name.
	SelectMode() (string, error)
}

type huhPrompter struct{}

func (huhPrompter) ConfirmRefresh(attempts int) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Comparison still running after %d checks. Check again?", attempts)).
		Affirmative("Refresh").
		Negative("Give up").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("refresh prompt cancelled: %w", err)
	}
	return ok, nil
}

func (huhPrompter) Menu() (string, error) {
	var choice string
	err := huh.NewSelect[string]().
		Title("What next?").
		Options(
			huh.NewOption("Filter rows by status", choiceFilter),
			huh.NewOption("Select actions", choiceMode),
			huh.NewOption("Submit the selected actions", choiceSubmit),
			huh.NewOption("Quit without submitting", choiceQuit),
		).
		Value(&choice).
		Run()
	if err != nil {
		return "", fmt.Errorf("menu cancelled: %w", err)
	}
	return choice, nil
}

func (huhPrompter) SelectFilter() (string, error) {
	options := []huh.Option[string]{huh.NewOption("all", filterAll)}
	for _, s := range []diff.Status{diff.StatusNew, diff.StatusUpdated, diff.StatusDeleted, diff.StatusEqual, diff.StatusUnknown} {
		options = append(options, huh.NewOption(s.String(), s.String()))
	}

	var selected string
	err := huh.NewSelect[string]().
		Title("Show rows with status").
		Options(options...).
		Value(&selected).
		Run()
	if err != nil {
		return "", fmt.Errorf("filter selection cancelled: %w", err)
	}
	return selected, nil
}

func (huhPrompter) SelectMode() (string, error) {
	var selected string
	err := huh.NewSelect[string]().
		Title("Select actions for the visible rows").
		Options(
			huh.NewOption("none - ignore everything", diff.SelectNone.String()),
			huh.NewOption("update - copy new and update changed files", diff.SelectUpdate.String()),
			huh.NewOption("mirror - update and delete removed files", diff.SelectMirror.String()),
		).
		Value(&selected).
		Run()
	if err != nil {
		return "", fmt.Errorf("mode selection cancelled: %w", err)
	}
	return selected, nil
}
