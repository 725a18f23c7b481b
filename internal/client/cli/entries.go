package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/wilt/internal/client/client"
	"github.com/dmitrijs2005/wilt/internal/client/models"
	"github.com/dmitrijs2005/wilt/internal/client/services"
)

// List fetches the entries from the server and prints them.
func (a *App) List(ctx context.Context) error {
	list, err := a.entryService.Fetch(ctx)
	if err != nil {
		return a.entryError(ctx, "fetch entries", err)
	}

	a.entries = list
	a.printEntries()
	return nil
}

// Add prompts for a title and content and creates an entry. The draft is
// kept when the server rejects it, so the next add offers it again.
func (a *App) Add(ctx context.Context) error {
	title, err := getSimpleText(a.reader, withCurrent("Title", a.draft.Title), a.out)
	if err != nil {
		return err
	}
	a.draft.Title = withDefault(title, a.draft.Title)

	content, err := getMultiline(a.reader, withCurrent("What did you learn today?", a.draft.Content), a.out)
	if err != nil {
		return err
	}
	a.draft.Content = withDefault(content, a.draft.Content)

	list, err := a.entryService.Create(ctx, a.draft)
	if err != nil {
		return a.entryError(ctx, "create entry", err)
	}

	a.draft = models.EntryDraft{}
	a.entries = list
	fmt.Fprintln(a.out, "Entry added")
	a.printEntries()
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.entryID(args, "Enter entry id to show")
	if err != nil {
		return err
	}

	e, err := a.entryService.Get(ctx, id)
	if err != nil {
		return a.entryError(ctx, "get entry", err)
	}

	a.printEntry(e)
	return nil
}

// Edit loads an entry and lets the user replace its title and content. An
// empty answer keeps the current value.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.entryID(args, "Enter entry id to edit")
	if err != nil {
		return err
	}

	e, err := a.entryService.Get(ctx, id)
	if err != nil {
		return a.entryError(ctx, "get entry", err)
	}

	title, err := getSimpleText(a.reader, withCurrent("Title", e.Title), a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, withCurrent("Content", e.Content), a.out)
	if err != nil {
		return err
	}

	draft := models.EntryDraft{Title: withDefault(title, e.Title), Content: withDefault(content, e.Content)}
	list, err := a.entryService.Update(ctx, id, draft)
	if err != nil {
		return a.entryError(ctx, "update entry", err)
	}

	a.entries = list
	fmt.Fprintln(a.out, "Entry updated")
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.entryID(args, "Enter entry id to delete")
	if err != nil {
		return err
	}

	list, err := a.entryService.Delete(ctx, id)
	if err != nil {
		return a.entryError(ctx, "delete entry", err)
	}

	a.entries = list
	fmt.Fprintln(a.out, "Entry deleted")
	return nil
}

var errInvalidID = errors.New("invalid entry id")

func (a *App) entryID(args []string, prompt string) (int64, error) {
	var raw string
	if len(args) > 0 {
		raw = args[0]
	} else {
		var err error
		if raw, err = getSimpleText(a.reader, prompt, a.out); err != nil {
			return 0, err
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(a.out, "Invalid entry id: %q\n", raw)
		return 0, errInvalidID
	}
	return id, nil
}

// entryError reports err to the user. A rejected session sends the REPL
// back to the login view.
func (a *App) entryError(ctx context.Context, op string, err error) error {
	a.logger.Debug(ctx, op+" failed", "error", err)

	switch {
	case errors.Is(err, client.ErrUnauthorized):
		if lerr := a.authService.Logout(ctx); lerr != nil {
			a.logger.Warn(ctx, "logout after rejected session", "error", lerr)
		}
		a.resetSession()
	case errors.Is(err, services.ErrNotLoggedIn):
		a.resetSession()
	}

	fmt.Fprintln(a.out, entryFailure(err))
	return err
}

func (a *App) printEntries() {
	if len(a.entries) == 0 {
		fmt.Fprintln(a.out, "No entries yet. Use 'add' to write one.")
		return
	}
	for _, e := range a.entries {
		fmt.Fprintln(a.out, e)
	}
}

func (a *App) printEntry(e *models.Entry) {
	fmt.Fprintln(a.out, e)
	if e.User != nil {
		fmt.Fprintf(a.out, "by %s\n", e.User.Username)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, e.Content)
}

func withCurrent(prompt, current string) string {
	if current == "" {
		return prompt
	}
	return fmt.Sprintf("%s [%s]", prompt, current)
}
