package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) List(ctx context.Context) error { f.calls = append(f.calls, "list"); return nil }
func (f *fakeExec) Add(ctx context.Context) error  { f.calls = append(f.calls, "add"); return nil }
func (f *fakeExec) Show(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "show")
	f.args = args
	return nil
}
func (f *fakeExec) Edit(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "edit")
	f.args = args
	return nil
}
func (f *fakeExec) Delete(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "delete")
	f.args = args
	return fmt.Errorf("boom")
}
func (f *fakeExec) Status(ctx context.Context) error { f.calls = append(f.calls, "status"); return nil }
func (f *fakeExec) Stats(ctx context.Context) error  { f.calls = append(f.calls, "stats"); return nil }

// captureREPL silences the REPL and returns everything it printed.
func captureREPL(t *testing.T) *[]string {
	t.Helper()
	var lines []string

	origPrint, origPrintln := printFn, printlnFn
	printFn = func(a ...any) (int, error) { return 0, nil }
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printFn, printlnFn = origPrint, origPrintln })

	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	captureREPL(t)

	input := strings.Join([]string{
		"login",
		"l",
		"add",
		"show 12",
		"edit 12",
		"delete 12",
		"status",
		"stats",
		"logout",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(s)" }, bufio.NewReader(strings.NewReader(input)))

	assert.Equal(t, []string{"login", "list", "add", "show", "edit", "delete", "status", "stats", "logout"}, exec.calls)
	assert.Equal(t, []string{"12"}, exec.args)
}

func TestRunREPL_HelpDependsOnLoginState(t *testing.T) {
	out := captureREPL(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("help\nlogin\nhelp\nquit\n")))

	assert.Equal(t, []string{
		"Available commands: register, login, status, stats, exit",
		"Available commands: (l)ist, add, show <id>, edit <id>, delete <id>, status, stats, logout, exit",
		"Bye!",
	}, *out)
}

func TestRunREPL_UnknownAndBlankLines(t *testing.T) {
	out := captureREPL(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("\n   \nfoobar\n")))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *out, "Unknown command: foobar")
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	captureREPL(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("login")))

	assert.Equal(t, []string{"login"}, exec.calls)
}

func TestRunREPL_PromptUsesStatus(t *testing.T) {
	captureREPL(t)

	var prompts []string
	printFn = func(a ...any) (int, error) {
		prompts = append(prompts, fmt.Sprint(a...))
		return 0, nil
	}

	runREPL(context.Background(), &fakeExec{}, func() string { return "(ann entries)" }, bufio.NewReader(strings.NewReader("exit\n")))

	assert.Equal(t, []string{"wilt (ann entries)> "}, prompts)
}
