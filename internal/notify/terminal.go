package notify

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"folio/internal/folio"
)

// Prompter asks the user whether notifications may be shown.
type Prompter func(ctx context.Context) (folio.Permission, error)

// TerminalNotifier implements folio.Notifier by writing notifications as
// lines to a terminal.
type TerminalNotifier struct {
	out    io.Writer
	prompt Prompter
	now    func() time.Time

	mu   sync.Mutex
	perm folio.Permission
}

// NewTerminalNotifier creates a notifier starting in permission state perm.
// prompt may be nil, in which case a request leaves the state unchanged.
func NewTerminalNotifier(out io.Writer, perm folio.Permission, prompt Prompter) *TerminalNotifier {
	return &TerminalNotifier{out: out, prompt: prompt, now: time.Now, perm: perm}
}

func (n *TerminalNotifier) Permission() folio.Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.perm
}

// RequestPermission prompts the user once the state is undecided. A decided
// state is returned as is.
func (n *TerminalNotifier) RequestPermission(ctx context.Context) (folio.Permission, error) {
	if perm := n.Permission(); perm != folio.PermissionDefault || n.prompt == nil {
		return perm, nil
	}

	perm, err := n.prompt(ctx)
	if err != nil {
		return folio.PermissionDefault, fmt.Errorf("asking for notification permission: %w", err)
	}

	n.mu.Lock()
	n.perm = perm
	n.mu.Unlock()
	return perm, nil
}

// Show writes the notification as one line. It ignores the permission state;
// gating is the caller's concern.
func (n *TerminalNotifier) Show(_ context.Context, note folio.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, err := fmt.Fprintf(n.out, "\a[%s] %s: %s\n", n.now().Format("15:04:05"), note.Title, note.Body)
	if err != nil {
		return fmt.Errorf("writing notification: %w", err)
	}
	return nil
}

// TTYPrompt returns a Prompter that asks a yes/no question on out and reads
// the answer from in. When in is not a terminal nobody can answer, and
// permission is denied without asking.
func TTYPrompt(in *os.File, out io.Writer) Prompter {
	return func(ctx context.Context) (folio.Permission, error) {
		if !term.IsTerminal(int(in.Fd())) {
			return folio.PermissionDenied, nil
		}
		return AskPermission(ctx, in, out)
	}
}

// AskPermission writes the permission question to out and reads one line from in.
// "y" or "yes" grants; anything else denies.
func AskPermission(ctx context.Context, in io.Reader, out io.Writer) (folio.Permission, error) {
	fmt.Fprint(out, "Show a notification when new messages arrive? [y/N] ")

	answer := make(chan string, 1)
	errc := make(chan error, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			errc <- err
			return
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return folio.PermissionDefault, ctx.Err()
	case err := <-errc:
		if err == io.EOF {
			return folio.PermissionDenied, nil
		}
		return folio.PermissionDefault, err
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return folio.PermissionGranted, nil
		default:
			return folio.PermissionDenied, nil
		}
	}
}

// StaticFocus is a folio.FocusReporter with a fixed answer.
type StaticFocus bool

func (f StaticFocus) Focused() bool { return bool(f) }

var (
	_ folio.Notifier      = (*TerminalNotifier)(nil)
	_ folio.FocusReporter = StaticFocus(false)
)
