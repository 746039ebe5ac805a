package identity

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Ledger records every team that fell back to a placeholder badge.
// It is append-only and keeps first-seen order.
type Ledger struct {
	mu       sync.Mutex
	names    []string
	seen     map[string]struct{}
	onRecord func(name string)
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// OnRecord registers fn to run once for each newly recorded team.
func (l *Ledger) OnRecord(fn func(name string)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onRecord = fn
}

// Record appends name unless it is already present. It reports whether name was new.
func (l *Ledger) Record(name string) bool {
	l.mu.Lock()
	if _, ok := l.seen[name]; ok {
		l.mu.Unlock()
		return false
	}
	l.seen[name] = struct{}{}
	l.names = append(l.names, name)
	hook := l.onRecord
	l.mu.Unlock()

	if hook != nil {
		hook(name)
	}
	return true
}

// Contains reports whether name has been recorded.
func (l *Ledger) Contains(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[name]
	return ok
}

// List returns the recorded names in first-seen order.
func (l *Ledger) List() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// Len returns the number of recorded teams.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.names)
}

// Export renders the plain-text diagnostic report.
func (l *Ledger) Export(now time.Time) string {
	names := l.List()

	var b strings.Builder
	b.WriteString("MISSING TEAM BADGES REPORT\n")
	fmt.Fprintf(&b, "Generated: %s\n", now.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "Total missing: %d\n", len(names))
	b.WriteString(strings.Repeat("=", 40) + "\n\n")

	if len(names) == 0 {
		b.WriteString("Every team resolved to a badge.\n")
		return b.String()
	}

	for i, name := range names {
		fmt.Fprintf(&b, "%d. %s - add an alias in aliases.yaml mapping %q to its TheSportsDB team name\n", i+1, name, name)
	}
	return b.String()
}
