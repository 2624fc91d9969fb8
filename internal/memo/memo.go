// Package memo holds the append-only insight memo shared by all tool calls.
package memo

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/leapstack-labs/aactmcp/pkg/core"
)

// EmptyText is the rendering of a memo with no insights.
const EmptyText = "No business insights have been discovered yet."

// Subscriber is called after every successful append with the new total.
type Subscriber func(total int)

// Memo is an ordered, append-only list of findings.
// It is safe for concurrent use.
type Memo struct {
	mu       sync.RWMutex
	insights []string

	subMu       sync.RWMutex
	subscribers []Subscriber

	logger *slog.Logger
}

// New returns an empty memo.
func New(logger *slog.Logger) *Memo {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Memo{logger: logger}
}

// Append adds finding to the tail of the memo and returns the new count.
// Empty or whitespace-only findings are rejected and leave the memo unchanged.
func (m *Memo) Append(finding string) (int, error) {
	if strings.TrimSpace(finding) == "" {
		return m.Len(), core.Errorf(core.KindInvalidArgument, "Missing finding argument")
	}

	m.mu.Lock()
	m.insights = append(m.insights, finding)
	total := len(m.insights)
	m.mu.Unlock()

	m.notify(total)
	return total, nil
}

// Len returns the number of recorded insights.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.insights)
}

// Insights returns a copy of the recorded insights in append order.
func (m *Memo) Insights() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.insights))
	copy(out, m.insights)
	return out
}

// Render returns the memo as a text document.
func (m *Memo) Render() string {
	insights := m.Insights()
	if len(insights) == 0 {
		return EmptyText
	}

	var b strings.Builder
	b.WriteString("📊 Clinical Trials Analysis Memo 📊\n\n")
	b.WriteString("Key Insights Discovered:\n\n")
	for _, insight := range insights {
		b.WriteString("- ")
		b.WriteString(insight)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nSummary:\nAnalysis has revealed %d key insight", len(insights))
	if len(insights) != 1 {
		b.WriteByte('s')
	}
	b.WriteString(" about clinical trials.\n")
	return b.String()
}

// Subscribe registers fn to be called after each append.
func (m *Memo) Subscribe(fn Subscriber) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

func (m *Memo) notify(total int) {
	m.subMu.RLock()
	subs := make([]Subscriber, len(m.subscribers))
	copy(subs, m.subscribers)
	m.subMu.RUnlock()

	for _, fn := range subs {
		m.safeCall(fn, total)
	}
}

// safeCall isolates the append from a failing subscriber.
func (m *Memo) safeCall(fn Subscriber, total int) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("insight subscriber panicked", slog.Any("panic", r), slog.Int("total", total))
		}
	}()
	fn(total)
}
