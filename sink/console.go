// Package sink provides Notifier implementations. Console renders the
// notification stream a host UI would normally own; it is what the
// bridged binary ships with.
package sink

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gookit/color"

	"toxbridge/contract"
	"toxbridge/domain"
)

var prefixes = map[contract.Severity]string{
	contract.SeverityInfo:    color.New(color.FgCyan).Render("--"),
	contract.SeverityJoin:    color.New(color.FgGreen).Render("-->"),
	contract.SeverityQuit:    color.New(color.FgYellow).Render("<--"),
	contract.SeverityNetwork: color.New(color.FgCyan).Render("--"),
	contract.SeverityWarning: color.New(color.FgYellow).Render("=!="),
	contract.SeverityError:   color.New(color.FgRed, color.OpBold).Render("=!="),
}

// Console writes notifications to one writer, tagging each line with its
// target buffer. It also tracks nick visibility per target so listings
// stay available without a real nick-list widget.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	nicks map[contract.Target]map[string]bool
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out, nicks: make(map[contract.Target]map[string]bool)}
}

func (c *Console) Notify(target contract.Target, severity contract.Severity, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.printf("%s %s %s", c.label(target), prefixes[severity], text)
}

func (c *Console) Message(target contract.Target, from string, kind domain.MessageKind, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind == domain.MessageAction {
		c.printf("%s * %s %s", c.label(target), from, text)
		return
	}
	c.printf("%s <%s> %s", c.label(target), from, text)
}

func (c *Console) NickAdd(target contract.Target, name string, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nicks[target] == nil {
		c.nicks[target] = make(map[string]bool)
	}
	c.nicks[target][name] = visible
}

func (c *Console) NickRemove(target contract.Target, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.nicks[target], name)
}

func (c *Console) NickSetVisible(target contract.Target, name string, visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nicks[target] == nil {
		c.nicks[target] = make(map[string]bool)
	}
	c.nicks[target][name] = visible
}

// Nicks lists a target's nick list, visible entries only.
func (c *Console) Nicks(target contract.Target) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for name, visible := range c.nicks[target] {
		if visible {
			out = append(out, name)
		}
	}
	return out
}

func (c *Console) label(target contract.Target) string {
	if target.Profile {
		return "[profile]"
	}
	if target.Kind == domain.ChatGroup {
		return fmt.Sprintf("[group:%d]", target.Handle)
	}
	return fmt.Sprintf("[friend:%d]", target.Handle)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, "%s "+format+"\n",
		append([]any{time.Now().Format("15:04:05")}, args...)...)
}
