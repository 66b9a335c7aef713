package wizard

import (
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formwizard/pkg/markup"
	"github.com/goliatone/go-formwizard/pkg/widget"
)

// Message is a form level notice.
type Message struct {
	Text     string
	Severity string
}

// HTML renders the message as an alert block with its text escaped.
func (m Message) HTML() string {
	return `<div class="alert alert-` + html.EscapeString(severityOrDefault(m.Severity)) +
		`" role="alert">` + html.EscapeString(m.Text) + `</div>`
}

func severityOrDefault(severity string) string {
	if strings.TrimSpace(severity) == "" {
		return widget.SeverityInfo
	}
	return severity
}

// Messages returns the form level messages in the order they were added.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// AddMessage appends a form level message. An empty severity means info.
func (c *Controller) AddMessage(text, severity string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addMessageLocked(text, severity)
}

// ClearMessages drops every form level message.
func (c *Controller) ClearMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearMessagesLocked()
}

// SetTitle replaces the form title.
func (c *Controller) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title = title
	if c.form.title == nil {
		return
	}
	clearChildren(c.form.title)
	if title == "" {
		return
	}
	heading := element("h4", atom.H4)
	heading.AppendChild(&xhtml.Node{Type: xhtml.TextNode, Data: title})
	c.form.title.AppendChild(heading)
}

// Title returns the form title.
func (c *Controller) Title() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.title
}

func (c *Controller) addMessageLocked(text, severity string) {
	msg := Message{Text: text, Severity: severityOrDefault(severity)}
	c.messages = append(c.messages, msg)
	if c.form.messages == nil {
		return
	}
	block := element("div", atom.Div)
	block.Attr = []xhtml.Attribute{
		{Key: "class", Val: "alert alert-" + msg.Severity},
		{Key: "role", Val: "alert"},
	}
	block.AppendChild(&xhtml.Node{Type: xhtml.TextNode, Data: msg.Text})
	c.form.messages.AppendChild(block)
}

func (c *Controller) clearMessagesLocked() {
	c.messages = nil
	if c.form.messages != nil {
		clearChildren(c.form.messages)
	}
}

func element(tag string, a atom.Atom) *xhtml.Node {
	return &xhtml.Node{Type: xhtml.ElementNode, Data: tag, DataAtom: a}
}

func clearChildren(node *xhtml.Node) {
	for child := node.FirstChild; child != nil; {
		next := child.NextSibling
		markup.Detach(child)
		child = next
	}
}
