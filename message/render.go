package message

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomarkdown/markdown"
	"github.com/microcosm-cc/bluemonday"
	"github.com/tmc/langchaingo/llms"
)

const bannerWidth = 80

var roleColors = map[llms.ChatMessageType]lipgloss.Color{
	llms.ChatMessageTypeHuman:  lipgloss.Color("39"),
	llms.ChatMessageTypeAI:     lipgloss.Color("170"),
	llms.ChatMessageTypeSystem: lipgloss.Color("214"),
	llms.ChatMessageTypeTool:   lipgloss.Color("42"),
}

// Title returns the banner title of a role, e.g. "Human Message".
func Title(role llms.ChatMessageType) string {
	switch role {
	case llms.ChatMessageTypeHuman:
		return "Human Message"
	case llms.ChatMessageTypeAI:
		return "Ai Message"
	case llms.ChatMessageTypeSystem:
		return "System Message"
	case llms.ChatMessageTypeTool:
		return "Tool Message"
	case "":
		return "Message"
	default:
		return strings.ToUpper(string(role[:1])) + string(role[1:]) + " Message"
	}
}

// Pretty renders m as a banner line followed by its name, content and tool calls.
func Pretty(m Message) string {
	banner := lipgloss.PlaceHorizontal(bannerWidth, lipgloss.Center, " "+Title(m.Role)+" ",
		lipgloss.WithWhitespaceChars("="))
	style := lipgloss.NewStyle().Bold(true)
	if c, ok := roleColors[m.Role]; ok {
		style = style.Foreground(c)
	}

	var b strings.Builder
	b.WriteString(style.Render(banner))
	b.WriteString("\n")
	if m.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", m.Name)
	}
	b.WriteString("\n")
	b.WriteString(m.Content)
	if len(m.ToolCalls) > 0 {
		if m.Content != "" {
			b.WriteString("\n")
		}
		b.WriteString("Tool Calls:")
		for _, tc := range m.ToolCalls {
			fmt.Fprintf(&b, "\n  %s (%s)\n Call ID: %s\n  Args:\n    %s", tc.Name, tc.ID, tc.ID, tc.Arguments)
		}
	}
	return b.String()
}

// PrettyPrint writes Pretty(m) followed by a newline.
func PrettyPrint(w io.Writer, m Message) error {
	_, err := fmt.Fprintln(w, Pretty(m))
	return err
}

// PrettyPrintAll prints every message in order.
func PrettyPrintAll(w io.Writer, msgs []Message) error {
	for _, m := range msgs {
		if err := PrettyPrint(w, m); err != nil {
			return err
		}
	}
	return nil
}

// RenderTranscriptHTML renders the conversation as markdown and converts it
// to sanitized HTML. Message content is treated as markdown.
func RenderTranscriptHTML(msgs []Message) []byte {
	var md strings.Builder
	for _, m := range msgs {
		heading := Title(m.Role)
		if m.Name != "" {
			heading += " (" + m.Name + ")"
		}
		fmt.Fprintf(&md, "### %s\n\n", heading)
		if m.Content != "" {
			md.WriteString(m.Content)
			md.WriteString("\n\n")
		}
		for _, tc := range m.ToolCalls {
			fmt.Fprintf(&md, "- `%s` `%s`\n", tc.Name, tc.Arguments)
		}
		if len(m.ToolCalls) > 0 {
			md.WriteString("\n")
		}
	}

	unsafe := markdown.ToHTML([]byte(md.String()), nil, nil)
	return bluemonday.UGCPolicy().SanitizeBytes(unsafe)
}
