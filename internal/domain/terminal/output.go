package terminal

import (
	"strings"
	"time"
)

// Kind classifies a command result for rendering.
type Kind string

const (
	KindText    Kind = "text"    // single block of plain text
	KindContent Kind = "content" // styled multi-line content
	KindError   Kind = "error"   // failure message
	KindNone    Kind = "none"    // no visual output
)

// Style is a rendering hint for one line of output.
type Style string

const (
	StylePlain   Style = "plain"
	StyleHeading Style = "heading"
	StyleAccent  Style = "accent"
	StyleMuted   Style = "muted"
	StyleSuccess Style = "success"
	StyleError   Style = "error"
	StyleLink    Style = "link"
)

// Line is one rendered line of output.
type Line struct {
	Text  string `json:"text"`
	Style Style  `json:"style"`
}

// Output is the result of one command.
type Output struct {
	Kind  Kind   `json:"kind"`
	Lines []Line `json:"lines,omitempty"`
}

// Entry is one executed interaction in the session log. Entries are never
// mutated after they are appended.
type Entry struct {
	Input     string    `json:"input"`
	Output    Output    `json:"output"`
	Timestamp time.Time `json:"timestamp"`
}

// Text builds plain text output. Embedded newlines become separate lines.
func Text(s string) Output {
	return Output{Kind: KindText, Lines: split(s, StylePlain)}
}

// Error builds an error output.
func Error(s string) Output {
	return Output{Kind: KindError, Lines: split(s, StyleError)}
}

// None is the "no visual output" result.
func None() Output {
	return Output{Kind: KindNone}
}

// Content builds styled multi-line output.
func Content(lines ...Line) Output {
	return Output{Kind: KindContent, Lines: lines}
}

// String flattens the output to plain text.
func (o Output) String() string {
	if len(o.Lines) == 0 {
		return ""
	}
	parts := make([]string, len(o.Lines))
	for i, l := range o.Lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

func split(s string, style Style) []Line {
	raw := strings.Split(s, "\n")
	lines := make([]Line, len(raw))
	for i, r := range raw {
		lines[i] = Line{Text: r, Style: style}
	}
	return lines
}

func heading(s string) Line { return Line{Text: s, Style: StyleHeading} }
func accent(s string) Line  { return Line{Text: s, Style: StyleAccent} }
func muted(s string) Line   { return Line{Text: s, Style: StyleMuted} }
func plain(s string) Line   { return Line{Text: s, Style: StylePlain} }
func link(s string) Line    { return Line{Text: s, Style: StyleLink} }
func blank() Line           { return Line{Style: StylePlain} }
