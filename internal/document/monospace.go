package document

import (
	"regexp"
	"strings"
)

// A line wrapped in exactly one backtick on each side.
var monospaceLine = regexp.MustCompile("^`([^`]|[^`].*[^`])`$")

const fence = "```"

type scanState int

const (
	outside scanState = iota
	inside            // merged run of monospace lines
	inFence           // fenced block already present in the source
)

// FixMonospace merges runs of lines that are each wrapped in single backticks
// into one fenced code block with exactly one blank line on either side.
// Existing fenced blocks are copied unchanged.
func (d *Document) FixMonospace() *Document {
	return d.WithContent(fixMonospace(d.content))
}

func fixMonospace(content string) string {
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	out := make([]string, 0, len(lines)+4)
	state := outside
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		switch state {
		case inFence:
			out = append(out, line)
			if strings.HasPrefix(strings.TrimSpace(line), fence) {
				state = outside
			}
			continue
		case inside:
			if m := monospaceLine.FindStringSubmatch(line); m != nil {
				out = append(out, m[1])
				continue
			}
			out = append(out, fence)
			if line != "" {
				out = append(out, "")
			}
			state = outside
		}

		if strings.HasPrefix(strings.TrimSpace(line), fence) {
			out = append(out, line)
			state = inFence
			continue
		}
		if m := monospaceLine.FindStringSubmatch(line); m != nil {
			if len(out) == 0 || out[len(out)-1] != "" {
				out = append(out, "")
			}
			out = append(out, fence, m[1])
			state = inside
			continue
		}
		out = append(out, line)
	}
	if state == inside {
		out = append(out, fence)
	}
	return strings.Join(out, "\n") + "\n"
}
