package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RootName is the name given to the node returned by Parse and LoadHCL.
const RootName = "root"

// ParseError reports a structural problem in a text document.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("config: line %d: %s", e.Line, e.Message)
	}
	return "config: " + e.Message
}

// ParseString parses a text document held in memory.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

// Parse reads the brace-delimited text format:
//
//	PART
//	{
//		name = roverWheel
//		MODULE { name = Controller }
//	}
//
// Everything after // on a line is a comment. A node name may sit on the
// line before its opening brace or directly in front of it. Values run to the
// end of the line (or to a closing brace on the same line) and are trimmed.
func Parse(r io.Reader) (*Node, error) {
	root := NewNode(RootName)
	stack := []*Node{root}
	pending := ""
	pendingLine := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.Index(text, "//"); i >= 0 {
			text = text[:i]
		}

		for {
			text = strings.TrimSpace(text)
			if text == "" {
				break
			}
			cur := stack[len(stack)-1]
			i := strings.IndexAny(text, "={}")
			if i < 0 {
				pending, pendingLine = text, line
				break
			}

			switch text[i] {
			case '=':
				if pending != "" {
					return nil, &ParseError{Line: pendingLine, Message: fmt.Sprintf("dangling token %q", pending)}
				}
				name := strings.TrimSpace(text[:i])
				rest := text[i+1:]
				value := rest
				if j := strings.IndexByte(rest, '}'); j >= 0 {
					value, rest = rest[:j], rest[j:]
				} else {
					rest = ""
				}
				if name == "" {
					return nil, &ParseError{Line: line, Message: "value without a name"}
				}
				cur.AddValue(name, strings.TrimSpace(value))
				text = rest
			case '{':
				name := strings.TrimSpace(text[:i])
				if name == "" {
					name = pending
				}
				pending = ""
				child := cur.AddNode(NewNode(name))
				stack = append(stack, child)
				text = text[i+1:]
			case '}':
				if before := strings.TrimSpace(text[:i]); before != "" || pending != "" {
					if before == "" {
						before, line = pending, pendingLine
					}
					return nil, &ParseError{Line: line, Message: fmt.Sprintf("dangling token %q", before)}
				}
				if len(stack) == 1 {
					return nil, &ParseError{Line: line, Message: "unexpected '}'"}
				}
				stack = stack[:len(stack)-1]
				text = text[i+1:]
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	if len(stack) > 1 {
		open := stack[len(stack)-1]
		return nil, &ParseError{Line: line, Message: fmt.Sprintf("node %q is not closed", open.Name)}
	}
	if pending != "" {
		return nil, &ParseError{Line: pendingLine, Message: fmt.Sprintf("dangling token %q", pending)}
	}
	return root, nil
}
