// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package scandeps

import (
	"bytes"
	"context"
	"time"

	log "github.com/golang/glog"

	"go.chromium.org/infra/build/incdeps/o11y/clog"
)

// CPPScan scans C preprocessor #include/#import directives in buf.
// buf is not retained.
func CPPScan(ctx context.Context, fname string, buf []byte) []Include {
	started := time.Now()
	buf = stripComments(buf)

	var includes []Include
	for len(buf) > 0 {
		// start of line
		buf = bytes.TrimSpace(buf)
		if len(buf) == 0 {
			break
		}
		var line []byte
		i := bytes.IndexByte(buf, '\n')
		if i < 0 {
			line = buf
			buf = nil
		} else {
			line = buf[:i]
			buf = buf[i+1:]
		}
		if line[0] != '#' {
			continue
		}
		lineStart := line
		line = bytes.TrimSpace(line[1:])
		switch {
		case bytes.HasPrefix(line, []byte("include_next")):
			line = bytes.TrimPrefix(line, []byte("include_next"))
		case bytes.HasPrefix(line, []byte("include")):
			line = bytes.TrimPrefix(line, []byte("include"))
		case bytes.HasPrefix(line, []byte("import")):
			line = bytes.TrimPrefix(line, []byte("import"))
		default:
			continue
		}
		if len(line) > 0 && !isSpace(line[0]) && line[0] != '"' && line[0] != '<' {
			// e.g. #includes, #imported
			continue
		}
		line = bytes.TrimSpace(line)
		inc, ok := parseIncludeOperand(line)
		if !ok {
			if log.V(1) {
				logLine := lineStart
				clog.Infof(ctx, "%s: skip %q", fname, logLine)
			}
			continue
		}
		if log.V(2) {
			clog.Infof(ctx, "%s: include %s", fname, inc)
		}
		includes = append(includes, inc)
	}
	if dur := time.Since(started); dur > time.Second {
		clog.Infof(ctx, "slow cppScan %s %s", fname, dur)
	}
	return includes
}

// parseIncludeOperand parses the operand of an include directive.
// Macro operands and unclosed paths are rejected.
func parseIncludeOperand(line []byte) (Include, bool) {
	if len(line) == 0 {
		return Include{}, false
	}
	var delim byte
	switch line[0] {
	case '"':
		delim = '"'
	case '<':
		delim = '>'
	default:
		return Include{}, false
	}
	i := bytes.IndexByte(line[1:], delim)
	if i <= 0 {
		// unclosed or empty path.
		return Include{}, false
	}
	return Include{
		Text:  string(line[1 : i+1]),
		Angle: delim == '>',
	}, true
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\v' || ch == '\f' || ch == '\r'
}

// stripComments returns a copy of buf with comments replaced by a space
// and backslash-newline continuations joined.
// Newlines in block comments are kept so directive lines stay separate.
// String and character literals, and <...> operands of include
// directives, are copied verbatim.
func stripComments(buf []byte) []byte {
	out := make([]byte, 0, len(buf))
	for i := 0; i < len(buf); i++ {
		ch := buf[i]
		switch {
		case ch == '\\' && i+1 < len(buf) && buf[i+1] == '\n':
			i++
		case ch == '\\' && i+2 < len(buf) && buf[i+1] == '\r' && buf[i+2] == '\n':
			i += 2
		case ch == '/' && i+1 < len(buf) && buf[i+1] == '/':
			j := bytes.IndexByte(buf[i:], '\n')
			if j < 0 {
				return append(out, ' ')
			}
			out = append(out, ' ')
			i += j - 1
		case ch == '/' && i+1 < len(buf) && buf[i+1] == '*':
			j := bytes.Index(buf[i+2:], []byte("*/"))
			end := len(buf)
			if j >= 0 {
				end = i + 2 + j + 2
			}
			out = append(out, ' ')
			for _, c := range buf[i:end] {
				if c == '\n' {
					out = append(out, '\n')
				}
			}
			i = end - 1
		case ch == '\'' && isDigitSeparator(buf, i):
			out = append(out, ch)
		case ch == '<' && isIncludeDirective(out):
			j := bytes.IndexAny(buf[i:], ">\n")
			if j < 0 || buf[i+j] != '>' {
				out = append(out, ch)
				continue
			}
			out = append(out, buf[i:i+j+1]...)
			i += j
		case ch == '"' || ch == '\'':
			j := skipLiteral(buf, i)
			out = append(out, buf[i:j]...)
			i = j - 1
		default:
			out = append(out, ch)
		}
	}
	return out
}

// skipLiteral returns the index just after the literal starting at buf[i].
// A literal never spans lines.
func skipLiteral(buf []byte, i int) int {
	quote := buf[i]
	for j := i + 1; j < len(buf); j++ {
		switch buf[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		case '\n':
			return j
		}
	}
	return len(buf)
}

// isDigitSeparator reports whether the quote at buf[i] is inside
// a number, e.g. 1'000.
func isDigitSeparator(buf []byte, i int) bool {
	j := i
	for j > 0 && (isIdentChar(buf[j-1]) || buf[j-1] == '\'' || buf[j-1] == '.') {
		j--
	}
	return j < i && buf[j] >= '0' && buf[j] <= '9'
}

func isIdentChar(ch byte) bool {
	return ch == '_' || ch >= '0' && ch <= '9' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z'
}

// isIncludeDirective reports whether the last line of out is
// an include directive waiting for its operand.
func isIncludeDirective(out []byte) bool {
	line := out[bytes.LastIndexByte(out, '\n')+1:]
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '#' {
		return false
	}
	switch string(bytes.TrimSpace(line[1:])) {
	case "include", "include_next", "import":
		return true
	}
	return false
}
