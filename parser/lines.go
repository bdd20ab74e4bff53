package parser

import "strings"

// line is one logical (non-blank, non-comment) source line after
// indentation accounting.
type line struct {
	indent int // indentation level: 0, 1, 2, ... (each level is 2 spaces)
	text   string
	lineNo int
	col    int // 1-based column where text begins
}

// splitLines validates tabs and indentation exactness, discards blank and
// comment-only lines, and returns the remaining lines with their
// indentation level resolved. Indentation must be an exact multiple of
// two spaces; anything else is F001. A tab anywhere on a non-comment line
// is F002.
func splitLines(src string) ([]line, error) {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	rawLines := strings.Split(src, "\n")

	var out []line
	for i, raw := range rawLines {
		lineNo := i + 1
		trimmed := strings.TrimLeft(raw, " ")
		isComment := strings.HasPrefix(strings.TrimSpace(raw), "#")

		if !isComment && strings.Contains(raw, "\t") {
			return nil, errTabsNotAllowed(lineNo)
		}

		if strings.TrimSpace(raw) == "" {
			continue
		}
		if isComment {
			continue
		}

		leading := len(raw) - len(trimmed)
		if leading%2 != 0 {
			return nil, errInvalidIndentation(lineNo, leading+1, "indentation must be a multiple of two spaces")
		}

		// Strip a trailing comment that starts after at least one space,
		// so `key: "value" # note` parses cleanly. A '#' inside a string
		// literal is protected by tracking quote state.
		content := stripTrailingComment(trimmed)
		content = strings.TrimRight(content, " \t")
		if content == "" {
			continue
		}

		out = append(out, line{
			indent: leading / 2,
			text:   content,
			lineNo: lineNo,
			col:    leading + 1,
		})
	}
	return out, nil
}

func stripTrailingComment(s string) string {
	inString := false
	escaped := false
	for i, r := range s {
		if inString {
			if escaped {
				escaped = false
				continue
			}
			if r == '\\' {
				escaped = true
				continue
			}
			if r == '"' {
				inString = false
			}
			continue
		}
		if r == '"' {
			inString = true
			continue
		}
		if r == '#' && i > 0 && s[i-1] == ' ' {
			return s[:i]
		}
		if r == '#' && i == 0 {
			return ""
		}
	}
	return s
}
