package engine

import "strings"

// preprocessSource rewrites sketch script source into something zygomys
// accepts:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords never
//     need to be bound as globals.
//  2. Kebab-case identifiers become snake case (arc-thru -> arc_thru);
//     zygomys reads a hyphen as the minus operator.
//  3. ; line comments become // comments.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	sc := scanner{src: source}
	sc.out.Grow(len(source) + len(source)/4)
	for !sc.done() {
		switch c := sc.peek(0); {
		case c == '"' || c == '`':
			sc.literal(c)
		case c == ';':
			sc.comment()
		case c == ':' && sc.peek(1) == '=':
			sc.copy(2)
		case c == ':' && isLetter(sc.peek(1)):
			sc.keyword()
		case c == '-' && sc.pos > 0 && isIdentChar(sc.src[sc.pos-1]) && isLetter(sc.peek(1)):
			// A hyphen between identifier characters is part of a name.
			sc.out.WriteByte('_')
			sc.pos++
		default:
			sc.copy(1)
		}
	}
	return sc.out.String()
}

// scanner walks script source byte by byte, writing the rewritten text
// to out.
type scanner struct {
	src string
	pos int
	out strings.Builder
}

func (sc *scanner) done() bool { return sc.pos >= len(sc.src) }

// peek returns the byte off positions ahead, or 0 past the end.
func (sc *scanner) peek(off int) byte {
	if sc.pos+off >= len(sc.src) {
		return 0
	}
	return sc.src[sc.pos+off]
}

func (sc *scanner) copy(n int) {
	end := min(sc.pos+n, len(sc.src))
	sc.out.WriteString(sc.src[sc.pos:end])
	sc.pos = end
}

// literal copies a string literal delimited by delim, including both
// delimiters. Double-quoted literals honour backslash escapes.
func (sc *scanner) literal(delim byte) {
	sc.copy(1)
	for !sc.done() && sc.peek(0) != delim {
		if delim == '"' && sc.peek(0) == '\\' && sc.peek(1) != 0 {
			sc.copy(2)
			continue
		}
		sc.copy(1)
	}
	sc.copy(1)
}

// comment turns a run of semicolons into // and copies the rest of the
// line.
func (sc *scanner) comment() {
	sc.out.WriteString("//")
	for sc.peek(0) == ';' {
		sc.pos++
	}
	end := strings.IndexByte(sc.src[sc.pos:], '\n')
	if end < 0 {
		end = len(sc.src) - sc.pos
	}
	sc.copy(end)
}

func (sc *scanner) keyword() {
	start := sc.pos + 1
	end := start
	for end < len(sc.src) && isKWChar(sc.src[end]) {
		end++
	}
	sc.out.WriteByte('"')
	sc.out.WriteString(kwPrefix)
	sc.out.WriteString(sc.src[start:end])
	sc.out.WriteByte('"')
	sc.pos = end
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
