package pdf

import (
	"strings"
	"unicode/utf16"
)

// contentText decodes the strings shown by text operators (Tj, TJ, ', ")
// in a page content stream. Each text object ends a line.
func contentText(stream []byte) string {
	var b strings.Builder
	newline := func() {
		s := b.String()
		if s != "" && !strings.HasSuffix(s, "\n") {
			b.WriteByte('\n')
		}
	}

	for i := 0; i < len(stream); {
		c := stream[i]
		switch {
		case c == '%':
			for i < len(stream) && stream[i] != '\n' && stream[i] != '\r' {
				i++
			}
		case c == '(':
			s, n := readLiteral(stream[i:])
			b.WriteString(s)
			i += n
		case c == '<' && i+1 < len(stream) && stream[i+1] == '<':
			i += 2
		case c == '<':
			s, n := readHex(stream[i:])
			b.WriteString(s)
			i += n
		case isOperatorByte(c):
			start := i
			for i < len(stream) && isOperatorByte(stream[i]) {
				i++
			}
			switch string(stream[start:i]) {
			case "ET", "T*", "'", "\"":
				newline()
			}
		default:
			i++
		}
	}
	return b.String()
}

func isOperatorByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '*' || c == '\'' || c == '"'
}

// readLiteral decodes a (...) string starting at s[0] and returns the text
// and the number of bytes consumed.
func readLiteral(s []byte) (string, int) {
	var out []byte
	depth := 0
	i := 0
	for ; i < len(s); i++ {
		c := s[i]
		switch c {
		case '(':
			depth++
			if depth == 1 {
				continue
			}
		case ')':
			depth--
			if depth == 0 {
				return decodeBytes(out), i + 1
			}
		case '\\':
			i++
			if i >= len(s) {
				break
			}
			switch e := s[i]; e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r', '\n':
				// line continuation
			default:
				if e >= '0' && e <= '7' {
					v := 0
					j := 0
					for ; j < 3 && i+j < len(s) && s[i+j] >= '0' && s[i+j] <= '7'; j++ {
						v = v*8 + int(s[i+j]-'0')
					}
					out = append(out, byte(v))
					i += j - 1
				} else {
					out = append(out, e)
				}
			}
			continue
		}
		out = append(out, c)
	}
	return decodeBytes(out), i
}

// readHex decodes a <...> string.
func readHex(s []byte) (string, int) {
	var out []byte
	var hi byte
	half := false
	i := 1
	for ; i < len(s) && s[i] != '>'; i++ {
		v, ok := hexVal(s[i])
		if !ok {
			continue
		}
		if half {
			out = append(out, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		out = append(out, hi<<4)
	}
	return decodeBytes(out), i + 1
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// decodeBytes treats strings with a UTF-16 byte order mark as UTF-16BE and
// everything else as single-byte text.
func decodeBytes(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		u := make([]uint16, 0, (len(b)-2)/2)
		for i := 2; i+1 < len(b); i += 2 {
			u = append(u, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(u))
	}
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}
