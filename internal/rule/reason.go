package rule

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ExpandReason substitutes variables into a reason template.
//
//	$name or ${name}    the variable's value
//	$#name or $#{name}  the variable's length in characters
//	$$                  a literal dollar sign
//
// Unknown variables expand to the empty string.
func ExpandReason(template string, vars map[string]string) string {
	if !strings.Contains(template, "$") {
		return template
	}

	var b strings.Builder
	for i := 0; i < len(template); {
		c := template[i]
		if c != '$' || i+1 >= len(template) {
			b.WriteByte(c)
			i++
			continue
		}

		j := i + 1
		if template[j] == '$' {
			b.WriteByte('$')
			i = j + 1
			continue
		}

		count := false
		if template[j] == '#' {
			count = true
			j++
		}

		name, next, ok := readVarName(template, j)
		if !ok {
			b.WriteByte(c)
			i++
			continue
		}

		value := vars[name]
		if count {
			b.WriteString(strconv.Itoa(utf8.RuneCountInString(value)))
		} else {
			b.WriteString(value)
		}
		i = next
	}
	return b.String()
}

// readVarName parses "name" or "{name}" at s[i:]
func readVarName(s string, i int) (name string, next int, ok bool) {
	if i < len(s) && s[i] == '{' {
		end := strings.IndexByte(s[i:], '}')
		if end < 2 {
			return "", 0, false
		}
		return s[i+1 : i+end], i + end + 1, true
	}

	j := i
	for j < len(s) && isVarChar(s[j]) {
		j++
	}
	if j == i {
		return "", 0, false
	}
	return s[i:j], j, true
}

func isVarChar(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
