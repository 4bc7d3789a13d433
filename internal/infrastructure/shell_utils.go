package infrastructure

import "strings"

// ShellEscape quotes a string for safe display in a logged command line.
// exec.Command passes arguments directly to the process, so this is for
// logging only.
func ShellEscape(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n\r'\"$`\\!*?[](){}|;<>&~#%") {
		return s
	}

	var b strings.Builder
	b.WriteString("'")
	for _, c := range s {
		if c == '\'' {
			// end quote, escaped quote, start quote
			b.WriteString(`'"'"'`)
		} else {
			b.WriteRune(c)
		}
	}
	b.WriteString("'")
	return b.String()
}

// ShellEscapeCommand renders a binary and its arguments as one loggable
// command line.
func ShellEscapeCommand(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellEscape(binary))
	for _, arg := range args {
		parts = append(parts, ShellEscape(arg))
	}
	return strings.Join(parts, " ")
}
