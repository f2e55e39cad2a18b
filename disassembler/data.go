package disassembler

import (
	"fmt"
	"strings"
)

// isPrintableASCII checks if a byte is a standard printable ASCII character.
func isPrintableASCII(b byte) bool {
	return b >= 0x20 && b <= 0x7E
}

// formatData renders bytes that were never reached as code. NUL-terminated
// printable runs of at least four characters become labelled strings, the
// rest db lines.
func formatData(data []byte, stringCounter *int) string {
	var sb strings.Builder
	n := len(data)
	i := 0
	minStrLen := 4

	for i < n {
		// Skip non-printables first
		start := i
		for start < n && !isPrintableASCII(data[start]) {
			start++
		}
		if start > i {
			sb.WriteString(formatHexBytes(data[i:start]))
		}

		end := start
		for end < n && isPrintableASCII(data[end]) {
			end++
		}
		if end <= start {
			i = start
			continue
		}

		run := data[start:end]
		if end < n && data[end] == 0x00 && len(run) >= minStrLen {
			label := fmt.Sprintf("string%d:", *stringCounter)
			(*stringCounter)++
			escaped := strings.ReplaceAll(string(run), "'", "''")
			fmt.Fprintf(&sb, "%-8s db       '%s',00H\n", label, escaped)
			i = end + 1
			continue
		}

		sb.WriteString(formatHexBytes(run))
		i = end
	}

	return sb.String()
}

// formatHexBytes formats a slice of bytes into db directives, 16 bytes per line.
func formatHexBytes(data []byte) string {
	var sb strings.Builder
	const bytesPerLine = 16

	for i := 0; i < len(data); i += bytesPerLine {
		end := min(i+bytesPerLine, len(data))
		sb.WriteString("    db       ")
		for j, b := range data[i:end] {
			if j > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(hexNum(uint16(b), 2))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
