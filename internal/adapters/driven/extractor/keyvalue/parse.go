package keyvalue

import (
	"bufio"
	"strings"
)

// separators are tried in order; the first one present on a line splits
// label from value.
var separators = []string{":", "\t"}

// ParseLines reads "Label: value" lines. Lines without a separator, with
// an empty label or an empty value are ignored. When a label repeats,
// the first value is kept.
func ParseLines(text string) map[string]string {
	fields := make(map[string]string)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		label, value, ok := splitLine(scanner.Text())
		if !ok {
			continue
		}
		put(fields, label, value)
	}
	return fields
}

func splitLine(line string) (string, string, bool) {
	for _, sep := range separators {
		label, value, found := strings.Cut(line, sep)
		if !found {
			continue
		}
		label = strings.Join(strings.Fields(label), " ")
		value = strings.TrimSpace(value)
		if label == "" || value == "" {
			return "", "", false
		}
		return label, value, true
	}
	return "", "", false
}

func put(fields map[string]string, label, value string) {
	if _, exists := fields[label]; exists {
		return
	}
	fields[label] = value
}
