package transport

import "strings"

// Header is a parsed key/value pair from a raw header line.
type Header struct {
	Key   string
	Value string
}

// ParseHeaders flattens raw "Key: Value" header lines into key/value pairs.
// The key is everything before the first colon and the value everything
// after, both trimmed. Lines without a colon are skipped. When a key repeats,
// the values are concatenated with a single space in encounter order, and the
// pair keeps the position of the key's first occurrence.
func ParseHeaders(lines []string) []Header {
	var parsed []Header
	index := make(map[string]int)

	for _, line := range lines {
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}

		key := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])

		if i, ok := index[key]; ok {
			parsed[i].Value += " " + value
			continue
		}

		index[key] = len(parsed)
		parsed = append(parsed, Header{Key: key, Value: value})
	}

	return parsed
}
