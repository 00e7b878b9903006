package acquire

import (
	"bufio"
	"io"
	"strings"
)

// maxEventLine bounds a single line of the event stream.
const maxEventLine = 1 << 20

// event is one dispatched Server-Sent Event.
type event struct {
	Name string
	ID   string
	Data string
}

// valueEvent reports whether an event carries a value pair. Unnamed events
// arrive as "message".
func (e event) valueEvent() bool {
	switch e.Name {
	case "", "message", "values":
		return true
	}
	return false
}

// readEvents parses an event stream from r and calls fn for every event
// with data. It returns nil when r reaches EOF and the read error otherwise.
// A trailing event not terminated by a blank line is discarded.
func readEvents(r io.Reader, fn func(event)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxEventLine)

	var (
		cur  event
		data []string
	)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if len(data) > 0 {
				cur.Data = strings.Join(data, "\n")
				fn(cur)
			}
			cur, data = event{}, data[:0]
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue // comment / keep-alive
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "data":
			data = append(data, value)
		case "event":
			cur.Name = value
		case "id":
			cur.ID = value
		}
	}
	return sc.Err()
}
