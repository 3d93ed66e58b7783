package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Count is one label of the statistics mapping.
type Count struct {
	Label string
	Votes int
}

// Stats is the label -> vote count mapping returned by /stats. It keeps the
// key order of the JSON object so the chart lists bars the way the backend
// sent them.
type Stats []Count

// Map returns the statistics as a plain map.
func (s Stats) Map() map[string]int {
	out := make(map[string]int, len(s))
	for _, c := range s {
		out[c.Label] = c.Votes
	}
	return out
}

// Labels returns the labels in order.
func (s Stats) Labels() []string {
	out := make([]string, 0, len(s))
	for _, c := range s {
		out = append(out, c.Label)
	}
	return out
}

// Total sums every count.
func (s Stats) Total() int {
	total := 0
	for _, c := range s {
		total += c.Votes
	}
	return total
}

// UnmarshalJSON decodes a JSON object of numbers. A repeated key keeps its
// first position and takes the last value, as a JavaScript object would.
func (s *Stats) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("stats: expected object, got %v", tok)
	}
	out := Stats{}
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		label, ok := tok.(string)
		if !ok {
			return fmt.Errorf("stats: expected key, got %v", tok)
		}
		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("stats: value for %q: %w", label, err)
		}
		votes, err := parseCount(n)
		if err != nil {
			return fmt.Errorf("stats: value for %q: %w", label, err)
		}
		if i, seen := index[label]; seen {
			out[i].Votes = votes
			continue
		}
		index[label] = len(out)
		out = append(out, Count{Label: label, Votes: votes})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

// MarshalJSON writes the statistics back as an ordered JSON object.
func (s Stats) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Votes))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func parseCount(n json.Number) (int, error) {
	if v, err := n.Int64(); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative count %d", v)
		}
		return int(v), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f < 0 || f != float64(int64(f)) {
		return 0, fmt.Errorf("count %v is not a non-negative integer", f)
	}
	return int(f), nil
}
