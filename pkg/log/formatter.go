package log

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// TextFormatter renders entries as a single human-readable line:
//
//	2006-01-02T15:04:05.000Z INFO message key=value ...
type TextFormatter struct {
	// TimestampFormat overrides the default RFC3339-with-millis layout.
	TimestampFormat string
}

// Format implements Formatter.
func (f *TextFormatter) Format(entry *Entry) ([]byte, error) {
	layout := f.TimestampFormat
	if layout == "" {
		layout = "2006-01-02T15:04:05.000Z07:00"
	}
	var b strings.Builder
	b.WriteString(entry.Timestamp.Format(layout))
	b.WriteByte(' ')
	b.WriteString(entry.Level.String())
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte(' ')
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(formatValue(entry.Fields[k]))
		}
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func formatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "<nil>"
	case string:
		if strings.ContainsAny(t, " \t\"=") {
			return fmt.Sprintf("%q", t)
		}
		return t
	case time.Duration:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// JSONFormatter renders entries as one JSON object per line.
type JSONFormatter struct{}

// Format implements Formatter.
func (f *JSONFormatter) Format(entry *Entry) ([]byte, error) {
	obj := make(map[string]interface{}, len(entry.Fields)+3)
	for k, v := range entry.Fields {
		obj[k] = v
	}
	obj["ts"] = entry.Timestamp.Format(time.RFC3339Nano)
	obj["level"] = entry.Level.String()
	obj["msg"] = entry.Message
	b, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
