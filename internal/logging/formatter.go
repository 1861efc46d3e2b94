package logging

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultTimestampFormat renders e.g. "2024-02-20 15:04:05,000".
const DefaultTimestampFormat = "2006-01-02 15:04:05,000"

// LineFormatter writes entries as "<timestamp> <LEVEL> <message>", one per
// line, with any fields appended as key=value pairs in key order.
type LineFormatter struct {
	TimestampFormat string
}

func (f *LineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = DefaultTimestampFormat
	}

	fmt.Fprintf(b, "%-23s %-8s %s",
		entry.Time.Format(timestampFormat),
		strings.ToUpper(entry.Level.String()),
		entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
