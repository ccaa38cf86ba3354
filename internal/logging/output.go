package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	outMu     sync.Mutex
	stdout    io.Writer = os.Stdout
	stderr    io.Writer = os.Stderr
	splitErrs           = true
)

// SetOutput sends every level to w. Passing nil restores stdout/stderr routing.
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	if w == nil {
		stdout, stderr, splitErrs = os.Stdout, os.Stderr, true
		return
	}
	stdout, stderr, splitErrs = w, w, false
}

// write formats one line. ERROR and FATAL go to stderr, all else to stdout.
// Fields are merged context < logger < call and printed sorted by key.
func (l *Logger) write(level LogLevel, msg string, fields []LogField) {
	merged := map[string]interface{}{}
	for _, f := range contextFields(l.ctx) {
		merged[f.Key] = f.Value
	}
	for _, f := range l.fields {
		merged[f.Key] = f.Value
	}
	for _, f := range fields {
		merged[f.Key] = f.Value
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s: %s", GetTimestamp(), level, l.name, msg)
	if len(merged) > 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" |")
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, merged[k])
		}
	}
	b.WriteByte('\n')

	outMu.Lock()
	defer outMu.Unlock()
	w := stdout
	if splitErrs && level >= ERROR {
		w = stderr
	}
	_, _ = io.WriteString(w, b.String())
}

// GetTimestamp returns an RFC3339 timestamp, or LOG_TIMESTAMP when set
func GetTimestamp() string {
	if override := os.Getenv("LOG_TIMESTAMP"); override != "" {
		return override
	}
	return time.Now().Format(time.RFC3339)
}
