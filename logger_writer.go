package easyws

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const writerTimeLayout = "2006-01-02 15:04:05"

type field struct {
	key   string
	value any
}

// writerLogger implements the logger interface on top of an io.Writer. Lines
// look like
//
//	[2006-01-02 15:04:05] INFO [net=loop, cycle=...]: connected
//
// with fields printed in the order they were attached. Each entry is written
// in a single Write call so interleaving is up to the underlying writer.
type writerLogger struct {
	writer io.Writer
	fields []field
}

func newWriterLogger(writer io.Writer) logger {
	return &writerLogger{writer: writer}
}

func (l *writerLogger) WithField(key string, value any) logger {
	fields := make([]field, len(l.fields), len(l.fields)+1)
	copy(fields, l.fields)
	return &writerLogger{
		writer: l.writer,
		fields: append(fields, field{key: key, value: value}),
	}
}

func (l *writerLogger) log(level, msg string) {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(time.Now().Format(writerTimeLayout))
	b.WriteString("] ")
	b.WriteString(level)
	if len(l.fields) > 0 {
		b.WriteString(" [")
		for i, f := range l.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", f.key, f.value)
		}
		b.WriteByte(']')
	}
	b.WriteString(": ")
	// Sprintln already terminates its output, strip it so every entry ends
	// with exactly one newline
	b.WriteString(strings.TrimRight(msg, "\n"))
	b.WriteByte('\n')
	_, _ = io.WriteString(l.writer, b.String())
}

func (l *writerLogger) Debug(args ...any) {
	l.log("DEBUG", fmt.Sprint(args...))
}

func (l *writerLogger) Debugf(format string, args ...any) {
	l.log("DEBUG", fmt.Sprintf(format, args...))
}

func (l *writerLogger) Debugln(args ...any) {
	l.log("DEBUG", fmt.Sprintln(args...))
}

func (l *writerLogger) Info(args ...any) {
	l.log("INFO", fmt.Sprint(args...))
}

func (l *writerLogger) Infof(format string, args ...any) {
	l.log("INFO", fmt.Sprintf(format, args...))
}

func (l *writerLogger) Infoln(args ...any) {
	l.log("INFO", fmt.Sprintln(args...))
}

func (l *writerLogger) Warn(args ...any) {
	l.log("WARN", fmt.Sprint(args...))
}

func (l *writerLogger) Warnf(format string, args ...any) {
	l.log("WARN", fmt.Sprintf(format, args...))
}

func (l *writerLogger) Warnln(args ...any) {
	l.log("WARN", fmt.Sprintln(args...))
}

func (l *writerLogger) Error(args ...any) {
	l.log("ERROR", fmt.Sprint(args...))
}

func (l *writerLogger) Errorf(format string, args ...any) {
	l.log("ERROR", fmt.Sprintf(format, args...))
}

func (l *writerLogger) Errorln(args ...any) {
	l.log("ERROR", fmt.Sprintln(args...))
}
