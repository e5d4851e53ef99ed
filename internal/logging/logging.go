// Package logging wires the process logger and exposes the log tailer
// used by the dashboard.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// tailReadLimit bounds how far back the tailer reads; dashboard
// requests only ever need the last handful of lines.
const tailReadLimit = 256 * 1024

// Options configures process logging.
type Options struct {
	// FilePath is the rotating JSON log file. Empty disables file logging.
	FilePath string

	// Debug lowers the level to debug.
	Debug bool
}

type fileHook struct {
	writer    io.Writer
	formatter log.Formatter
}

func (h *fileHook) Levels() []log.Level { return log.AllLevels }

func (h *fileHook) Fire(entry *log.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}

// Init configures logrus: human-readable output on stderr, plus a
// rotating JSON file via lumberjack when a file path is set. The file
// is what the dashboard logs endpoint tails.
func Init(opts Options) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if opts.FilePath == "" {
		return
	}
	log.AddHook(&fileHook{
		writer: &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
			Compress:   true,
		},
		formatter: &log.JSONFormatter{},
	})
}

// TailLines returns up to maxLines of the most recent lines of the file
// at path, oldest first. Only the trailing tailReadLimit bytes are
// scanned, so arbitrarily large files stay cheap to serve.
func TailLines(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return []string{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	info, errStat := f.Stat()
	if errStat != nil {
		return nil, fmt.Errorf("stat log file %s: %w", path, errStat)
	}
	offset := int64(0)
	if info.Size() > tailReadLimit {
		offset = info.Size() - tailReadLimit
	}
	if _, errSeek := f.Seek(offset, io.SeekStart); errSeek != nil {
		return nil, fmt.Errorf("seek log file %s: %w", path, errSeek)
	}
	data, errRead := io.ReadAll(f)
	if errRead != nil {
		return nil, fmt.Errorf("read log file %s: %w", path, errRead)
	}
	if offset > 0 {
		// Drop the first, likely partial, line of the window.
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			data = data[idx+1:]
		}
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return []string{}, nil
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, nil
}
