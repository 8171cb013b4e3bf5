package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"slotwatch/internal/api"
	"slotwatch/internal/exportfile"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiGray   = "\x1b[90m"
)

func renderEntry(entry api.LogEntry, colorize bool) string {
	line := exportfile.FormatLine(entry)
	if !colorize {
		return line
	}
	if color := levelColor(entry.Level); color != "" {
		return color + line + ansiReset
	}
	return line
}

func levelColor(level api.Level) string {
	switch level {
	case api.LevelError:
		return ansiRed
	case api.LevelWarn:
		return ansiYellow
	case api.LevelInfo:
		return ansiBlue
	case api.LevelDebug:
		return ansiGray
	default:
		return ""
	}
}

func statusLabel(status api.StreamStatus) string {
	if status == "" {
		return "Unknown"
	}
	return cases.Title(language.Und).String(string(status))
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
