package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MustDate parses a YYYY-MM-DD date. It panics on malformed input and is meant for fixtures.
func MustDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// Getwd tries to find the project root (the closest parent directory holding a go.mod).
// go-test changes the working directory to the test package being run, so config files and assets
// have to be looked up from the root. Falls back to the working directory.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}

// SetString sets *dst to *src when src is provided.
func SetString(dst *string, src *string) {
	if src != nil {
		*dst = CleanString(*src)
	}
}

// SetNullString sets *dst to *src when src is provided. An empty src clears dst.
func SetNullString(dst *null.String, src *string) {
	if src == nil {
		return
	}
	if val := CleanString(*src); val != "" {
		*dst = null.StringFrom(val)
	} else {
		*dst = null.String{}
	}
}
