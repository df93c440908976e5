// Package analyser classifies raw log lines by severity level.
//
// A line is read as tokens separated by single spaces. Lines with fewer than
// four tokens, or whose third token is not exactly one of the recognized
// levels, are counted as malformed. Runs of spaces yield empty tokens that
// still occupy a position, so "2026-01-12  14:33:01 ERROR x" is malformed.
package analyser

import (
	"strings"

	"loganalyser/internal/models"
)

const (
	// minTokens is the fewest tokens a well-formed line can have.
	minTokens = 4
	// levelIndex is the position of the severity token: date, time, level.
	levelIndex = 2
)

// ParseLevel reports whether token is a recognized severity level.
// Matching is exact and case-sensitive.
func ParseLevel(token string) (string, bool) {
	switch token {
	case models.LevelError, models.LevelWarning, models.LevelInfo:
		return token, true
	}
	return "", false
}

// ClassifyLine returns the level of a single line, or false if it is malformed.
func ClassifyLine(line string) (string, bool) {
	tokens := strings.Split(line, " ")
	if len(tokens) < minTokens {
		return "", false
	}
	return ParseLevel(tokens[levelIndex])
}

// AnalyseLines classifies every line and tallies the outcome.
// It never fails; each line is either counted under a level or as malformed.
func AnalyseLines(lines []string) models.Result {
	var r models.Result
	for _, line := range lines {
		level, ok := ClassifyLine(line)
		if !ok {
			r.MalformedLines++
			continue
		}
		switch level {
		case models.LevelError:
			r.Counts.Error++
		case models.LevelWarning:
			r.Counts.Warning++
		case models.LevelInfo:
			r.Counts.Info++
		}
	}
	r.TotalLines = len(lines)
	return r
}

// AnalyseText splits text into lines and classifies them.
func AnalyseText(text string) models.Result {
	return AnalyseLines(SplitLines(text))
}
