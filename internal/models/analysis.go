package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Severity level constants
const (
	LevelError   = "ERROR"
	LevelWarning = "WARNING"
	LevelInfo    = "INFO"
)

// Levels lists the recognized severity levels in display order.
var Levels = []string{LevelError, LevelWarning, LevelInfo}

// Counts holds the number of lines seen per severity level.
// All three levels are always present when encoded.
type Counts struct {
	Error   int `json:"ERROR"`
	Warning int `json:"WARNING"`
	Info    int `json:"INFO"`
}

// Get returns the count for a level, or 0 for an unknown level.
func (c Counts) Get(level string) int {
	switch level {
	case LevelError:
		return c.Error
	case LevelWarning:
		return c.Warning
	case LevelInfo:
		return c.Info
	}
	return 0
}

// Sum returns the number of classified lines.
func (c Counts) Sum() int {
	return c.Error + c.Warning + c.Info
}

// Encode serializes counts to the text form stored in the counts column.
func (c Counts) Encode() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeCounts parses the stored text form of counts.
func DecodeCounts(s string) (Counts, error) {
	var c Counts
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return Counts{}, fmt.Errorf("decoding counts %q: %w", s, err)
	}
	return c, nil
}

// Result is the outcome of classifying a batch of log lines.
type Result struct {
	Counts         Counts `json:"counts"`
	TotalLines     int    `json:"total_lines"`
	MalformedLines int    `json:"malformed_lines"`
}

// Analysis is a persisted Result.
type Analysis struct {
	ID             int64     `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Counts         Counts    `json:"counts"`
	TotalLines     int       `json:"total_lines"`
	MalformedLines int       `json:"malformed_lines"`
}

// NewAnalysis creates an unsaved analysis from a classification result.
func NewAnalysis(r Result) *Analysis {
	return &Analysis{
		Counts:         r.Counts,
		TotalLines:     r.TotalLines,
		MalformedLines: r.MalformedLines,
	}
}

// Result returns the classification result carried by the analysis.
func (a *Analysis) Result() Result {
	return Result{
		Counts:         a.Counts,
		TotalLines:     a.TotalLines,
		MalformedLines: a.MalformedLines,
	}
}

// AnalysisSummary aggregates every stored analysis.
type AnalysisSummary struct {
	Analyses       int64  `json:"analyses"`
	Counts         Counts `json:"counts"`
	TotalLines     int64  `json:"total_lines"`
	MalformedLines int64  `json:"malformed_lines"`
}
