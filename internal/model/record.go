// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// Source identifies the channel a record was collected from.
type Source string

const (
	// SourceSocial represents social media posts and comments (Reddit).
	SourceSocial Source = "social"
	// SourceNews represents news articles and reader comments (RSS and scraped).
	SourceNews Source = "news"
	// SourceSurvey represents imported survey export responses.
	SourceSurvey Source = "survey"
)

// AllSources lists every collectable source in stable order.
func AllSources() []Source {
	return []Source{SourceSocial, SourceNews, SourceSurvey}
}

// ParseSource converts a string to a Source, case-insensitively.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case SourceSocial:
		return SourceSocial, nil
	case SourceNews:
		return SourceNews, nil
	case SourceSurvey:
		return SourceSurvey, nil
	default:
		return "", fmt.Errorf("unknown source %q", s)
	}
}

// Language is a detected content language.
type Language string

const (
	// LanguageEnglish is the default when detection finds nothing better.
	LanguageEnglish Language = "en"
	// LanguageFrench is detected via common French function words.
	LanguageFrench Language = "fr"
	// LanguageKinyarwanda is detected via common Kinyarwanda words.
	LanguageKinyarwanda Language = "rw"
)

// Record is one raw piece of collected public commentary.
// Records are immutable once collected.
type Record struct {
	Timestamp   time.Time
	CollectedAt time.Time
	ID          string
	Source      Source
	AuthorID    string
	RawText     string
	Title       string
	URL         string
	Language    Language
	Hash        string
}

// GenerateHash derives the deduplication key for a record.
// Two polls that return the same text from the same author and source
// must collapse to a single record, so only those three fields participate.
func (r *Record) GenerateHash() string {
	text := sha256.Sum256([]byte(r.RawText))
	data := fmt.Sprintf("%s:%s:%x", r.Source, r.AuthorID, text)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// IsClassifiable reports whether the record carries any text worth scoring.
func (r *Record) IsClassifiable() bool {
	return strings.TrimSpace(r.RawText) != ""
}
