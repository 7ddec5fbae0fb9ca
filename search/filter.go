// Package search provides the retrieval filter applied on top of note
// listings. It never touches storage.
package search

import (
	"strings"

	"notivo/models"
)

// Filter returns the notes whose title or content contains query as a
// case-insensitive substring, preserving input order. An empty query matches
// everything. Pure: the input slice is never modified.
func Filter(notes []models.Note, query string) []models.Note {
	if query == "" {
		return notes
	}

	q := strings.ToLower(query)
	matched := []models.Note{}
	for _, note := range notes {
		if strings.Contains(strings.ToLower(note.Title), q) ||
			strings.Contains(strings.ToLower(note.Content), q) {
			matched = append(matched, note)
		}
	}
	return matched
}
