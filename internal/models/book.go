package models

import (
	"time"
)

type Book struct {
	ID              int64
	Title           string
	Author          string
	Description     string
	Category        string
	Pages           int
	Price           float64
	ISBN            *string
	IsPremium       bool
	CoverImageURL   string
	FileURL         *string // nil for premium books without an uploaded PDF
	PublicationDate string  // YYYY-MM-DD
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Downloadable reports whether the book has a file on record.
func (b *Book) Downloadable() bool {
	return b.FileURL != nil && *b.FileURL != ""
}
