// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import (
	"strings"
	"time"
)

// Subscriber represents one newsletter sign-up.
//
// A Subscriber is created once, on a successful POST /api/subscribe, and is
// never updated or deleted afterwards. Email is unique across all rows.
type Subscriber struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	SubscribedAt time.Time `json:"subscribedAt"`
}

// Summary is the public part of a Subscriber echoed back to the visitor
// who just signed up.
func (s Subscriber) Summary() SubscriberSummary {
	return SubscriberSummary{ID: s.ID, Email: s.Email}
}

// SubscriberSummary is what POST /api/subscribe returns on success.
type SubscriberSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// SubscribeRequest is the JSON body of POST /api/subscribe.
//
// Struct tags serve two purposes:
//
//  1. json:"..."  — controls how the field is read from the request body.
//
//  2. validate:"..." — rules checked by the go-playground/validator
//     package. "required,email" rejects empty strings and anything that
//     is not a syntactically valid address (e.g. "not-an-email").
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// NormalizeEmail trims surrounding whitespace and lower-cases the address
// so "Fan@Example.com " and "fan@example.com" count as the same subscriber.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewsletterRequest is the JSON body of POST /api/newsletter/preview.
type NewsletterRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// Track is one entry of the band's music catalogue, shown by the music
// player and the track detail page.
type Track struct {
	Slug            string `json:"id"              yaml:"slug"`
	Title           string `json:"title"           yaml:"title"`
	Artist          string `json:"artist"          yaml:"artist"`
	Status          string `json:"status"          yaml:"status"`
	ReleaseDate     string `json:"releaseDate"     yaml:"release_date"`
	Duration        string `json:"duration"        yaml:"duration"`
	Badge           string `json:"badge,omitempty" yaml:"badge"`
	Image           string `json:"image"           yaml:"image"`
	Description     string `json:"description"     yaml:"description"`
	FullDescription string `json:"fullDescription" yaml:"full_description"`
	Lyrics          string `json:"lyrics"          yaml:"lyrics"`

	// AudioURL is nil for tracks that have not been released yet.
	AudioURL *string `json:"audioUrl" yaml:"audio_url"`
}
