package domain

import "time"

// Post is a tweet published by the monitored official account.
type Post struct {
	ID        string
	Text      string
	CreatedAt time.Time
}

// URL returns the canonical link to the post for the given account handle.
func (p Post) URL(handle string) string {
	return "https://twitter.com/" + handle + "/status/" + p.ID
}
