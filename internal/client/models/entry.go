// Package models defines the client-side data models of the WILT CLI.
package models

import (
	"fmt"
	"time"
)

// User is the owner summary the API embeds in each entry.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Entry is a journal entry as returned by the API. The client never edits
// it locally; the list is always the server's latest answer.
type Entry struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	User      *User     `json:"user,omitempty"`
}

// String renders the entry as a single list line.
func (e Entry) String() string {
	return fmt.Sprintf("[%d] %s (%s)", e.ID, e.Title, e.CreatedAt.Local().Format("2006-01-02 15:04"))
}

// EntryDraft is the payload of create and update requests.
type EntryDraft struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// IsEmpty reports whether no field of the draft has been filled in.
func (d EntryDraft) IsEmpty() bool {
	return d.Title == "" && d.Content == ""
}
