package models

import (
	"encoding/json"
	"time"
)

// Status values shared by barter requests and sessions.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusDeclined  = "declined"
	StatusCompleted = "completed"
)

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusCompleted:
		return true
	}
	return false
}

// Notification type tags.
const (
	NotificationBarter  = "barter"
	NotificationChat    = "chat"
	NotificationSession = "session"
	NotificationReview  = "review"
)

// SocialLink is a labeled external profile link, e.g. twitter or website.
type SocialLink struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// User represents a marketplace member. PasswordHash is never serialized.
type User struct {
	ID            string       `json:"id"`
	Username      string       `json:"username"`
	Email         string       `json:"email"`
	PasswordHash  string       `json:"-"`
	Bio           string       `json:"bio,omitempty"`
	AvatarURL     string       `json:"avatarUrl,omitempty"`
	CoverPhotoURL string       `json:"coverPhotoUrl,omitempty"`
	SocialLinks   []SocialLink `json:"socialLinks,omitempty"`
	SkillsOffered []string     `json:"skillsOffered"`
	SkillsWanted  []string     `json:"skillsWanted"`
	Badges        []string     `json:"badges,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// UserSummary is the participant shape embedded in chats and messages.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Summary returns the embeddable participant view of a user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Chat is a conversation between exactly two users. Participant IDs are
// stored sorted so the pair is unique regardless of who initiated contact.
type Chat struct {
	ID           string        `json:"id"`
	Participants []string      `json:"participants"`
	Users        []UserSummary `json:"users,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// HasParticipant reports whether userID takes part in the chat.
func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipants returns every participant except userID.
func (c *Chat) OtherParticipants(userID string) []string {
	others := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p != userID {
			others = append(others, p)
		}
	}
	return others
}

// Message is immutable once created except for the read flag.
type Message struct {
	ID        string       `json:"id"`
	ChatID    string       `json:"chatId"`
	SenderID  string       `json:"senderId"`
	Sender    *UserSummary `json:"sender,omitempty"`
	Content   string       `json:"content"`
	Read      bool         `json:"read"`
	CreatedAt time.Time    `json:"createdAt"`
}

// BarterRequest is a directed skill-trade proposal.
type BarterRequest struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Skill      string    `json:"skill"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Session is a proposed meeting between two users for a skill.
type Session struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"`
	ScheduledBy  string    `json:"scheduledBy"`
	Date         time.Time `json:"date"`
	Skill        string    `json:"skill"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasParticipant reports whether userID takes part in the session.
func (s *Session) HasParticipant(userID string) bool {
	for _, p := range s.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Review is authored about a user for a scheduled session.
type Review struct {
	ID         string    `json:"id"`
	ReviewerID string    `json:"reviewerId"`
	RevieweeID string    `json:"revieweeId"`
	SessionID  string    `json:"sessionId"`
	Skill      string    `json:"skill"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Notification is addressed to one user as a side effect of domain events.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuditLog is an immutable record of a successful mutating operation.
type AuditLog struct {
	ID        string          `json:"id"`
	ActorID   string          `json:"actorId"`
	Action    string          `json:"action"`
	Target    string          `json:"target"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}
