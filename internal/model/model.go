// Package model defines the core domain types for the sports event service.
package model

import "time"

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventFull      EventStatus = "full"
	EventConfirmed EventStatus = "confirmed"
	EventCompleted EventStatus = "completed"
	EventCancelled EventStatus = "cancelled"
)

// Valid reports whether s is a known event status.
func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventPublished, EventFull, EventConfirmed, EventCompleted, EventCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle changes are allowed.
func (s EventStatus) Terminal() bool {
	return s == EventCompleted || s == EventCancelled
}

type SkillLevel string

const (
	SkillAny          SkillLevel = "any"
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

func (s SkillLevel) Valid() bool {
	switch s {
	case SkillAny, SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

type GenderPolicy string

const (
	GenderMixed GenderPolicy = "mixed"
	GenderMen   GenderPolicy = "men"
	GenderWomen GenderPolicy = "women"
)

func (g GenderPolicy) Valid() bool {
	switch g {
	case GenderMixed, GenderMen, GenderWomen:
		return true
	}
	return false
}

// Event is a sports meetup created by a host.
type Event struct {
	ID           string         `json:"id"`
	HostID       string         `json:"host_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Sport        string         `json:"sport"`
	SkillLevel   SkillLevel     `json:"skill_level"`
	GenderPolicy GenderPolicy   `json:"gender_policy"`
	StartsAt     time.Time      `json:"starts_at"`
	EndsAt       time.Time      `json:"ends_at"`
	Location     string         `json:"location"`
	Latitude     *float64       `json:"latitude,omitempty"`
	Longitude    *float64       `json:"longitude,omitempty"`
	MaxPlayers   int            `json:"max_players"`
	PriceCents   int64          `json:"price_cents"`
	SportConfig  map[string]any `json:"sport_config,omitempty"`
	Status       EventStatus    `json:"status"`
	// PlayerCount is derived as host + accepted bookings; it is never stored.
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// DistanceKm is populated by searches that carry a caller location.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// Remaining returns the number of open player slots.
func (e *Event) Remaining() int {
	if n := e.MaxPlayers - e.PlayerCount; n > 0 {
		return n
	}
	return 0
}

// IsFull returns true when no slots remain.
func (e *Event) IsFull() bool {
	return e.PlayerCount >= e.MaxPlayers
}

// HasCoordinates reports whether both latitude and longitude are set.
func (e *Event) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// BookingStatus is a participant's relationship to an event.
type BookingStatus string

const (
	BookingRequested BookingStatus = "requested"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingRequested, BookingAccepted, BookingRejected, BookingCancelled:
		return true
	}
	return false
}

// Booking is a participant record pairing a user with an event.
type Booking struct {
	ID        string        `json:"id"`
	EventID   string        `json:"event_id"`
	UserID    string        `json:"user_id"`
	Status    BookingStatus `json:"status"`
	Message   string        `json:"message,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// MessageKind is the payload type of a chat message.
type MessageKind string

const (
	MessageText     MessageKind = "text"
	MessageImage    MessageKind = "image"
	MessageLocation MessageKind = "location"
)

func (k MessageKind) Valid() bool {
	switch k {
	case MessageText, MessageImage, MessageLocation:
		return true
	}
	return false
}

// Message is a chat message exchanged inside an event. Only ReadBy changes
// after creation, and it only grows.
type Message struct {
	ID         string      `json:"id"`
	EventID    string      `json:"event_id"`
	SenderID   string      `json:"sender_id"`
	ReceiverID string      `json:"receiver_id"`
	Content    string      `json:"content"`
	Kind       MessageKind `json:"kind"`
	ReadBy     []string    `json:"read_by"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ReadByUser reports whether userID is in the read set.
func (m *Message) ReadByUser(userID string) bool {
	for _, id := range m.ReadBy {
		if id == userID {
			return true
		}
	}
	return false
}

// User is the locally cached profile of an identity owned by the auth provider.
type User struct {
	ID            string    `json:"id"`
	DisplayName   string    `json:"display_name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	AvatarURL     string    `json:"avatar_url,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	PhoneVerified bool      `json:"phone_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EventRequest is the payload for creating or replacing an event.
type EventRequest struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Sport        string         `json:"sport"`
	SkillLevel   SkillLevel     `json:"skill_level"`
	GenderPolicy GenderPolicy   `json:"gender_policy"`
	StartsAt     time.Time      `json:"starts_at"`
	EndsAt       time.Time      `json:"ends_at"`
	Location     string         `json:"location"`
	Latitude     *float64       `json:"latitude"`
	Longitude    *float64       `json:"longitude"`
	MaxPlayers   int            `json:"max_players"`
	PriceCents   int64          `json:"price_cents"`
	SportConfig  map[string]any `json:"sport_config"`
	// Publish makes a newly created event visible immediately.
	Publish bool `json:"publish"`
}

// EventStatusRequest is the payload for PATCH /events/{id}/status.
type EventStatusRequest struct {
	Status EventStatus `json:"status"`
}

// BookingRequest is the payload for requesting to join an event.
type BookingRequest struct {
	EventID string `json:"eventId"`
	Message string `json:"message"`
}

// BookingDecisionRequest is the payload for PATCH /bookings/{id}.
type BookingDecisionRequest struct {
	Status BookingStatus `json:"status"`
}

// SendMessageRequest is the payload for sending a chat message.
type SendMessageRequest struct {
	Content    string      `json:"content"`
	Kind       MessageKind `json:"kind"`
	ReceiverID string      `json:"receiverId"`
}

// ProfileRequest is the payload for PUT /me.
type ProfileRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	AvatarURL   string `json:"avatar_url"`
}

// EventFilter narrows an event search.
type EventFilter struct {
	Sport      string
	Date       *time.Time // UTC day
	SkillLevel SkillLevel
	Gender     GenderPolicy
	Location   string
	Lat, Lng   *float64
	RadiusKm   float64
	MaxPrice   *int64
	Sort       string // "time" or "distance"
	After      time.Time
	Limit      int
}

// MessageQuery selects a caller's view of an event conversation.
type MessageQuery struct {
	EventID string
	UserID  string
	With    string
	Before  *time.Time
	Limit   int
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
