package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizerID primitive.ObjectID `bson:"organizerId" json:"organizerId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Location    string             `bson:"location" json:"location"`
	Coordinates *GeoPoint          `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	StartsAt    int64              `bson:"startsAt" json:"startsAt"`
	Capacity    int                `bson:"capacity" json:"capacity"` // 0 = unlimited
	EventType   string             `bson:"eventType,omitempty" json:"eventType,omitempty"`
	Website     string             `bson:"website,omitempty" json:"website,omitempty"`
	Socials     map[string]string  `bson:"socials,omitempty" json:"socials,omitempty"`
	CreatedAt   int64              `bson:"createdAt" json:"createdAt"`

	AttendeeCount int64 `bson:"-" json:"attendeeCount,omitempty"`
}

// HasRoom reports whether another attendee fits given the current count.
// The organizer counts as an attendee.
func (e *Event) HasRoom(attendeeCount int64) bool {
	return e.Capacity == 0 || attendeeCount < int64(e.Capacity)
}

type EventAttendee struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID  primitive.ObjectID `bson:"eventId" json:"eventId"`
	UserID   primitive.ObjectID `bson:"userId" json:"userId"`
	JoinedAt int64              `bson:"joinedAt" json:"joinedAt"`
}

type EventMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   primitive.ObjectID `bson:"eventId" json:"eventId"`
	SenderID  primitive.ObjectID `bson:"senderId" json:"senderId"`
	Text      string             `bson:"text" json:"text"`
	CreatedAt int64              `bson:"createdAt" json:"createdAt"`
}
