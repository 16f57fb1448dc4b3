// Package events publishes successful mutations and cache invalidations to
// other AppView instances (NATS) or a downstream activity stream (Kafka).
package events

import (
	"time"

	"Snapgram/internal/core/querycache"
)

// Type names an event
type Type string

const (
	TypeRelationshipToggled Type = "relationship.toggled"
	TypePostCreated         Type = "post.created"
	TypePostUpdated         Type = "post.updated"
	TypePostDeleted         Type = "post.deleted"
	TypeProfileUpdated      Type = "profile.updated"
	TypeCacheInvalidated    Type = "cache.invalidated"
)

// SubjectPrefix namespaces every subject published on NATS
const SubjectPrefix = "snapgram."

// Subject returns the NATS subject events of type t are published on
func (t Type) Subject() string {
	return SubjectPrefix + string(t)
}

// Event is the envelope for every published message.
// Only the fields relevant to Type are set.
type Event struct {
	OccurredAt time.Time        `json:"occurredAt"`
	ID         string           `json:"id"`
	Type       Type             `json:"type"`
	Origin     string           `json:"origin"`
	Kind       string           `json:"kind,omitempty"`
	Outcome    string           `json:"outcome,omitempty"`
	OwnerID    string           `json:"ownerId,omitempty"`
	ActorID    string           `json:"actorId,omitempty"`
	PostID     string           `json:"postId,omitempty"`
	UserID     string           `json:"userId,omitempty"`
	Keys       []querycache.Key `json:"keys,omitempty"`
}

// PartitionKey groups events about the same entity
func (e *Event) PartitionKey() string {
	switch {
	case e.PostID != "":
		return e.PostID
	case e.OwnerID != "":
		return e.OwnerID
	case e.UserID != "":
		return e.UserID
	default:
		return e.Origin
	}
}
