// Package querycache is the read-through cache in front of the post, profile
// and relationship reads, and the rules for invalidating it after mutations.
package querycache

import (
	"net/url"
	"strings"
	"time"
)

// Kind names a read view
type Kind string

const (
	KindFeed         Kind = "feed"
	KindPost         Kind = "post"
	KindProfile      Kind = "profile"
	KindUsers        Kind = "users"
	KindFollowers    Kind = "followers"
	KindFollowees    Kind = "followees"
	KindSaved        Kind = "saved"
	KindSearch       Kind = "search"
	KindCreatorPosts Kind = "creator-posts"
)

const keyNamespace = "snapgram:q:"

// Key identifies one cached view: (kind, optional id, optional page cursor).
// Used as an invalidation prefix, an empty ID matches every ID of the kind
// and an empty Cursor matches every page.
type Key struct {
	Kind   Kind   `json:"kind"`
	ID     string `json:"id,omitempty"`
	Cursor string `json:"cursor,omitempty"`
}

// Prefix builds an invalidation prefix
func Prefix(kind Kind, id string) Key {
	return Key{Kind: kind, ID: id}
}

// String renders the storage form of k: snapgram:q:{kind}:{id}:{cursor}.
// ID and Cursor are query-escaped so they can't contain the separator or
// Redis glob characters.
func (k Key) String() string {
	return keyNamespace + string(k.Kind) + ":" + url.QueryEscape(k.ID) + ":" + url.QueryEscape(k.Cursor)
}

// Matches reports whether k falls under prefix
func (k Key) Matches(prefix Key) bool {
	if k.Kind != prefix.Kind {
		return false
	}
	if prefix.ID != "" && k.ID != prefix.ID {
		return false
	}
	if prefix.Cursor != "" && k.Cursor != prefix.Cursor {
		return false
	}
	return true
}

// pattern renders the Redis SCAN pattern matching every key under k
func (k Key) pattern() string {
	switch {
	case k.ID == "":
		return keyNamespace + string(k.Kind) + ":*"
	case k.Cursor == "":
		return keyNamespace + string(k.Kind) + ":" + url.QueryEscape(k.ID) + ":*"
	default:
		return k.String()
	}
}

// Stale times per view
const (
	ShortTTL = time.Minute
	LongTTL  = 5 * time.Minute
)

// TTLFor returns how long a view of kind stays fresh
func TTLFor(kind Kind) time.Duration {
	switch kind {
	case KindUsers, KindProfile, KindFollowers, KindFollowees:
		return LongTTL
	default:
		return ShortTTL
	}
}

// normalizeSearch makes search keys case-insensitive like the search itself
func normalizeSearch(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}
