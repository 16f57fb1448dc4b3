package querycache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyMatches(t *testing.T) {
	page := Key{Kind: KindFollowers, ID: "u1", Cursor: "|10"}

	tests := []struct {
		name   string
		prefix Key
		want   bool
	}{
		{name: "whole kind", prefix: Prefix(KindFollowers, ""), want: true},
		{name: "same id", prefix: Prefix(KindFollowers, "u1"), want: true},
		{name: "exact page", prefix: Key{Kind: KindFollowers, ID: "u1", Cursor: "|10"}, want: true},
		{name: "other page", prefix: Key{Kind: KindFollowers, ID: "u1", Cursor: "x|10"}, want: false},
		{name: "other id", prefix: Prefix(KindFollowers, "u2"), want: false},
		{name: "other kind", prefix: Prefix(KindFollowees, "u1"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, page.Matches(tt.prefix))
		})
	}
}

func TestKeyString_EscapesSeparators(t *testing.T) {
	k := Key{Kind: KindSearch, ID: "a:b*c"}
	assert.Equal(t, "snapgram:q:search:a%3Ab%2Ac:", k.String())
	assert.Equal(t, "snapgram:q:search:*", Prefix(KindSearch, "").pattern())
	assert.Equal(t, "snapgram:q:profile:u1:*", Prefix(KindProfile, "u1").pattern())
}

func TestTTLFor(t *testing.T) {
	assert.Equal(t, time.Minute, TTLFor(KindFeed))
	assert.Equal(t, time.Minute, TTLFor(KindPost))
	assert.Equal(t, 5*time.Minute, TTLFor(KindProfile))
	assert.Equal(t, 5*time.Minute, TTLFor(KindUsers))
}

func TestRules(t *testing.T) {
	follow := AfterFollow("a", "b")
	for _, k := range []Key{
		Prefix(KindFeed, ""),
		Prefix(KindProfile, "a"), Prefix(KindProfile, "b"),
		Prefix(KindFollowers, "a"), Prefix(KindFollowers, "b"),
		Prefix(KindFollowees, "a"), Prefix(KindFollowees, "b"),
	} {
		assert.Contains(t, follow, k)
	}

	like := AfterLikeOrSave("p", "u")
	assert.Contains(t, like, Prefix(KindFeed, ""))
	assert.Contains(t, like, Prefix(KindPost, "p"))
	assert.Contains(t, like, Prefix(KindProfile, "u"))

	profile := AfterProfileUpdate("u")
	assert.Contains(t, profile, Prefix(KindProfile, "u"))
	assert.Contains(t, profile, Prefix(KindPost, ""))
	assert.Contains(t, profile, Prefix(KindCreatorPosts, "u"))
	assert.NotContains(t, profile, Prefix(KindProfile, ""))
}
