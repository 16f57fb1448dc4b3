package querycache

// Views affected by each mutation.

// AfterLikeOrSave covers like and save toggles by userID on postID
func AfterLikeOrSave(postID, userID string) []Key {
	return []Key{
		Prefix(KindFeed, ""),
		Prefix(KindPost, postID),
		Prefix(KindProfile, userID),
		Prefix(KindSaved, userID),
		Prefix(KindSearch, ""),
		Prefix(KindCreatorPosts, ""),
	}
}

// AfterFollow covers a follow toggle; both participants' views change
func AfterFollow(followeeID, followerID string) []Key {
	return []Key{
		Prefix(KindFeed, ""),
		Prefix(KindUsers, ""),
		Prefix(KindProfile, followeeID),
		Prefix(KindProfile, followerID),
		Prefix(KindFollowers, followeeID),
		Prefix(KindFollowers, followerID),
		Prefix(KindFollowees, followeeID),
		Prefix(KindFollowees, followerID),
	}
}

// AfterPostMutation covers create, edit and delete of postID by creatorID
func AfterPostMutation(postID, creatorID string) []Key {
	return []Key{
		Prefix(KindFeed, ""),
		Prefix(KindPost, postID),
		Prefix(KindSearch, ""),
		Prefix(KindCreatorPosts, creatorID),
		Prefix(KindProfile, creatorID),
		Prefix(KindSaved, ""),
		Prefix(KindUsers, ""),
	}
}

// AfterProfileUpdate covers a profile edit. Posts carry their creator's
// name and avatar, so every post view can change too.
func AfterProfileUpdate(userID string) []Key {
	return []Key{
		Prefix(KindProfile, userID),
		Prefix(KindUsers, ""),
		Prefix(KindFeed, ""),
		Prefix(KindFollowers, ""),
		Prefix(KindFollowees, ""),
		Prefix(KindPost, ""),
		Prefix(KindSearch, ""),
		Prefix(KindSaved, ""),
		Prefix(KindCreatorPosts, userID),
	}
}
