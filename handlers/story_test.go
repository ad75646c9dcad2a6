package handlers

import (
	"testing"

	"ember/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func storyAt(author primitive.ObjectID, createdAt int64) models.Story {
	return models.Story{
		ID:        primitive.NewObjectID(),
		AuthorID:  author,
		CreatedAt: createdAt,
		ExpiresAt: createdAt + models.StoryTTL,
	}
}

func TestGroupStories(t *testing.T) {
	me := primitive.NewObjectID()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()

	// Input sorted by createdAt ascending, as the query delivers it.
	stories := []models.Story{
		storyAt(alice, 100),
		storyAt(me, 150),
		storyAt(bob, 200),
		storyAt(alice, 300),
		storyAt(me, 400),
	}

	groups := groupStories(stories, me)

	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}

	// Caller's group first.
	if !groups[0].Mine || groups[0].AuthorID != me {
		t.Errorf("first group = %s (mine=%v), want caller's", groups[0].AuthorID.Hex(), groups[0].Mine)
	}

	// Others ordered by newest story: alice (300) before bob (200).
	if groups[1].AuthorID != alice {
		t.Errorf("second group = %s, want alice", groups[1].AuthorID.Hex())
	}
	if groups[2].AuthorID != bob {
		t.Errorf("third group = %s, want bob", groups[2].AuthorID.Hex())
	}

	// Stories inside a group stay oldest first.
	mine := groups[0].Stories
	if len(mine) != 2 || mine[0].CreatedAt != 150 || mine[1].CreatedAt != 400 {
		t.Errorf("caller's stories = %+v, want oldest first", mine)
	}
	hers := groups[1].Stories
	if len(hers) != 2 || hers[0].CreatedAt != 100 || hers[1].CreatedAt != 300 {
		t.Errorf("alice's stories = %+v, want oldest first", hers)
	}
}

func TestGroupStoriesNoCallerGroup(t *testing.T) {
	me := primitive.NewObjectID()
	alice := primitive.NewObjectID()

	groups := groupStories([]models.Story{storyAt(alice, 100)}, me)

	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Mine {
		t.Error("group marked as caller's without caller stories")
	}
}

func TestGroupStoriesEmpty(t *testing.T) {
	if groups := groupStories(nil, primitive.NewObjectID()); len(groups) != 0 {
		t.Errorf("got %d groups for empty input, want 0", len(groups))
	}
}
