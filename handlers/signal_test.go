package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEdgeRefresh(t *testing.T) {
	now := int64(1_700_000_000)
	author := primitive.NewObjectID()

	tests := []struct {
		name   string
		fields bson.M
	}{
		{"view edge", bson.M{}},
		{"tap edge", bson.M{"emoji": "🔥"}},
		{"story like edge", bson.M{"toUserId": author}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := edgeRefresh(tt.fields, now)

			// Every field rides in $set, so a repeat send rewrites the
			// matched row rather than skipping it.
			if len(update) != 1 {
				t.Fatalf("update has %d operators, want $set only: %v", len(update), update)
			}
			set, ok := update["$set"].(bson.M)
			if !ok {
				t.Fatalf("update missing $set: %v", update)
			}
			if set["createdAt"] != now {
				t.Errorf("createdAt = %v, want %d refreshed on every send", set["createdAt"], now)
			}
			for key, val := range tt.fields {
				if key == "createdAt" {
					continue
				}
				if set[key] != val {
					t.Errorf("%s = %v, want %v", key, set[key], val)
				}
			}
		})
	}
}
