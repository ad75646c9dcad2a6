package handlers

import (
	"testing"
	"time"

	"ember/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func float64Ptr(v float64) *float64 { return &v }

func TestDiscoveryEntry(t *testing.T) {
	now := time.Now().Unix()

	user := models.User{
		ID:                 primitive.NewObjectID(),
		Name:               "Sam",
		Bio:                "hi",
		BirthDate:          now - 30*31556952,
		HeightCm:           float64Ptr(180),
		WeightKg:           float64Ptr(75),
		BodyType:           "athletic",
		Ethnicity:          "latino",
		Orientation:        "gay",
		Position:           "vers",
		RelationshipStatus: "single",
		LookingFor:         []string{"dates"},
		Location:           models.NewGeoPoint(52.5310, 13.3847),
	}

	entry := discoveryEntry(&user, 52.5200, 13.4050, now)

	// Every attribute the discovery filters run on must come back, so the
	// client can render what it filtered by.
	for _, key := range []string{
		"heightCm", "weightKg", "bodyType", "ethnicity",
		"orientation", "position", "relationshipStatus", "lookingFor",
	} {
		if _, ok := entry[key]; !ok {
			t.Errorf("entry missing %q", key)
		}
	}

	age, ok := entry["age"].(int)
	if !ok || age != 30 {
		t.Errorf("age = %v, want 30", entry["age"])
	}

	distance, ok := entry["distance"].(float64)
	if !ok {
		t.Fatalf("distance = %v, want meters", entry["distance"])
	}
	if distance < 1500 || distance > 2200 {
		t.Errorf("distance = %v, want roughly 1850 meters", distance)
	}

	for _, key := range []string{"email", "passwordHash"} {
		if _, ok := entry[key]; ok {
			t.Errorf("entry leaks %q", key)
		}
	}
}

func TestDiscoveryEntryPrivacyFlags(t *testing.T) {
	now := time.Now().Unix()

	user := models.User{
		ID:        primitive.NewObjectID(),
		BirthDate: now - 25*31556952,
		Location:  models.NewGeoPoint(52.5310, 13.3847),
		Privacy: models.Privacy{
			HideAge:      true,
			HideDistance: true,
		},
	}

	entry := discoveryEntry(&user, 52.5200, 13.4050, now)

	if _, ok := entry["age"]; ok {
		t.Error("age included despite hideAge")
	}
	if _, ok := entry["distance"]; ok {
		t.Error("distance included despite hideDistance")
	}
}

func TestDiscoveryEntryUnsetBirthDate(t *testing.T) {
	user := models.User{ID: primitive.NewObjectID()}

	entry := discoveryEntry(&user, 52.52, 13.405, time.Now().Unix())

	if _, ok := entry["age"]; ok {
		t.Error("age included with no birth date")
	}
	if _, ok := entry["distance"]; ok {
		t.Error("distance included with no location")
	}
}
