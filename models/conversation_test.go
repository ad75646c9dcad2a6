package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizePair(t *testing.T) {
	a, _ := primitive.ObjectIDFromHex("000000000000000000000001")
	b, _ := primitive.ObjectIDFromHex("000000000000000000000002")

	p1, p2 := NormalizePair(a, b)
	if p1 != a || p2 != b {
		t.Errorf("NormalizePair(a, b) = (%s, %s), want (a, b)", p1.Hex(), p2.Hex())
	}

	p1, p2 = NormalizePair(b, a)
	if p1 != a || p2 != b {
		t.Errorf("NormalizePair(b, a) = (%s, %s), want (a, b)", p1.Hex(), p2.Hex())
	}

	// Idempotent on already-normalized input.
	q1, q2 := NormalizePair(p1, p2)
	if q1 != p1 || q2 != p2 {
		t.Error("NormalizePair not idempotent")
	}
}

func TestConversationParticipants(t *testing.T) {
	a, _ := primitive.ObjectIDFromHex("000000000000000000000001")
	b, _ := primitive.ObjectIDFromHex("000000000000000000000002")
	other := primitive.NewObjectID()

	conv := Conversation{Participant1: a, Participant2: b}

	if !conv.HasParticipant(a) || !conv.HasParticipant(b) {
		t.Error("HasParticipant false for a member")
	}
	if conv.HasParticipant(other) {
		t.Error("HasParticipant true for a non-member")
	}

	if got := conv.Partner(a); got != b {
		t.Errorf("Partner(a) = %s, want b", got.Hex())
	}
	if got := conv.Partner(b); got != a {
		t.Errorf("Partner(b) = %s, want a", got.Hex())
	}
}
