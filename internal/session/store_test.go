package session

import (
	"testing"

	"fourcut-ai/internal/gemini"
)

func selfie(tag string) gemini.ImageInput {
	return gemini.ImageInput{Data: []byte(tag), MimeType: "image/jpeg"}
}

func TestStore_AddAndSnapshot(t *testing.T) {
	s := NewStore(Options{MaxSelfies: 4})

	if n := s.Add(1, "alice", selfie("a"), selfie("b")); n != 2 {
		t.Fatalf("Add = %d, want 2", n)
	}

	got := s.Snapshot(1, "alice")
	if len(got) != 2 || string(got[0].Data) != "a" {
		t.Fatalf("Snapshot = %+v", got)
	}

	// Snapshot is a copy: mutating it must not touch the inbox.
	got[0] = selfie("mutated")
	if again := s.Snapshot(1, "alice"); string(again[0].Data) != "a" {
		t.Fatalf("inbox mutated through a snapshot")
	}
}

func TestStore_CapDropsOldest(t *testing.T) {
	s := NewStore(Options{MaxSelfies: 2})

	s.Add(1, "alice", selfie("a"), selfie("b"))
	if n := s.Add(1, "alice", selfie("c")); n != 2 {
		t.Fatalf("Add past cap = %d, want 2", n)
	}

	got := s.Snapshot(1, "alice")
	if string(got[0].Data) != "b" || string(got[1].Data) != "c" {
		t.Fatalf("cap kept the wrong selfies: %q, %q", got[0].Data, got[1].Data)
	}
}

func TestStore_ClearEmptiesInbox(t *testing.T) {
	s := NewStore(Options{MaxSelfies: 4})
	s.Add(1, "alice", selfie("a"))
	s.Clear(1)

	if got := s.Snapshot(1, "alice"); len(got) != 0 {
		t.Fatalf("inbox not empty after Clear: %d", len(got))
	}
}

func TestStore_UsersAreIsolated(t *testing.T) {
	s := NewStore(Options{MaxSelfies: 4})
	s.Add(1, "alice", selfie("a"))
	s.Add(2, "bob", selfie("b"))

	if got := s.Snapshot(1, "alice"); len(got) != 1 || string(got[0].Data) != "a" {
		t.Fatalf("alice inbox = %+v", got)
	}
	if got := s.Snapshot(2, "bob"); len(got) != 1 || string(got[0].Data) != "b" {
		t.Fatalf("bob inbox = %+v", got)
	}
}
