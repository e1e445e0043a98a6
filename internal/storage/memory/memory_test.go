package memorystorage

import (
	"testing"

	"github.com/pamana/markers/internal/model"
)

func TestStore_StatusRoundTrip(t *testing.T) {
	s := New()

	_, ok, err := s.Load("Q1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected absent status for untouched record")
	}

	want := model.Status{Visited: true, Bookmarked: false}
	if err := s.Save("Q1", want); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := s.Load("Q1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected stored status")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestStore_PreferenceRoundTrip(t *testing.T) {
	s := New()

	if err := s.SavePreference("bookmarked-filter", "yes"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok, _ := s.LoadPreference("bookmarked-filter")
	if !ok || got != "yes" {
		t.Errorf("got (%q, %v), want (\"yes\", true)", got, ok)
	}

	if err := s.DeletePreference("bookmarked-filter"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, ok, _ = s.LoadPreference("bookmarked-filter")
	if ok {
		t.Error("expected preference to be deleted")
	}
}
