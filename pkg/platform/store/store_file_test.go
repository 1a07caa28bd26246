package store

import (
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func testStore(t *testing.T) *FileUserStore {
	t.Helper()
	return NewFileUserStore(filepath.Join(t.TempDir(), "data", "data.json"))
}

func TestFileUserStore_LazyCreate(t *testing.T) {
	s := testStore(t)

	users, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("expected empty store, got %d users", len(users))
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("backing file was not created: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected empty-array file, got %q", data)
	}
}

func TestFileUserStore_RoundTrip(t *testing.T) {
	s := testStore(t)

	users := []User{
		{Name: "Ada", Surname: "Lovelace", Username: "ada", Email: "ada@x.com", Password: "h1", Jobs: []Job{
			{Title: "Engine", Description: "analytical", EndDate: "2026-01-01"},
		}},
		{Name: "Alan", Surname: "Turing", Username: "alan", Email: "alan@x.com", Password: "h2", Jobs: []Job{}},
	}

	if err := s.Save(users); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(users, loaded) {
		t.Errorf("round trip mismatch:\nsaved  %+v\nloaded %+v", users, loaded)
	}

	// save(load()) must be a content no-op
	if err := s.Save(loaded); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	again, err := s.Load()
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, again) {
		t.Errorf("save(load()) changed content")
	}
}

func TestFileUserStore_OrderPreserved(t *testing.T) {
	s := testStore(t)

	var users []User
	names := []string{"c", "a", "b", "z", "m"}
	for _, n := range names {
		users = append(users, User{Username: n, Jobs: []Job{}})
	}
	if err := s.Save(users); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for i, n := range names {
		if loaded[i].Username != n {
			t.Errorf("position %d: got %q, want %q", i, loaded[i].Username, n)
		}
	}
}

func TestFileUserStore_InvalidJSON(t *testing.T) {
	s := testStore(t)

	if err := os.MkdirAll(filepath.Dir(s.Path()), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Load(); err == nil {
		t.Error("expected error loading corrupt file, got nil")
	}
}

func TestFileUserStore_UpdateAbortsOnError(t *testing.T) {
	s := testStore(t)

	if err := s.Save([]User{{Username: "ada", Jobs: []Job{}}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	err := s.Update(func(users []User) ([]User, error) {
		return nil, ErrUserNotFound
	})
	if err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	users, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(users) != 1 || users[0].Username != "ada" {
		t.Errorf("failed update modified the store: %+v", users)
	}
}

func TestFileUserStore_ConcurrentUpdates(t *testing.T) {
	s := testStore(t)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			err := s.Update(func(users []User) ([]User, error) {
				return append(users, User{Username: string(rune('a' + i)), Jobs: []Job{}}), nil
			})
			if err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	users, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(users) != n {
		t.Errorf("lost updates: got %d users, want %d", len(users), n)
	}
}
