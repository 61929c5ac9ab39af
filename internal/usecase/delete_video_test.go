package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDeleteVideoRemovesMediaDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "videos", "v1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "movie.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	repo := newFakeRepo(draftWithSource("v1"))
	uc := DeleteVideo{Repo: repo, Locator: &fakeLocator{root: root}}

	if err := uc.Execute(context.Background(), "v1"); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("media dir still present: %v", err)
	}
	if _, err := repo.Get(context.Background(), "v1"); err == nil {
		t.Fatal("record still present")
	}
}

func TestDeleteVideoMissing(t *testing.T) {
	uc := DeleteVideo{Repo: newFakeRepo(), Locator: &fakeLocator{root: t.TempDir()}}

	if err := uc.Execute(context.Background(), "ghost"); !errors.Is(err, ErrRepository) {
		t.Fatalf("Execute error = %v, want ErrRepository", err)
	}
}
