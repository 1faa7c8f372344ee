package repositories

import (
	"errors"
	"testing"

	"saylo/internal/models"
	"saylo/internal/testhelpers"
)

func TestResumeRepository(t *testing.T) {
	repo := &ResumeRepository{DB: testhelpers.SetupTestDB(t)}

	first := &models.Resume{UserID: 1, FileName: "cv-old.pdf"}
	second := &models.Resume{UserID: 1, FileName: "cv.pdf", ParsedData: &models.ParsedResumeData{Skills: []string{"Go", "React"}}}
	other := &models.Resume{UserID: 2, FileName: "theirs.pdf"}
	for _, r := range []*models.Resume{first, second, other} {
		if err := repo.Create(r); err != nil {
			t.Fatalf("failed to seed resume: %v", err)
		}
	}

	list, err := repo.ListByUser(1)
	if err != nil {
		t.Fatalf("ListByUser returned error: %v", err)
	}
	if len(list) != 2 || list[0].FileName != "cv.pdf" {
		t.Fatalf("expected 2 resumes newest first, got %+v", list)
	}

	got, err := repo.GetForUser(second.ID, 1)
	if err != nil {
		t.Fatalf("GetForUser returned error: %v", err)
	}
	if got.ParsedData == nil || len(got.ParsedData.Skills) != 2 {
		t.Fatalf("expected parsed data to round-trip, got %+v", got.ParsedData)
	}

	if _, err := repo.GetForUser(other.ID, 1); !errors.Is(err, ErrResumeNotFound) {
		t.Fatalf("expected ErrResumeNotFound for another user's resume, got %v", err)
	}

	latest, err := repo.LatestForUser(1)
	if err != nil || latest.ID != second.ID {
		t.Fatalf("expected latest resume %d, got %+v (%v)", second.ID, latest, err)
	}
	if _, err := repo.LatestForUser(3); !errors.Is(err, ErrResumeNotFound) {
		t.Fatalf("expected ErrResumeNotFound, got %v", err)
	}
}
