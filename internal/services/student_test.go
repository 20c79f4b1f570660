package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/eduvoice/eduvoice-backend/internal/apierr"
	"github.com/eduvoice/eduvoice-backend/internal/types"
)

func TestLogin_EmptyNameRejected(t *testing.T) {
	svc := NewStudentService(testLogger(t), newFakeStudentRepo())
	_, err := svc.Login(context.Background(), "  ", "6", "english")
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestLogin_ExistingStudentCaseInsensitive(t *testing.T) {
	existing := &types.Student{ID: uuid.New(), Name: "Kavya"}
	svc := NewStudentService(testLogger(t), newFakeStudentRepo(existing))

	result, err := svc.Login(context.Background(), "KAVYA", "6", "english")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsNew {
		t.Fatalf("expected returning student")
	}
	if result.Student.ID != existing.ID {
		t.Fatalf("expected the existing profile, got %s", result.Student.ID)
	}
}

func TestLogin_NewStudentDefaultsLanguage(t *testing.T) {
	repo := newFakeStudentRepo()
	svc := NewStudentService(testLogger(t), repo)

	result, err := svc.Login(context.Background(), "Arun", "7", "klingon")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsNew {
		t.Fatalf("expected new profile")
	}
	if result.Student.Language != types.LanguageEnglish {
		t.Fatalf("expected invalid language to default to english, got %q", result.Student.Language)
	}
	if result.Student.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
}

func TestUpdate_InvalidLanguageRejected(t *testing.T) {
	student := &types.Student{ID: uuid.New(), Name: "Kavya"}
	svc := NewStudentService(testLogger(t), newFakeStudentRepo(student))

	_, err := svc.Update(context.Background(), student.ID.String(), StudentUpdateInput{Language: "french"})
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	student := &types.Student{ID: uuid.New(), Name: "Kavya", ClassLevel: "6", Language: types.LanguageEnglish}
	svc := NewStudentService(testLogger(t), newFakeStudentRepo(student))

	updated, err := svc.Update(context.Background(), student.ID.String(), StudentUpdateInput{ClassLevel: "7"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ClassLevel != "7" || updated.Name != "Kavya" {
		t.Fatalf("expected only class level changed, got %+v", updated)
	}
}

func TestGet_UnknownOrMalformedID(t *testing.T) {
	svc := NewStudentService(testLogger(t), newFakeStudentRepo())
	for _, id := range []string{uuid.NewString(), "garbage"} {
		_, err := svc.Get(context.Background(), id)
		var ae *apierr.Error
		if !errors.As(err, &ae) || ae.Status != http.StatusNotFound {
			t.Fatalf("id %q: expected 404, got %v", id, err)
		}
	}
}

func TestProgress_RecentSessionsCapped(t *testing.T) {
	history := make([]types.SessionRecord, 8)
	for i := range history {
		history[i] = types.SessionRecord{Summary: string(rune('a' + i))}
	}
	student := &types.Student{
		ID:             uuid.New(),
		Name:           "Kavya",
		SessionHistory: datatypes.JSONSlice[types.SessionRecord](history),
		WeakTopics:     datatypes.JSONSlice[string]{"Fractions"},
	}
	svc := NewStudentService(testLogger(t), newFakeStudentRepo(student))

	summary, err := svc.Progress(context.Background(), student.ID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalSessions != 8 {
		t.Fatalf("expected 8 total sessions, got %d", summary.TotalSessions)
	}
	if len(summary.RecentSessions) != 5 {
		t.Fatalf("expected 5 recent sessions, got %d", len(summary.RecentSessions))
	}
	if summary.LastSession == nil || summary.LastSession.Summary != "h" {
		t.Fatalf("expected the newest session last, got %+v", summary.LastSession)
	}
}

func TestSaveNotes_RequiresPoints(t *testing.T) {
	student := &types.Student{ID: uuid.New(), Name: "Kavya"}
	svc := NewStudentService(testLogger(t), newFakeStudentRepo(student))

	_, err := svc.SaveNotes(context.Background(), student.ID.String(), "Plants", nil)
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestSaveNotes_DefaultsTopic(t *testing.T) {
	student := &types.Student{ID: uuid.New(), Name: "Kavya"}
	svc := NewStudentService(testLogger(t), newFakeStudentRepo(student))

	notes, err := svc.SaveNotes(context.Background(), student.ID.String(), "  ", []string{"roots absorb water"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notes) != 1 || notes[0].Topic != "GENERAL" {
		t.Fatalf("expected GENERAL topic default, got %+v", notes)
	}
}
