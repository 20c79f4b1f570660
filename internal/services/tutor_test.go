package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/eduvoice/eduvoice-backend/internal/apierr"
	"github.com/eduvoice/eduvoice-backend/internal/config"
	"github.com/eduvoice/eduvoice-backend/internal/logger"
	"github.com/eduvoice/eduvoice-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("production")
	if err != nil {
		t.Fatalf("logger init: %v", err)
	}
	return log
}

func testTutorConfig() config.TutorConfig {
	return config.TutorConfig{
		HistoryWindow:       10,
		ExcerptBudget:       1500,
		PageWindow:          4000,
		PageExcerptBudget:   2000,
		WeakTopicLimit:      5,
		SessionHistoryLimit: 20,
	}
}

type fakeStudentRepo struct {
	students map[uuid.UUID]*types.Student
	saves    int
}

func newFakeStudentRepo(students ...*types.Student) *fakeStudentRepo {
	m := make(map[uuid.UUID]*types.Student)
	for _, s := range students {
		m[s.ID] = s
	}
	return &fakeStudentRepo{students: m}
}

func (f *fakeStudentRepo) Create(ctx context.Context, tx *gorm.DB, student *types.Student) (*types.Student, error) {
	f.students[student.ID] = student
	return student, nil
}

func (f *fakeStudentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Student, error) {
	return f.students[id], nil
}

func (f *fakeStudentRepo) FindByName(ctx context.Context, tx *gorm.DB, name string) (*types.Student, error) {
	for _, s := range f.students {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeStudentRepo) Save(ctx context.Context, tx *gorm.DB, student *types.Student) error {
	f.saves++
	f.students[student.ID] = student
	return nil
}

type fakeTextbookRepo struct {
	chapters map[string]*types.Textbook
	classes  []string
	subjects []string
	listed   []types.ChapterSummary
}

func chapterKey(classLevel, subject string, chapterNumber int) string {
	return fmt.Sprintf("%s|%s|%d", classLevel, subject, chapterNumber)
}

func newFakeTextbookRepo(chapters ...*types.Textbook) *fakeTextbookRepo {
	m := make(map[string]*types.Textbook)
	for _, c := range chapters {
		m[chapterKey(c.ClassLevel, c.Subject, c.ChapterNumber)] = c
	}
	return &fakeTextbookRepo{chapters: m}
}

func (f *fakeTextbookRepo) GetChapter(ctx context.Context, tx *gorm.DB, classLevel, subject string, chapterNumber int) (*types.Textbook, error) {
	return f.chapters[chapterKey(classLevel, subject, chapterNumber)], nil
}

func (f *fakeTextbookRepo) ListClasses(ctx context.Context, tx *gorm.DB) ([]string, error) {
	return f.classes, nil
}

func (f *fakeTextbookRepo) ListSubjects(ctx context.Context, tx *gorm.DB, classLevel string) ([]string, error) {
	return f.subjects, nil
}

func (f *fakeTextbookRepo) ListChapters(ctx context.Context, tx *gorm.DB, classLevel, subject string) ([]types.ChapterSummary, error) {
	return f.listed, nil
}

type fakeBookTextRepo struct {
	text string
	err  error
}

func (f *fakeBookTextRepo) GetRawText(ctx context.Context, tx *gorm.DB, classLevel, subject string) (string, error) {
	return f.text, f.err
}

type fakeModel struct {
	reply       string
	err         error
	lastPrompt  string
	lastHistory []types.ConversationTurn
}

func (f *fakeModel) Chat(ctx context.Context, systemPrompt string, history []types.ConversationTurn, userMessage string) (string, error) {
	f.lastPrompt = systemPrompt
	f.lastHistory = history
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func scienceChapter() *types.Textbook {
	return &types.Textbook{
		ClassLevel:    "6",
		Subject:       "science",
		ChapterNumber: 2,
		Title:         "Plants Around Us",
		Content:       "Plants make their own food.",
		KeyPoints:     datatypes.JSONSlice[string]{"Photosynthesis"},
	}
}

func newTutor(t *testing.T, students *fakeStudentRepo, books *fakeTextbookRepo, raw *fakeBookTextRepo, model *fakeModel) TutorService {
	t.Helper()
	return NewTutorService(testLogger(t), students, books, raw, model, testTutorConfig())
}

func TestChat_EmptyMessageRejected(t *testing.T) {
	svc := newTutor(t, newFakeStudentRepo(), newFakeTextbookRepo(), &fakeBookTextRepo{}, &fakeModel{reply: "hi"})
	_, err := svc.Chat(context.Background(), ChatInput{Message: "   "})
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestChat_ExplicitChapterSelection(t *testing.T) {
	student := &types.Student{ID: uuid.New(), Name: "Kavya", ClassLevel: "6"}
	svc := newTutor(t, newFakeStudentRepo(student), newFakeTextbookRepo(scienceChapter()), &fakeBookTextRepo{}, &fakeModel{reply: "hello"})

	result, err := svc.Chat(context.Background(), ChatInput{
		StudentID:     student.ID.String(),
		Message:       "teach me",
		ClassLevel:    "6",
		Subject:       "Science",
		ChapterNumber: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ChapterTitle == nil || *result.ChapterTitle != "Plants Around Us" {
		t.Fatalf("expected chapter title, got %v", result.ChapterTitle)
	}
	if result.StudentName == nil || *result.StudentName != "Kavya" {
		t.Fatalf("expected student name, got %v", result.StudentName)
	}
}

func TestChat_NoChapterYieldsNilTitle(t *testing.T) {
	model := &fakeModel{reply: "sure"}
	svc := newTutor(t, newFakeStudentRepo(), newFakeTextbookRepo(), &fakeBookTextRepo{}, model)

	result, err := svc.Chat(context.Background(), ChatInput{Message: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ChapterTitle != nil {
		t.Fatalf("expected nil chapter title, got %q", *result.ChapterTitle)
	}
	if !strings.Contains(model.lastPrompt, "No specific chapter loaded yet.") {
		t.Fatalf("expected no-chapter placeholder in prompt")
	}
}

func TestChat_ResumeFallback(t *testing.T) {
	student := &types.Student{
		ID:          uuid.New(),
		Name:        "Arun",
		ClassLevel:  "6",
		LastSubject: "Science",
		LastChapter: "2",
	}
	svc := newTutor(t, newFakeStudentRepo(student), newFakeTextbookRepo(scienceChapter()), &fakeBookTextRepo{}, &fakeModel{reply: "ok"})

	result, err := svc.Chat(context.Background(), ChatInput{
		StudentID: student.ID.String(),
		Message:   "let's continue",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ChapterTitle == nil || *result.ChapterTitle != "Plants Around Us" {
		t.Fatalf("expected resume to load last chapter, got %v", result.ChapterTitle)
	}
}

func TestChat_MalformedStudentIDProceedsAnonymously(t *testing.T) {
	svc := newTutor(t, newFakeStudentRepo(), newFakeTextbookRepo(), &fakeBookTextRepo{}, &fakeModel{reply: "ok"})
	result, err := svc.Chat(context.Background(), ChatInput{StudentID: "not-a-uuid", Message: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StudentName != nil {
		t.Fatalf("expected anonymous turn, got student %q", *result.StudentName)
	}
}

func TestChat_AuthFailureWording(t *testing.T) {
	model := &fakeModel{err: fmt.Errorf("%w: http 401", ErrAuth)}
	svc := newTutor(t, newFakeStudentRepo(), newFakeTextbookRepo(), &fakeBookTextRepo{}, model)

	_, err := svc.Chat(context.Background(), ChatInput{Message: "hi"})
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected apierr, got %v", err)
	}
	if ae.Status != http.StatusInternalServerError || ae.Err.Error() != AuthApology {
		t.Fatalf("expected auth apology with 500, got %d %q", ae.Status, ae.Err.Error())
	}
	if ae.Details == "" {
		t.Fatalf("expected underlying cause in details")
	}
}

func TestChat_GenericFailureWording(t *testing.T) {
	model := &fakeModel{err: errors.New("connection refused")}
	svc := newTutor(t, newFakeStudentRepo(), newFakeTextbookRepo(), &fakeBookTextRepo{}, model)

	_, err := svc.Chat(context.Background(), ChatInput{Message: "hi"})
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected apierr, got %v", err)
	}
	if ae.Err.Error() != GenericApology {
		t.Fatalf("expected generic apology, got %q", ae.Err.Error())
	}
}

func TestChat_ConfusionAppendsWeakTopic(t *testing.T) {
	student := &types.Student{ID: uuid.New(), Name: "Kavya", ClassLevel: "6"}
	repo := newFakeStudentRepo(student)
	svc := newTutor(t, repo, newFakeTextbookRepo(scienceChapter()), &fakeBookTextRepo{}, &fakeModel{reply: "let me explain"})

	_, err := svc.Chat(context.Background(), ChatInput{
		StudentID:     student.ID.String(),
		Message:       "I don't understand this at all",
		ClassLevel:    "6",
		Subject:       "science",
		ChapterNumber: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := repo.students[student.ID]
	if len(saved.WeakTopics) != 1 || saved.WeakTopics[0] != "Plants Around Us" {
		t.Fatalf("expected chapter title recorded as weak topic, got %v", saved.WeakTopics)
	}
}

func TestChat_WeakTopicsBounded(t *testing.T) {
	student := &types.Student{
		ID:         uuid.New(),
		Name:       "Kavya",
		ClassLevel: "6",
		WeakTopics: datatypes.JSONSlice[string]{"t1", "t2", "t3", "t4", "t5"},
	}
	repo := newFakeStudentRepo(student)
	svc := newTutor(t, repo, newFakeTextbookRepo(scienceChapter()), &fakeBookTextRepo{}, &fakeModel{reply: "ok"})

	_, err := svc.Chat(context.Background(), ChatInput{
		StudentID:     student.ID.String(),
		Message:       "I am confused",
		ClassLevel:    "6",
		Subject:       "science",
		ChapterNumber: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := repo.students[student.ID]
	if len(saved.WeakTopics) != 5 {
		t.Fatalf("expected weak topics capped at 5, got %d", len(saved.WeakTopics))
	}
	if saved.WeakTopics[4] != "Plants Around Us" || saved.WeakTopics[0] != "t2" {
		t.Fatalf("expected FIFO trim, got %v", saved.WeakTopics)
	}
}

func TestChat_HistoryWindowed(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	svc := newTutor(t, newFakeStudentRepo(), newFakeTextbookRepo(), &fakeBookTextRepo{}, model)

	history := make([]types.ConversationTurn, 15)
	for i := range history {
		history[i] = types.ConversationTurn{Role: types.TurnRoleLearner, Text: fmt.Sprintf("turn %d", i)}
	}
	_, err := svc.Chat(context.Background(), ChatInput{Message: "hi", ConversationHistory: history})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(model.lastHistory) != 10 {
		t.Fatalf("expected history windowed to 10, got %d", len(model.lastHistory))
	}
	if model.lastHistory[0].Text != "turn 5" {
		t.Fatalf("expected the most recent turns kept, got %q first", model.lastHistory[0].Text)
	}
}

func TestChat_ReplyEmojiStripped(t *testing.T) {
	svc := newTutor(t, newFakeStudentRepo(), newFakeTextbookRepo(), &fakeBookTextRepo{}, &fakeModel{reply: "Great job! 😀🌟"})
	result, err := svc.Chat(context.Background(), ChatInput{Message: "hi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.ContainsRune(result.Response, '😀') || strings.ContainsRune(result.Response, '🌟') {
		t.Fatalf("expected emoji stripped, got %q", result.Response)
	}
}

func TestChat_PageRequestFocusesPrompt(t *testing.T) {
	raw := "intro\n12\npage twelve content about roots and stems"
	model := &fakeModel{reply: "ok"}
	svc := newTutor(t, newFakeStudentRepo(), newFakeTextbookRepo(scienceChapter()), &fakeBookTextRepo{text: raw}, model)

	_, err := svc.Chat(context.Background(), ChatInput{
		Message:       "go to page 12",
		ClassLevel:    "6",
		Subject:       "science",
		ChapterNumber: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(model.lastPrompt, "page twelve content") {
		t.Fatalf("expected prompt to carry the page window")
	}
	if !strings.HasSuffix(model.lastPrompt, "Focus your answer on that part.") {
		t.Fatalf("expected focus directive last in prompt")
	}
}

func TestChat_ResumePointersNotWrittenMidTurn(t *testing.T) {
	student := &types.Student{
		ID:          uuid.New(),
		Name:        "Kavya",
		ClassLevel:  "6",
		LastSubject: "maths",
		LastChapter: "9",
	}
	repo := newFakeStudentRepo(student)
	svc := newTutor(t, repo, newFakeTextbookRepo(scienceChapter()), &fakeBookTextRepo{}, &fakeModel{reply: "ok"})

	_, err := svc.Chat(context.Background(), ChatInput{
		StudentID:     student.ID.String(),
		Message:       "teach science",
		ClassLevel:    "6",
		Subject:       "science",
		ChapterNumber: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := repo.students[student.ID]
	if saved.LastSubject != "maths" || saved.LastChapter != "9" {
		t.Fatalf("resume position must only change at session end, got %s/%s", saved.LastSubject, saved.LastChapter)
	}
}

func TestEndSession_WritesResumeAndHistory(t *testing.T) {
	student := &types.Student{ID: uuid.New(), Name: "Kavya", ClassLevel: "6"}
	repo := newFakeStudentRepo(student)
	svc := newTutor(t, repo, newFakeTextbookRepo(), &fakeBookTextRepo{}, &fakeModel{})

	updated, err := svc.EndSession(context.Background(), EndSessionInput{
		StudentID:    student.ID.String(),
		Subject:      "science",
		Chapter:      "2",
		ChapterTitle: "Plants Around Us",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.LastSubject != "science" || updated.LastChapter != "2" {
		t.Fatalf("expected resume pointers written, got %s/%s", updated.LastSubject, updated.LastChapter)
	}
	if len(updated.SessionHistory) != 1 {
		t.Fatalf("expected one session record, got %d", len(updated.SessionHistory))
	}
	rec := updated.SessionHistory[0]
	if rec.Chapter != "Plants Around Us" {
		t.Fatalf("expected chapter title preferred for the record label, got %q", rec.Chapter)
	}
	if rec.Summary != "Session completed" {
		t.Fatalf("expected default summary, got %q", rec.Summary)
	}
}

func TestEndSession_HistoryBounded(t *testing.T) {
	history := make([]types.SessionRecord, 20)
	for i := range history {
		history[i] = types.SessionRecord{Summary: "old"}
	}
	student := &types.Student{
		ID:             uuid.New(),
		Name:           "Kavya",
		SessionHistory: datatypes.JSONSlice[types.SessionRecord](history),
	}
	repo := newFakeStudentRepo(student)
	svc := newTutor(t, repo, newFakeTextbookRepo(), &fakeBookTextRepo{}, &fakeModel{})

	updated, err := svc.EndSession(context.Background(), EndSessionInput{
		StudentID: student.ID.String(),
		Summary:   "learned plants",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updated.SessionHistory) != 20 {
		t.Fatalf("expected history capped at 20, got %d", len(updated.SessionHistory))
	}
	if updated.SessionHistory[19].Summary != "learned plants" {
		t.Fatalf("expected newest record last")
	}
}

func TestEndSession_UnknownStudent(t *testing.T) {
	svc := newTutor(t, newFakeStudentRepo(), newFakeTextbookRepo(), &fakeBookTextRepo{}, &fakeModel{})

	for _, id := range []string{uuid.NewString(), "garbage"} {
		_, err := svc.EndSession(context.Background(), EndSessionInput{StudentID: id})
		var ae *apierr.Error
		if !errors.As(err, &ae) || ae.Status != http.StatusNotFound {
			t.Fatalf("id %q: expected 404, got %v", id, err)
		}
	}
}
