package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/eduvoice/eduvoice-backend/internal/apierr"
	"github.com/eduvoice/eduvoice-backend/internal/logger"
	"github.com/eduvoice/eduvoice-backend/internal/repos"
	"github.com/eduvoice/eduvoice-backend/internal/types"
)

type LoginResult struct {
	Student *types.Student
	IsNew   bool
}

type StudentUpdateInput struct {
	Name           string   `json:"name"`
	ClassLevel     string   `json:"classLevel"`
	Language       string   `json:"language"`
	WeakTopics     []string `json:"weakTopics"`
	MasteredTopics []string `json:"masteredTopics"`
}

// ProgressSummary is the dashboard projection of a student profile.
type ProgressSummary struct {
	Name           string                `json:"name"`
	ClassLevel     string                `json:"classLevel"`
	TotalSessions  int                   `json:"totalSessions"`
	WeakTopics     []string              `json:"weakTopics"`
	MasteredTopics []string              `json:"masteredTopics"`
	LastSession    *types.SessionRecord  `json:"lastSession"`
	RecentSessions []types.SessionRecord `json:"recentSessions"`
}

type StudentService interface {
	// Login finds an existing profile by name (case-insensitive) or creates
	// a new one with a fresh id.
	Login(ctx context.Context, name, classLevel, language string) (*LoginResult, error)
	Get(ctx context.Context, id string) (*types.Student, error)
	Update(ctx context.Context, id string, in StudentUpdateInput) (*types.Student, error)
	Progress(ctx context.Context, id string) (*ProgressSummary, error)
	SaveNotes(ctx context.Context, id, topic string, points []string) ([]types.NoteRecord, error)
}

type studentService struct {
	log         *logger.Logger
	studentRepo repos.StudentRepo
}

func NewStudentService(log *logger.Logger, studentRepo repos.StudentRepo) StudentService {
	return &studentService{
		log:         log.With("service", "StudentService"),
		studentRepo: studentRepo,
	}
}

func (ss *studentService) Login(ctx context.Context, name, classLevel, language string) (*LoginResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apierr.New(http.StatusBadRequest, "name_required", errors.New("Name is required"))
	}

	existing, err := ss.studentRepo.FindByName(ctx, nil, name)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "persistence", err)
	}
	if existing != nil {
		return &LoginResult{Student: existing, IsNew: false}, nil
	}

	if language == "" || !types.ValidLanguage(language) {
		language = types.LanguageEnglish
	}
	now := time.Now().UTC()
	student := &types.Student{
		ID:           uuid.New(),
		Name:         name,
		ClassLevel:   classLevel,
		Language:     language,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	created, err := ss.studentRepo.Create(ctx, nil, student)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "persistence", err)
	}
	return &LoginResult{Student: created, IsNew: true}, nil
}

func (ss *studentService) Get(ctx context.Context, id string) (*types.Student, error) {
	return ss.load(ctx, id)
}

func (ss *studentService) Update(ctx context.Context, id string, in StudentUpdateInput) (*types.Student, error) {
	student, err := ss.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		student.Name = name
	}
	if in.ClassLevel != "" {
		student.ClassLevel = in.ClassLevel
	}
	if in.Language != "" {
		if !types.ValidLanguage(in.Language) {
			return nil, apierr.New(http.StatusBadRequest, "invalid_language", errors.New("language must be english or tamil"))
		}
		student.Language = in.Language
	}
	if in.WeakTopics != nil {
		student.WeakTopics = datatypes.JSONSlice[string](in.WeakTopics)
	}
	if in.MasteredTopics != nil {
		student.MasteredTopics = datatypes.JSONSlice[string](in.MasteredTopics)
	}
	student.LastActiveAt = time.Now().UTC()

	if err := ss.studentRepo.Save(ctx, nil, student); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "persistence", err)
	}
	return student, nil
}

func (ss *studentService) Progress(ctx context.Context, id string) (*ProgressSummary, error) {
	student, err := ss.load(ctx, id)
	if err != nil {
		return nil, err
	}

	history := []types.SessionRecord(student.SessionHistory)
	summary := &ProgressSummary{
		Name:           student.Name,
		ClassLevel:     student.ClassLevel,
		TotalSessions:  len(history),
		WeakTopics:     []string(student.WeakTopics),
		MasteredTopics: []string(student.MasteredTopics),
		RecentSessions: history,
	}
	if len(history) > 0 {
		last := history[len(history)-1]
		summary.LastSession = &last
	}
	if len(history) > 5 {
		summary.RecentSessions = history[len(history)-5:]
	}
	return summary, nil
}

func (ss *studentService) SaveNotes(ctx context.Context, id, topic string, points []string) ([]types.NoteRecord, error) {
	if len(points) == 0 {
		return nil, apierr.New(http.StatusBadRequest, "points_required", errors.New("Points array is required"))
	}
	student, err := ss.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(topic) == "" {
		topic = "GENERAL"
	}
	notes := append([]types.NoteRecord(student.Notes), types.NoteRecord{
		Topic:   topic,
		Points:  points,
		SavedAt: time.Now().UTC(),
	})
	student.Notes = datatypes.JSONSlice[types.NoteRecord](notes)

	if err := ss.studentRepo.Save(ctx, nil, student); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "persistence", err)
	}
	return notes, nil
}

func (ss *studentService) load(ctx context.Context, id string) (*types.Student, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apierr.New(http.StatusNotFound, "student_not_found", errors.New("Student not found"))
	}
	student, err := ss.studentRepo.GetByID(ctx, nil, parsed)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "persistence", err)
	}
	if student == nil {
		return nil, apierr.New(http.StatusNotFound, "student_not_found", errors.New("Student not found"))
	}
	return student, nil
}
