package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/eduvoice/eduvoice-backend/internal/apierr"
	"github.com/eduvoice/eduvoice-backend/internal/config"
	"github.com/eduvoice/eduvoice-backend/internal/logger"
	"github.com/eduvoice/eduvoice-backend/internal/repos"
	"github.com/eduvoice/eduvoice-backend/internal/types"
)

// User-facing wording for model-provider failures. Auth rejections get
// distinct wording so a misconfigured key is diagnosable from the client.
const (
	AuthApology    = "API key error. Please check your OpenRouter API key."
	GenericApology = "Akka is taking a short break. Please try again in a moment!"
)

type ChatInput struct {
	StudentID           string                   `json:"studentId"`
	Message             string                   `json:"message"`
	ClassLevel          string                   `json:"classLevel"`
	Subject             string                   `json:"subject"`
	ChapterNumber       int                      `json:"chapterNumber"`
	LearningMode        string                   `json:"learningMode"`
	ConversationHistory []types.ConversationTurn `json:"conversationHistory"`
	IsNewSession        bool                     `json:"isNewSession"`
}

type ChatResult struct {
	Response     string  `json:"response"`
	ChapterTitle *string `json:"chapterTitle"`
	StudentName  *string `json:"studentName"`
}

type EndSessionInput struct {
	StudentID    string `json:"studentId"`
	Subject      string `json:"subject"`
	Chapter      string `json:"chapter"`
	ChapterTitle string `json:"chapterTitle"`
	Summary      string `json:"summary"`
}

// TutorService runs one request/response cycle of the tutoring dialogue and
// finalizes sessions.
type TutorService interface {
	Chat(ctx context.Context, in ChatInput) (*ChatResult, error)
	EndSession(ctx context.Context, in EndSessionInput) (*types.Student, error)
}

type tutorService struct {
	log          *logger.Logger
	studentRepo  repos.StudentRepo
	textbookRepo repos.TextbookRepo
	bookTextRepo repos.BookTextRepo
	model        ModelClient
	cfg          config.TutorConfig
}

func NewTutorService(
	log *logger.Logger,
	studentRepo repos.StudentRepo,
	textbookRepo repos.TextbookRepo,
	bookTextRepo repos.BookTextRepo,
	model ModelClient,
	cfg config.TutorConfig,
) TutorService {
	return &tutorService{
		log:          log.With("service", "TutorService"),
		studentRepo:  studentRepo,
		textbookRepo: textbookRepo,
		bookTextRepo: bookTextRepo,
		model:        model,
		cfg:          cfg,
	}
}

// chapterSource tags which resolution branch picked the chapter, so the
// fallback chain is explicit and testable instead of a silent OR-cascade.
type chapterSource int

const (
	chapterNone chapterSource = iota
	chapterExplicit
	chapterResume
)

type chapterSelection struct {
	source        chapterSource
	classLevel    string
	subject       string
	chapterNumber int
}

// explicitSelection returns the caller's chapter choice when all three keys
// were supplied.
func explicitSelection(in ChatInput) (chapterSelection, bool) {
	if in.ClassLevel != "" && in.Subject != "" && in.ChapterNumber > 0 {
		return chapterSelection{
			source:        chapterExplicit,
			classLevel:    in.ClassLevel,
			subject:       strings.ToLower(in.Subject),
			chapterNumber: in.ChapterNumber,
		}, true
	}
	return chapterSelection{source: chapterNone}, false
}

// resumeSelection returns the student's recorded resume position, if whole.
func resumeSelection(student *types.Student) (chapterSelection, bool) {
	if student == nil || student.LastSubject == "" || student.LastChapter == "" || student.ClassLevel == "" {
		return chapterSelection{source: chapterNone}, false
	}
	num, err := strconv.Atoi(strings.TrimSpace(student.LastChapter))
	if err != nil || num <= 0 {
		return chapterSelection{source: chapterNone}, false
	}
	return chapterSelection{
		source:        chapterResume,
		classLevel:    student.ClassLevel,
		subject:       strings.ToLower(student.LastSubject),
		chapterNumber: num,
	}, true
}

func (ts *tutorService) Chat(ctx context.Context, in ChatInput) (*ChatResult, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, apierr.New(http.StatusBadRequest, "message_required", errors.New("Message is required"))
	}

	student, chapter, err := ts.loadStudentAndChapter(ctx, in)
	if err != nil {
		return nil, err
	}

	// Supplementary grounding text, defensively length-bounded, with page
	// navigation applied when the learner asked for a specific page.
	var excerpt, directive string
	if chapter != nil {
		rawText, btErr := ts.bookTextRepo.GetRawText(ctx, nil, chapter.ClassLevel, chapter.Subject)
		if btErr != nil {
			ts.log.Warn("Book text lookup failed, continuing without excerpt", "error", btErr)
		} else if rawText != "" {
			excerpt, directive = ResolveExcerpt(rawText, message, ExcerptBudgets{
				Default: ts.cfg.ExcerptBudget,
				Window:  ts.cfg.PageWindow,
				Page:    ts.cfg.PageExcerptBudget,
			})
		}
	}

	systemPrompt := BuildSystemPrompt(PromptInput{
		Student:       student,
		Chapter:       chapter,
		LearningMode:  in.LearningMode,
		Excerpt:       excerpt,
		PageDirective: directive,
		IsNewSession:  in.IsNewSession,
	})

	history := in.ConversationHistory
	if len(history) > ts.cfg.HistoryWindow {
		history = history[len(history)-ts.cfg.HistoryWindow:]
	}

	reply, err := ts.model.Chat(ctx, systemPrompt, history, message)
	if err != nil {
		ts.log.Error("Model call failed", "error", err)
		apology, code := GenericApology, "model_unavailable"
		if errors.Is(err, ErrAuth) {
			apology, code = AuthApology, "model_auth"
		}
		return nil, apierr.WithDetails(http.StatusInternalServerError, code, errors.New(apology), err.Error())
	}
	reply = StripEmoji(reply)

	if student != nil {
		if chapter != nil && MessageSignalsConfusion(message) {
			trimmed := AppendWeakTopic([]string(student.WeakTopics), chapter.Title, ts.cfg.WeakTopicLimit)
			student.WeakTopics = datatypes.JSONSlice[string](trimmed)
		}
		if in.ClassLevel != "" {
			student.ClassLevel = in.ClassLevel
		}
		// Resume pointers are written only at session end, not here.
		student.LastActiveAt = time.Now().UTC()
		if err := ts.studentRepo.Save(ctx, nil, student); err != nil {
			ts.log.Error("Failed to persist student memory", "student_id", student.ID.String(), "error", err)
			return nil, apierr.New(http.StatusInternalServerError, "persistence", err)
		}
	}

	result := &ChatResult{Response: reply}
	if chapter != nil {
		title := chapter.Title
		result.ChapterTitle = &title
	}
	if student != nil {
		name := student.Name
		result.StudentName = &name
	}
	return result, nil
}

// loadStudentAndChapter resolves the profile and the chapter for this turn.
// With an explicit chapter selection both loads are independent and run
// concurrently; otherwise the resume fallback needs the profile first.
func (ts *tutorService) loadStudentAndChapter(ctx context.Context, in ChatInput) (*types.Student, *types.Textbook, error) {
	var studentID uuid.UUID
	if raw := strings.TrimSpace(in.StudentID); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			ts.log.Warn("Ignoring malformed studentId, proceeding anonymously", "error", err)
		} else {
			studentID = parsed
		}
	}

	var student *types.Student
	var chapter *types.Textbook

	if sel, ok := explicitSelection(in); ok {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if studentID == uuid.Nil {
				return nil
			}
			s, err := ts.studentRepo.GetByID(gctx, nil, studentID)
			if err != nil {
				return fmt.Errorf("load student: %w", err)
			}
			student = s
			return nil
		})
		g.Go(func() error {
			c, err := ts.textbookRepo.GetChapter(gctx, nil, sel.classLevel, sel.subject, sel.chapterNumber)
			if err != nil {
				return fmt.Errorf("load chapter: %w", err)
			}
			chapter = c
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, nil, apierr.New(http.StatusInternalServerError, "persistence", err)
		}
		return student, chapter, nil
	}

	if studentID != uuid.Nil {
		s, err := ts.studentRepo.GetByID(ctx, nil, studentID)
		if err != nil {
			return nil, nil, apierr.New(http.StatusInternalServerError, "persistence", err)
		}
		student = s
	}
	if sel, ok := resumeSelection(student); ok {
		c, err := ts.textbookRepo.GetChapter(ctx, nil, sel.classLevel, sel.subject, sel.chapterNumber)
		if err != nil {
			return nil, nil, apierr.New(http.StatusInternalServerError, "persistence", err)
		}
		chapter = c
	}
	return student, chapter, nil
}

func (ts *tutorService) EndSession(ctx context.Context, in EndSessionInput) (*types.Student, error) {
	raw := strings.TrimSpace(in.StudentID)
	if raw == "" {
		return nil, apierr.New(http.StatusBadRequest, "student_id_required", errors.New("studentId is required"))
	}
	studentID, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierr.New(http.StatusNotFound, "student_not_found", errors.New("Student not found"))
	}
	student, err := ts.studentRepo.GetByID(ctx, nil, studentID)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "persistence", err)
	}
	if student == nil {
		return nil, apierr.New(http.StatusNotFound, "student_not_found", errors.New("Student not found"))
	}

	chapterLabel := in.ChapterTitle
	if chapterLabel == "" {
		chapterLabel = in.Chapter
	}
	summary := strings.TrimSpace(in.Summary)
	if summary == "" {
		summary = "Session completed"
	}

	record := types.SessionRecord{
		Date:    time.Now().UTC(),
		Subject: in.Subject,
		Chapter: chapterLabel,
		Summary: summary,
	}
	trimmed := AppendSessionRecord([]types.SessionRecord(student.SessionHistory), record, ts.cfg.SessionHistoryLimit)
	student.SessionHistory = datatypes.JSONSlice[types.SessionRecord](trimmed)

	// Authoritative write of the resume position.
	if in.Subject != "" {
		student.LastSubject = in.Subject
	}
	if in.Chapter != "" {
		student.LastChapter = in.Chapter
	}
	student.LastActiveAt = record.Date

	if err := ts.studentRepo.Save(ctx, nil, student); err != nil {
		return nil, apierr.New(http.StatusInternalServerError, "persistence", err)
	}
	return student, nil
}
