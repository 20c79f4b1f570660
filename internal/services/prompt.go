package services

import (
	"fmt"
	"strings"

	"github.com/eduvoice/eduvoice-backend/internal/types"
)

// Learning modes a client may request for a turn.
const (
	ModeTeaching   = "teaching"
	ModeDoubts     = "doubts"
	ModeAssessment = "assessment"
)

// PromptInput is everything the composer needs for one turn. The composer is
// a pure function of this struct: identical inputs produce byte-identical
// output.
type PromptInput struct {
	Student       *types.Student
	Chapter       *types.Textbook
	LearningMode  string
	Excerpt       string
	PageDirective string
	IsNewSession  bool
}

const personaRules = `You are "Akka", a warm, highly-knowledgeable AI teacher for Tamil Nadu State Board students. You are a MASTER of the curriculum provided in the textbooks.

PERSONALITY:
- Speak like a caring elder sister who is also an expert teacher
- Use VERY simple words a child (age 9-14) can understand but maintain academic accuracy
- Give examples from everyday Tamil Nadu life (idli, coconut tree, auto-rickshaw, paddy field, temple, kolam)
- Be encouraging: "Excellent!", "You are doing great!", "That is a smart question!"
- Never make the child feel bad for wrong answers — always gently correct

CRITICAL RULES (since response is read aloud):
- Keep responses SHORT: maximum 4-5 sentences per reply
- NEVER use bullet points or markdown — plain conversational sentences ONLY
- Do not greet the student again in the middle of a session
- If child speaks Tamil words or Tamil-English mix, respond naturally in the same mix`

// BuildSystemPrompt assembles the full instruction text for one turn:
// persona rules, the mode script, student memory, chapter grounding, and the
// page directive last. No side effects.
func BuildSystemPrompt(in PromptInput) string {
	var b strings.Builder

	b.WriteString(personaRules)
	b.WriteString("\n\nLEARNING MODE:\n")
	b.WriteString(modeScript(in.LearningMode))
	b.WriteString("\n\nSTUDENT MEMORY:\n")
	b.WriteString(studentMemoryBlock(in.Student))
	b.WriteString("\n\nCURRENT LESSON DATA (Use this as your source of truth):\n")
	b.WriteString(chapterBlock(in.Chapter))

	if in.IsNewSession {
		b.WriteString("\n\nThis is the start of a new session: greet the student warmly by name once, then begin.")
	}

	if in.Excerpt != "" {
		b.WriteString("\n\nBOOK TEXT (supplementary source material, may be truncated):\n")
		b.WriteString(in.Excerpt)
	}
	if in.PageDirective != "" {
		b.WriteString("\n\n")
		b.WriteString(in.PageDirective)
	}

	return b.String()
}

func modeScript(mode string) string {
	switch mode {
	case ModeTeaching:
		return `The student chose to learn concepts step by step.
Step 1: List ALL the Key Points of this lesson as subtopics, in order.
Step 2: Ask the student which subtopic they want to learn first.
Step 3: Explain the chosen subtopic using the chapter content and simple local analogies.
Step 4: After explaining, check understanding with ONE short question.
Then return to Step 2 for the remaining subtopics until all are covered.`
	case ModeDoubts:
		return `The student wants their doubts cleared.
First ask what specifically is confusing them in this lesson.
Answer using ONLY the chapter content and Key Points.
After answering, ask whether that cleared the doubt.`
	case ModeAssessment:
		return `The student is taking a practice test.
Ask EXACTLY ONE question at a time, strictly from the chapter content, and wait for the answer before continuing.
After 5 questions, tell the student their score out of 5 and name the subtopics they should revisit.`
	default:
		return `Assist the student warmly with whatever content is currently loaded. Answer their questions and encourage them to keep learning.`
	}
}

func studentMemoryBlock(student *types.Student) string {
	if student == nil {
		return "New student, first session."
	}
	classLevel := student.ClassLevel
	if classLevel == "" {
		classLevel = "not set"
	}
	weak := strings.Join([]string(student.WeakTopics), ", ")
	if weak == "" {
		weak = "none yet"
	}
	last := "first session"
	if student.LastSubject != "" {
		last = fmt.Sprintf("%s Ch %s", student.LastSubject, student.LastChapter)
	}
	return fmt.Sprintf("Student name: %s. Class: %s. Weak topics: %s. Last studied: %s.",
		student.Name, classLevel, weak, last)
}

func chapterBlock(chapter *types.Textbook) string {
	if chapter == nil {
		// Never fabricate a source: tell the model it has no chapter loaded.
		return "No specific chapter loaded yet. Answer general academic questions from your own knowledge and say so — do NOT invent textbook content."
	}
	vocab := make([]string, 0, len(chapter.Vocabulary))
	for _, v := range chapter.Vocabulary {
		vocab = append(vocab, fmt.Sprintf("%s = %s", v.Word, v.Meaning))
	}
	return fmt.Sprintf("Chapter Title: %q\nContent: %s\nKey Points: %s\nVocabulary: %s",
		chapter.Title,
		chapter.Content,
		strings.Join([]string(chapter.KeyPoints), "; "),
		strings.Join(vocab, "; "))
}
