package services

import (
	"strings"

	"github.com/eduvoice/eduvoice-backend/internal/types"
)

// confusionKeywords flag a learner utterance as signalling a weak topic.
// The final entry is Tamil for "I don't understand".
var confusionKeywords = []string{
	"don't understand",
	"confused",
	"what is",
	"why",
	"how",
	"don't know",
	"புரியவில்லை",
}

// MessageSignalsConfusion reports whether the learner's phrasing matches the
// confusion-keyword heuristic (case-insensitive).
func MessageSignalsConfusion(message string) bool {
	lowered := strings.ToLower(message)
	for _, kw := range confusionKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// AppendWeakTopic appends topic unless already present and trims to the most
// recent max entries, oldest first out. Pure: the input slice is not mutated.
func AppendWeakTopic(topics []string, topic string, max int) []string {
	for _, t := range topics {
		if t == topic {
			out := make([]string, len(topics))
			copy(out, topics)
			return out
		}
	}
	out := make([]string, 0, len(topics)+1)
	out = append(out, topics...)
	out = append(out, topic)
	if max > 0 && len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}

// AppendSessionRecord appends rec and trims the history to the most recent
// max records, oldest first out. Pure: the input slice is not mutated.
func AppendSessionRecord(history []types.SessionRecord, rec types.SessionRecord, max int) []types.SessionRecord {
	out := make([]types.SessionRecord, 0, len(history)+1)
	out = append(out, history...)
	out = append(out, rec)
	if max > 0 && len(out) > max {
		out = out[len(out)-max:]
	}
	return out
}
