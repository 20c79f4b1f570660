package types

// ConversationTurn is one learner/tutor exchange supplied by the caller with
// each chat request. Turns are never persisted; only the bounded recent
// window is forwarded to the model.
type ConversationTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

const (
	TurnRoleLearner = "learner"
	TurnRoleTutor   = "tutor"
)
