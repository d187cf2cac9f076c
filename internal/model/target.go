package model

// TargetKind names the kind of entity a vote or comment attaches to.
// Modelled as a tagged variant rather than dynamic dispatch: the pair
// (Kind, ID) fully identifies the target row.
type TargetKind string

const (
	KindQuestion TargetKind = "question"
	KindAnswer   TargetKind = "answer"
)

// Target identifies a votable or commentable entity.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   string     `json:"id"`
}

// AnswerTarget returns the Target for an answer ID.
func AnswerTarget(id string) Target {
	return Target{Kind: KindAnswer, ID: id}
}

// QuestionTarget returns the Target for a question ID.
func QuestionTarget(id string) Target {
	return Target{Kind: KindQuestion, ID: id}
}
