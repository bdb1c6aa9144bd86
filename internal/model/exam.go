package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultExamDuration is the exam length in minutes when none is given.
const DefaultExamDuration = 40

// ExamQuestion is a question snapshot embedded in an exam.
// QuestionID links back to the stored question when the snapshot came from one.
type ExamQuestion struct {
	ID            string       `json:"id"`
	QuestionID    *uuid.UUID   `json:"question_id,omitempty"`
	Text          string       `json:"text"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	Type          QuestionType `json:"type"`
	Points        int          `json:"points"`
}

// SubmissionAnswer is one graded answer.
type SubmissionAnswer struct {
	QuestionIndex int    `json:"question_index"`
	Answer        string `json:"answer"`
	IsCorrect     bool   `json:"is_correct"`
	Points        int    `json:"points"`
}

// Submission is a student's graded attempt. Duration is in seconds.
type Submission struct {
	UserID      uuid.UUID          `json:"user_id"`
	SubmittedAt time.Time          `json:"submitted_at"`
	Answers     []SubmissionAnswer `json:"answers"`
	TotalScore  int                `json:"total_score"`
	MaxScore    int                `json:"max_score"`
	Duration    int                `json:"duration"`
}

// Exam is an ordered collection of question snapshots. Duration is in minutes.
type Exam struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Level       Level          `json:"level"`
	Subject     string         `json:"subject"`
	Questions   []ExamQuestion `json:"questions"`
	UserID      uuid.UUID      `json:"user_id"`
	Duration    int            `json:"duration"`
	IsPublic    bool           `json:"is_public"`
	AssignedTo  []uuid.UUID    `json:"assigned_to"`
	Submissions []Submission   `json:"submissions"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// IsAssignedTo reports whether userID appears in the exam's assignee list.
func (e *Exam) IsAssignedTo(userID uuid.UUID) bool {
	for _, id := range e.AssignedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// HasSubmissionFrom reports whether userID already submitted this exam.
func (e *Exam) HasSubmissionFrom(userID uuid.UUID) bool {
	for _, s := range e.Submissions {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// ExamQuestionInput is a question snapshot supplied by the client.
type ExamQuestionInput struct {
	QuestionID    *uuid.UUID   `json:"question_id"`
	Text          string       `json:"text" binding:"required,max=5000"`
	Options       []string     `json:"options" binding:"omitempty,max=10"`
	CorrectAnswer string       `json:"correct_answer" binding:"omitempty,max=5000"`
	Explanation   string       `json:"explanation" binding:"omitempty,max=5000"`
	Type          QuestionType `json:"type" binding:"omitempty,oneof=çoktan_seçmeli boşluk_doldurma açık_uçlu doğru_yanlış"`
	Points        int          `json:"points" binding:"omitempty,min=0,max=100"`
}

// CreateExamRequest is the payload for creating an exam.
type CreateExamRequest struct {
	Title       string              `json:"title" binding:"required,min=1,max=255"`
	Description string              `json:"description" binding:"omitempty,max=2000"`
	Level       Level               `json:"level" binding:"required,oneof=ortaokul lise üniversite"`
	Subject     string              `json:"subject" binding:"required,max=200"`
	Questions   []ExamQuestionInput `json:"questions" binding:"omitempty,max=200,dive"`
	Duration    int                 `json:"duration" binding:"omitempty,min=1,max=600"`
	IsPublic    bool                `json:"is_public"`
	AssignedTo  []uuid.UUID         `json:"assigned_to"`
}

// UpdateExamRequest is a partial exam update. Questions, when present, replace the list.
type UpdateExamRequest struct {
	Title       *string              `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string              `json:"description" binding:"omitempty,max=2000"`
	Level       *Level               `json:"level" binding:"omitempty,oneof=ortaokul lise üniversite"`
	Subject     *string              `json:"subject" binding:"omitempty,min=1,max=200"`
	Questions   *[]ExamQuestionInput `json:"questions" binding:"omitempty"`
	Duration    *int                 `json:"duration" binding:"omitempty,min=1,max=600"`
	IsPublic    *bool                `json:"is_public"`
	AssignedTo  *[]uuid.UUID         `json:"assigned_to"`
}

// GenerateExamRequest builds an exam from a generation strategy.
type GenerateExamRequest struct {
	Level         Level          `json:"level" binding:"required,oneof=ortaokul lise üniversite"`
	Subject       string         `json:"subject" binding:"required,max=200"`
	QuestionCount int            `json:"question_count" binding:"required,min=1,max=50"`
	QuestionTypes []QuestionType `json:"question_types" binding:"omitempty,dive,oneof=çoktan_seçmeli boşluk_doldurma açık_uçlu doğru_yanlış"`
	Difficulty    Difficulty     `json:"difficulty" binding:"omitempty,oneof=kolay orta zor"`
	Duration      int            `json:"duration" binding:"omitempty,min=1,max=600"`
	Source        string         `json:"source" binding:"omitempty,oneof=bank llm trivia"`
}

// SubmitAnswerInput is one answer sent by a student.
type SubmitAnswerInput struct {
	QuestionIndex int    `json:"question_index" binding:"min=0"`
	Answer        string `json:"answer" binding:"max=5000"`
}

// SubmitExamRequest is a student's attempt. Duration is in seconds.
type SubmitExamRequest struct {
	Answers  []SubmitAnswerInput `json:"answers" binding:"required,max=200,dive"`
	Duration int                 `json:"duration" binding:"omitempty,min=0"`
}

// ExamFilter narrows the exam listing.
type ExamFilter struct {
	PageQuery
	Subject string `form:"subject"`
	Level   Level  `form:"level" binding:"omitempty,oneof=ortaokul lise üniversite"`
}
