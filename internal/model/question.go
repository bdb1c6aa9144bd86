package model

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType enumerates the supported question formats.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "çoktan_seçmeli"
	QuestionTypeFillBlank      QuestionType = "boşluk_doldurma"
	QuestionTypeOpenEnded      QuestionType = "açık_uçlu"
	QuestionTypeTrueFalse      QuestionType = "doğru_yanlış"
)

// Objective reports whether answers of this type can be graded by exact match.
func (t QuestionType) Objective() bool {
	return t != QuestionTypeOpenEnded
}

// Level is the school level a question or exam targets.
type Level string

const (
	LevelMiddleSchool Level = "ortaokul"
	LevelHighSchool   Level = "lise"
	LevelUniversity   Level = "üniversite"
)

// Difficulty is the question difficulty label.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "kolay"
	DifficultyMedium Difficulty = "orta"
	DifficultyHard   Difficulty = "zor"
)

// Question is a stored question owned by a user.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	Text          string       `json:"text"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	Type          QuestionType `json:"type"`
	Level         Level        `json:"level"`
	Subject       string       `json:"subject"`
	UserID        uuid.UUID    `json:"user_id"`
	Tags          []string     `json:"tags"`
	Difficulty    Difficulty   `json:"difficulty"`
	IsPublic      bool         `json:"is_public"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// GeneratedQuestion is the common output of every generation strategy.
type GeneratedQuestion struct {
	ID            string       `json:"id,omitempty"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type,omitempty"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation,omitempty"`
}

// CreateQuestionRequest is the payload for creating a question.
type CreateQuestionRequest struct {
	Text          string       `json:"text" binding:"required,max=5000"`
	Options       []string     `json:"options" binding:"omitempty,max=10,dive,max=1000"`
	CorrectAnswer string       `json:"correct_answer" binding:"required,max=5000"`
	Explanation   string       `json:"explanation" binding:"omitempty,max=5000"`
	Type          QuestionType `json:"type" binding:"required,oneof=çoktan_seçmeli boşluk_doldurma açık_uçlu doğru_yanlış"`
	Level         Level        `json:"level" binding:"required,oneof=ortaokul lise üniversite"`
	Subject       string       `json:"subject" binding:"required,max=200"`
	Tags          []string     `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Difficulty    Difficulty   `json:"difficulty" binding:"omitempty,oneof=kolay orta zor"`
	IsPublic      bool         `json:"is_public"`
}

// UpdateQuestionRequest is a partial question update.
type UpdateQuestionRequest struct {
	Text          *string       `json:"text" binding:"omitempty,min=1,max=5000"`
	Options       *[]string     `json:"options" binding:"omitempty"`
	CorrectAnswer *string       `json:"correct_answer" binding:"omitempty,min=1,max=5000"`
	Explanation   *string       `json:"explanation" binding:"omitempty,max=5000"`
	Type          *QuestionType `json:"type" binding:"omitempty,oneof=çoktan_seçmeli boşluk_doldurma açık_uçlu doğru_yanlış"`
	Level         *Level        `json:"level" binding:"omitempty,oneof=ortaokul lise üniversite"`
	Subject       *string       `json:"subject" binding:"omitempty,min=1,max=200"`
	Tags          *[]string     `json:"tags" binding:"omitempty"`
	Difficulty    *Difficulty   `json:"difficulty" binding:"omitempty,oneof=kolay orta zor"`
	IsPublic      *bool         `json:"is_public"`
}

// Apply copies the set fields of req onto q.
func (req *UpdateQuestionRequest) Apply(q *Question) {
	if req.Text != nil {
		q.Text = *req.Text
	}
	if req.Options != nil {
		q.Options = *req.Options
	}
	if req.CorrectAnswer != nil {
		q.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Explanation != nil {
		q.Explanation = *req.Explanation
	}
	if req.Type != nil {
		q.Type = *req.Type
	}
	if req.Level != nil {
		q.Level = *req.Level
	}
	if req.Subject != nil {
		q.Subject = *req.Subject
	}
	if req.Tags != nil {
		q.Tags = *req.Tags
	}
	if req.Difficulty != nil {
		q.Difficulty = *req.Difficulty
	}
	if req.IsPublic != nil {
		q.IsPublic = *req.IsPublic
	}
}

// GenerateQuestionsRequest asks a generation strategy for questions to store.
type GenerateQuestionsRequest struct {
	Level      Level        `json:"level" binding:"required,oneof=ortaokul lise üniversite"`
	Subject    string       `json:"subject" binding:"required,max=200"`
	Count      int          `json:"count" binding:"required,min=1,max=50"`
	Type       QuestionType `json:"type" binding:"required,oneof=çoktan_seçmeli boşluk_doldurma açık_uçlu doğru_yanlış"`
	Difficulty Difficulty   `json:"difficulty" binding:"omitempty,oneof=kolay orta zor"`
	Source     string       `json:"source" binding:"omitempty,oneof=bank llm trivia"`
}

// ExtractResult is returned by the OCR extraction endpoint; nothing is stored.
type ExtractResult struct {
	Questions     []GeneratedQuestion `json:"questions"`
	ExtractedText string              `json:"extracted_text"`
}

// QuestionFilter narrows the question listing.
type QuestionFilter struct {
	PageQuery
	Subject string       `form:"subject"`
	Level   Level        `form:"level" binding:"omitempty,oneof=ortaokul lise üniversite"`
	Type    QuestionType `form:"type" binding:"omitempty,oneof=çoktan_seçmeli boşluk_doldurma açık_uçlu doğru_yanlış"`
}
