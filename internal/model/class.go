package model

import (
	"time"

	"github.com/google/uuid"
)

// ClassCodeLength is the length of a class join code.
const ClassCodeLength = 6

// AssignedExam records an exam handed to a class.
type AssignedExam struct {
	ExamID     uuid.UUID  `json:"exam_id"`
	AssignedAt time.Time  `json:"assigned_at"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

// Class groups students under a teacher and carries a unique join code.
type Class struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	TeacherID     uuid.UUID      `json:"teacher_id"`
	Students      []uuid.UUID    `json:"students"`
	Level         Level          `json:"level,omitempty"`
	Subject       string         `json:"subject"`
	AssignedExams []AssignedExam `json:"assigned_exams"`
	Code          string         `json:"code"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// HasStudent reports whether userID is enrolled.
func (c *Class) HasStudent(userID uuid.UUID) bool {
	for _, id := range c.Students {
		if id == userID {
			return true
		}
	}
	return false
}

// CreateClassRequest is the payload for creating a class. A code is generated when empty.
type CreateClassRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	Level       Level  `json:"level" binding:"omitempty,oneof=ortaokul lise üniversite"`
	Subject     string `json:"subject" binding:"omitempty,max=200"`
	Code        string `json:"code" binding:"omitempty,len=6,alphanum,uppercase"`
}

// UpdateClassRequest is a partial class update.
type UpdateClassRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Level       *Level  `json:"level" binding:"omitempty,oneof=ortaokul lise üniversite"`
	Subject     *string `json:"subject" binding:"omitempty,max=200"`
}

// JoinClassRequest enrolls the caller with a class code.
type JoinClassRequest struct {
	Code string `json:"code" binding:"required,len=6,alphanum"`
}

// AssignExamRequest hands an exam to every student of a class.
type AssignExamRequest struct {
	ExamID  uuid.UUID  `json:"exam_id" binding:"required"`
	DueDate *time.Time `json:"due_date"`
}
