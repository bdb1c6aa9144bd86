package service

import (
	"errors"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/google/uuid"
)

// ErrAnswerOutOfBounds is returned when an answer names a question the exam does not have.
var ErrAnswerOutOfBounds = errors.New("answer index outside the exam")

// Grade scores answers against the exam's questions. Objective questions are
// correct when the answer matches ignoring case and whitespace; a bare option
// label such as "B" matches "B) ...". Open-ended answers score zero until
// reviewed. A repeated question index keeps the last answer.
func Grade(exam *model.Exam, userID uuid.UUID, answers []model.SubmitAnswerInput, duration int, now time.Time) (*model.Submission, error) {
	byIndex := make(map[int]string, len(answers))
	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= len(exam.Questions) {
			return nil, ErrAnswerOutOfBounds
		}
		byIndex[a.QuestionIndex] = a.Answer
	}

	sub := &model.Submission{
		UserID:      userID,
		SubmittedAt: now,
		Answers:     make([]model.SubmissionAnswer, 0, len(byIndex)),
		Duration:    duration,
	}
	for _, q := range exam.Questions {
		sub.MaxScore += questionPoints(q)
	}

	indices := make([]int, 0, len(byIndex))
	for i := range byIndex {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	for _, i := range indices {
		q := exam.Questions[i]
		ans := model.SubmissionAnswer{QuestionIndex: i, Answer: byIndex[i]}
		if q.Type.Objective() && answerMatches(ans.Answer, q.CorrectAnswer) {
			ans.IsCorrect = true
			ans.Points = questionPoints(q)
			sub.TotalScore += ans.Points
		}
		sub.Answers = append(sub.Answers, ans)
	}
	return sub, nil
}

func questionPoints(q model.ExamQuestion) int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

func answerMatches(given, correct string) bool {
	g, c := normalizeAnswer(given), normalizeAnswer(correct)
	if g == "" || c == "" {
		return false
	}
	if g == c {
		return true
	}
	gl, gOnly := optionLabel(g)
	cl, cOnly := optionLabel(c)
	return gl != 0 && gl == cl && (gOnly || cOnly)
}

// normalizeAnswer lowercases and drops whitespace. Dotted and dotless i fold
// together so Turkish and English casing agree.
func normalizeAnswer(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			continue
		case r == 'I' || r == 'İ' || r == 'ı':
			r = 'i'
		default:
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// optionLabel returns the leading option letter of a normalized answer ("b" or
// "b)..."), and whether the answer is the bare label.
func optionLabel(s string) (rune, bool) {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsLetter(runes[0]) {
		return 0, false
	}
	if len(runes) == 1 {
		return runes[0], true
	}
	if runes[1] == ')' {
		return runes[0], len(runes) == 2
	}
	return 0, false
}
