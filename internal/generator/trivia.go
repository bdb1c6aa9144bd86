package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Open Trivia DB category ids.
var triviaCategories = map[string]int{
	"Matematik":  19,
	"Fizik":      17,
	"Kimya":      17,
	"Biyoloji":   17,
	"Tarih":      23,
	"Coğrafya":   22,
	"Bilgisayar": 18,
}

const triviaGeneralKnowledge = 9

var triviaDifficulties = map[model.Difficulty]string{
	model.DifficultyEasy:   "easy",
	model.DifficultyMedium: "medium",
	model.DifficultyHard:   "hard",
}

var optionLabels = []string{"A", "B", "C", "D", "E", "F"}

// TriviaStrategy fetches multiple-choice questions from the Open Trivia DB.
type TriviaStrategy struct {
	httpClient *http.Client
	baseURL    string
	intn       func(n int) int
}

// NewTriviaStrategy creates a TriviaStrategy. baseURL is the api.php endpoint.
func NewTriviaStrategy(baseURL string, timeout time.Duration) *TriviaStrategy {
	return &TriviaStrategy{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL: baseURL,
		intn:    rand.IntN,
	}
}

func (s *TriviaStrategy) Name() string { return SourceTrivia }

type triviaResponse struct {
	ResponseCode int            `json:"response_code"`
	Results      []triviaResult `json:"results"`
}

type triviaResult struct {
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// categoryFor maps a subject label to a category id. Subjects like
// "Fizik - Mekanik" match on their leading word.
func categoryFor(subject string) int {
	if id, ok := triviaCategories[subject]; ok {
		return id
	}
	for name, id := range triviaCategories {
		if strings.HasPrefix(subject, name+" ") {
			return id
		}
	}
	return triviaGeneralKnowledge
}

// Generate fetches req.Count questions. Only multiple-choice questions are produced.
func (s *TriviaStrategy) Generate(ctx context.Context, req Request) ([]model.GeneratedQuestion, error) {
	q := url.Values{}
	q.Set("amount", strconv.Itoa(req.Count))
	q.Set("category", strconv.Itoa(categoryFor(req.Subject)))
	q.Set("type", "multiple")
	if d, ok := triviaDifficulties[req.Difficulty]; ok {
		q.Set("difficulty", d)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create trivia request: %w", err)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, &UpstreamError{Source: SourceTrivia, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &UpstreamError{Source: SourceTrivia, Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}

	var out triviaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &UpstreamError{Source: SourceTrivia, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.ResponseCode != 0 {
		return nil, &UpstreamError{Source: SourceTrivia, Err: fmt.Errorf("response code %d", out.ResponseCode)}
	}

	qs := make([]model.GeneratedQuestion, 0, len(out.Results))
	for _, r := range out.Results {
		qs = append(qs, s.adapt(r))
	}
	assignIDs(qs)
	return qs, nil
}

// adapt decodes entities, shuffles the answers and labels them. The correct
// answer is found again by value after the shuffle.
func (s *TriviaStrategy) adapt(r triviaResult) model.GeneratedQuestion {
	correct := html.UnescapeString(r.CorrectAnswer)

	answers := make([]string, 0, len(r.IncorrectAnswers)+1)
	answers = append(answers, correct)
	for _, a := range r.IncorrectAnswers {
		answers = append(answers, html.UnescapeString(a))
	}
	s.shuffle(answers)

	options := make([]string, len(answers))
	var correctLabel string
	for i, a := range answers {
		options[i] = labelFor(i) + ") " + a
		if correctLabel == "" && a == correct {
			correctLabel = options[i]
		}
	}

	return model.GeneratedQuestion{
		Text:          html.UnescapeString(r.Question),
		Type:          model.QuestionTypeMultipleChoice,
		Options:       options,
		CorrectAnswer: correctLabel,
	}
}

// shuffle is an in-place Fisher–Yates shuffle.
func (s *TriviaStrategy) shuffle(xs []string) {
	for i := len(xs) - 1; i > 0; i-- {
		j := s.intn(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}

func labelFor(i int) string {
	if i < len(optionLabels) {
		return optionLabels[i]
	}
	return strconv.Itoa(i + 1)
}
