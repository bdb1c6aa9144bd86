package generator

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/model"
)

func seededBank(seed uint64) *BankStrategy {
	b := NewBankStrategy()
	b.intn = rand.New(rand.NewPCG(seed, seed+1)).IntN
	return b
}

func TestBankNeverDuplicatesOrOverflows(t *testing.T) {
	for seed := uint64(0); seed < 50; seed++ {
		for _, count := range []int{1, 3, 10, 25} {
			qs, err := seededBank(seed).Generate(context.Background(), Request{Subject: "Matematik - Türev", Count: count})
			if err != nil {
				t.Fatal(err)
			}
			if len(qs) > count {
				t.Fatalf("got %d questions for count %d", len(qs), count)
			}
			seen := map[string]bool{}
			for _, q := range qs {
				if seen[q.ID] {
					t.Fatalf("duplicate id %s", q.ID)
				}
				seen[q.ID] = true
			}
		}
	}
}

func TestBankRespectsTypesAndAnswersAreOptions(t *testing.T) {
	qs, err := seededBank(7).Generate(context.Background(), Request{
		Subject: "Matematik - Türev",
		Count:   3,
		Types:   []model.QuestionType{model.QuestionTypeMultipleChoice},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 3 {
		t.Fatalf("got %d questions, want 3", len(qs))
	}
	for i, q := range qs {
		if q.Type != model.QuestionTypeMultipleChoice {
			t.Errorf("question %d has type %s", i, q.Type)
		}
		if len(q.Options) == 0 || !slices.Contains(q.Options, q.CorrectAnswer) {
			t.Errorf("question %d: answer %q not in options %v", i, q.CorrectAnswer, q.Options)
		}
		if q.ID != "q"+string(rune('1'+i)) {
			t.Errorf("question %d id = %s", i, q.ID)
		}
	}
}

func TestBankUnknownSubjectUsesGeneralPool(t *testing.T) {
	qs, err := seededBank(1).Generate(context.Background(), Request{Subject: "Astronomi", Count: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 4 {
		t.Fatalf("got %d questions, want 4", len(qs))
	}
	for _, q := range qs {
		if !strings.HasPrefix(q.Text, "Bu bir örnek") {
			t.Fatalf("unexpected question from general pool: %q", q.Text)
		}
	}
}

func TestBankPadsShortPools(t *testing.T) {
	// Türkçe has two questions; padding brings the pool up to the request.
	qs, err := seededBank(3).Generate(context.Background(), Request{
		Subject: "Türkçe - Dilbilgisi",
		Count:   5,
		Types:   []model.QuestionType{model.QuestionTypeMultipleChoice},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 5 {
		t.Fatalf("got %d questions, want 5", len(qs))
	}
}

func TestBankNoMatchingTypes(t *testing.T) {
	qs, err := seededBank(3).Generate(context.Background(), Request{
		Subject: "Fizik - Mekanik",
		Count:   2,
		Types:   []model.QuestionType{"bilinmeyen"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 0 {
		t.Fatalf("got %d questions, want none", len(qs))
	}
}

func TestParseQuestionArray(t *testing.T) {
	content := "İşte sorular:\n```json\n[{\"question\":\"2+2?\",\"options\":[\"A) 4\",\"B) 5\"],\"correctAnswer\":\"A) 4\"}," +
		"{\"question\":\"Dünya düz mü?\",\"correctAnswer\":false}]\n```"
	qs, err := ParseQuestionArray(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want 2", len(qs))
	}
	if qs[0].CorrectAnswer != "A) 4" || qs[0].ID != "q1" {
		t.Errorf("unexpected first question: %+v", qs[0])
	}
	if qs[1].CorrectAnswer != "Yanlış" || qs[1].Options == nil {
		t.Errorf("unexpected second question: %+v", qs[1])
	}
}

func TestParseQuestionArrayErrors(t *testing.T) {
	if _, err := ParseQuestionArray("üzgünüm, yardımcı olamam"); !errors.Is(err, ErrNoJSONArray) {
		t.Fatalf("err = %v, want ErrNoJSONArray", err)
	}
	if _, err := ParseQuestionArray("] ters ["); !errors.Is(err, ErrNoJSONArray) {
		t.Fatalf("err = %v, want ErrNoJSONArray", err)
	}
	if _, err := ParseQuestionArray("[{\"question\": ]"); !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("err = %v, want ErrInvalidJSON", err)
	}
}

type fakeCompleter struct {
	available bool
	reply     string
	err       error

	gotUser string
	gotTemp float64
}

func (f *fakeCompleter) IsAvailable() bool { return f.available }

func (f *fakeCompleter) Complete(_ context.Context, _, user string, temp float64) (string, error) {
	f.gotUser, f.gotTemp = user, temp
	return f.reply, f.err
}

func TestLLMStrategy(t *testing.T) {
	fc := &fakeCompleter{available: true, reply: `[{"question":"x?","correctAnswer":"y"}]`}
	qs, err := NewLLMStrategy(fc).Generate(context.Background(), Request{
		Level: model.LevelHighSchool, Subject: "Tarih", Count: 1,
		Types: []model.QuestionType{model.QuestionTypeOpenEnded},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 1 || qs[0].Type != model.QuestionTypeOpenEnded {
		t.Fatalf("unexpected questions: %+v", qs)
	}
	if !strings.HasPrefix(fc.gotUser, "lise seviyesinde Tarih konusu için 1 adet açık_uçlu tipi soru oluştur.") {
		t.Fatalf("unexpected prompt: %q", fc.gotUser)
	}
	if fc.gotTemp != generateTemperature {
		t.Fatalf("temperature = %v", fc.gotTemp)
	}
}

func TestLLMStrategyErrors(t *testing.T) {
	if _, err := NewLLMStrategy(&fakeCompleter{}).Generate(context.Background(), Request{Count: 1}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}

	boom := errors.New("rate limited")
	_, err := NewLLMStrategy(&fakeCompleter{available: true, err: boom}).Generate(context.Background(), Request{Count: 1})
	var up *UpstreamError
	if !errors.As(err, &up) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want UpstreamError wrapping cause", err)
	}
}

func TestExtractorUsesLowTemperature(t *testing.T) {
	fc := &fakeCompleter{available: true, reply: `[{"question":"a","correctAnswer":"b"}]`}
	qs, err := NewExtractor(fc).Extract(context.Background(), "1) a? Cevap: b")
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 1 || fc.gotTemp != extractTemperature {
		t.Fatalf("qs=%v temp=%v", qs, fc.gotTemp)
	}
	if !strings.Contains(fc.gotUser, "1) a? Cevap: b") {
		t.Fatal("prompt does not embed the text")
	}
}

func TestTriviaCorrectAnswerSurvivesEveryShuffle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("category") != "19" || q.Get("difficulty") != "hard" || q.Get("amount") != "1" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"response_code":0,"results":[{"question":"What is 2&amp;2?",` +
			`"correct_answer":"&quot;4&quot;","incorrect_answers":["3","5","22"]}]}`))
	}))
	defer srv.Close()

	for seed := uint64(0); seed < 40; seed++ {
		s := NewTriviaStrategy(srv.URL, 5*time.Second)
		s.intn = rand.New(rand.NewPCG(seed, 99)).IntN

		qs, err := s.Generate(context.Background(), Request{Subject: "Matematik - Türev", Count: 1, Difficulty: model.DifficultyHard})
		if err != nil {
			t.Fatal(err)
		}
		q := qs[0]
		if q.Text != "What is 2&2?" {
			t.Fatalf("entities not decoded: %q", q.Text)
		}
		idx := slices.Index(q.Options, q.CorrectAnswer)
		if idx < 0 {
			t.Fatalf("correct answer %q not in options %v", q.CorrectAnswer, q.Options)
		}
		if q.CorrectAnswer != labelFor(idx)+`) "4"` {
			t.Fatalf("correct answer %q does not match its position %d", q.CorrectAnswer, idx)
		}
	}
}

func TestTriviaNonZeroResponseCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"response_code":1,"results":[]}`))
	}))
	defer srv.Close()

	_, err := NewTriviaStrategy(srv.URL, time.Second).Generate(context.Background(), Request{Count: 5})
	var up *UpstreamError
	if !errors.As(err, &up) || up.Source != SourceTrivia {
		t.Fatalf("err = %v, want trivia UpstreamError", err)
	}
}

func TestCategoryFor(t *testing.T) {
	cases := map[string]int{"Matematik": 19, "Fizik - Mekanik": 17, "Coğrafya": 22, "Müzik": 9}
	for subject, want := range cases {
		if got := categoryFor(subject); got != want {
			t.Errorf("categoryFor(%q) = %d, want %d", subject, got, want)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewBankStrategy(), NewLLMStrategy(&fakeCompleter{}))
	if _, err := r.Get(SourceBank); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Get(SourceTrivia); !errors.Is(err, ErrUnknownSource) {
		t.Fatalf("err = %v, want ErrUnknownSource", err)
	}
	if got := r.Sources(); !slices.Equal(got, []string{"bank", "llm"}) {
		t.Fatalf("sources = %v", got)
	}
}
