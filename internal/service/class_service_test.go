package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/google/uuid"
)

var classCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestGenerateClassCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := GenerateClassCode()
		if err != nil {
			t.Fatal(err)
		}
		if !classCodePattern.MatchString(code) {
			t.Fatalf("code %q is not 6 uppercase alphanumerics", code)
		}
		seen[code] = true
	}
	if len(seen) < 190 {
		t.Fatalf("only %d distinct codes out of 200", len(seen))
	}
}

func TestCreateClassRetriesOnCodeCollision(t *testing.T) {
	ctx := context.Background()
	exams := newFakeExams()
	classes := newFakeClasses(exams)
	classes.conflicts = 2
	svc := NewClassService(classes, exams, newFakeCache(), nopLog)

	c, err := svc.Create(ctx, actorFor(model.RoleTeacher), &model.CreateClassRequest{Name: "9-A"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !classCodePattern.MatchString(c.Code) {
		t.Fatalf("code = %q", c.Code)
	}

	classes.conflicts = classCodeAttempts
	if _, err := svc.Create(ctx, actorFor(model.RoleTeacher), &model.CreateClassRequest{Name: "9-B"}); err == nil {
		t.Fatal("expected conflict after exhausting attempts")
	}
}

func TestJoinAndAssign(t *testing.T) {
	ctx := context.Background()
	exams := newFakeExams()
	classes := newFakeClasses(exams)
	cache := newFakeCache()
	svc := NewClassService(classes, exams, cache, nopLog)

	teacher, student, other := actorFor(model.RoleTeacher), actorFor(model.RoleStudent), actorFor(model.RoleTeacher)
	c, err := svc.Create(ctx, teacher, &model.CreateClassRequest{Name: "10-C", Code: "ABC123"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Join(ctx, student, "zzz999"); !errors.Is(err, ErrInvalidClassCode) {
		t.Fatalf("err = %v, want ErrInvalidClassCode", err)
	}

	cache.profiles[student.Subject] = &model.User{}
	joined, err := svc.Join(ctx, student, "abc123")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if !joined.HasStudent(student.UserID) {
		t.Fatal("student not enrolled")
	}
	if _, ok := cache.profiles[student.Subject]; ok {
		t.Fatal("student profile cache not invalidated")
	}
	if _, err := svc.Join(ctx, student, "ABC123"); err != nil {
		t.Fatalf("second join must be a no-op: %v", err)
	}
	if n := len(classes.byID[c.ID].Students); n != 1 {
		t.Fatalf("students = %d, want 1", n)
	}

	if _, err := svc.Get(ctx, student, c.ID); err != nil {
		t.Fatalf("member read: %v", err)
	}
	if _, err := svc.Get(ctx, other, c.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider read: err = %v", err)
	}

	exam := sampleExam(teacher.UserID)
	_ = exams.Create(ctx, exam)

	if _, err := svc.AssignExam(ctx, other, c.ID, &model.AssignExamRequest{ExamID: exam.ID}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-teacher assign: err = %v", err)
	}
	if _, err := svc.AssignExam(ctx, teacher, c.ID, &model.AssignExamRequest{ExamID: uuid.New()}); !errors.Is(err, ErrExamNotFound) {
		t.Fatalf("unknown exam: err = %v", err)
	}

	updated, err := svc.AssignExam(ctx, teacher, c.ID, &model.AssignExamRequest{ExamID: exam.ID})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if len(updated.AssignedExams) != 1 || updated.AssignedExams[0].ExamID != exam.ID {
		t.Fatalf("assigned = %+v", updated.AssignedExams)
	}
	if !exams.byID[exam.ID].IsAssignedTo(student.UserID) {
		t.Fatal("class members not added to the exam assignees")
	}
}

func TestLateJoinerGetsAssignedExams(t *testing.T) {
	ctx := context.Background()
	exams := newFakeExams()
	classes := newFakeClasses(exams)
	cache := newFakeCache()
	svc := NewClassService(classes, exams, cache, nopLog)
	examSvc := newExamService(exams, cache)

	teacher, student := actorFor(model.RoleTeacher), actorFor(model.RoleStudent)
	c, err := svc.Create(ctx, teacher, &model.CreateClassRequest{Name: "11-B", Code: "LATE01"})
	if err != nil {
		t.Fatal(err)
	}
	exam := sampleExam(teacher.UserID)
	_ = exams.Create(ctx, exam)
	if _, err := svc.AssignExam(ctx, teacher, c.ID, &model.AssignExamRequest{ExamID: exam.ID}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if _, err := examSvc.Get(ctx, student, exam.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("before join: err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Join(ctx, student, c.Code); err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := examSvc.Get(ctx, student, exam.ID); err != nil {
		t.Fatalf("after join: %v", err)
	}
	if _, err := svc.Join(ctx, student, c.Code); err != nil {
		t.Fatal(err)
	}
	if n := len(exams.byID[exam.ID].AssignedTo); n != 1 {
		t.Fatalf("assignees = %d, want 1", n)
	}
}

func TestClassWritePolicy(t *testing.T) {
	ctx := context.Background()
	exams := newFakeExams()
	svc := NewClassService(newFakeClasses(exams), exams, newFakeCache(), nopLog)
	teacher, other, admin := actorFor(model.RoleTeacher), actorFor(model.RoleTeacher), actorFor(model.RoleAdmin)

	c, err := svc.Create(ctx, teacher, &model.CreateClassRequest{Name: "11-D"})
	if err != nil {
		t.Fatal(err)
	}
	name := "11-E"
	if _, err := svc.Update(ctx, other, c.ID, &model.UpdateClassRequest{Name: &name}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if _, err := svc.Update(ctx, admin, c.ID, &model.UpdateClassRequest{Name: &name}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if err := svc.Delete(ctx, teacher, c.ID); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, teacher, c.ID); !errors.Is(err, ErrClassNotFound) {
		t.Fatalf("err = %v, want ErrClassNotFound", err)
	}
}
