package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/akilliyazili/yazili-backend/internal/model"
	"github.com/akilliyazili/yazili-backend/internal/repository"
	"github.com/akilliyazili/yazili-backend/internal/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var nopLog = zerolog.Nop()

// ─── Users ──────────────────────────────────────────────────────────────────

type fakeUsers struct {
	byID map[uuid.UUID]*model.User
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uuid.UUID]*model.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email || (u.ExternalID != "" && existing.ExternalID == u.ExternalID) {
			return errors.Join(repository.ErrConflict, errors.New("duplicate"))
		}
	}
	u.ID = uuid.New()
	if u.ExternalID == "" {
		u.ExternalID = u.ID.String()
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByExternalID(_ context.Context, ext string) (*model.User, error) {
	for _, u := range f.byID {
		if u.ExternalID == ext {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context, flt model.UserFilter) ([]model.User, int, error) {
	var out []model.User
	for _, u := range f.byID {
		if flt.Role == "" || u.Role == flt.Role {
			out = append(out, *u)
		}
	}
	return out, len(out), nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, u *model.User) error {
	for id, other := range f.byID {
		if id != u.ID && other.Email == u.Email {
			return errors.Join(repository.ErrConflict, errors.New("duplicate email"))
		}
	}
	if _, ok := f.byID[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id uuid.UUID) error {
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	u.LastLogin = &now
	return nil
}

// ─── Cache ──────────────────────────────────────────────────────────────────

type fakeCache struct {
	mu         sync.Mutex
	profiles   map[string]*model.User
	revoked    map[string]time.Time
	pdfs       map[string][]byte
	reserved   map[string]bool
	queued     []repository.SubmissionRecord
	enqueueErr error
	pdfHits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		profiles: map[string]*model.User{},
		revoked:  map[string]time.Time{},
		pdfs:     map[string][]byte{},
		reserved: map[string]bool{},
	}
}

func (c *fakeCache) GetProfile(_ context.Context, subject string) (*model.User, error) {
	return c.profiles[subject], nil
}

func (c *fakeCache) SetProfile(_ context.Context, subject string, u *model.User) error {
	c.profiles[subject] = u
	return nil
}

func (c *fakeCache) DeleteProfile(_ context.Context, subject string) error {
	delete(c.profiles, subject)
	return nil
}

func (c *fakeCache) RevokeToken(_ context.Context, jti string, exp time.Time) error {
	c.revoked[jti] = exp
	return nil
}

func (c *fakeCache) GetExamPDF(_ context.Context, examID string, updatedAt time.Time) ([]byte, error) {
	data, ok := c.pdfs[examID+updatedAt.String()]
	if ok {
		c.pdfHits++
	}
	return data, nil
}

func (c *fakeCache) SetExamPDF(_ context.Context, examID string, updatedAt time.Time, data []byte) error {
	c.pdfs[examID+updatedAt.String()] = data
	return nil
}

func (c *fakeCache) ReserveSubmission(_ context.Context, examID, userID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := examID + "/" + userID
	if c.reserved[key] {
		return false, nil
	}
	c.reserved[key] = true
	return true, nil
}

func (c *fakeCache) ReleaseSubmission(_ context.Context, examID, userID string) error {
	delete(c.reserved, examID+"/"+userID)
	return nil
}

func (c *fakeCache) EnqueueSubmission(_ context.Context, rec repository.SubmissionRecord) error {
	if c.enqueueErr != nil {
		return c.enqueueErr
	}
	c.queued = append(c.queued, rec)
	return nil
}

// ─── Questions ──────────────────────────────────────────────────────────────

type fakeQuestions struct {
	byID     map[uuid.UUID]*model.Question
	batchErr error
}

func newFakeQuestions() *fakeQuestions { return &fakeQuestions{byID: map[uuid.UUID]*model.Question{}} }

func (f *fakeQuestions) Create(_ context.Context, q *model.Question) error {
	q.ID = uuid.New()
	cp := *q
	f.byID[q.ID] = &cp
	return nil
}

func (f *fakeQuestions) CreateBatch(ctx context.Context, qs []*model.Question) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	for _, q := range qs {
		_ = f.Create(ctx, q)
	}
	return nil
}

func (f *fakeQuestions) GetByID(_ context.Context, id uuid.UUID) (*model.Question, error) {
	q, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestions) ListByOwner(_ context.Context, owner uuid.UUID, _ model.QuestionFilter) ([]model.Question, int, error) {
	var out []model.Question
	for _, q := range f.byID {
		if q.UserID == owner {
			out = append(out, *q)
		}
	}
	return out, len(out), nil
}

func (f *fakeQuestions) Update(_ context.Context, q *model.Question) error {
	if _, ok := f.byID[q.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *q
	f.byID[q.ID] = &cp
	return nil
}

func (f *fakeQuestions) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// ─── Exams ──────────────────────────────────────────────────────────────────

type fakeExams struct {
	byID     map[uuid.UUID]*model.Exam
	appended []repository.SubmissionRecord
}

func newFakeExams() *fakeExams { return &fakeExams{byID: map[uuid.UUID]*model.Exam{}} }

func (f *fakeExams) Create(_ context.Context, e *model.Exam) error {
	e.ID = uuid.New()
	if e.Duration <= 0 {
		e.Duration = model.DefaultExamDuration
	}
	e.UpdatedAt = time.Now()
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeExams) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeExams) ListVisible(_ context.Context, userID uuid.UUID, _ model.ExamFilter) ([]model.Exam, int, error) {
	var out []model.Exam
	for _, e := range f.byID {
		if userID == uuid.Nil || e.UserID == userID || e.IsAssignedTo(userID) {
			out = append(out, *e)
		}
	}
	return out, len(out), nil
}

func (f *fakeExams) Update(_ context.Context, e *model.Exam) error {
	if _, ok := f.byID[e.ID]; !ok {
		return repository.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	cp := *e
	f.byID[e.ID] = &cp
	return nil
}

func (f *fakeExams) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeExams) AppendSubmission(_ context.Context, rec repository.SubmissionRecord) error {
	e, ok := f.byID[rec.ExamID]
	if !ok {
		return repository.ErrNotFound
	}
	e.Submissions = append(e.Submissions, rec.Submission)
	f.appended = append(f.appended, rec)
	return nil
}

// ─── Classes ────────────────────────────────────────────────────────────────

type fakeClasses struct {
	byID      map[uuid.UUID]*model.Class
	conflicts int
	assigned  []model.AssignedExam
	exams     *fakeExams
}

func newFakeClasses(exams *fakeExams) *fakeClasses {
	return &fakeClasses{byID: map[uuid.UUID]*model.Class{}, exams: exams}
}

func (f *fakeClasses) Create(_ context.Context, c *model.Class) error {
	if f.conflicts > 0 {
		f.conflicts--
		return errors.Join(repository.ErrConflict, errors.New("duplicate code"))
	}
	for _, other := range f.byID {
		if other.Code == c.Code {
			return errors.Join(repository.ErrConflict, errors.New("duplicate code"))
		}
	}
	c.ID = uuid.New()
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeClasses) GetByID(_ context.Context, id uuid.UUID) (*model.Class, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClasses) GetByCode(_ context.Context, code string) (*model.Class, error) {
	for _, c := range f.byID {
		if c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeClasses) ListForUser(_ context.Context, userID uuid.UUID, _ model.PageQuery) ([]model.Class, int, error) {
	var out []model.Class
	for _, c := range f.byID {
		if userID == uuid.Nil || c.TeacherID == userID || c.HasStudent(userID) {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

func (f *fakeClasses) Update(_ context.Context, c *model.Class) error {
	if _, ok := f.byID[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeClasses) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeClasses) AddStudent(_ context.Context, classID, userID uuid.UUID) error {
	c, ok := f.byID[classID]
	if !ok {
		return repository.ErrNotFound
	}
	if !c.HasStudent(userID) {
		c.Students = append(c.Students, userID)
	}
	for _, a := range c.AssignedExams {
		if e, ok := f.exams.byID[a.ExamID]; ok && !e.IsAssignedTo(userID) {
			e.AssignedTo = append(e.AssignedTo, userID)
		}
	}
	return nil
}

func (f *fakeClasses) AssignExam(_ context.Context, classID uuid.UUID, a model.AssignedExam) error {
	c, ok := f.byID[classID]
	if !ok {
		return repository.ErrNotFound
	}
	e, ok := f.exams.byID[a.ExamID]
	if !ok {
		return repository.ErrNotFound
	}
	c.AssignedExams = append(c.AssignedExams, a)
	for _, s := range c.Students {
		if !e.IsAssignedTo(s) {
			e.AssignedTo = append(e.AssignedTo, s)
		}
	}
	f.assigned = append(f.assigned, a)
	return nil
}

// ─── Blob store ─────────────────────────────────────────────────────────────

type fakeBlobs struct {
	files   map[string]*model.File
	content map[string][]byte
	putErr  error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{files: map[string]*model.File{}, content: map[string][]byte{}}
}

func (b *fakeBlobs) Put(_ context.Context, in storage.PutInput, r io.Reader) (*model.File, error) {
	if b.putErr != nil {
		return nil, b.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f := &model.File{
		ID:           uuid.NewString(),
		Filename:     in.Filename,
		OriginalName: in.OriginalName,
		ContentType:  in.ContentType,
		Size:         int64(len(data)),
		UploadedBy:   in.UploadedBy,
		UploadDate:   time.Now(),
	}
	b.files[f.ID] = f
	b.content[f.ID] = data
	return f, nil
}

func (b *fakeBlobs) Open(_ context.Context, id string) (*model.File, io.ReadCloser, error) {
	f, ok := b.files[id]
	if !ok {
		return nil, nil, storage.ErrNotFound
	}
	return f, io.NopCloser(bytes.NewReader(b.content[id])), nil
}

func (b *fakeBlobs) Stat(_ context.Context, id string) (*model.File, error) {
	f, ok := b.files[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return f, nil
}

func (b *fakeBlobs) Delete(_ context.Context, id string) error {
	if _, ok := b.files[id]; !ok {
		return storage.ErrNotFound
	}
	delete(b.files, id)
	delete(b.content, id)
	return nil
}

func (b *fakeBlobs) List(_ context.Context, flt model.FileFilter) ([]model.File, int, error) {
	var out []model.File
	for _, f := range b.files {
		if flt.UploadedBy == "" || f.UploadedBy.String() == flt.UploadedBy {
			out = append(out, *f)
		}
	}
	return out, len(out), nil
}

// multipartFiles builds file headers the way net/http parses an upload form.
func multipartFiles(t *testing.T, field string, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, data := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+name+`"`)
		h.Set("Content-Type", "application/octet-stream")
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File[field]
}

func actorFor(role model.Role) Actor {
	id := uuid.New()
	return Actor{UserID: id, Subject: id.String(), Role: role}
}
