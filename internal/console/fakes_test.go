package console

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/noah-isme/campus-admin-console/internal/models"
	"github.com/noah-isme/campus-admin-console/pkg/storage"
)

type memStore[T Record, D any] struct {
	mu      sync.Mutex
	build   func(id string, d D) T
	rows    []T
	nextID  int
	calls   map[string]int
	failOn  map[string]error
	lastDel map[string]string
}

func newMemStore[T Record, D any](build func(id string, d D) T, rows ...T) *memStore[T, D] {
	return &memStore[T, D]{
		build:   build,
		rows:    rows,
		calls:   map[string]int{},
		failOn:  map[string]error{},
		lastDel: map[string]string{},
	}
}

func (m *memStore[T, D]) hit(op string) error {
	m.calls[op]++
	return m.failOn[op]
}

func (m *memStore[T, D]) count(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *memStore[T, D]) fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[op] = err
}

func (m *memStore[T, D]) List(_ context.Context, _ models.Order) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("list"); err != nil {
		return nil, err
	}
	out := make([]T, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *memStore[T, D]) Get(_ context.Context, id string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if err := m.hit("get"); err != nil {
		return zero, err
	}
	for _, r := range m.rows {
		if r.RecordID() == id {
			return r, nil
		}
	}
	return zero, sql.ErrNoRows
}

func (m *memStore[T, D]) Insert(_ context.Context, d D) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if err := m.hit("insert"); err != nil {
		return zero, err
	}
	m.nextID++
	row := m.build(fmt.Sprintf("id-%d", m.nextID), d)
	m.rows = append([]T{row}, m.rows...)
	return row, nil
}

func (m *memStore[T, D]) InsertMany(ctx context.Context, drafts []D) ([]T, error) {
	out := make([]T, 0, len(drafts))
	for _, d := range drafts {
		row, err := m.Insert(ctx, d)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *memStore[T, D]) Update(_ context.Context, id string, d D) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	if err := m.hit("update"); err != nil {
		return zero, err
	}
	for i, r := range m.rows {
		if r.RecordID() == id {
			m.rows[i] = m.build(id, d)
			return m.rows[i], nil
		}
	}
	return zero, sql.ErrNoRows
}

func (m *memStore[T, D]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("delete"); err != nil {
		return err
	}
	for i, r := range m.rows {
		if r.RecordID() == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memStore[T, D]) DeleteWhere(_ context.Context, column, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.hit("delete_where"); err != nil {
		return err
	}
	m.lastDel[column] = value
	return nil
}

type fakeObjects struct {
	mu      sync.Mutex
	keys    []string
	bodies  map[string]string
	failFor map[string]bool
	noURL   bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{bodies: map[string]string{}, failFor: map[string]bool{}}
}

func (f *fakeObjects) Upload(_ context.Context, bucket, path string, body io.Reader, _ storage.UploadOptions) error {
	data, _ := io.ReadAll(body)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[string(data)] {
		return errors.New("bucket unavailable")
	}
	f.keys = append(f.keys, bucket+"/"+path)
	f.bodies[bucket+"/"+path] = string(data)
	return nil
}

func (f *fakeObjects) PublicURL(bucket, path string) string {
	if f.noURL {
		return ""
	}
	return "https://cdn.test/" + bucket + "/" + path
}

func studentStore(rows ...models.Student) *memStore[models.Student, models.StudentDraft] {
	return newMemStore(func(id string, d models.StudentDraft) models.Student {
		return models.Student{
			Base: models.Base{ID: id}, Name: d.Name, Email: d.Email, StudentCode: d.StudentCode,
			Status: d.Status, EnrolledDate: d.EnrolledDate,
		}
	}, rows...)
}

func courseStore(rows ...models.Course) *memStore[models.Course, models.CourseDraft] {
	return newMemStore(func(id string, d models.CourseDraft) models.Course {
		return models.Course{Base: models.Base{ID: id}, Title: d.Title, Status: d.Status, ImageURL: d.ImageURL}
	}, rows...)
}

func participantStore(rows ...models.Participant) *memStore[models.Participant, models.ParticipantDraft] {
	return newMemStore(func(id string, d models.ParticipantDraft) models.Participant {
		return models.Participant{
			Base: models.Base{ID: id}, FunctionID: d.FunctionID, Name: d.Name, Phone: d.Phone,
			Attended: d.Attended, PaidForPost: d.PaidForPost,
		}
	}, rows...)
}

func functionStore(rows ...models.Function) *memStore[models.Function, models.FunctionDraft] {
	return newMemStore(func(id string, d models.FunctionDraft) models.Function {
		return models.Function{Base: models.Base{ID: id}, Name: d.Name, Date: d.Date}
	}, rows...)
}

func studentDraft(name string) models.StudentDraft {
	return models.StudentDraft{Name: name, Email: "student@example.com", Status: models.StudentActive}
}
