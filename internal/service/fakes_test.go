package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/repository"
)

// ─── Users ────────────────────────────────────────────────────────────

type memUsers struct {
	mu    sync.Mutex
	byUID map[string]*model.User
	order []string
}

func newMemUsers(users ...*model.User) *memUsers {
	m := &memUsers{byUID: make(map[string]*model.User)}
	for _, u := range users {
		m.put(u)
	}
	return m
}

func (m *memUsers) put(u *model.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	if _, ok := m.byUID[u.UID]; !ok {
		m.order = append(m.order, u.UID)
	}
	m.byUID[u.UID] = &cp
}

func (m *memUsers) GetByUID(_ context.Context, uid string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byUID[uid]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, uid := range m.order {
		if u := m.byUID[uid]; strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) Create(ctx context.Context, u *model.User) error {
	if _, err := m.GetByEmail(ctx, u.Email); err == nil {
		return repository.ErrDuplicateEmail
	}
	m.put(u)
	return nil
}

func (m *memUsers) UpdateName(_ context.Context, uid, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byUID[uid]
	if !ok {
		return repository.ErrNotFound
	}
	u.Name = name
	return nil
}

func (m *memUsers) ListStudentsByClass(_ context.Context, classID string) ([]model.StudentSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.StudentSummary
	for _, uid := range m.order {
		u := m.byUID[uid]
		if u.Role == model.RoleStudent && u.ClassID == classID {
			out = append(out, model.StudentSummary{ID: u.UID, Name: u.Name, Email: u.Email})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memUsers) GetChildOfParent(_ context.Context, parentID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, uid := range m.order {
		if u := m.byUID[uid]; u.Role == model.RoleStudent && u.ParentID == parentID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ─── Attendance ───────────────────────────────────────────────────────

type memAttendance struct {
	mu      sync.Mutex
	records map[string]model.AttendanceRecord
}

func newMemAttendance() *memAttendance {
	return &memAttendance{records: make(map[string]model.AttendanceRecord)}
}

func attendanceKey(studentID string, date time.Time) string {
	return studentID + "|" + date.Format(DateLayout)
}

func (m *memAttendance) MarkBatch(_ context.Context, records []model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.records[attendanceKey(r.StudentID, r.Date)] = r
	}
	return nil
}

func (m *memAttendance) GetStatus(_ context.Context, studentID string, date time.Time) (model.AttendanceStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.records[attendanceKey(studentID, date)]
	if !ok {
		return "", repository.ErrNotFound
	}
	return r.Status, nil
}

func (m *memAttendance) sorted(keep func(model.AttendanceRecord) bool) []model.AttendanceRecord {
	var out []model.AttendanceRecord
	for _, r := range m.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

func (m *memAttendance) ListByStudent(_ context.Context, studentID string, limit int) ([]model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.sorted(func(r model.AttendanceRecord) bool { return r.StudentID == studentID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memAttendance) ListByClass(_ context.Context, classID string, from, to time.Time) ([]model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r model.AttendanceRecord) bool {
		return r.ClassID == classID && !r.Date.Before(from) && !r.Date.After(to)
	}), nil
}

// ─── Homework ─────────────────────────────────────────────────────────

type memHomework struct {
	mu        sync.Mutex
	items     []model.Homework
	submitted map[string]bool
}

func newMemHomework() *memHomework {
	return &memHomework{submitted: make(map[string]bool)}
}

func (m *memHomework) Create(_ context.Context, hw *model.Homework) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *hw)
	return nil
}

func (m *memHomework) ListForStudent(_ context.Context, classID, studentID string) ([]model.StudentHomework, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.StudentHomework
	for _, hw := range m.items {
		if hw.ClassID != classID {
			continue
		}
		out = append(out, model.StudentHomework{
			ID:          hw.ID,
			Subject:     hw.Subject,
			DueDate:     hw.DueDate.Format(DateLayout),
			Description: hw.Description,
			Submitted:   m.submitted[hw.ID.String()+"|"+studentID],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate < out[j].DueDate })
	return out, nil
}

func (m *memHomework) CountPending(ctx context.Context, classID, studentID string) (int, error) {
	items, _ := m.ListForStudent(ctx, classID, studentID)
	n := 0
	for _, it := range items {
		if !it.Submitted {
			n++
		}
	}
	return n, nil
}

func (m *memHomework) ClassOf(_ context.Context, homeworkID uuid.UUID) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, hw := range m.items {
		if hw.ID == homeworkID {
			return hw.ClassID, nil
		}
	}
	return "", repository.ErrNotFound
}

func (m *memHomework) MarkSubmitted(_ context.Context, homeworkID uuid.UUID, studentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, hw := range m.items {
		if hw.ID == homeworkID {
			m.submitted[homeworkID.String()+"|"+studentID] = true
			return nil
		}
	}
	return repository.ErrNotFound
}

// ─── Messages ─────────────────────────────────────────────────────────

type memMessages struct {
	mu   sync.Mutex
	msgs []model.ChatMessage
}

func (m *memMessages) ListByClass(_ context.Context, classID string, limit int) ([]model.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ChatMessage
	for i := len(m.msgs) - 1; i >= 0 && len(out) < limit; i-- {
		if m.msgs[i].ClassID == classID {
			out = append(out, m.msgs[i])
		}
	}
	return out, nil
}

func (m *memMessages) Create(_ context.Context, msg *model.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memMessages) GetByID(_ context.Context, id string) (*model.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range m.msgs {
		if msg.ID == id {
			cp := msg
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memMessages) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, msg := range m.msgs {
		if msg.ID == id {
			m.msgs = append(m.msgs[:i], m.msgs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// ─── Password hashing ─────────────────────────────────────────────────

// plainHasher keeps tests fast; bcrypt is covered by the auth tests.
type plainHasher struct{}

func (plainHasher) HashPassword(p string) (string, error) { return "plain:" + p, nil }

func (plainHasher) CheckPassword(hash, p string) error {
	if hash != "plain:"+p {
		return ErrInvalidCredentials
	}
	return nil
}

// ─── Fixture ──────────────────────────────────────────────────────────

var (
	fixedNow = time.Date(2026, 3, 9, 14, 30, 0, 0, time.UTC)

	teacherT1 = &model.User{UID: "T1", Email: "rao@school.test", Name: "Ms. Rao", Role: model.RoleTeacher, ClassID: "10A"}
	teacherT2 = &model.User{UID: "T2", Email: "das@school.test", Name: "Mr. Das", Role: model.RoleTeacher, ClassID: "10B"}
	parentP1  = &model.User{UID: "P1", Email: "verma@home.test", Name: "Rohit Verma", Role: model.RoleParent}
	parentP2  = &model.User{UID: "P2", Email: "singh@home.test", Name: "Meera Singh", Role: model.RoleParent}
	studentS1 = &model.User{UID: "S1", Email: "asha@school.test", Name: "Asha Verma", Role: model.RoleStudent, ClassID: "10A", ParentID: "P1"}
	studentS2 = &model.User{UID: "S2", Email: "kabir@school.test", Name: "Kabir Singh", Role: model.RoleStudent, ClassID: "10A", ParentID: "P2"}
)

type fixture struct {
	users      *memUsers
	attendance *memAttendance
	homework   *memHomework
	messages   *memMessages

	accounts *UserService
	students *StudentService
	teachers *TeacherService
	parents  *ParentService
}

func newFixture() *fixture {
	f := &fixture{
		users:      newMemUsers(teacherT1, teacherT2, parentP1, parentP2, studentS1, studentS2),
		attendance: newMemAttendance(),
		homework:   newMemHomework(),
		messages:   &memMessages{},
	}
	f.accounts = NewUserService(f.users, plainHasher{})
	f.students = NewStudentService(f.users, f.attendance, f.homework)
	f.students.now = func() time.Time { return fixedNow }
	f.teachers = NewTeacherService(f.users, f.attendance, f.homework, f.accounts)
	f.teachers.now = func() time.Time { return fixedNow }
	f.parents = NewParentService(f.users, f.students)
	return f
}
