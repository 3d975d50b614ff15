package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/learnage/portal/internal/identity"
	"github.com/learnage/portal/internal/model"
)

func markToday(t *testing.T, f *fixture, status model.AttendanceStatus) {
	t.Helper()
	_, err := f.teachers.MarkAttendance(context.Background(), "T1", &model.MarkAttendanceRequest{
		ClassID:    "10A",
		Date:       fixedNow.Format(DateLayout),
		Attendance: []model.AttendanceEntry{{StudentID: "S1", StudentName: "Asha Verma", Status: status}},
	})
	if err != nil {
		t.Fatalf("MarkAttendance: %v", err)
	}
}

func TestStudentDashboard(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	dash, err := f.students.Dashboard(ctx, "S1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.TodayAttendance != "Not Marked" || dash.PendingHomework != 0 || dash.ClassID != "10A" {
		t.Errorf("unmarked dashboard = %+v", dash)
	}

	markToday(t, f, model.AttendancePresent)
	hw, err := f.teachers.AssignHomework(ctx, "T1", &model.AssignHomeworkRequest{ClassID: "10A", Subject: "Maths", DueDate: "2026-03-12"})
	if err != nil {
		t.Fatalf("AssignHomework: %v", err)
	}

	dash, _ = f.students.Dashboard(ctx, "S1")
	if dash.TodayAttendance != "Present" || dash.PendingHomework != 1 {
		t.Errorf("dashboard = %+v, want Present with 1 pending", dash)
	}

	if err := f.students.SubmitHomework(ctx, hw.ID, "S1"); err != nil {
		t.Fatalf("SubmitHomework: %v", err)
	}
	if err := f.students.SubmitHomework(ctx, hw.ID, "S1"); err != nil {
		t.Fatalf("second SubmitHomework: %v", err)
	}
	dash, _ = f.students.Dashboard(ctx, "S1")
	if dash.PendingHomework != 0 {
		t.Errorf("pending after submit = %d", dash.PendingHomework)
	}
}

func TestStudentOperationsRejectOtherRoles(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	if _, err := f.students.Dashboard(ctx, "T1"); !errors.Is(err, ErrWrongRole) {
		t.Errorf("teacher as student = %v, want ErrWrongRole", err)
	}
	if _, err := f.students.Attendance(ctx, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("unknown student = %v, want ErrUserNotFound", err)
	}
	if err := f.students.SubmitHomework(ctx, uuid.New(), "S1"); !errors.Is(err, ErrHomeworkNotFound) {
		t.Errorf("unknown homework = %v, want ErrHomeworkNotFound", err)
	}
}

func TestStudentListsAreNeverNil(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	days, err := f.students.Attendance(ctx, "S2")
	if err != nil || days == nil || len(days) != 0 {
		t.Errorf("Attendance = %#v, %v; want empty slice", days, err)
	}
	items, err := f.students.Homework(ctx, "S2")
	if err != nil || items == nil || len(items) != 0 {
		t.Errorf("Homework = %#v, %v; want empty slice", items, err)
	}
}

func TestMarkAttendanceOverwritesSameDay(t *testing.T) {
	f := newFixture()

	markToday(t, f, model.AttendancePresent)
	markToday(t, f, model.AttendanceAbsent)

	days, err := f.students.Attendance(context.Background(), "S1")
	if err != nil {
		t.Fatalf("Attendance: %v", err)
	}
	if len(days) != 1 || days[0].Status != "Absent" || days[0].Date != "2026-03-09" {
		t.Errorf("history = %+v, want one Absent mark", days)
	}
}

func TestSubmitHomeworkFromAnotherClass(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	hw, err := f.teachers.AssignHomework(ctx, "T2", &model.AssignHomeworkRequest{ClassID: "10B", Subject: "Art", DueDate: "2026-03-12"})
	if err != nil {
		t.Fatalf("AssignHomework: %v", err)
	}
	if err := f.students.SubmitHomework(ctx, hw.ID, "S1"); !errors.Is(err, ErrHomeworkNotFound) {
		t.Errorf("submit 10B homework as 10A student = %v, want ErrHomeworkNotFound", err)
	}
}

func TestMarkAttendanceRejectsStudentsOffRoster(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.teachers.MarkAttendance(ctx, "T1", &model.MarkAttendanceRequest{
		ClassID: "10A",
		Date:    "2026-03-09",
		Attendance: []model.AttendanceEntry{
			{StudentID: "S1", StudentName: "Asha Verma", Status: model.AttendancePresent},
			{StudentID: "T2", StudentName: "Mr. Das", Status: model.AttendancePresent},
		},
	})
	if !errors.Is(err, ErrStudentNotInClass) {
		t.Fatalf("err = %v, want ErrStudentNotInClass", err)
	}
	if days, _ := f.students.Attendance(ctx, "S1"); len(days) != 0 {
		t.Errorf("rejected batch stored %+v", days)
	}
}

func TestTeacherClassOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	tests := []struct {
		name string
		call func() error
	}{
		{"roster", func() error { _, err := f.teachers.Roster(ctx, "T2", "10A"); return err }},
		{"attendance", func() error {
			_, err := f.teachers.MarkAttendance(ctx, "T2", &model.MarkAttendanceRequest{ClassID: "10A", Date: "2026-03-09"})
			return err
		}},
		{"homework", func() error {
			_, err := f.teachers.AssignHomework(ctx, "T2", &model.AssignHomeworkRequest{ClassID: "10A", Subject: "Art", DueDate: "2026-03-10"})
			return err
		}},
		{"add student", func() error {
			_, err := f.teachers.AddStudent(ctx, "T2", &model.AddStudentRequest{Email: "x@y.test", Password: "secret1", Name: "New Kid", ClassID: "10A"})
			return err
		}},
		{"export", func() error { _, err := f.teachers.ClassAttendance(ctx, "T2", "10A", "2026-03-01", "2026-03-09"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrClassMismatch) {
				t.Errorf("err = %v, want ErrClassMismatch", err)
			}
		})
	}
}

func TestTeacherDashboardAndRoster(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	dash, err := f.teachers.Dashboard(ctx, "T1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.StudentCount != 2 || dash.ClassID != "10A" {
		t.Errorf("dashboard = %+v", dash)
	}

	roster, err := f.teachers.Roster(ctx, "T1", "10A")
	if err != nil {
		t.Fatalf("Roster: %v", err)
	}
	if len(roster) != 2 || roster[0].Name != "Asha Verma" {
		t.Errorf("roster = %+v, want sorted by name", roster)
	}

	empty, err := f.teachers.Roster(ctx, "T2", "10B")
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("empty roster = %#v, %v", empty, err)
	}
}

func TestTeacherRejectsBadDates(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.teachers.AssignHomework(ctx, "T1", &model.AssignHomeworkRequest{ClassID: "10A", Subject: "Maths", DueDate: "12/03/2026"})
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("bad due date = %v, want ErrInvalidDate", err)
	}
	if _, err := f.teachers.ClassAttendance(ctx, "T1", "10A", "2026-03-09", "2026-03-01"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("reversed range = %v, want ErrInvalidDate", err)
	}
}

func TestAddStudentEnrolsInClass(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	u, err := f.teachers.AddStudent(ctx, "T1", &model.AddStudentRequest{
		Email: "New.Kid@School.test", Password: "secret1", Name: " New Kid ", ClassID: "10A", ParentID: "P1",
	})
	if err != nil {
		t.Fatalf("AddStudent: %v", err)
	}
	if u.Role != model.RoleStudent || u.ClassID != "10A" || u.Email != "new.kid@school.test" || u.Name != "New Kid" {
		t.Errorf("created = %+v", u)
	}

	_, err = f.teachers.AddStudent(ctx, "T1", &model.AddStudentRequest{Email: "asha@school.test", Password: "secret1", Name: "Dup", ClassID: "10A"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email = %v, want ErrEmailTaken", err)
	}

	_, err = f.teachers.AddStudent(ctx, "T1", &model.AddStudentRequest{Email: "z@school.test", Password: "secret1", Name: "Zed", ClassID: "10A", ParentID: "T2"})
	if !errors.Is(err, ErrInvalidParent) {
		t.Errorf("teacher as parent = %v, want ErrInvalidParent", err)
	}
}

func TestRegisterPinsExternalUID(t *testing.T) {
	f := newFixture()

	u, err := f.accounts.Register(context.Background(), &model.RegisterRequest{
		Email: "ext@school.test", Password: "secret1", Name: "External", Role: model.RoleTeacher, ClassID: "10C", UID: "casdoor-42",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.UID != "casdoor-42" {
		t.Errorf("uid = %q", u.UID)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	if _, err := f.accounts.Register(ctx, &model.RegisterRequest{
		Email: "pass@school.test", Password: "secret1", Name: "Pass", Role: model.RoleParent,
	}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := f.accounts.Authenticate(ctx, "PASS@school.test", "secret1"); err != nil {
		t.Errorf("valid login = %v", err)
	}
	if _, err := f.accounts.Authenticate(ctx, "pass@school.test", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password = %v", err)
	}
	if _, err := f.accounts.Authenticate(ctx, "nobody@school.test", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email = %v", err)
	}
}

func TestParentLink(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	markToday(t, f, model.AttendancePresent)

	dash, err := f.parents.Dashboard(ctx, "P1")
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if dash.ChildID != "S1" || dash.ChildName != "Asha Verma" {
		t.Errorf("dashboard = %+v", dash)
	}

	days, err := f.parents.ChildAttendance(ctx, "P1", "S1")
	if err != nil || len(days) != 1 {
		t.Errorf("own child attendance = %+v, %v", days, err)
	}

	if _, err := f.parents.ChildAttendance(ctx, "P2", "S1"); !errors.Is(err, ErrNotLinkedChild) {
		t.Errorf("other parent's child = %v, want ErrNotLinkedChild", err)
	}
	if _, err := f.parents.ChildHomework(ctx, "P1", "ghost"); !errors.Is(err, ErrNotLinkedChild) {
		t.Errorf("unknown child = %v, want ErrNotLinkedChild", err)
	}

	lonely := &model.User{UID: "P3", Email: "p3@home.test", Name: "Lonely", Role: model.RoleParent}
	f.users.put(lonely)
	if _, err := f.parents.Dashboard(ctx, "P3"); !errors.Is(err, ErrNoLinkedChild) {
		t.Errorf("parent without child = %v, want ErrNoLinkedChild", err)
	}
}

type stubIdentityVerifier map[string]string

func (s stubIdentityVerifier) VerifyIDToken(_ context.Context, token string) (*identity.Identity, error) {
	uid, ok := s[token]
	if !ok {
		return nil, identity.ErrInvalidToken
	}
	return &identity.Identity{UID: uid}, nil
}

func TestVerifyToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	v := NewVerificationService(stubIdentityVerifier{"good": "T1", "orphan": "nobody"}, f.users)

	p, err := v.VerifyToken(ctx, "good")
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if p.UID != "T1" || p.Role != model.RoleTeacher || p.ClassID != "10A" {
		t.Errorf("principal = %+v", p)
	}

	again, _ := v.VerifyToken(ctx, "good")
	if *again != *p {
		t.Errorf("second verification = %+v, want %+v", again, p)
	}

	if _, err := v.VerifyToken(ctx, ""); !errors.Is(err, identity.ErrInvalidToken) {
		t.Errorf("empty token = %v", err)
	}
	if _, err := v.VerifyToken(ctx, "forged"); !errors.Is(err, identity.ErrInvalidToken) {
		t.Errorf("forged token = %v", err)
	}
	if _, err := v.VerifyToken(ctx, "orphan"); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("missing profile = %v, want ErrProfileNotFound", err)
	}
}
