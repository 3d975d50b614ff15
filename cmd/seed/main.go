package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/learnage/portal/internal/config"
	"github.com/learnage/portal/internal/database"
	"github.com/learnage/portal/internal/logger"
	"github.com/learnage/portal/internal/model"
	"github.com/learnage/portal/internal/repository"
	"github.com/learnage/portal/internal/service"
)

const seedPassword = "learnage123"

var students = []struct{ student, parent string }{
	{"Asha Verma", "Rohit Verma"},
	{"Kabir Singh", "Meera Singh"},
	{"Diya Nair", "Suresh Nair"},
	{"Arjun Mehta", "Pooja Mehta"},
	{"Isha Rao", "Vikram Rao"},
	{"Neel Joshi", "Anita Joshi"},
	{"Sara Khan", "Imran Khan"},
	{"Vivaan Iyer", "Lakshmi Iyer"},
}

func main() {
	classID := flag.String("class", "10A", "Class to seed")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)
	attendance := repository.NewAttendanceRepository(pool)
	homework := repository.NewHomeworkRepository(pool)

	userService := service.NewUserService(users, service.NewAuthService(cfg, nil))
	teacherService := service.NewTeacherService(users, attendance, homework, userService)

	slug := strings.ToLower(*classID)
	fmt.Printf("=== Seeding class %s ===\n", *classID)

	// Re-running the seed reuses accounts that already exist.
	ensure := func(req *model.RegisterRequest) *model.User {
		u, err := userService.Register(ctx, req)
		if errors.Is(err, service.ErrEmailTaken) {
			u, err = users.GetByEmail(ctx, req.Email)
		}
		if err != nil {
			log.Fatal().Err(err).Str("email", req.Email).Msg("Failed to seed account")
		}
		return u
	}

	teacher := ensure(&model.RegisterRequest{
		Email:    fmt.Sprintf("teacher.%s@learnage.test", slug),
		Password: seedPassword,
		Name:     "Class Teacher " + *classID,
		Role:     model.RoleTeacher,
		ClassID:  *classID,
	})
	fmt.Printf("Teacher: %s\n", teacher.Email)

	entries := make([]model.AttendanceEntry, 0, len(students))
	for i, s := range students {
		parent := ensure(&model.RegisterRequest{
			Email:    fmt.Sprintf("parent%d.%s@learnage.test", i+1, slug),
			Password: seedPassword,
			Name:     s.parent,
			Role:     model.RoleParent,
		})
		student := ensure(&model.RegisterRequest{
			Email:    fmt.Sprintf("student%d.%s@learnage.test", i+1, slug),
			Password: seedPassword,
			Name:     s.student,
			Role:     model.RoleStudent,
			ClassID:  *classID,
			ParentID: parent.UID,
		})

		status := model.AttendancePresent
		if i%4 == 3 {
			status = model.AttendanceAbsent
		}
		entries = append(entries, model.AttendanceEntry{StudentID: student.UID, StudentName: student.Name, Status: status})
	}
	fmt.Printf("Students and parents: %d pairs\n", len(students))

	today := time.Now().Format(service.DateLayout)
	n, err := teacherService.MarkAttendance(ctx, teacher.UID, &model.MarkAttendanceRequest{
		ClassID:    *classID,
		Date:       today,
		Attendance: entries,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to mark attendance")
	}
	fmt.Printf("Attendance for %s: %d marks\n", today, n)

	for _, hw := range []model.AssignHomeworkRequest{
		{ClassID: *classID, Subject: "Mathematics", Description: "Exercise 4.2, questions 1 to 10", DueDate: time.Now().AddDate(0, 0, 3).Format(service.DateLayout)},
		{ClassID: *classID, Subject: "Science", Description: "Write up the photosynthesis experiment", DueDate: time.Now().AddDate(0, 0, 7).Format(service.DateLayout)},
	} {
		hw := hw
		if _, err := teacherService.AssignHomework(ctx, teacher.UID, &hw); err != nil {
			log.Fatal().Err(err).Str("subject", hw.Subject).Msg("Failed to assign homework")
		}
	}

	fmt.Printf("\nSeed completed. Every account uses the password %q.\n", seedPassword)
}
