package service

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/pkg/database"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type testEnv struct {
	db *gorm.DB

	users       *repository.UserRepository
	courses     *repository.CourseRepository
	lessons     *repository.LessonRepository
	questions   *repository.QuestionRepository
	enrollments *repository.EnrollmentRepository
	progress    *repository.ProgressRepository

	lessonSvc     *LessonService
	courseSvc     *CourseService
	quizSvc       *QuizService
	enrollmentSvc *EnrollmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	env := &testEnv{
		db:          db,
		users:       repository.NewUserRepository(db),
		courses:     repository.NewCourseRepository(db),
		lessons:     repository.NewLessonRepository(db),
		questions:   repository.NewQuestionRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		progress:    repository.NewProgressRepository(db),
	}
	env.courseSvc = NewCourseService(env.courses)
	env.lessonSvc = NewLessonService(env.lessons, env.courses)
	env.enrollmentSvc = NewEnrollmentService(env.enrollments, env.progress, env.courses, env.lessons, nil)
	env.quizSvc = NewQuizService(env.questions, env.lessons, env.courses, env.enrollments, env.progress, db, nil)
	return env
}

func (env *testEnv) createUser(t *testing.T, role model.UserRole) *model.User {
	t.Helper()

	user := &model.User{
		Name:     "user",
		Email:    model.GenerateUUID() + "@test.local",
		Password: "hashed",
		Role:     role,
	}
	if err := env.users.Create(user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// 活跃时间由 BeforeCreate 赋值，SQLite 与 MySQL 行为一致
func TestCreateUser_DefaultsActivityTimes(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "student")

	if user.LastLogin.IsZero() {
		t.Error("LastLogin should be defaulted on create")
	}
	if user.LastSeen.IsZero() {
		t.Error("LastSeen should be defaulted on create")
	}
}

func (env *testEnv) createCourse(t *testing.T, instructorID uint, published bool) *model.Course {
	t.Helper()

	course := &model.Course{
		Title:        "Go 入门",
		Description:  "desc",
		Category:     "programming",
		Level:        "beginner",
		Published:    published,
		InstructorID: instructorID,
	}
	if err := env.courses.Create(course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	return course
}

func (env *testEnv) createLesson(t *testing.T, courseID uint, order int, isQuiz bool) *model.Lesson {
	t.Helper()

	lesson := &model.Lesson{
		CourseID:    courseID,
		Title:       "lesson",
		Description: "desc",
		Order:       order,
		IsQuiz:      isQuiz,
	}
	if err := env.lessons.Create(lesson); err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	return lesson
}

func (env *testEnv) enroll(t *testing.T, studentID, courseID uint) *model.Enrollment {
	t.Helper()

	enrollment, err := env.enrollmentSvc.Enroll(studentID, courseID)
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	return enrollment
}

func (env *testEnv) createQuestion(t *testing.T, instructorID, lessonID uint, points int, answers []AnswerRequest) *model.QuizQuestion {
	t.Helper()

	question, err := env.quizSvc.CreateQuestion(instructorID, lessonID, QuestionRequest{
		QuestionText: "题目",
		Points:       points,
		Answers:      answers,
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	return question
}
