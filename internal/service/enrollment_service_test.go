package service

import (
	"context"
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/util"
	"errors"
	"testing"
)

func TestHasAccess_FailClosed(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.createUser(t, "instructor")
	student := env.createUser(t, "student")
	admin := env.createUser(t, "admin")
	course := env.createCourse(t, instructor.ID, true)

	tests := []struct {
		name     string
		user     *model.User
		courseID uint
		want     AccessState
	}{
		{"nil user", nil, course.ID, AccessLocked},
		{"unenrolled student", student, course.ID, AccessLocked},
		{"course owner", instructor, course.ID, AccessUnlocked},
		{"admin", admin, course.ID, AccessUnlocked},
		{"missing course", student, 9999, AccessLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := env.enrollmentSvc.HasAccess(tt.user, tt.courseID); got != tt.want {
				t.Errorf("HasAccess() = %v, want %v", got, tt.want)
			}
		})
	}

	env.enroll(t, student.ID, course.ID)
	if got := env.enrollmentSvc.HasAccess(student, course.ID); got != AccessUnlocked {
		t.Errorf("HasAccess() after enroll = %v, want unlocked", got)
	}
}

func TestEnroll_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.createUser(t, "instructor")
	student := env.createUser(t, "student")
	course := env.createCourse(t, instructor.ID, true)

	first := env.enroll(t, student.ID, course.ID)
	second := env.enroll(t, student.ID, course.ID)
	if first.ID != second.ID {
		t.Errorf("repeat enroll created a new record: %d vs %d", first.ID, second.ID)
	}
}

func TestEnroll_UnpublishedCourseHidden(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.createUser(t, "instructor")
	student := env.createUser(t, "student")
	course := env.createCourse(t, instructor.ID, false)

	_, err := env.enrollmentSvc.Enroll(student.ID, course.ID)
	if !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("Enroll() = %v, want ErrCourseNotFound", err)
	}
}

func TestUnenroll(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.createUser(t, "instructor")
	student := env.createUser(t, "student")
	course := env.createCourse(t, instructor.ID, true)

	err := env.enrollmentSvc.Unenroll(context.Background(), student.ID, course.ID)
	if !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("Unenroll() without enrollment = %v, want ErrNotEnrolled", err)
	}

	env.enroll(t, student.ID, course.ID)
	if err := env.enrollmentSvc.Unenroll(context.Background(), student.ID, course.ID); err != nil {
		t.Fatalf("Unenroll() error = %v", err)
	}
	if got := env.enrollmentSvc.HasAccess(student, course.ID); got != AccessLocked {
		t.Errorf("HasAccess() after unenroll = %v, want locked", got)
	}
}

func TestCourseProgressPercent(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.createUser(t, "instructor")
	student := env.createUser(t, "student")
	course := env.createCourse(t, instructor.ID, true)
	env.enroll(t, student.ID, course.ID)

	// 没有课时时恒为 0
	percent, err := env.enrollmentSvc.CourseProgressPercent(context.Background(), student.ID, course.ID)
	if err != nil {
		t.Fatalf("CourseProgressPercent() error = %v", err)
	}
	if percent != 0 {
		t.Errorf("percent = %d, want 0 for empty course", percent)
	}

	lessons := make([]*model.Lesson, 4)
	for i := range lessons {
		lessons[i] = env.createLesson(t, course.ID, i, false)
	}

	if _, err := env.enrollmentSvc.CompleteLesson(context.Background(), student.ID, lessons[0].ID); err != nil {
		t.Fatalf("CompleteLesson() error = %v", err)
	}

	percent, err = env.enrollmentSvc.CourseProgressPercent(context.Background(), student.ID, course.ID)
	if err != nil {
		t.Fatalf("CourseProgressPercent() error = %v", err)
	}
	if percent != 25 {
		t.Errorf("percent = %d, want 25", percent)
	}
}

func TestCourseProgressPercent_RequiresEnrollment(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.createUser(t, "instructor")
	student := env.createUser(t, "student")
	course := env.createCourse(t, instructor.ID, true)

	_, err := env.enrollmentSvc.CourseProgressPercent(context.Background(), student.ID, course.ID)
	if !errors.Is(err, util.ErrNotEnrolled) {
		t.Fatalf("CourseProgressPercent() = %v, want ErrNotEnrolled", err)
	}
}

func TestCompleteLesson_PersistsEnrollmentAndLesson(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.createUser(t, "instructor")
	student := env.createUser(t, "student")
	course := env.createCourse(t, instructor.ID, true)
	lesson := env.createLesson(t, course.ID, 0, false)
	enrollment := env.enroll(t, student.ID, course.ID)

	progress, err := env.enrollmentSvc.CompleteLesson(context.Background(), student.ID, lesson.ID)
	if err != nil {
		t.Fatalf("CompleteLesson() error = %v", err)
	}
	if progress.EnrollmentID != enrollment.ID || progress.LessonID != lesson.ID {
		t.Errorf("progress row = (enrollment %d, lesson %d), want (%d, %d)",
			progress.EnrollmentID, progress.LessonID, enrollment.ID, lesson.ID)
	}

	// 落库的记录也携带外键，不是零值行
	stored, err := env.progress.FindByEnrollmentAndLesson(enrollment.ID, lesson.ID)
	if err != nil {
		t.Fatalf("stored progress not found: %v", err)
	}
	if !stored.IsCompleted {
		t.Error("stored progress should be completed")
	}
}

func TestCompleteLesson_Monotonic(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.createUser(t, "instructor")
	student := env.createUser(t, "student")
	course := env.createCourse(t, instructor.ID, true)
	lesson := env.createLesson(t, course.ID, 0, false)
	env.enroll(t, student.ID, course.ID)

	first, err := env.enrollmentSvc.CompleteLesson(context.Background(), student.ID, lesson.ID)
	if err != nil {
		t.Fatalf("CompleteLesson() error = %v", err)
	}
	if !first.IsCompleted || first.CompletedAt == nil {
		t.Fatalf("unexpected progress after completion: %+v", first)
	}

	second, err := env.enrollmentSvc.CompleteLesson(context.Background(), student.ID, lesson.ID)
	if err != nil {
		t.Fatalf("repeat CompleteLesson() error = %v", err)
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("CompletedAt changed on repeat completion: %v -> %v", first.CompletedAt, second.CompletedAt)
	}
}

func TestCompleteLesson_RejectsQuizLesson(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.createUser(t, "instructor")
	student := env.createUser(t, "student")
	course := env.createCourse(t, instructor.ID, true)
	quiz := env.createLesson(t, course.ID, 0, true)
	env.enroll(t, student.ID, course.ID)

	_, err := env.enrollmentSvc.CompleteLesson(context.Background(), student.ID, quiz.ID)
	if !errors.Is(err, util.ErrQuizLesson) {
		t.Fatalf("CompleteLesson() on quiz = %v, want ErrQuizLesson", err)
	}
}

func TestCourseProgress_CountsQuizCompletion(t *testing.T) {
	env := newTestEnv(t)
	instructor := env.createUser(t, "instructor")
	student := env.createUser(t, "student")
	course := env.createCourse(t, instructor.ID, true)
	env.createLesson(t, course.ID, 0, false)
	quiz := env.createLesson(t, course.ID, 1, true)
	env.enroll(t, student.ID, course.ID)
	q := env.createQuestion(t, instructor.ID, quiz.ID, 10, twoAnswers())

	if _, err := env.quizSvc.Submit(context.Background(), student.ID, quiz.ID, QuizSubmission{
		Answers: map[uint]uint{q.ID: q.CorrectAnswerID()},
	}); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	percent, err := env.enrollmentSvc.CourseProgressPercent(context.Background(), student.ID, course.ID)
	if err != nil {
		t.Fatalf("CourseProgressPercent() error = %v", err)
	}
	if percent != 50 {
		t.Errorf("percent = %d, want 50", percent)
	}
}
