package service

import (
	"context"
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// AccessState 课程内容的访问判定，未知情况一律 Locked
type AccessState string

const (
	AccessLocked   AccessState = "locked"
	AccessUnlocked AccessState = "unlocked"
)

const progressCacheTTL = 5 * time.Minute

func progressCacheKey(studentID, courseID uint) string {
	return fmt.Sprintf("course_progress:%d:%d", studentID, courseID)
}

type EnrollmentService struct {
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
	CourseRepo     *repository.CourseRepository
	LessonRepo     *repository.LessonRepository
	RDB            *redis.Client
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	courseRepo *repository.CourseRepository,
	lessonRepo *repository.LessonRepository,
	rdb *redis.Client,
) *EnrollmentService {
	return &EnrollmentService{
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
		CourseRepo:     courseRepo,
		LessonRepo:     lessonRepo,
		RDB:            rdb,
	}
}

// HasAccess 判定用户能否查看课程内容。
// 任何查询失败都按 Locked 处理，绝不放行。
func (s *EnrollmentService) HasAccess(user *model.User, courseID uint) AccessState {
	if user == nil {
		return AccessLocked
	}
	if user.Role == model.Admin {
		return AccessUnlocked
	}

	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return AccessLocked
	}
	if course.InstructorID == user.ID {
		return AccessUnlocked
	}

	_, err = s.EnrollmentRepo.FindByStudentAndCourse(user.ID, courseID)
	if err != nil {
		return AccessLocked
	}
	return AccessUnlocked
}

// Enroll 幂等报名：已报名直接返回现有记录
func (s *EnrollmentService) Enroll(studentID, courseID uint) (*model.Enrollment, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if !course.Published {
		return nil, util.ErrCourseNotFound
	}

	existing, err := s.EnrollmentRepo.FindByStudentAndCourse(studentID, courseID)
	if err == nil {
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	enrollment := &model.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
	}
	if err := s.EnrollmentRepo.Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) Unenroll(ctx context.Context, studentID, courseID uint) error {
	enrollment, err := s.EnrollmentRepo.FindByStudentAndCourse(studentID, courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrNotEnrolled
		}
		return err
	}
	if err := s.EnrollmentRepo.Delete(enrollment.ID); err != nil {
		return err
	}
	s.invalidateProgress(ctx, studentID, courseID)
	return nil
}

func (s *EnrollmentService) ListByStudent(studentID uint) ([]model.Enrollment, error) {
	return s.EnrollmentRepo.ListByStudent(studentID)
}

// CourseProgressPercent 返回 round(100 * 已完成课时 / 课时总数)，
// 没有课时的课程恒为 0。结果短期缓存在 Redis。
func (s *EnrollmentService) CourseProgressPercent(ctx context.Context, studentID, courseID uint) (int, error) {
	enrollment, err := s.EnrollmentRepo.FindByStudentAndCourse(studentID, courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, util.ErrNotEnrolled
		}
		return 0, err
	}

	key := progressCacheKey(studentID, courseID)
	if s.RDB != nil {
		if cached, err := s.RDB.Get(ctx, key).Result(); err == nil {
			if percent, err := strconv.Atoi(cached); err == nil {
				return percent, nil
			}
		}
	}

	total, err := s.LessonRepo.CountByCourse(courseID)
	if err != nil {
		return 0, err
	}

	percent := 0
	if total > 0 {
		completed, err := s.ProgressRepo.CountCompleted(enrollment.ID, courseID)
		if err != nil {
			return 0, err
		}
		percent = int(math.Round(100 * float64(completed) / float64(total)))
	}

	if s.RDB != nil {
		s.RDB.Set(ctx, key, strconv.Itoa(percent), progressCacheTTL)
	}
	return percent, nil
}

func (s *EnrollmentService) invalidateProgress(ctx context.Context, studentID, courseID uint) {
	if s.RDB != nil {
		s.RDB.Del(ctx, progressCacheKey(studentID, courseID))
	}
}

// CompleteLesson 标记普通课时完成。测验课时必须走提交判分，
// 已完成的记录保持不变（单调，不可回退）。
func (s *EnrollmentService) CompleteLesson(ctx context.Context, studentID, lessonID uint) (*model.Progress, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if lesson.IsQuiz {
		return nil, util.ErrQuizLesson
	}

	enrollment, err := s.EnrollmentRepo.FindByStudentAndCourse(studentID, lesson.CourseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrNotEnrolled
		}
		return nil, err
	}

	progress, err := s.ProgressRepo.FindByEnrollmentAndLesson(enrollment.ID, lessonID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		// First 未命中时返回的是零值指针，不是 nil
		progress = nil
	}
	if progress != nil && progress.IsCompleted {
		return progress, nil
	}

	now := time.Now()
	if progress == nil {
		progress = &model.Progress{
			EnrollmentID: enrollment.ID,
			LessonID:     lessonID,
		}
		progress.IsCompleted = true
		progress.CompletedAt = &now
		if err := s.ProgressRepo.Create(progress); err != nil {
			return nil, err
		}
	} else {
		progress.IsCompleted = true
		progress.CompletedAt = &now
		if err := s.ProgressRepo.Update(progress); err != nil {
			return nil, err
		}
	}

	s.invalidateProgress(ctx, studentID, lesson.CourseID)
	return progress, nil
}
