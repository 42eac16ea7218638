package service

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"strings"

	"gorm.io/gorm"
)

// LessonService 课时序列：同一课程内 order 从 0 连续分配，新课时默认追加到末尾。
// 排序交换由客户端对两条课时各发一次更新完成，服务端只负责接受 order 写入
// 并保证读取始终按 (order, id) 稳定排序。
type LessonService struct {
	LessonRepo *repository.LessonRepository
	CourseRepo *repository.CourseRepository
}

func NewLessonService(lessonRepo *repository.LessonRepository, courseRepo *repository.CourseRepository) *LessonService {
	return &LessonService{
		LessonRepo: lessonRepo,
		CourseRepo: courseRepo,
	}
}

type LessonRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Content     *string `json:"content"`
	VideoURL    *string `json:"videoUrl"`
	DocumentURL *string `json:"documentUrl"`
	Order       *int    `json:"order"`
	IsQuiz      *bool   `json:"isQuiz"`
}

func (s *LessonService) ownsCourse(instructorID, courseID uint) error {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrCourseNotFound
		}
		return err
	}
	if course.InstructorID != instructorID {
		return util.ErrPermissionDenied
	}
	return nil
}

func (s *LessonService) Create(instructorID, courseID uint, req LessonRequest) (*model.Lesson, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, util.ErrLessonTitleRequired
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, util.ErrLessonDescriptionRequired
	}

	if err := s.ownsCourse(instructorID, courseID); err != nil {
		return nil, err
	}

	// 默认追加到序列末尾，调用方可显式覆盖
	order := 0
	if req.Order != nil {
		order = *req.Order
	} else {
		count, err := s.LessonRepo.CountByCourse(courseID)
		if err != nil {
			return nil, err
		}
		order = int(count)
	}

	lesson := &model.Lesson{
		CourseID:    courseID,
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		VideoURL:    req.VideoURL,
		DocumentURL: req.DocumentURL,
		Order:       order,
	}
	if req.IsQuiz != nil {
		lesson.IsQuiz = *req.IsQuiz
	}

	if err := s.LessonRepo.Create(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) Update(instructorID, lessonID uint, req LessonRequest) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}

	if err := s.ownsCourse(instructorID, lesson.CourseID); err != nil {
		return nil, err
	}

	if req.Title != "" {
		lesson.Title = req.Title
	}
	if req.Description != "" {
		lesson.Description = req.Description
	}
	if req.Content != nil {
		lesson.Content = req.Content
	}
	if req.VideoURL != nil {
		lesson.VideoURL = req.VideoURL
	}
	if req.DocumentURL != nil {
		lesson.DocumentURL = req.DocumentURL
	}
	if req.Order != nil {
		lesson.Order = *req.Order
	}
	if req.IsQuiz != nil {
		lesson.IsQuiz = *req.IsQuiz
	}

	if err := s.LessonRepo.Update(lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

func (s *LessonService) Delete(instructorID, lessonID uint) error {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrLessonNotFound
		}
		return err
	}

	if err := s.ownsCourse(instructorID, lesson.CourseID); err != nil {
		return err
	}

	return s.LessonRepo.Delete(lessonID)
}

func (s *LessonService) List(courseID uint) ([]model.Lesson, error) {
	return s.LessonRepo.FindByCourse(courseID)
}

func (s *LessonService) Get(lessonID uint) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrLessonNotFound
	}
	return lesson, err
}
