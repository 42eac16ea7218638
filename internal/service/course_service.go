package service

import (
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"

	"gorm.io/gorm"
)

// CourseService 课程目录：课程记录本身的增删改查与发布状态
type CourseService struct {
	CourseRepo *repository.CourseRepository
}

func NewCourseService(courseRepo *repository.CourseRepository) *CourseService {
	return &CourseService{CourseRepo: courseRepo}
}

type CourseRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Level       string  `json:"level"`
	Price       float64 `json:"price"`
}

func (s *CourseService) Create(instructorID uint, req CourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		Level:        req.Level,
		Price:        req.Price,
		InstructorID: instructorID,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

// findOwned 取课程并校验归属，课程只能由其讲师修改
func (s *CourseService) findOwned(instructorID, courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if course.InstructorID != instructorID {
		return nil, util.ErrPermissionDenied
	}
	return course, nil
}

func (s *CourseService) Update(instructorID, courseID uint, req CourseRequest) (*model.Course, error) {
	course, err := s.findOwned(instructorID, courseID)
	if err != nil {
		return nil, err
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Category = req.Category
	course.Level = req.Level
	course.Price = req.Price

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) SetPublished(instructorID, courseID uint, published bool) (*model.Course, error) {
	course, err := s.findOwned(instructorID, courseID)
	if err != nil {
		return nil, err
	}
	course.Published = published
	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) Delete(instructorID, courseID uint) error {
	if _, err := s.findOwned(instructorID, courseID); err != nil {
		return err
	}
	return s.CourseRepo.Delete(courseID)
}

func (s *CourseService) Get(courseID uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(courseID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrCourseNotFound
	}
	return course, err
}

func (s *CourseService) ListPublished(page, limit int, category, level string) ([]model.Course, int64, error) {
	return s.CourseRepo.ListPublished(page, limit, category, level)
}

func (s *CourseService) ListByInstructor(instructorID uint) ([]model.Course, error) {
	return s.CourseRepo.ListByInstructor(instructorID)
}
