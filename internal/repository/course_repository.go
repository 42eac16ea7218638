package repository

import (
	"coursehub_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id uint) (*model.Course, error) {
	var course model.Course
	err := r.DB.First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Course{}, id).Error
}

// ListPublished 课程目录：只返回已发布课程，支持按分类/难度过滤
func (r *CourseRepository) ListPublished(page, limit int, category, level string) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	q := r.DB.Model(&model.Course{}).Where("published = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if level != "" {
		q = q.Where("level = ?", level)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("id DESC").Offset((page - 1) * limit).Limit(limit).Find(&courses).Error
	return courses, total, err
}

func (r *CourseRepository) ListByInstructor(instructorID uint) ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Where("instructor_id = ?", instructorID).Order("id DESC").Find(&courses).Error
	return courses, err
}
