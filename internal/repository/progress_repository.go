package repository

import (
	"coursehub_backend/internal/model"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByEnrollmentAndLesson(enrollmentID, lessonID uint) (*model.Progress, error) {
	var progress model.Progress
	err := r.DB.Where("enrollment_id = ? AND lesson_id = ?", enrollmentID, lessonID).
		First(&progress).Error
	return &progress, err
}

func (r *ProgressRepository) Create(progress *model.Progress) error {
	return r.DB.Create(progress).Error
}

func (r *ProgressRepository) Update(progress *model.Progress) error {
	return r.DB.Save(progress).Error
}

// CountCompleted 已完成课时数，join lessons 排除已删课时的孤儿进度
func (r *ProgressRepository) CountCompleted(enrollmentID, courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Progress{}).
		Joins("JOIN lessons ON lessons.id = progress.lesson_id AND lessons.deleted_at IS NULL").
		Where("progress.enrollment_id = ? AND lessons.course_id = ? AND progress.is_completed = ?",
			enrollmentID, courseID, true).
		Count(&count).Error
	return count, err
}
