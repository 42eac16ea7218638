package repository

import (
	"coursehub_backend/internal/model"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	DB *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{DB: db}
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.DB.Create(enrollment).Error
}

func (r *EnrollmentRepository) FindByStudentAndCourse(studentID, courseID uint) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := r.DB.Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error
	return &enrollment, err
}

func (r *EnrollmentRepository) ListByStudent(studentID uint) ([]model.Enrollment, error) {
	var enrollments []model.Enrollment
	err := r.DB.Where("student_id = ?", studentID).Find(&enrollments).Error
	return enrollments, err
}

// Delete 退课时连同进度记录一起删除。
// 物理删除，保证重新报名不会撞上 (student, course) 唯一索引。
func (r *EnrollmentRepository) Delete(enrollmentID uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("enrollment_id = ?", enrollmentID).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Enrollment{}, enrollmentID).Error
	})
}
