package repository

import (
	"coursehub_backend/internal/model"

	"gorm.io/gorm"
)

type LessonRepository struct {
	DB *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{DB: db}
}

func (r *LessonRepository) Create(lesson *model.Lesson) error {
	return r.DB.Create(lesson).Error
}

func (r *LessonRepository) FindByID(id uint) (*model.Lesson, error) {
	var lesson model.Lesson
	err := r.DB.First(&lesson, id).Error
	return &lesson, err
}

func (r *LessonRepository) Update(lesson *model.Lesson) error {
	return r.DB.Save(lesson).Error
}

// FindByCourse 按 order 升序返回，order 相同时按 id 保证稳定
func (r *LessonRepository) FindByCourse(courseID uint) ([]model.Lesson, error) {
	var lessons []model.Lesson
	err := r.DB.Where("course_id = ?", courseID).
		Order("`order` ASC, id ASC").
		Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) CountByCourse(courseID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Lesson{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

// Delete 删除课时并级联删除其题目、答案与进度记录
func (r *LessonRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var questionIDs []uint
		if err := tx.Model(&model.QuizQuestion{}).
			Where("lesson_id = ?", id).
			Pluck("id", &questionIDs).Error; err != nil {
			return err
		}

		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&model.Answer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("lesson_id = ?", id).Delete(&model.QuizQuestion{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("lesson_id = ?", id).Delete(&model.Progress{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.Lesson{}, id).Error
	})
}
