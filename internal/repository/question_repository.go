package repository

import (
	"coursehub_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

// CreateWithAnswers 同一事务内创建题目与全部答案
func (r *QuestionRepository) CreateWithAnswers(question *model.QuizQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		answers := question.Answers
		question.Answers = nil
		if err := tx.Create(question).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].QuestionID = question.ID
		}
		if err := tx.Create(&answers).Error; err != nil {
			return err
		}
		question.Answers = answers
		return nil
	})
}

// UpdateWithAnswers 更新题目并整体替换答案集合
func (r *QuestionRepository) UpdateWithAnswers(question *model.QuizQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		answers := question.Answers
		question.Answers = nil
		if err := tx.Save(question).Error; err != nil {
			return err
		}
		if err := tx.Where("question_id = ?", question.ID).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].ID = 0
			answers[i].QuestionID = question.ID
		}
		if err := tx.Create(&answers).Error; err != nil {
			return err
		}
		question.Answers = answers
		return nil
	})
}

func (r *QuestionRepository) FindByID(id uint) (*model.QuizQuestion, error) {
	var question model.QuizQuestion
	err := r.DB.Preload("Answers").First(&question, id).Error
	return &question, err
}

func (r *QuestionRepository) FindByLesson(lessonID uint) ([]model.QuizQuestion, error) {
	var questions []model.QuizQuestion
	err := r.DB.Preload("Answers").
		Where("lesson_id = ?", lessonID).
		Order("id ASC").
		Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&model.Answer{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.QuizQuestion{}, id).Error
	})
}
