package model

// QuizQuestion 测验题目，只属于 isQuiz 的课时
// 持久化时必须恰好有一个正确答案
// swagger:model QuizQuestion
type QuizQuestion struct {
	BaseModel
	LessonID     uint   `gorm:"index;not null" json:"lessonId"`
	QuestionText string `gorm:"type:text;not null" json:"questionText"`
	Points       int    `gorm:"not null;default:10" json:"points"`

	Answers []Answer `gorm:"foreignKey:QuestionID" json:"answers,omitempty"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// swagger:model Answer
type Answer struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	AnswerText string `gorm:"type:text;not null" json:"answerText"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (Answer) TableName() string {
	return "answers"
}

// CorrectAnswerID 返回正确答案的 ID，没有则返回 0
func (q *QuizQuestion) CorrectAnswerID() uint {
	for _, a := range q.Answers {
		if a.IsCorrect {
			return a.ID
		}
	}
	return 0
}
