package model

// Lesson 课程下的一节课，Order 在同一课程内唯一，0 起始
// swagger:model Lesson
type Lesson struct {
	BaseModel
	CourseID    uint    `gorm:"index;not null" json:"courseId"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Content     *string `gorm:"type:text" json:"content"`
	VideoURL    *string `gorm:"size:500" json:"videoUrl"`
	DocumentURL *string `gorm:"size:500" json:"documentUrl"`
	Order       int     `gorm:"not null;default:0;index:idx_course_order" json:"order"`
	IsQuiz      bool    `gorm:"default:false" json:"isQuiz"`

	Questions []QuizQuestion `gorm:"foreignKey:LessonID" json:"questions,omitempty"`
}

func (Lesson) TableName() string {
	return "lessons"
}
