package model

// swagger:model Course
type Course struct {
	BaseModel
	Title        string  `gorm:"size:255;not null" json:"title"`
	Description  string  `gorm:"type:text" json:"description"`
	Category     string  `gorm:"size:100;index" json:"category"`
	Level        string  `gorm:"size:50" json:"level"` // beginner, intermediate, advanced
	Price        float64 `gorm:"default:0" json:"price"`
	Published    bool    `gorm:"default:false;index" json:"published"`
	InstructorID uint    `gorm:"index;not null" json:"instructorId"`

	Lessons []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}
