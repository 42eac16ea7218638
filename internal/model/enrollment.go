package model

import "time"

// Enrollment 学生与课程的报名关系，(student, course) 唯一
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	StudentID uint `gorm:"not null;uniqueIndex:idx_student_course" json:"studentId"`
	CourseID  uint `gorm:"not null;uniqueIndex:idx_student_course" json:"courseId"`

	Progress []Progress `gorm:"foreignKey:EnrollmentID" json:"progress,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// Progress 某个报名下单节课的完成记录
// IsCompleted 单调 false→true，CompletedAt 与 QuizScore 只写一次
// swagger:model Progress
type Progress struct {
	BaseModel
	EnrollmentID uint       `gorm:"not null;uniqueIndex:idx_enrollment_lesson" json:"enrollmentId"`
	LessonID     uint       `gorm:"not null;uniqueIndex:idx_enrollment_lesson" json:"lessonId"`
	IsCompleted  bool       `gorm:"default:false" json:"isCompleted"`
	CompletedAt  *time.Time `json:"completedAt"`
	QuizScore    *int       `json:"quizScore"` // 0..100，非测验课时为 null
}

func (Progress) TableName() string {
	return "progress"
}
