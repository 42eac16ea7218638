package client

import "time"

// Course 服务端课程对象
type Course struct {
	ID           uint    `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	Level        string  `json:"level"`
	Price        float64 `json:"price"`
	Published    bool    `json:"published"`
	InstructorID uint    `json:"instructorId"`
}

// Lesson 服务端课时对象
type Lesson struct {
	ID          uint    `json:"id"`
	CourseID    uint    `json:"courseId"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Content     *string `json:"content"`
	VideoURL    *string `json:"videoUrl"`
	DocumentURL *string `json:"documentUrl"`
	Order       int     `json:"order"`
	IsQuiz      bool    `json:"isQuiz"`
}

// Enrollment 报名记录
type Enrollment struct {
	ID        uint `json:"id"`
	StudentID uint `json:"studentId"`
	CourseID  uint `json:"courseId"`
}

// CourseDetail 课程详情：未解锁时 Lessons 为空
type CourseDetail struct {
	Course  Course   `json:"course"`
	Access  string   `json:"access"`
	Lessons []Lesson `json:"lessons"`
}

// QuizAnswer 学生视图的选项，不含正确性标记
type QuizAnswer struct {
	ID         uint   `json:"id"`
	AnswerText string `json:"answerText"`
}

// QuizQuestion 学生视图的题目
type QuizQuestion struct {
	ID           uint         `json:"id"`
	QuestionText string       `json:"questionText"`
	Points       int          `json:"points"`
	Answers      []QuizAnswer `json:"answers"`
}

// QuizView 打开测验的响应
type QuizView struct {
	LessonID    uint           `json:"lessonId"`
	Completed   bool           `json:"completed"`
	Score       *int           `json:"score"`
	CompletedAt *time.Time     `json:"completedAt"`
	Questions   []QuizQuestion `json:"questions"`
}

// QuizResult 提交测验的判分结果
type QuizResult struct {
	LessonID         uint       `json:"lessonId"`
	Score            int        `json:"score"`
	CompletedAt      *time.Time `json:"completedAt"`
	AlreadyCompleted bool       `json:"alreadyCompleted"`
}

// AuthoredAnswer 讲师视图的选项
type AuthoredAnswer struct {
	ID         uint   `json:"id"`
	AnswerText string `json:"answerText"`
	IsCorrect  bool   `json:"isCorrect"`
}

// AuthoredQuestion 讲师视图的题目
type AuthoredQuestion struct {
	ID           uint             `json:"id"`
	LessonID     uint             `json:"lessonId"`
	QuestionText string           `json:"questionText"`
	Points       int              `json:"points"`
	Answers      []AuthoredAnswer `json:"answers"`
}
