package service

import (
	"context"
	"coursehub_backend/internal/model"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/util"
	"math"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	MinAnswersPerQuestion = 2
	MaxAnswersPerQuestion = 10
)

// QuizService 测验题目的持久化与权威判分。
// 判分与完成标记在同一事务内落库，重复提交返回已记录的结果。
type QuizService struct {
	QuestionRepo   *repository.QuestionRepository
	LessonRepo     *repository.LessonRepository
	CourseRepo     *repository.CourseRepository
	EnrollmentRepo *repository.EnrollmentRepository
	ProgressRepo   *repository.ProgressRepository
	DB             *gorm.DB
	RDB            *redis.Client
}

func NewQuizService(
	questionRepo *repository.QuestionRepository,
	lessonRepo *repository.LessonRepository,
	courseRepo *repository.CourseRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	progressRepo *repository.ProgressRepository,
	db *gorm.DB,
	rdb *redis.Client,
) *QuizService {
	return &QuizService{
		QuestionRepo:   questionRepo,
		LessonRepo:     lessonRepo,
		CourseRepo:     courseRepo,
		EnrollmentRepo: enrollmentRepo,
		ProgressRepo:   progressRepo,
		DB:             db,
		RDB:            rdb,
	}
}

type AnswerRequest struct {
	AnswerText string `json:"answerText"`
	IsCorrect  bool   `json:"isCorrect"`
}

type QuestionRequest struct {
	QuestionText string          `json:"questionText"`
	Points       int             `json:"points"`
	Answers      []AnswerRequest `json:"answers"`
}

// validateQuestion 持久化前的不变量检查：题干与选项非空、
// 选项数在 2..10、恰好一个正确答案
func validateQuestion(req QuestionRequest) error {
	if strings.TrimSpace(req.QuestionText) == "" {
		return util.ErrQuestionTextEmpty
	}
	if len(req.Answers) < MinAnswersPerQuestion || len(req.Answers) > MaxAnswersPerQuestion {
		return util.ErrAnswerCountInvalid
	}

	correct := 0
	for _, a := range req.Answers {
		if strings.TrimSpace(a.AnswerText) == "" {
			return util.ErrAnswerTextEmpty
		}
		if a.IsCorrect {
			correct++
		}
	}
	if correct != 1 {
		return util.ErrNoCorrectAnswer
	}
	return nil
}

// quizLessonOwned 取课时并校验：必须是测验课时且属于该讲师的课程
func (s *QuizService) quizLessonOwned(instructorID, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if !lesson.IsQuiz {
		return nil, util.ErrNotAQuizLesson
	}

	course, err := s.CourseRepo.FindByID(lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if course.InstructorID != instructorID {
		return nil, util.ErrPermissionDenied
	}
	return lesson, nil
}

func (s *QuizService) CreateQuestion(instructorID, lessonID uint, req QuestionRequest) (*model.QuizQuestion, error) {
	if err := validateQuestion(req); err != nil {
		return nil, err
	}
	if _, err := s.quizLessonOwned(instructorID, lessonID); err != nil {
		return nil, err
	}

	points := req.Points
	if points <= 0 {
		points = 10
	}

	question := &model.QuizQuestion{
		LessonID:     lessonID,
		QuestionText: req.QuestionText,
		Points:       points,
	}
	for _, a := range req.Answers {
		question.Answers = append(question.Answers, model.Answer{
			AnswerText: a.AnswerText,
			IsCorrect:  a.IsCorrect,
		})
	}

	if err := s.QuestionRepo.CreateWithAnswers(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuizService) UpdateQuestion(instructorID, questionID uint, req QuestionRequest) (*model.QuizQuestion, error) {
	if err := validateQuestion(req); err != nil {
		return nil, err
	}

	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	if _, err := s.quizLessonOwned(instructorID, question.LessonID); err != nil {
		return nil, err
	}

	question.QuestionText = req.QuestionText
	if req.Points > 0 {
		question.Points = req.Points
	}
	question.Answers = question.Answers[:0]
	for _, a := range req.Answers {
		question.Answers = append(question.Answers, model.Answer{
			AnswerText: a.AnswerText,
			IsCorrect:  a.IsCorrect,
		})
	}

	if err := s.QuestionRepo.UpdateWithAnswers(question); err != nil {
		return nil, err
	}
	return question, nil
}

func (s *QuizService) DeleteQuestion(instructorID, questionID uint) error {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return util.ErrQuestionNotFound
		}
		return err
	}
	if _, err := s.quizLessonOwned(instructorID, question.LessonID); err != nil {
		return err
	}
	return s.QuestionRepo.Delete(questionID)
}

// ListQuestions 讲师视图，包含 isCorrect 标记
func (s *QuizService) ListQuestions(instructorID, lessonID uint) ([]model.QuizQuestion, error) {
	if _, err := s.quizLessonOwned(instructorID, lessonID); err != nil {
		return nil, err
	}
	return s.QuestionRepo.FindByLesson(lessonID)
}

// StudentAnswer 学生视图的选项，不携带 isCorrect
type StudentAnswer struct {
	ID         uint   `json:"id"`
	AnswerText string `json:"answerText"`
}

type StudentQuestion struct {
	ID           uint            `json:"id"`
	QuestionText string          `json:"questionText"`
	Points       int             `json:"points"`
	Answers      []StudentAnswer `json:"answers"`
}

// QuizView 打开测验时返回的内容：已完成则只带结果，不再下发题目
type QuizView struct {
	LessonID    uint              `json:"lessonId"`
	Completed   bool              `json:"completed"`
	Score       *int              `json:"score,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
	Questions   []StudentQuestion `json:"questions,omitempty"`
}

func (s *QuizService) studentProgress(studentID uint, lesson *model.Lesson) (*model.Enrollment, *model.Progress, error) {
	enrollment, err := s.EnrollmentRepo.FindByStudentAndCourse(studentID, lesson.CourseID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, util.ErrNotEnrolled
		}
		return nil, nil, err
	}

	progress, err := s.ProgressRepo.FindByEnrollmentAndLesson(enrollment.ID, lesson.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return enrollment, nil, nil
		}
		return nil, nil, err
	}
	return enrollment, progress, nil
}

// GetQuizForStudent 已完成的测验直接短路返回成绩，避免重复下发题目
func (s *QuizService) GetQuizForStudent(studentID, lessonID uint) (*QuizView, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if !lesson.IsQuiz {
		return nil, util.ErrNotAQuizLesson
	}

	_, progress, err := s.studentProgress(studentID, lesson)
	if err != nil {
		return nil, err
	}

	view := &QuizView{LessonID: lessonID}
	if progress != nil && progress.IsCompleted {
		view.Completed = true
		view.Score = progress.QuizScore
		view.CompletedAt = progress.CompletedAt
		return view, nil
	}

	questions, err := s.QuestionRepo.FindByLesson(lessonID)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		sq := StudentQuestion{
			ID:           q.ID,
			QuestionText: q.QuestionText,
			Points:       q.Points,
		}
		for _, a := range q.Answers {
			sq.Answers = append(sq.Answers, StudentAnswer{ID: a.ID, AnswerText: a.AnswerText})
		}
		view.Questions = append(view.Questions, sq)
	}
	return view, nil
}

type QuizSubmission struct {
	Answers map[uint]uint `json:"answers"` // questionID -> 所选 answerID
}

type QuizResult struct {
	LessonID         uint       `json:"lessonId"`
	Score            int        `json:"score"` // 0..100，按分值占比
	CompletedAt      *time.Time `json:"completedAt"`
	AlreadyCompleted bool       `json:"alreadyCompleted"`
}

// scoreSubmission 按分值占比计分：round(100 * 答对分值 / 总分值)
func scoreSubmission(questions []model.QuizQuestion, answers map[uint]uint) int {
	totalPoints := 0
	earnedPoints := 0
	for _, q := range questions {
		totalPoints += q.Points
		if answers[q.ID] != 0 && answers[q.ID] == q.CorrectAnswerID() {
			earnedPoints += q.Points
		}
	}
	if totalPoints == 0 {
		return 0
	}
	return int(math.Round(100 * float64(earnedPoints) / float64(totalPoints)))
}

// Submit 权威判分并在同一事务内写入完成标记。
// 已完成的 (enrollment, lesson) 拒绝重判，原样返回已记录的成绩。
func (s *QuizService) Submit(ctx context.Context, studentID, lessonID uint, submission QuizSubmission) (*QuizResult, error) {
	lesson, err := s.LessonRepo.FindByID(lessonID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, util.ErrLessonNotFound
		}
		return nil, err
	}
	if !lesson.IsQuiz {
		return nil, util.ErrNotAQuizLesson
	}

	enrollment, progress, err := s.studentProgress(studentID, lesson)
	if err != nil {
		return nil, err
	}

	// 幂等：重复提交不改分数也不动 completedAt。
	// 课时可能先以普通课时完成、之后才被改成测验，此时 QuizScore 为空。
	if progress != nil && progress.IsCompleted {
		score := 0
		if progress.QuizScore != nil {
			score = *progress.QuizScore
		}
		return &QuizResult{
			LessonID:         lessonID,
			Score:            score,
			CompletedAt:      progress.CompletedAt,
			AlreadyCompleted: true,
		}, nil
	}

	questions, err := s.QuestionRepo.FindByLesson(lessonID)
	if err != nil {
		return nil, err
	}

	score := scoreSubmission(questions, submission.Answers)
	now := time.Now()

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if progress == nil {
			progress = &model.Progress{
				EnrollmentID: enrollment.ID,
				LessonID:     lessonID,
			}
			if err := tx.Create(progress).Error; err != nil {
				return err
			}
		}
		progress.IsCompleted = true
		progress.CompletedAt = &now
		progress.QuizScore = &score
		return tx.Save(progress).Error
	})
	if err != nil {
		return nil, err
	}

	if s.RDB != nil {
		s.RDB.Del(ctx, progressCacheKey(studentID, lesson.CourseID))
	}

	return &QuizResult{
		LessonID:    lessonID,
		Score:       score,
		CompletedAt: progress.CompletedAt,
	}, nil
}
