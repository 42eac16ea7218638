package client

import (
	"context"
	"fmt"
	"time"
)

// QuizState 学生端的测验状态机
type QuizState string

const (
	QuizNotStarted QuizState = "not_started"
	QuizInProgress QuizState = "in_progress"
	QuizCompleted  QuizState = "completed"
)

// QuizFlow 一次测验的作答会话。
// 已完成的测验在 Open 时直接短路到 Completed，不再拉取题目。
type QuizFlow struct {
	client    *Client
	lessonID  uint
	state     QuizState
	questions []QuizQuestion
	selected  map[uint]uint // questionID -> answerID

	score       *int
	completedAt *time.Time
}

// OpenQuiz 打开测验
func (c *Client) OpenQuiz(ctx context.Context, lessonID uint) (*QuizFlow, error) {
	var view QuizView
	if err := c.get(ctx, fmt.Sprintf("/api/lessons/%d/quiz", lessonID), &view); err != nil {
		return nil, err
	}

	f := &QuizFlow{
		client:   c,
		lessonID: lessonID,
		selected: make(map[uint]uint),
	}

	if view.Completed {
		f.state = QuizCompleted
		f.score = view.Score
		f.completedAt = view.CompletedAt
		return f, nil
	}

	f.state = QuizNotStarted
	f.questions = view.Questions
	return f, nil
}

// State 当前状态
func (f *QuizFlow) State() QuizState {
	return f.state
}

// Questions 作答中的题目；已完成时为空
func (f *QuizFlow) Questions() []QuizQuestion {
	return f.questions
}

// Score 已完成测验的成绩，未完成时返回 nil
func (f *QuizFlow) Score() *int {
	return f.score
}

// CompletedAt 完成时间，未完成时返回 nil
func (f *QuizFlow) CompletedAt() *time.Time {
	return f.completedAt
}

func (f *QuizFlow) question(questionID uint) *QuizQuestion {
	for i := range f.questions {
		if f.questions[i].ID == questionID {
			return &f.questions[i]
		}
	}
	return nil
}

// SelectAnswer 记录某题的选择，重复选择覆盖之前的选项
func (f *QuizFlow) SelectAnswer(questionID, answerID uint) error {
	if f.state == QuizCompleted {
		return &ValidationError{Message: "quiz is already completed"}
	}

	q := f.question(questionID)
	if q == nil {
		return &ValidationError{Message: fmt.Sprintf("question %d is not part of this quiz", questionID)}
	}

	valid := false
	for _, ans := range q.Answers {
		if ans.ID == answerID {
			valid = true
			break
		}
	}
	if !valid {
		return &ValidationError{Message: fmt.Sprintf("answer %d does not belong to question %d", answerID, questionID)}
	}

	f.selected[questionID] = answerID
	f.state = QuizInProgress
	return nil
}

// Unanswered 尚未作答的题目数
func (f *QuizFlow) Unanswered() int {
	count := 0
	for _, q := range f.questions {
		if _, ok := f.selected[q.ID]; !ok {
			count++
		}
	}
	return count
}

// Submit 全部作答后提交判分。提交成功后状态迁移到 Completed，
// 重复 Submit 返回已记录的结果而不再发请求。
func (f *QuizFlow) Submit(ctx context.Context) (*QuizResult, error) {
	if f.state == QuizCompleted {
		return &QuizResult{
			LessonID:         f.lessonID,
			Score:            derefScore(f.score),
			CompletedAt:      f.completedAt,
			AlreadyCompleted: true,
		}, nil
	}

	if n := f.Unanswered(); n > 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("%d questions are still unanswered", n)}
	}

	body := map[string]map[uint]uint{"answers": f.selected}
	var result QuizResult
	if err := f.client.post(ctx, fmt.Sprintf("/api/lessons/%d/quiz/submit", f.lessonID), body, &result); err != nil {
		// 提交可能已在服务端生效而响应丢失，回读一次，
		// 若服务端已记录完成则采信其结果
		if recovered := f.recoverCompleted(ctx); recovered != nil {
			return recovered, nil
		}
		return nil, err
	}

	f.state = QuizCompleted
	f.score = &result.Score
	f.completedAt = result.CompletedAt
	f.questions = nil
	return &result, nil
}

// recoverCompleted 回读测验视图；服务端已标记完成时同步本地状态
// 并返回记录的成绩，否则返回 nil
func (f *QuizFlow) recoverCompleted(ctx context.Context) *QuizResult {
	var view QuizView
	if err := f.client.get(ctx, fmt.Sprintf("/api/lessons/%d/quiz", f.lessonID), &view); err != nil {
		return nil
	}
	if !view.Completed {
		return nil
	}

	f.state = QuizCompleted
	f.score = view.Score
	f.completedAt = view.CompletedAt
	f.questions = nil
	return &QuizResult{
		LessonID:    f.lessonID,
		Score:       derefScore(view.Score),
		CompletedAt: view.CompletedAt,
	}
}

func derefScore(score *int) int {
	if score == nil {
		return 0
	}
	return *score
}
