package client

import (
	"context"
	"fmt"
	"strings"
)

const (
	minAnswers    = 2
	maxAnswers    = 10
	defaultPoints = 10
)

// AnswerDraft 编辑中的选项
type AnswerDraft struct {
	ID      uint
	Text    string
	Correct bool
}

// QuestionDraft 编辑中的题目。ID 为 0 表示尚未保存。
//
// 结构性不变量（选项数 2~10、恰好一个正确答案）由编辑操作
// 自身维护，Validate 只负责保存前的文本检查与最终确认。
type QuestionDraft struct {
	ID      uint
	Text    string
	Points  int
	Answers []AnswerDraft
}

// QuizAuthoring 某个测验课时的题目编辑器。
// current 指向正在编辑的题目，新增的题目自动成为当前题目。
type QuizAuthoring struct {
	client    *Client
	lessonID  uint
	questions []*QuestionDraft
	current   int // questions 下标，-1 表示无
}

// NewQuizAuthoring 拉取课时现有题目并建立编辑器
func (c *Client) NewQuizAuthoring(ctx context.Context, lessonID uint) (*QuizAuthoring, error) {
	var existing []AuthoredQuestion
	if err := c.get(ctx, fmt.Sprintf("/api/instructor/lessons/%d/questions", lessonID), &existing); err != nil {
		return nil, err
	}

	a := &QuizAuthoring{
		client:   c,
		lessonID: lessonID,
		current:  -1,
	}
	for _, q := range existing {
		draft := &QuestionDraft{
			ID:     q.ID,
			Text:   q.QuestionText,
			Points: q.Points,
		}
		for _, ans := range q.Answers {
			draft.Answers = append(draft.Answers, AnswerDraft{
				ID:      ans.ID,
				Text:    ans.AnswerText,
				Correct: ans.IsCorrect,
			})
		}
		a.questions = append(a.questions, draft)
	}
	if len(a.questions) > 0 {
		a.current = 0
	}
	return a, nil
}

// Questions 当前全部草稿
func (a *QuizAuthoring) Questions() []*QuestionDraft {
	return a.questions
}

// AddQuestion 新建空白题目并设为当前题目：
// 两个空选项，第一个默认正确，10 分
func (a *QuizAuthoring) AddQuestion() *QuestionDraft {
	draft := &QuestionDraft{
		Points: defaultPoints,
		Answers: []AnswerDraft{
			{Correct: true},
			{},
		},
	}
	a.questions = append(a.questions, draft)
	a.current = len(a.questions) - 1
	return draft
}

// Current 当前编辑中的题目
func (a *QuizAuthoring) Current() *QuestionDraft {
	if a.current < 0 || a.current >= len(a.questions) {
		return nil
	}
	return a.questions[a.current]
}

// SelectQuestion 切换当前编辑的题目
func (a *QuizAuthoring) SelectQuestion(draft *QuestionDraft) error {
	for i, q := range a.questions {
		if q == draft {
			a.current = i
			return nil
		}
	}
	return &ValidationError{Message: "question is not part of this quiz"}
}

// RemoveQuestion 从编辑器移除题目；已保存的题目同时在服务端删除。
// 测验至少保留一道题，最后一道不允许删除。
func (a *QuizAuthoring) RemoveQuestion(ctx context.Context, draft *QuestionDraft) error {
	if len(a.questions) <= 1 {
		return &ValidationError{Message: "a quiz must keep at least one question"}
	}

	idx := -1
	for i, q := range a.questions {
		if q == draft {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &ValidationError{Message: "question is not part of this quiz"}
	}

	if draft.ID != 0 {
		if err := a.client.delete(ctx, fmt.Sprintf("/api/instructor/questions/%d", draft.ID)); err != nil {
			return err
		}
	}
	a.questions = append(a.questions[:idx], a.questions[idx+1:]...)
	switch {
	case idx < a.current:
		a.current--
	case idx == a.current && a.current >= len(a.questions):
		a.current = len(a.questions) - 1
	}
	return nil
}

// AddAnswer 追加一个选项，超过上限时拒绝
func (q *QuestionDraft) AddAnswer(text string) error {
	if len(q.Answers) >= maxAnswers {
		return &ValidationError{Message: fmt.Sprintf("a question can have at most %d answers", maxAnswers)}
	}
	q.Answers = append(q.Answers, AnswerDraft{Text: text})
	return nil
}

// RemoveAnswer 删除指定位置的选项（0 起始）。
// 低于下限时拒绝；删掉的是正确选项时，第一个剩余选项静默接任。
func (q *QuestionDraft) RemoveAnswer(index int) error {
	if index < 0 || index >= len(q.Answers) {
		return &ValidationError{Message: fmt.Sprintf("answer index %d out of range", index)}
	}
	if len(q.Answers) <= minAnswers {
		return &ValidationError{Message: fmt.Sprintf("a question must keep at least %d answers", minAnswers)}
	}

	wasCorrect := q.Answers[index].Correct
	q.Answers = append(q.Answers[:index], q.Answers[index+1:]...)
	if wasCorrect {
		q.Answers[0].Correct = true
	}
	return nil
}

// SetCorrectAnswer 将指定位置的选项设为唯一正确答案
func (q *QuestionDraft) SetCorrectAnswer(index int) error {
	if index < 0 || index >= len(q.Answers) {
		return &ValidationError{Message: fmt.Sprintf("answer index %d out of range", index)}
	}
	for i := range q.Answers {
		q.Answers[i].Correct = i == index
	}
	return nil
}

// Validate 保存前检查，按固定顺序返回第一个问题：
// 题干非空，逐个选项文本非空（报 1 起始的位置），恰好一个正确答案。
func (q *QuestionDraft) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return &ValidationError{Message: "question text is required"}
	}
	for i, ans := range q.Answers {
		if strings.TrimSpace(ans.Text) == "" {
			return &ValidationError{Message: fmt.Sprintf("answer %d text is required", i+1)}
		}
	}

	correct := 0
	for _, ans := range q.Answers {
		if ans.Correct {
			correct++
		}
	}
	if correct != 1 {
		return &ValidationError{Message: "question must have exactly one correct answer"}
	}
	if len(q.Answers) < minAnswers || len(q.Answers) > maxAnswers {
		return &ValidationError{Message: fmt.Sprintf("question must have between %d and %d answers", minAnswers, maxAnswers)}
	}
	return nil
}

type answerPayload struct {
	AnswerText string `json:"answerText"`
	IsCorrect  bool   `json:"isCorrect"`
}

type questionPayload struct {
	QuestionText string          `json:"questionText"`
	Points       int             `json:"points"`
	Answers      []answerPayload `json:"answers"`
}

// Validate 整份测验的保存门槛，固定顺序三轮扫描：
// 先所有题干，再所有选项文本，最后每题恰好一个正确答案。
// 第一个问题即返回，消息携带 1 起始的题目位置。
func (a *QuizAuthoring) Validate() error {
	for i, q := range a.questions {
		if strings.TrimSpace(q.Text) == "" {
			return &ValidationError{Message: fmt.Sprintf("question %d text is required", i+1)}
		}
	}
	for i, q := range a.questions {
		for j, ans := range q.Answers {
			if strings.TrimSpace(ans.Text) == "" {
				return &ValidationError{Message: fmt.Sprintf("question %d answer %d text is required", i+1, j+1)}
			}
		}
	}
	for i, q := range a.questions {
		correct := 0
		for _, ans := range q.Answers {
			if ans.Correct {
				correct++
			}
		}
		if correct != 1 {
			return &ValidationError{Message: fmt.Sprintf("question %d must have exactly one correct answer", i+1)}
		}
	}
	return nil
}

// SaveAll 整份测验通过校验后逐题持久化；
// 校验失败时不发出任何请求
func (a *QuizAuthoring) SaveAll(ctx context.Context) error {
	if err := a.Validate(); err != nil {
		return err
	}
	for _, q := range a.questions {
		if err := a.persist(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// SaveQuestion 校验后持久化单个题目，新题目把服务端分配的 ID 写回草稿
func (a *QuizAuthoring) SaveQuestion(ctx context.Context, draft *QuestionDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	return a.persist(ctx, draft)
}

func (a *QuizAuthoring) persist(ctx context.Context, draft *QuestionDraft) error {
	payload := questionPayload{
		QuestionText: draft.Text,
		Points:       draft.Points,
	}
	for _, ans := range draft.Answers {
		payload.Answers = append(payload.Answers, answerPayload{
			AnswerText: ans.Text,
			IsCorrect:  ans.Correct,
		})
	}

	var saved AuthoredQuestion
	if draft.ID == 0 {
		err := a.client.post(ctx, fmt.Sprintf("/api/instructor/lessons/%d/questions", a.lessonID), payload, &saved)
		if err != nil {
			return err
		}
	} else {
		err := a.client.put(ctx, fmt.Sprintf("/api/instructor/questions/%d", draft.ID), payload, &saved)
		if err != nil {
			return err
		}
	}

	draft.ID = saved.ID
	for i := range draft.Answers {
		if i < len(saved.Answers) {
			draft.Answers[i].ID = saved.Answers[i].ID
		}
	}
	return nil
}
