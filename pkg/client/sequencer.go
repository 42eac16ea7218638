package client

import (
	"context"
	"fmt"
	"sort"
)

// LessonSequencer 维护一门课程的课时顺序视图。
//
// 移动操作先在本地交换再逐条持久化，任一持久化失败
// 都会重新拉取服务端顺序，以服务端为准。
type LessonSequencer struct {
	client   *Client
	courseID uint
	lessons  []Lesson
}

// NewLessonSequencer 拉取课程课时并按 order 建立本地序列
func (c *Client) NewLessonSequencer(ctx context.Context, courseID uint) (*LessonSequencer, error) {
	s := &LessonSequencer{
		client:   c,
		courseID: courseID,
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh 丢弃本地状态，重新拉取服务端顺序
func (s *LessonSequencer) Refresh(ctx context.Context) error {
	var lessons []Lesson
	if err := s.client.get(ctx, fmt.Sprintf("/api/courses/%d/lessons", s.courseID), &lessons); err != nil {
		return err
	}
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].Order < lessons[j].Order
	})
	s.lessons = lessons
	return nil
}

// Lessons 当前顺序的副本
func (s *LessonSequencer) Lessons() []Lesson {
	out := make([]Lesson, len(s.lessons))
	copy(out, s.lessons)
	return out
}

// Len 课时数量
func (s *LessonSequencer) Len() int {
	return len(s.lessons)
}

func (s *LessonSequencer) indexOf(lessonID uint) int {
	for i, lesson := range s.lessons {
		if lesson.ID == lessonID {
			return i
		}
	}
	return -1
}

// MoveUp 将课时与前一项交换；已在首位时不做任何事
func (s *LessonSequencer) MoveUp(ctx context.Context, lessonID uint) error {
	i := s.indexOf(lessonID)
	if i < 0 {
		return &ValidationError{Message: fmt.Sprintf("lesson %d is not in this course", lessonID)}
	}
	if i == 0 {
		return nil
	}
	return s.swap(ctx, i-1, i)
}

// MoveDown 将课时与后一项交换；已在末位时不做任何事
func (s *LessonSequencer) MoveDown(ctx context.Context, lessonID uint) error {
	i := s.indexOf(lessonID)
	if i < 0 {
		return &ValidationError{Message: fmt.Sprintf("lesson %d is not in this course", lessonID)}
	}
	if i == len(s.lessons)-1 {
		return nil
	}
	return s.swap(ctx, i, i+1)
}

// Reorder 交换两个课时的位置，不限于相邻项
func (s *LessonSequencer) Reorder(ctx context.Context, movedID, targetID uint) error {
	if movedID == targetID {
		return nil
	}
	i := s.indexOf(movedID)
	if i < 0 {
		return &ValidationError{Message: fmt.Sprintf("lesson %d is not in this course", movedID)}
	}
	j := s.indexOf(targetID)
	if j < 0 {
		return &ValidationError{Message: fmt.Sprintf("lesson %d is not in this course", targetID)}
	}
	return s.swap(ctx, i, j)
}

// swap 乐观交换 i 与 j：先改本地，再分别持久化两条 order。
// 任一请求失败即放弃本地状态并回读服务端。
func (s *LessonSequencer) swap(ctx context.Context, i, j int) error {
	s.lessons[i].Order, s.lessons[j].Order = s.lessons[j].Order, s.lessons[i].Order
	s.lessons[i], s.lessons[j] = s.lessons[j], s.lessons[i]

	for _, idx := range []int{i, j} {
		lesson := s.lessons[idx]
		if err := s.persistOrder(ctx, lesson.ID, lesson.Order); err != nil {
			if refreshErr := s.Refresh(ctx); refreshErr != nil {
				// 回读也失败，本地状态不可信，清空以强制后续 Refresh
				s.lessons = nil
			}
			return err
		}
	}
	return nil
}

func (s *LessonSequencer) persistOrder(ctx context.Context, lessonID uint, order int) error {
	body := map[string]int{"order": order}
	return s.client.put(ctx, fmt.Sprintf("/api/instructor/lessons/%d", lessonID), body, nil)
}

// LessonDraft 创建或更新课时的载荷
type LessonDraft struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Content     *string `json:"content,omitempty"`
	VideoURL    *string `json:"videoUrl,omitempty"`
	DocumentURL *string `json:"documentUrl,omitempty"`
	Order       *int    `json:"order,omitempty"`
	IsQuiz      *bool   `json:"isQuiz,omitempty"`
}

// CreateLesson 新课时追加到序列末尾，order 由服务端分配
func (s *LessonSequencer) CreateLesson(ctx context.Context, draft LessonDraft) (*Lesson, error) {
	if draft.Title == "" {
		return nil, &ValidationError{Message: "lesson title is required"}
	}
	if draft.Description == "" {
		return nil, &ValidationError{Message: "lesson description is required"}
	}

	var lesson Lesson
	err := s.client.post(ctx, fmt.Sprintf("/api/instructor/courses/%d/lessons", s.courseID), draft, &lesson)
	if err != nil {
		return nil, err
	}
	s.lessons = append(s.lessons, lesson)
	return &lesson, nil
}

// UpdateLesson 更新课时字段并同步本地副本
func (s *LessonSequencer) UpdateLesson(ctx context.Context, lessonID uint, draft LessonDraft) (*Lesson, error) {
	var lesson Lesson
	err := s.client.put(ctx, fmt.Sprintf("/api/instructor/lessons/%d", lessonID), draft, &lesson)
	if err != nil {
		return nil, err
	}
	if i := s.indexOf(lessonID); i >= 0 {
		s.lessons[i] = lesson
	}
	return &lesson, nil
}

// DeleteLesson 删除课时并从本地序列移除
func (s *LessonSequencer) DeleteLesson(ctx context.Context, lessonID uint) error {
	if err := s.client.delete(ctx, fmt.Sprintf("/api/instructor/lessons/%d", lessonID)); err != nil {
		return err
	}
	if i := s.indexOf(lessonID); i >= 0 {
		s.lessons = append(s.lessons[:i], s.lessons[i+1:]...)
	}
	return nil
}
