package client

import (
	"context"
	"fmt"
)

// AccessState 课程内容的本地访问判定
type AccessState string

const (
	AccessLocked   AccessState = "locked"
	AccessUnlocked AccessState = "unlocked"
)

// CourseAccess 查询课程详情并返回访问判定。
// 失败一律返回 Locked：网络错误、404、403 都不放行，原因进日志。
func (c *Client) CourseAccess(ctx context.Context, courseID uint) AccessState {
	detail, err := c.GetCourse(ctx, courseID)
	if err != nil {
		logFailure("access check failed, treating course as locked", "GET", fmt.Sprintf("/api/courses/%d", courseID), err)
		return AccessLocked
	}
	if detail.Access == string(AccessUnlocked) {
		return AccessUnlocked
	}
	return AccessLocked
}

// GetCourse 课程详情；未解锁时 Lessons 为空
func (c *Client) GetCourse(ctx context.Context, courseID uint) (*CourseDetail, error) {
	var detail CourseDetail
	if err := c.get(ctx, fmt.Sprintf("/api/courses/%d", courseID), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListCourses 已发布课程目录
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	var page struct {
		List []Course `json:"list"`
	}
	if err := c.get(ctx, "/api/courses", &page); err != nil {
		return nil, err
	}
	return page.List, nil
}

// Enroll 报名课程，重复报名返回现有记录
func (c *Client) Enroll(ctx context.Context, courseID uint) (*Enrollment, error) {
	var enrollment Enrollment
	if err := c.post(ctx, fmt.Sprintf("/api/courses/%d/enroll", courseID), nil, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Unenroll 退出课程
func (c *Client) Unenroll(ctx context.Context, courseID uint) error {
	return c.delete(ctx, fmt.Sprintf("/api/courses/%d/enroll", courseID))
}

// CourseProgress 课程完成百分比，0..100
func (c *Client) CourseProgress(ctx context.Context, courseID uint) (int, error) {
	var data struct {
		Percent int `json:"percent"`
	}
	if err := c.get(ctx, fmt.Sprintf("/api/courses/%d/progress", courseID), &data); err != nil {
		return 0, err
	}
	return data.Percent, nil
}

// CompleteLesson 标记普通课时完成
func (c *Client) CompleteLesson(ctx context.Context, lessonID uint) error {
	return c.post(ctx, fmt.Sprintf("/api/lessons/%d/complete", lessonID), nil, nil)
}
