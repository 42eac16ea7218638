package controller

import (
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type EnrollmentController struct {
	EnrollmentService *service.EnrollmentService
}

func NewEnrollmentController(enrollmentService *service.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{EnrollmentService: enrollmentService}
}

func enrollmentError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound), errors.Is(err, util.ErrLessonNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrNotEnrolled):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrQuizLesson):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// Enroll godoc
// @Summary 报名课程
// @Description 幂等：重复报名返回现有记录
// @Tags 报名
// @Produce  json
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=model.Enrollment}
// @Failure 404 {object} util.Response "课程不存在或未发布"
// @Router /api/courses/{courseId}/enroll [post]
// @Security BearerAuth
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	enrollment, err := c.EnrollmentService.Enroll(claims.UserID, util.MustParseUint(ctx.Param("courseId")))
	if err != nil {
		enrollmentError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// Unenroll godoc
// @Summary 退出课程
// @Tags 报名
// @Produce  json
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response "未报名"
// @Router /api/courses/{courseId}/enroll [delete]
// @Security BearerAuth
func (c *EnrollmentController) Unenroll(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	err := c.EnrollmentService.Unenroll(ctx.Request.Context(), claims.UserID, util.MustParseUint(ctx.Param("courseId")))
	if err != nil {
		enrollmentError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListMine godoc
// @Summary 我的报名列表
// @Tags 报名
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Enrollment}
// @Router /api/enrollments [get]
// @Security BearerAuth
func (c *EnrollmentController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	enrollments, err := c.EnrollmentService.ListByStudent(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, enrollments)
}

// Progress godoc
// @Summary 课程完成百分比
// @Description round(100 * 已完成课时 / 课时总数)，没有课时的课程恒为 0
// @Tags 报名
// @Produce  json
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 403 {object} util.Response "未报名"
// @Router /api/courses/{courseId}/progress [get]
// @Security BearerAuth
func (c *EnrollmentController) Progress(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	percent, err := c.EnrollmentService.CourseProgressPercent(ctx.Request.Context(), claims.UserID, util.MustParseUint(ctx.Param("courseId")))
	if err != nil {
		enrollmentError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"percent": percent})
}

// CompleteLesson godoc
// @Summary 标记课时完成
// @Description 仅普通课时；测验课时需提交答案判分。已完成的记录保持不变
// @Tags 报名
// @Produce  json
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Progress}
// @Failure 400 {object} util.Response "测验课时"
// @Router /api/lessons/{lessonId}/complete [post]
// @Security BearerAuth
func (c *EnrollmentController) CompleteLesson(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	progress, err := c.EnrollmentService.CompleteLesson(ctx.Request.Context(), claims.UserID, util.MustParseUint(ctx.Param("lessonId")))
	if err != nil {
		enrollmentError(ctx, err)
		return
	}
	util.Success(ctx, progress)
}
