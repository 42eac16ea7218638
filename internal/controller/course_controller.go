package controller

import (
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	CourseService     *service.CourseService
	LessonService     *service.LessonService
	EnrollmentService *service.EnrollmentService
	AuthService       *service.AuthService
}

func NewCourseController(
	courseService *service.CourseService,
	lessonService *service.LessonService,
	enrollmentService *service.EnrollmentService,
	authService *service.AuthService,
) *CourseController {
	return &CourseController{
		CourseService:     courseService,
		LessonService:     lessonService,
		EnrollmentService: enrollmentService,
		AuthService:       authService,
	}
}

func courseError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

// List godoc
// @Summary 已发布课程目录
// @Description 分页返回已发布课程，可按分类与难度过滤
// @Tags 课程
// @Produce  json
// @Param   page query int false "页码" default(1)
// @Param   limit query int false "每页数量" default(20)
// @Param   category query string false "分类"
// @Param   level query string false "难度"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/courses [get]
func (c *CourseController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	courses, total, err := c.CourseService.ListPublished(page, limit, ctx.Query("category"), ctx.Query("level"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  courses,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Get godoc
// @Summary 课程详情
// @Description 未发布课程仅讲师本人与管理员可见。
// @Description 课时内容只对已解锁的用户返回，未解锁时仅返回课程元数据。
// @Tags 课程
// @Produce  json
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response
// @Router /api/courses/{courseId} [get]
func (c *CourseController) Get(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))
	course, err := c.CourseService.Get(courseID)
	if err != nil {
		courseError(ctx, err)
		return
	}

	user := c.AuthService.GetCurrentUser(ctx)
	access := c.EnrollmentService.HasAccess(user, courseID)

	if !course.Published && access != service.AccessUnlocked {
		util.NotFound(ctx)
		return
	}

	resp := gin.H{
		"course": course,
		"access": access,
	}
	if access == service.AccessUnlocked {
		lessons, err := c.LessonService.List(courseID)
		if err != nil {
			util.LogInternalError(ctx, err)
			return
		}
		resp["lessons"] = lessons
	}
	util.Success(ctx, resp)
}

// ListMine godoc
// @Summary 讲师本人的课程
// @Tags 课程
// @Produce  json
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/instructor/courses [get]
// @Security BearerAuth
func (c *CourseController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	courses, err := c.CourseService.ListByInstructor(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// Create godoc
// @Summary 创建课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Param   body body service.CourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.Response
// @Router /api/instructor/courses [post]
// @Security BearerAuth
func (c *CourseController) Create(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.Create(claims.UserID, req)
	if err != nil {
		courseError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// Update godoc
// @Summary 更新课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Param   courseId path int true "课程ID"
// @Param   body body service.CourseRequest true "课程信息"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 403 {object} util.Response "非本人课程"
// @Router /api/instructor/courses/{courseId} [put]
// @Security BearerAuth
func (c *CourseController) Update(ctx *gin.Context) {
	var req service.CourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.Update(claims.UserID, util.MustParseUint(ctx.Param("courseId")), req)
	if err != nil {
		courseError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

type PublishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// SetPublished godoc
// @Summary 发布或下架课程
// @Tags 课程
// @Accept  json
// @Produce  json
// @Param   courseId path int true "课程ID"
// @Param   body body PublishRequest true "发布标记"
// @Success 200 {object} util.Response{data=model.Course}
// @Router /api/instructor/courses/{courseId}/published [put]
// @Security BearerAuth
func (c *CourseController) SetPublished(ctx *gin.Context) {
	var req PublishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	course, err := c.CourseService.SetPublished(claims.UserID, util.MustParseUint(ctx.Param("courseId")), *req.Published)
	if err != nil {
		courseError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// Delete godoc
// @Summary 删除课程
// @Tags 课程
// @Produce  json
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/courses/{courseId} [delete]
// @Security BearerAuth
func (c *CourseController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.CourseService.Delete(claims.UserID, util.MustParseUint(ctx.Param("courseId"))); err != nil {
		courseError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
