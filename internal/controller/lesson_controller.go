package controller

import (
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type LessonController struct {
	LessonService     *service.LessonService
	EnrollmentService *service.EnrollmentService
	StorageService    *service.StorageService
	AuthService       *service.AuthService
}

func NewLessonController(
	lessonService *service.LessonService,
	enrollmentService *service.EnrollmentService,
	storageService *service.StorageService,
	authService *service.AuthService,
) *LessonController {
	return &LessonController{
		LessonService:     lessonService,
		EnrollmentService: enrollmentService,
		StorageService:    storageService,
		AuthService:       authService,
	}
}

func lessonError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrCourseNotFound), errors.Is(err, util.ErrLessonNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrLessonTitleRequired), errors.Is(err, util.ErrLessonDescriptionRequired):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// List godoc
// @Summary 课程的课时列表
// @Description 按 order 升序返回，未解锁的用户不可见
// @Tags 课时
// @Produce  json
// @Param   courseId path int true "课程ID"
// @Success 200 {object} util.Response{data=[]model.Lesson}
// @Failure 403 {object} util.Response "未解锁"
// @Router /api/courses/{courseId}/lessons [get]
// @Security BearerAuth
func (c *LessonController) List(ctx *gin.Context) {
	courseID := util.MustParseUint(ctx.Param("courseId"))

	user := c.AuthService.GetCurrentUser(ctx)
	if c.EnrollmentService.HasAccess(user, courseID) != service.AccessUnlocked {
		util.Forbidden(ctx)
		return
	}

	lessons, err := c.LessonService.List(courseID)
	if err != nil {
		lessonError(ctx, err)
		return
	}
	util.Success(ctx, lessons)
}

// Get godoc
// @Summary 课时详情
// @Tags 课时
// @Produce  json
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Failure 403 {object} util.Response "未解锁"
// @Router /api/lessons/{lessonId} [get]
// @Security BearerAuth
func (c *LessonController) Get(ctx *gin.Context) {
	lesson, err := c.LessonService.Get(util.MustParseUint(ctx.Param("lessonId")))
	if err != nil {
		lessonError(ctx, err)
		return
	}

	user := c.AuthService.GetCurrentUser(ctx)
	if c.EnrollmentService.HasAccess(user, lesson.CourseID) != service.AccessUnlocked {
		util.Forbidden(ctx)
		return
	}
	util.Success(ctx, lesson)
}

// Create godoc
// @Summary 创建课时
// @Description 未指定 order 时追加到课程末尾
// @Tags 课时
// @Accept  json
// @Produce  json
// @Param   courseId path int true "课程ID"
// @Param   body body service.LessonRequest true "课时信息"
// @Success 201 {object} util.Response{data=model.Lesson}
// @Failure 400 {object} util.Response "标题或描述为空"
// @Router /api/instructor/courses/{courseId}/lessons [post]
// @Security BearerAuth
func (c *LessonController) Create(ctx *gin.Context) {
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	lesson, err := c.LessonService.Create(claims.UserID, util.MustParseUint(ctx.Param("courseId")), req)
	if err != nil {
		lessonError(ctx, err)
		return
	}
	util.Created(ctx, lesson)
}

// Update godoc
// @Summary 更新课时
// @Description 仅更新提供的字段，order 可用于排序调整
// @Tags 课时
// @Accept  json
// @Produce  json
// @Param   lessonId path int true "课时ID"
// @Param   body body service.LessonRequest true "课时信息"
// @Success 200 {object} util.Response{data=model.Lesson}
// @Router /api/instructor/lessons/{lessonId} [put]
// @Security BearerAuth
func (c *LessonController) Update(ctx *gin.Context) {
	var req service.LessonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	lesson, err := c.LessonService.Update(claims.UserID, util.MustParseUint(ctx.Param("lessonId")), req)
	if err != nil {
		lessonError(ctx, err)
		return
	}
	util.Success(ctx, lesson)
}

// Delete godoc
// @Summary 删除课时
// @Description 级联删除题目、选项与学习进度
// @Tags 课时
// @Produce  json
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/lessons/{lessonId} [delete]
// @Security BearerAuth
func (c *LessonController) Delete(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.LessonService.Delete(claims.UserID, util.MustParseUint(ctx.Param("lessonId"))); err != nil {
		lessonError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// UploadAsset godoc
// @Summary 上传课时附件
// @Description 上传视频或文档并写回课时对应字段
// @Tags 课时
// @Accept  multipart/form-data
// @Produce  json
// @Param   lessonId path int true "课时ID"
// @Param   file formData file true "附件文件"
// @Success 200 {object} util.Response{data=object} "返回访问 URL"
// @Failure 400 {object} util.Response "文件类型不允许"
// @Router /api/instructor/lessons/{lessonId}/asset [post]
// @Security BearerAuth
func (c *LessonController) UploadAsset(ctx *gin.Context) {
	lessonID := util.MustParseUint(ctx.Param("lessonId"))
	claims := util.GetUserFromContext(ctx)

	lesson, err := c.LessonService.Get(lessonID)
	if err != nil {
		lessonError(ctx, err)
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	url, err := c.StorageService.UploadLessonAsset(ctx.Request.Context(), lessonID, fileHeader.Filename, file, fileHeader.Size, contentType)
	if err != nil {
		if errors.Is(err, util.ErrFileTypeNotAllowed) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	req := service.LessonRequest{}
	if util.IsVideo(contentType) {
		req.VideoURL = &url
	} else {
		req.DocumentURL = &url
	}
	if _, err := c.LessonService.Update(claims.UserID, lesson.ID, req); err != nil {
		lessonError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}
