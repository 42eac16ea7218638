package controller

import (
	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"
	"coursehub_backend/pkg/monitoring"
	"errors"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

func quizError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrLessonNotFound), errors.Is(err, util.ErrQuestionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrNotEnrolled):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrNotAQuizLesson),
		errors.Is(err, util.ErrQuestionTextEmpty),
		errors.Is(err, util.ErrAnswerTextEmpty),
		errors.Is(err, util.ErrAnswerCountInvalid),
		errors.Is(err, util.ErrNoCorrectAnswer):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// ListQuestions godoc
// @Summary 课时的题目列表（讲师视图）
// @Description 包含正确答案标记，仅课程讲师可用
// @Tags 测验
// @Produce  json
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=[]model.QuizQuestion}
// @Router /api/instructor/lessons/{lessonId}/questions [get]
// @Security BearerAuth
func (c *QuizController) ListQuestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	questions, err := c.QuizService.ListQuestions(claims.UserID, util.MustParseUint(ctx.Param("lessonId")))
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

// CreateQuestion godoc
// @Summary 创建测验题目
// @Description 题干与选项非空，选项 2~10 个且恰好一个正确答案
// @Tags 测验
// @Accept  json
// @Produce  json
// @Param   lessonId path int true "课时ID"
// @Param   body body service.QuestionRequest true "题目内容"
// @Success 201 {object} util.Response{data=model.QuizQuestion}
// @Failure 400 {object} util.Response "不满足题目不变量"
// @Router /api/instructor/lessons/{lessonId}/questions [post]
// @Security BearerAuth
func (c *QuizController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	question, err := c.QuizService.CreateQuestion(claims.UserID, util.MustParseUint(ctx.Param("lessonId")), req)
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Created(ctx, question)
}

// UpdateQuestion godoc
// @Summary 更新测验题目
// @Description 整体替换题干与选项，校验规则同创建
// @Tags 测验
// @Accept  json
// @Produce  json
// @Param   id path int true "题目ID"
// @Param   body body service.QuestionRequest true "题目内容"
// @Success 200 {object} util.Response{data=model.QuizQuestion}
// @Router /api/instructor/questions/{id} [put]
// @Security BearerAuth
func (c *QuizController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	question, err := c.QuizService.UpdateQuestion(claims.UserID, util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, question)
}

// DeleteQuestion godoc
// @Summary 删除测验题目
// @Tags 测验
// @Produce  json
// @Param   id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/instructor/questions/{id} [delete]
// @Security BearerAuth
func (c *QuizController) DeleteQuestion(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if err := c.QuizService.DeleteQuestion(claims.UserID, util.MustParseUint(ctx.Param("id"))); err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// GetQuiz godoc
// @Summary 打开测验（学生视图）
// @Description 未完成时返回题目（不含正确答案标记），已完成时只返回成绩
// @Tags 测验
// @Produce  json
// @Param   lessonId path int true "课时ID"
// @Success 200 {object} util.Response{data=service.QuizView}
// @Failure 403 {object} util.Response "未报名"
// @Router /api/lessons/{lessonId}/quiz [get]
// @Security BearerAuth
func (c *QuizController) GetQuiz(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	view, err := c.QuizService.GetQuizForStudent(claims.UserID, util.MustParseUint(ctx.Param("lessonId")))
	if err != nil {
		quizError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// SubmitQuiz godoc
// @Summary 提交测验答案
// @Description 服务端判分并记录完成，重复提交返回已记录的成绩
// @Tags 测验
// @Accept  json
// @Produce  json
// @Param   lessonId path int true "课时ID"
// @Param   body body service.QuizSubmission true "题目到所选选项的映射"
// @Success 200 {object} util.Response{data=service.QuizResult}
// @Failure 403 {object} util.Response "未报名"
// @Router /api/lessons/{lessonId}/quiz/submit [post]
// @Security BearerAuth
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	var submission service.QuizSubmission
	if err := ctx.ShouldBindJSON(&submission); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	result, err := c.QuizService.Submit(ctx.Request.Context(), claims.UserID, util.MustParseUint(ctx.Param("lessonId")), submission)
	if err != nil {
		monitoring.QuizSubmissionCounter.WithLabelValues("rejected").Inc()
		quizError(ctx, err)
		return
	}

	if result.AlreadyCompleted {
		monitoring.QuizSubmissionCounter.WithLabelValues("repeated").Inc()
	} else {
		monitoring.QuizSubmissionCounter.WithLabelValues("scored").Inc()
	}
	util.Success(ctx, result)
}
