package util

import "errors"

var (
	ErrUserNotFound              = errors.New("用户不存在")
	ErrEmailRegistered           = errors.New("该邮箱已被注册")
	ErrPermissionDenied          = errors.New("permission denied")
	ErrCourseNotFound            = errors.New("course not found")
	ErrLessonNotFound            = errors.New("lesson not found")
	ErrQuestionNotFound          = errors.New("question not found")
	ErrNotAQuizLesson            = errors.New("lesson is not a quiz")
	ErrQuizLesson                = errors.New("quiz lessons are completed by submitting answers")
	ErrNotEnrolled               = errors.New("not enrolled in this course")
	ErrNoCorrectAnswer           = errors.New("question must have exactly one correct answer")
	ErrAnswerCountInvalid        = errors.New("question must have between 2 and 10 answers")
	ErrQuestionTextEmpty         = errors.New("question text is required")
	ErrLessonTitleRequired       = errors.New("lesson title is required")
	ErrLessonDescriptionRequired = errors.New("lesson description is required")
	ErrAnswerTextEmpty           = errors.New("answer text is required")
	ErrFileTypeNotAllowed        = errors.New("file type not allowed")
)
