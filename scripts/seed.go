// 初始化演示数据脚本
//
// 创建管理员、示例讲师与一门带测验的示例课程，
// 适用于首次部署或本地联调。幂等：已存在的账号直接跳过。
//
// 用法: go run scripts/seed.go

package main

import (
	"coursehub_backend/internal/config"
	"coursehub_backend/internal/model"
	"coursehub_backend/pkg/database"
	"coursehub_backend/pkg/logger"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	seedUser(db, "管理员", "admin@coursehub.dev", "admin12345", model.Admin)
	instructor := seedUser(db, "示例讲师", "instructor@coursehub.dev", "teach12345", model.Instructor)
	seedUser(db, "示例学生", "student@coursehub.dev", "learn12345", model.Student)

	seedCourse(db, instructor.ID)

	log.Println("演示数据初始化完成")
}

func seedUser(db *gorm.DB, name, email, password string, role model.UserRole) *model.User {
	var user model.User
	if err := db.Where("email = ?", email).First(&user).Error; err == nil {
		return &user
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("密码加密失败: %v", err)
	}

	user = model.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("创建用户失败: %v", err)
	}
	log.Printf("已创建用户 %s (%s)", email, role)
	return &user
}

func seedCourse(db *gorm.DB, instructorID uint) {
	var count int64
	db.Model(&model.Course{}).Where("instructor_id = ?", instructorID).Count(&count)
	if count > 0 {
		return
	}

	content := "Go 由 Google 设计，以并发原语与简洁语法著称。"
	course := model.Course{
		Title:        "Go 入门",
		Description:  "从零开始的 Go 语言课程",
		Category:     "programming",
		Level:        "beginner",
		Published:    true,
		InstructorID: instructorID,
		Lessons: []model.Lesson{
			{
				Title:       "认识 Go",
				Description: "语言背景与开发环境",
				Content:     &content,
				Order:       0,
			},
			{
				Title:       "第一章测验",
				Description: "检验第一章的学习效果",
				Order:       1,
				IsQuiz:      true,
				Questions: []model.QuizQuestion{
					{
						QuestionText: "Go 语言由哪家公司设计？",
						Points:       10,
						Answers: []model.Answer{
							{AnswerText: "Google", IsCorrect: true},
							{AnswerText: "Microsoft"},
							{AnswerText: "Mozilla"},
						},
					},
				},
			},
		},
	}

	if err := db.Create(&course).Error; err != nil {
		log.Fatalf("创建示例课程失败: %v", err)
	}
	log.Printf("已创建示例课程 %q", course.Title)
}
