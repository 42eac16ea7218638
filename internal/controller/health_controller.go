package controller

import (
	"coursehub_backend/internal/util"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB        *gorm.DB
	StartTime time.Time
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{
		DB:        db,
		StartTime: time.Now(),
	}
}

// Health godoc
// @Summary 健康检查
// @Tags 系统
// @Produce  json
// @Success 200 {object} util.Response{data=object}
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	dbStatus := "up"
	if sqlDB, err := c.DB.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "down"
	}

	util.Success(ctx, gin.H{
		"status":   "ok",
		"database": dbStatus,
		"uptime":   time.Since(c.StartTime).String(),
	})
}
