package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Index はサービスの説明とエンドポイント一覧を返します。
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "八字 API 服务",
		"endpoints": gin.H{
			"/health": "健康检查",
			"/bazi":   "八字计算（POST JSON: {birth_time, gender}）",
		},
	})
}
