package router

import (
	"net/http"

	"funny-video/internal/handler"

	"github.com/gin-gonic/gin"
)

func SetupRouter(r *gin.Engine, hdl handler.Handler) {
	r.Use(allowAllOrigins())

	api := r.Group("/api")
	{
		api.POST("/reel", hdl.SubmitReel)
		api.GET("/reel/history", hdl.GetReelHistory)
		api.GET("/reel/:runId", hdl.GetReel)
		api.GET("/files", hdl.ListFiles)
		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}

func allowAllOrigins() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, HEAD, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
