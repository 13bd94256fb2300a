package api

import (
	"github.com/gin-gonic/gin"

	"github.com/sheasmith19/ezapp/internal/api/middleware"
	"github.com/sheasmith19/ezapp/internal/library"
)

// RegisterRoutes mounts the résumé routes. Every one of them requires a bearer token.
func RegisterRoutes(router *gin.Engine, lib *library.Service, verifier middleware.TokenVerifier) {
	resumeHandler := NewResumeHandler(lib)
	authMiddleware := middleware.AuthMiddleware(verifier)

	resumeGroup := router.Group("")
	resumeGroup.Use(authMiddleware)
	{
		resumeGroup.POST("/save-resume", resumeHandler.SaveResume)
		resumeGroup.GET("/list-resumes", resumeHandler.ListResumes)
		resumeGroup.GET("/get-resume/:name", resumeHandler.GetResume)
		resumeGroup.DELETE("/delete-resume/:name", resumeHandler.DeleteResume)
		resumeGroup.GET("/resumes", resumeHandler.Resumes)
		resumeGroup.GET("/download-resume/:name", resumeHandler.DownloadResume)
	}
}
