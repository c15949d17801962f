package api

import "github.com/labstack/echo/v4"

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, s *Server) {
	e.GET("/health", s.health)
	e.GET("/languages", s.languages)
	e.GET("/scenarios", s.scenarios)

	e.POST("/initialize", s.initialize)
	e.POST("/send-message", s.sendMessage)
	e.POST("/upload-audio", s.uploadAudio)
	e.POST("/quick-replies", s.quickReplies)
	e.POST("/translate", s.translate)
	e.POST("/propose-answer", s.proposeAnswer)
	e.POST("/toggle-translation", s.toggleTranslation)
	e.POST("/analyze", s.analyze)
	e.POST("/reset", s.reset)
	e.POST("/generate-pdf", s.generatePDF)
	e.GET("/generate-pdf", s.generatePDF)
}
