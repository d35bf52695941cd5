/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/tieubaoca/docchat-be/handler"
)

// startServerCmd represents the start command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the document chat server",
	Long:  `Starts the HTTP server serving uploads, document queries and conversations`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := initApp(cfgFile)
		if err != nil {
			log.Fatalf("Failed to initialize application: %v", err)
		}

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		uploadHandler := handler.NewUploadHandler(app.mainAgent, app.documentRepo, app.cfg.UploadDir)
		queryHandler := handler.NewQueryHandler(app.mainAgent, app.documentRepo)
		chatHandler := handler.NewChatHandler(app.aiService, app.documentRepo)
		pdfHandler := handler.NewDocumentHandler(app.cfg.UploadDir)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/upload", uploadHandler.UploadDocumentHandler)
			apiV1.GET("/conversations/:documentId", chatHandler.GetConversationHandler)
			apiV1.POST("/summary", chatHandler.GetSummaryHandler)
			apiV1.GET("/pdf/:documentId", pdfHandler.ServeDocumentHandler)
		}
		router.GET("/ws/query", func(c *gin.Context) {
			queryHandler.HandleQuery(c.Writer, c.Request)
		})
		router.GET("/health", gin.WrapH(queryHandler.Health()))

		log.Printf("Starting server on port %s...\n", app.cfg.Port)
		if err := router.Run(":" + app.cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
