/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docchat-be/agent"
	"github.com/tieubaoca/docchat-be/repository"
	"github.com/tieubaoca/docchat-be/types"
	"github.com/tieubaoca/docchat-be/utils"
)

// processDocumentCmd represents the process-document command
var processDocumentCmd = &cobra.Command{
	Use:   "process-document [pdf file]",
	Short: "Process a local PDF through the document workflow",
	Long:  `Extracts, chunks and embeds a PDF file and records it in the document store`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filePath := args[0]
		app, err := initApp(cfgFile)
		if err != nil {
			log.Fatalf("Failed to initialize application: %v", err)
		}

		pdfBuffer, err := os.ReadFile(filePath)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", filePath, err)
		}

		slug, _ := cmd.Flags().GetString("slug")
		if slug == "" {
			slug = utils.SlugFromFileName(filePath)
		}

		ctx := context.Background()
		now := time.Now().Unix()
		if err := app.documentRepo.Create(ctx, &repository.Document{
			Slug:      slug,
			Title:     filepath.Base(filePath),
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			log.Fatalf("Failed to create document record: %v", err)
		}

		state := app.mainAgent.RunDocumentProcessing(ctx, agent.DocumentProcessingInput{
			DocumentID: slug,
			PDFBuffer:  pdfBuffer,
		})
		if state.Status == types.StatusError {
			log.Fatalf("%s: %s", state.Data.Message, state.Data.Details)
		}
		fmt.Println(state.Data.Message)
	},
}

func init() {
	rootCmd.AddCommand(processDocumentCmd)
	processDocumentCmd.Flags().StringP("slug", "s", "", "document id (defaults to a slug of the file name)")
}
