/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docchat-be/agent"
	"github.com/tieubaoca/docchat-be/types"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask [document id] [question]",
	Short: "Ask a question about a processed document",
	Long:  `Runs one query turn against a document, streaming the answer to stdout`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		documentID, question := args[0], args[1]
		app, err := initApp(cfgFile)
		if err != nil {
			log.Fatalf("Failed to initialize application: %v", err)
		}

		ctx := context.Background()
		doc, err := app.documentRepo.Get(ctx, documentID)
		if err != nil {
			log.Fatalf("Failed to load document %s: %v", documentID, err)
		}

		useWebSearch, _ := cmd.Flags().GetBool("web-search")
		state := app.mainAgent.RunAnswerQuery(ctx, agent.AnswerQueryInput{
			DocumentID:   documentID,
			Query:        question,
			ChatHistory:  doc.ChatHistory,
			UseWebSearch: useWebSearch,
			OnChunk: func(chunk string) {
				fmt.Print(chunk)
			},
		})
		fmt.Println()
		if state.Status == types.StatusError {
			log.Fatalf("%s: %s", state.Data.Message, state.Data.Details)
		}
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().BoolP("web-search", "w", false, "augment retrieval with web search")
}
