package repository

import (
	"context"
	"log"

	"github.com/tieubaoca/docchat-be/types"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Document is the persisted record for an uploaded PDF, keyed by slug.
type Document struct {
	Slug                string          `bson:"_id" json:"slug"`
	Title               string          `bson:"title" json:"title"`
	ExtractedText       string          `bson:"extracted_text" json:"extracted_text"`
	EmbeddingsGenerated bool            `bson:"embeddings_generated" json:"embeddings_generated"`
	ChatHistory         []types.Message `bson:"chat_history" json:"chat_history"`
	CreatedAt           int64           `bson:"created_at" json:"created_at"`
	UpdatedAt           int64           `bson:"updated_at" json:"updated_at"`
}

type DocumentRepo interface {
	Create(ctx context.Context, doc *Document) error
	Get(ctx context.Context, slug string) (*Document, error)
	// UpdateProcessingResult stores the raw extracted text and the
	// embeddings-generated flag after a processing run.
	UpdateProcessingResult(ctx context.Context, slug, extractedText string, embeddingsGenerated bool) error
	// UpdateChatHistory replaces the persisted conversation for a document.
	// Read-modify-write is not guarded against concurrent turns; see DESIGN.md.
	UpdateChatHistory(ctx context.Context, slug string, history []types.Message) error
	Delete(ctx context.Context, slug string) error
}

type documentRepo struct {
	collection *mongo.Collection
}

func NewDocumentRepo(db *mongo.Database) DocumentRepo {
	// check if collection does not exist, create one
	collectionNames, err := db.ListCollectionNames(context.Background(), bson.D{})
	if err != nil {
		panic(err)
	}
	collectionExists := false
	for _, name := range collectionNames {
		if name == "documents" {
			collectionExists = true
			break
		}
	}
	collection := db.Collection("documents")
	if !collectionExists {
		indexes := []mongo.IndexModel{
			{
				Keys: bson.D{
					{Key: "created_at", Value: -1},
				},
			},
		}

		_, err = collection.Indexes().CreateMany(context.Background(), indexes)
		if err != nil {
			log.Printf("Error creating indexes: %v", err)
			return nil
		}
	}

	return &documentRepo{
		collection: collection,
	}
}

func (r *documentRepo) Create(ctx context.Context, doc *Document) error {
	_, err := r.collection.InsertOne(ctx, doc)
	return err
}

func (r *documentRepo) Get(ctx context.Context, slug string) (*Document, error) {
	var doc Document
	err := r.collection.FindOne(ctx, map[string]string{"_id": slug}).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) UpdateProcessingResult(ctx context.Context, slug, extractedText string, embeddingsGenerated bool) error {
	update := map[string]interface{}{
		"$set": map[string]interface{}{
			"extracted_text":       extractedText,
			"embeddings_generated": embeddingsGenerated,
		},
	}
	_, err := r.collection.UpdateOne(ctx, map[string]string{"_id": slug}, update)
	return err
}

func (r *documentRepo) UpdateChatHistory(ctx context.Context, slug string, history []types.Message) error {
	update := map[string]interface{}{
		"$set": map[string]interface{}{
			"chat_history": history,
		},
	}
	_, err := r.collection.UpdateOne(ctx, map[string]string{"_id": slug}, update)
	return err
}

func (r *documentRepo) Delete(ctx context.Context, slug string) error {
	_, err := r.collection.DeleteOne(ctx, map[string]string{"_id": slug})
	return err
}
