package mongo

import (
	"context"
	"errors"
	"log"
	"time"

	"gamesense/app/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const documentCollectionName = "documents"

// storedDocument is one whole JSON document, addressed by its path.
type storedDocument struct {
	Path      string    `bson:"_id"`
	Content   string    `bson:"content"`
	Revision  string    `bson:"revision"`
	Message   string    `bson:"message,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// mongoDocumentStore implements repository.DocumentStore using MongoDB.
type mongoDocumentStore struct {
	collection *mongo.Collection
}

// NewMongoDocumentStore creates a new document store backed by MongoDB.
func NewMongoDocumentStore(db *mongo.Database) repository.DocumentStore {
	return &mongoDocumentStore{
		collection: db.Collection(documentCollectionName),
	}
}

// Get retrieves a document and its revision by path.
func (r *mongoDocumentStore) Get(ctx context.Context, path string) ([]byte, string, error) {
	var doc storedDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": path}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, "", repository.ErrNotFound
		}
		return nil, "", err
	}
	return []byte(doc.Content), doc.Revision, nil
}

// Put inserts the document when expectedRevision is empty, otherwise replaces
// it only if the stored revision still matches.
func (r *mongoDocumentStore) Put(ctx context.Context, path string, content []byte, expectedRevision, message string) (string, error) {
	doc := storedDocument{
		Path:      path,
		Content:   string(content),
		Revision:  uuid.NewString(),
		Message:   message,
		UpdatedAt: time.Now().UTC(),
	}

	if expectedRevision == "" {
		_, err := r.collection.InsertOne(ctx, doc)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return "", repository.ErrConflict
			}
			return "", err
		}
		return doc.Revision, nil
	}

	filter := bson.M{"_id": path, "revision": expectedRevision}
	result, err := r.collection.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return "", err
	}
	// Either the document is gone or someone else wrote a newer revision.
	if result.MatchedCount == 0 {
		return "", repository.ErrConflict
	}
	return doc.Revision, nil
}

// EnsureDocumentIndexes creates necessary indexes for the documents collection.
// Call this once during application startup.
func EnsureDocumentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "updatedAt", Value: -1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

// DocumentCollection returns the collection used by NewMongoDocumentStore.
func DocumentCollection(db *mongo.Database) *mongo.Collection {
	return db.Collection(documentCollectionName)
}
