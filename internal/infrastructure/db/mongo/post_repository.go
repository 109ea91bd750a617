package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/modernforum/forum/internal/core/domain"
)

const collectionPosts = "posts"

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection(collectionPosts)}
}

type postDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Thread    primitive.ObjectID `bson:"thread"`
	Author    primitive.ObjectID `bson:"author"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *postDocument) toDomain() domain.Post {
	return domain.Post{
		ID:        d.ID.Hex(),
		ThreadID:  d.Thread.Hex(),
		AuthorID:  d.Author.Hex(),
		Content:   d.Content,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	thread, err := primitive.ObjectIDFromHex(p.ThreadID)
	if err != nil {
		return nil, domain.ErrThreadNotFound
	}
	author, err := primitive.ObjectIDFromHex(p.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("insert post: author id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := postDocument{
		ID:        primitive.NewObjectID(),
		Thread:    thread,
		Author:    author,
		Content:   p.Content,
		CreatedAt: p.CreatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	created := doc.toDomain()
	return &created, nil
}

func (r *PostRepository) ListByThread(ctx context.Context, threadID string) ([]domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(threadID)
	if err != nil {
		return nil, domain.ErrThreadNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{"thread": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toDomain())
	}
	return posts, nil
}

// CountByThreads counts posts per thread with a $match/$group pipeline.
func (r *PostRepository) CountByThreads(ctx context.Context, threadIDs []string) (map[string]int64, error) {
	oids := toObjectIDs(threadIDs)
	counts := make(map[string]int64, len(oids))
	if len(oids) == 0 {
		return counts, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"thread": bson.M{"$in": oids}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$thread"},
			{Key: "count", Value: bson.M{"$sum": 1}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int64              `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode post counts: %w", err)
	}
	for _, row := range rows {
		counts[row.ID.Hex()] = row.Count
	}
	return counts, nil
}

// EnsureIndexes creates the index serving both the thread view and the counts.
func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "thread", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return err
}
