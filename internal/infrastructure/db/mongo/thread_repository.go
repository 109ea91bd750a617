package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/modernforum/forum/internal/core/domain"
)

const collectionThreads = "threads"

type ThreadRepository struct {
	col *mongo.Collection
}

func NewThreadRepository(db *mongo.Database) *ThreadRepository {
	return &ThreadRepository{col: db.Collection(collectionThreads)}
}

type threadDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Author    primitive.ObjectID `bson:"author"`
	Tags      []string           `bson:"tags"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d *threadDocument) toDomain() domain.Thread {
	return domain.Thread{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		AuthorID:  d.Author.Hex(),
		Tags:      d.Tags,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (r *ThreadRepository) Create(ctx context.Context, t *domain.Thread) (*domain.Thread, error) {
	author, err := primitive.ObjectIDFromHex(t.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("insert thread: author id: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	doc := threadDocument{
		ID:        primitive.NewObjectID(),
		Title:     t.Title,
		Author:    author,
		Tags:      tags,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert thread: %w", err)
	}
	created := doc.toDomain()
	return &created, nil
}

func (r *ThreadRepository) FindByID(ctx context.Context, id string) (*domain.Thread, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrThreadNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc threadDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrThreadNotFound
		}
		return nil, fmt.Errorf("find thread: %w", err)
	}
	t := doc.toDomain()
	return &t, nil
}

func (r *ThreadRepository) ListRecent(ctx context.Context, limit int) ([]domain.Thread, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	var docs []threadDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode threads: %w", err)
	}

	threads := make([]domain.Thread, 0, len(docs))
	for i := range docs {
		threads = append(threads, docs[i].toDomain())
	}
	return threads, nil
}

// Touch applies $max so concurrent replies can only move updated_at forward.
func (r *ThreadRepository) Touch(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrThreadNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$max": bson.M{"updated_at": at}},
	)
	if err != nil {
		return fmt.Errorf("touch thread: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrThreadNotFound
	}
	return nil
}

// EnsureIndexes creates the index backing the recent-threads listing.
func (r *ThreadRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
	})
	return err
}
