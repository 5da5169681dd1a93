package blog

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/models"
)

// MongoStore implements Store on a blogs collection. It assumes the partial
// unique index on (author, status=draft) exists; see database.EnsureIndexes.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func draftFilter(author primitive.ObjectID) bson.M {
	return bson.M{"author": author, "status": models.StatusDraft}
}

func (s *MongoStore) Insert(ctx context.Context, b *models.Blog) error {
	_, err := s.coll.InsertOne(ctx, b)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDraftExists
	}
	return err
}

func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Blog, error) {
	var b models.Blog
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *MongoStore) FindDraftByAuthor(ctx context.Context, author primitive.ObjectID) (*models.Blog, error) {
	var b models.Blog
	err := s.coll.FindOne(ctx, draftFilter(author)).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *MongoStore) UpsertDraft(ctx context.Context, author primitive.ObjectID, fields DraftFields) (*models.Blog, error) {
	update := bson.M{
		"$set": bson.M{
			"title":     fields.Title,
			"content":   fields.Content,
			"tags":      fields.Tags,
			"updatedAt": time.Now(),
		},
		"$setOnInsert": bson.M{
			"createdAt": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	// Two concurrent first auto-saves can race to the upsert's insert arm.
	// The partial unique index fails the loser with a duplicate key; retrying
	// once lands on the winner's document.
	for attempt := 0; attempt < 2; attempt++ {
		var b models.Blog
		err := s.coll.FindOneAndUpdate(ctx, draftFilter(author), update, opts).Decode(&b)
		if err == nil {
			return &b, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		return nil, err
	}
	return nil, errors.New("draft upsert lost the insert race twice")
}

func (s *MongoStore) PromoteDraft(ctx context.Context, author primitive.ObjectID, fields DraftFields) (*models.Blog, error) {
	update := bson.M{
		"$set": bson.M{
			"title":     fields.Title,
			"content":   fields.Content,
			"tags":      fields.Tags,
			"status":    models.StatusPublished,
			"updatedAt": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b models.Blog
	err := s.coll.FindOneAndUpdate(ctx, draftFilter(author), update, opts).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoDraft
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *MongoStore) Replace(ctx context.Context, b *models.Blog) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDraftExists
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListByAuthor(ctx context.Context, author primitive.ObjectID) ([]models.Blog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"author": author}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	blogs := []models.Blog{}
	if err := cursor.All(ctx, &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}

func (s *MongoStore) ListPublished(ctx context.Context, page, limit int) ([]models.Blog, int64, error) {
	filter := bson.M{"status": models.StatusPublished}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	blogs := []models.Blog{}
	if err := cursor.All(ctx, &blogs); err != nil {
		return nil, 0, err
	}
	return blogs, total, nil
}

// MongoAuthorResolver resolves author projections from the users collection.
type MongoAuthorResolver struct {
	users *mongo.Collection
}

func NewMongoAuthorResolver(users *mongo.Collection) *MongoAuthorResolver {
	return &MongoAuthorResolver{users: users}
}

func (r *MongoAuthorResolver) Resolve(ctx context.Context, id primitive.ObjectID) (*models.AuthorProfile, error) {
	var user models.User
	err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &models.AuthorProfile{
		ID:       user.ID,
		Username: user.Username,
		Avatar:   user.Avatar,
	}, nil
}
