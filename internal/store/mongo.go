package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/pageza/recipebook/backend/internal/logger"
	"github.com/pageza/recipebook/backend/internal/model"
)

// RecipesCollection is the collection recipes live in.
const RecipesCollection = "recipes"

type recipeDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	Ingredients  []string           `bson:"ingredients"`
	Instructions []string           `bson:"instructions"`
	ImageURL     string             `bson:"imageUrl"`
	PrepTime     int                `bson:"prepTime"`
	CookTime     int                `bson:"cookTime"`
	CuisineType  string             `bson:"cuisineType"`
	Tags         []string           `bson:"tags"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func toDocument(r *model.Recipe) recipeDocument {
	return recipeDocument{
		Title:        r.Title,
		Description:  r.Description,
		Ingredients:  nonNil(r.Ingredients),
		Instructions: nonNil(r.Instructions),
		ImageURL:     r.ImageURL,
		PrepTime:     r.PrepTime,
		CookTime:     r.CookTime,
		CuisineType:  r.CuisineType,
		Tags:         nonNil(r.Tags),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (d recipeDocument) toModel() *model.Recipe {
	return &model.Recipe{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		Ingredients:  model.StringArray(nonNil(d.Ingredients)),
		Instructions: model.StringArray(nonNil(d.Instructions)),
		ImageURL:     d.ImageURL,
		PrepTime:     d.PrepTime,
		CookTime:     d.CookTime,
		CuisineType:  d.CuisineType,
		Tags:         model.StringArray(nonNil(d.Tags)),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

// MongoStore keeps recipes in a MongoDB collection.
type MongoStore struct {
	db         *mongo.Database
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoStore creates a store over db's recipes collection.
func NewMongoStore(db *mongo.Database, log *zap.Logger) *MongoStore {
	return &MongoStore{
		db:         db,
		collection: db.Collection(RecipesCollection),
		logger:     logger.OrNop(log),
	}
}

// MongoFilter translates a recipe filter into a query document.
func MongoFilter(f model.RecipeFilter) bson.M {
	query := bson.M{}
	if f.Title != "" {
		query["title"] = bson.M{"$regex": regexp.QuoteMeta(f.Title), "$options": "i"}
	}
	if f.CuisineType != "" {
		query["cuisineType"] = f.CuisineType
	}
	if f.MaxTotalTime != nil {
		query["$expr"] = bson.M{
			"$lte": bson.A{bson.M{"$add": bson.A{"$prepTime", "$cookTime"}}, *f.MaxTotalTime},
		}
	}
	if len(f.Tags) > 0 {
		query["tags"] = bson.M{"$all": f.Tags}
	}
	return query
}

func (s *MongoStore) objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		s.logger.Debug("invalid recipe id", zap.String("id", id), zap.Error(err))
		return primitive.NilObjectID, false
	}
	return oid, true
}

func (s *MongoStore) Get(ctx context.Context, id string) (*model.Recipe, error) {
	oid, ok := s.objectID(id)
	if !ok {
		return nil, errRecipeNotFound()
	}

	var doc recipeDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errRecipeNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recipe: %w", err)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) List(ctx context.Context, filter model.RecipeFilter) ([]model.RecipeSummary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{
			"title": 1, "imageUrl": 1, "cuisineType": 1,
			"prepTime": 1, "cookTime": 1, "tags": 1, "createdAt": 1,
		})

	cursor, err := s.collection.Find(ctx, MongoFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	var docs []recipeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode recipes: %w", err)
	}

	out := make([]model.RecipeSummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel().Summary())
	}
	return out, nil
}

func (s *MongoStore) All(ctx context.Context) ([]model.Recipe, error) {
	cursor, err := s.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	var docs []recipeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode recipes: %w", err)
	}

	out := make([]model.Recipe, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.toModel())
	}
	return out, nil
}

func (s *MongoStore) Insert(ctx context.Context, recipe *model.Recipe) (string, error) {
	res, err := s.collection.InsertOne(ctx, toDocument(recipe))
	if err != nil {
		return "", fmt.Errorf("failed to insert recipe: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s *MongoStore) InsertMany(ctx context.Context, recipes []model.Recipe) ([]string, error) {
	if len(recipes) == 0 {
		return []string{}, nil
	}

	docs := make([]interface{}, 0, len(recipes))
	for i := range recipes {
		docs = append(docs, toDocument(&recipes[i]))
	}

	res, err := s.collection.InsertMany(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to insert recipes: %w", err)
	}

	ids := make([]string, 0, len(res.InsertedIDs))
	for _, raw := range res.InsertedIDs {
		if oid, ok := raw.(primitive.ObjectID); ok {
			ids = append(ids, oid.Hex())
		}
	}
	return ids, nil
}

func (s *MongoStore) Replace(ctx context.Context, id string, recipe *model.Recipe) (*model.Recipe, error) {
	oid, ok := s.objectID(id)
	if !ok {
		return nil, errRecipeNotFound()
	}

	var doc recipeDocument
	err := s.collection.FindOneAndReplace(ctx,
		bson.M{"_id": oid},
		toDocument(recipe),
		options.FindOneAndReplace().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errRecipeNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to replace recipe: %w", err)
	}
	return doc.toModel(), nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) (int64, error) {
	oid, ok := s.objectID(id)
	if !ok {
		return 0, nil
	}

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("failed to delete recipe: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to delete recipes: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) DistinctCuisineTypes(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "cuisineType")
}

func (s *MongoStore) DistinctTags(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "tags")
}

func (s *MongoStore) distinct(ctx context.Context, field string) ([]string, error) {
	raw, err := s.collection.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to read distinct %s: %w", field, err)
	}

	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			values = append(values, str)
		}
	}
	return sortedUnique(values), nil
}

func (s *MongoStore) Check(ctx context.Context) (*ConnectionInfo, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return &ConnectionInfo{DatabaseName: s.db.Name(), Collections: nonNil(names)}, nil
}
