package repository

import (
	"context"

	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CategoryRepository struct {
	coll *mongo.Collection
}

func NewCategoryRepository(m *MongoRepository) *CategoryRepository {
	return &CategoryRepository{coll: m.Collection(models.Category{}.CollectionName())}
}

// Create inserts a category unless one with the same name already
// exists, in which case ErrDuplicateCategory is returned and nothing
// is written.
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	err := r.coll.FindOne(ctx, bson.M{"name": c.Name}).Err()
	if err == nil {
		return ErrDuplicateCategory
	}
	if err != mongo.ErrNoDocuments {
		return err
	}

	res, err := r.coll.InsertOne(ctx, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateCategory
		}
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	update := bson.M{"$set": bson.M{"name": c.Name, "slug": c.Slug}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": c.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	err := r.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	var c models.Category
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
