package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/example/storefront/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// noPhoto strips the embedded binary from listing payloads. The photo
// is only served through the dedicated photo endpoint.
var noPhoto = bson.M{"photo": 0}

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(m *MongoRepository) *ProductRepository {
	return &ProductRepository{coll: m.Collection(models.Product{}.CollectionName())}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the newest products up to limit, photo excluded.
func (r *ProductRepository) List(ctx context.Context, limit int64) ([]models.Product, error) {
	opts := options.Find().
		SetProjection(noPhoto).
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	return r.find(ctx, bson.M{}, opts)
}

// Page returns one skip/limit window of the catalog, newest first.
func (r *ProductRepository) Page(ctx context.Context, skip, limit int64) ([]models.Product, error) {
	opts := options.Find().
		SetProjection(noPhoto).
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(limit)

	return r.find(ctx, bson.M{}, opts)
}

// Find runs an arbitrary catalog filter, photo excluded.
func (r *ProductRepository) Find(ctx context.Context, filter bson.M) ([]models.Product, error) {
	return r.find(ctx, filter, options.Find().SetProjection(noPhoto))
}

// Search matches the keyword as a case-insensitive substring of the
// product name or description.
func (r *ProductRepository) Search(ctx context.Context, keyword string) ([]models.Product, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
	filter := bson.M{
		"$or": []bson.M{
			{"name": pattern},
			{"description": pattern},
		},
	}
	return r.find(ctx, filter, options.Find().SetProjection(noPhoto))
}

// Related returns up to limit products sharing the category, excluding
// the product itself.
func (r *ProductRepository) Related(ctx context.Context, productID, categoryID primitive.ObjectID, limit int64) ([]models.Product, error) {
	filter := bson.M{
		"category": categoryID,
		"_id":      bson.M{"$ne": productID},
	}
	opts := options.Find().SetProjection(noPhoto).SetLimit(limit)
	return r.find(ctx, filter, opts)
}

func (r *ProductRepository) ByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]models.Product, error) {
	return r.find(ctx, bson.M{"category": categoryID}, options.Find().SetProjection(noPhoto))
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetProjection(noPhoto))
}

func (r *ProductRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	err := r.coll.FindOne(ctx, bson.M{"slug": slug}, options.FindOne().SetProjection(noPhoto)).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(noPhoto)).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Photo fetches only the embedded photo of one product.
func (r *ProductRepository) Photo(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	var p models.Product
	opts := options.FindOne().SetProjection(bson.M{"photo": 1})
	err := r.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p.Photo, nil
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err = cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
