package catalog

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuildFilter translates the client-side filter widget state into a
// catalog query. An empty category list or price range relaxes the
// corresponding clause; both present combine with AND.
func BuildFilter(checked []primitive.ObjectID, radio []float64) bson.M {
	filter := bson.M{}
	if len(checked) > 0 {
		filter["category"] = bson.M{"$in": checked}
	}
	if len(radio) == 2 {
		filter["price"] = bson.M{"$gte": radio[0], "$lte": radio[1]}
	}
	return filter
}

// PageWindow maps a 1-based page number onto a skip/limit pair.
// Missing or out-of-range pages are clamped to the first page.
func PageWindow(page int) (skip, limit int64) {
	if page < 1 {
		page = 1
	}
	return int64(page-1) * PageSize, PageSize
}
