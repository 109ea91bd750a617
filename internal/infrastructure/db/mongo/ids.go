package mongo

import (
	"github.com/samber/lo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// toObjectIDs converts hex ids, silently skipping malformed ones.
func toObjectIDs(ids []string) []primitive.ObjectID {
	return lo.FilterMap(lo.Uniq(ids), func(id string, _ int) (primitive.ObjectID, bool) {
		oid, err := primitive.ObjectIDFromHex(id)
		return oid, err == nil
	})
}
