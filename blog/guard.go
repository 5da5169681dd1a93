package blog

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
)

// Authorize gates every mutation on ownership. A nil blog and a blog owned
// by someone else produce the same error on purpose: a non-owner must not
// learn whether the id exists.
func Authorize(callerID primitive.ObjectID, b *models.Blog) error {
	if b == nil || b.Author != callerID {
		return ErrNotFoundOrUnauthorized
	}
	return nil
}
