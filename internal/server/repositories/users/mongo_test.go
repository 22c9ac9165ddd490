package users

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDocument_RoundTrip(t *testing.T) {
	id := primitive.NewObjectID()
	friend := primitive.NewObjectID()
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	u := &models.User{
		ID: id.Hex(), UUID: "uuid-1", Name: "Alice", Email: "alice@example.com",
		PasswordHash: []byte("hash"), FriendIDs: []string{friend.Hex()},
		Roles: []string{"admin"}, Org: "acme", EmailVerified: true, CreatedAt: created,
	}

	doc, err := NewDocument(u)
	require.NoError(t, err)
	assert.Equal(t, id, doc.ID)
	assert.Equal(t, []primitive.ObjectID{friend}, doc.Friends)

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	var decoded Document
	require.NoError(t, bson.Unmarshal(raw, &decoded))

	assert.Equal(t, u, decoded.ToModel())
}

func TestNewDocument_NewUserHasEmptyFriendArray(t *testing.T) {
	doc, err := NewDocument(&models.User{UUID: "u"})
	require.NoError(t, err)
	assert.True(t, doc.ID.IsZero())
	assert.NotNil(t, doc.Friends, "friends must be stored as [] so $addToSet works")
}

func TestNewDocument_BadIDs(t *testing.T) {
	_, err := NewDocument(&models.User{ID: "not-an-object-id"})
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = NewDocument(&models.User{FriendIDs: []string{"nope"}})
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestMongoFilter(t *testing.T) {
	id := primitive.NewObjectID()

	q, ok, err := MongoFilter(ByID(id.Hex()))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, bson.M{"_id": id}, q)

	q, ok, err = MongoFilter(ByUUID("uuid-1"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, bson.M{"uuid": "uuid-1"}, q)

	q, ok, err = MongoFilter(ByEmail("a@b.c"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, bson.M{"email": "a@b.c"}, q)

	_, ok, err = MongoFilter(ByID("zzz"))
	require.NoError(t, err)
	assert.False(t, ok, "non-ObjectID ids never match")

	_, _, err = MongoFilter(Filter{})
	require.ErrorIs(t, err, common.ErrValidation)
}
