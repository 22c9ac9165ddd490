package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection is the MongoDB collection holding user documents.
const DefaultCollection = "users"

// Document is the stored shape of a user in MongoDB.
type Document struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty"`
	UUID          string               `bson:"uuid"`
	Name          string               `bson:"name"`
	Email         string               `bson:"email"`
	PasswordHash  []byte               `bson:"passwordHash"`
	Friends       []primitive.ObjectID `bson:"friends"`
	Roles         []string             `bson:"roles,omitempty"`
	Org           string               `bson:"org,omitempty"`
	EmailVerified bool                 `bson:"email_verified"`
	CreatedAt     time.Time            `bson:"created_at"`
}

// ToModel converts a stored document into a models.User.
func (d *Document) ToModel() *models.User {
	u := &models.User{
		ID:            d.ID.Hex(),
		UUID:          d.UUID,
		Name:          d.Name,
		Email:         d.Email,
		PasswordHash:  d.PasswordHash,
		Roles:         d.Roles,
		Org:           d.Org,
		EmailVerified: d.EmailVerified,
		CreatedAt:     d.CreatedAt,
	}
	for _, f := range d.Friends {
		u.FriendIDs = append(u.FriendIDs, f.Hex())
	}
	return u
}

// NewDocument converts a user into its stored shape. The internal ID and
// friend ids must be ObjectID hex strings when set.
func NewDocument(u *models.User) (*Document, error) {
	d := &Document{
		UUID:          u.UUID,
		Name:          u.Name,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		Friends:       []primitive.ObjectID{},
		Roles:         u.Roles,
		Org:           u.Org,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
	if u.ID != "" {
		id, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: bad user id %q", common.ErrValidation, u.ID)
		}
		d.ID = id
	}
	for _, f := range u.FriendIDs {
		id, err := primitive.ObjectIDFromHex(f)
		if err != nil {
			return nil, fmt.Errorf("%w: bad friend id %q", common.ErrValidation, f)
		}
		d.Friends = append(d.Friends, id)
	}
	return d, nil
}

// MongoFilter translates f into a query document. ok is false when the
// filter can never match, e.g. an id that is not an ObjectID.
func MongoFilter(f Filter) (q bson.M, ok bool, err error) {
	if err := f.Validate(); err != nil {
		return nil, false, err
	}
	switch {
	case f.UUID != "":
		return bson.M{"uuid": f.UUID}, true, nil
	case f.Email != "":
		return bson.M{"email": f.Email}, true, nil
	}
	id, err := primitive.ObjectIDFromHex(f.ID)
	if err != nil {
		return nil, false, nil
	}
	return bson.M{"_id": id}, true, nil
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(coll *mongo.Collection) *MongoRepository {
	return &MongoRepository{coll: coll}
}

// EnsureIndexes creates the unique indexes on email and uuid.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "uuid", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Find(ctx context.Context, f Filter) (*models.User, error) {
	q, ok, err := MongoFilter(f)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrorNotFound
	}

	var doc Document
	if err := r.coll.FindOne(ctx, q).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.ToModel(), nil
}

func (r *MongoRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	doc, err := NewDocument(user)
	if err != nil {
		return nil, err
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id.Hex()
	}
	return user, nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, patch Patch) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return common.ErrorNotFound
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if len(set) == 0 {
		return nil
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context) ([]*models.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer cur.Close(ctx)

	var docs []Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]*models.User, 0, len(docs))
	for i := range docs {
		result = append(result, docs[i].ToModel())
	}
	return result, nil
}
