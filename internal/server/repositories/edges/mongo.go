package edges

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/netwerker/internal/common"
	"github.com/dmitrijs2005/netwerker/internal/server/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultCollection is the MongoDB collection holding friendship documents.
const DefaultCollection = "friends"

// Document is the stored shape of a friendship. The fingerprint is kept as
// its decimal string since BSON has no unsigned 64-bit integer.
type Document struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	FriendshipHash string             `bson:"friendship_hash"`
	User1ID        primitive.ObjectID `bson:"user1_id"`
	User2ID        primitive.ObjectID `bson:"user2_id"`
	CreatedAt      time.Time          `bson:"created_at"`
}

func FormatFingerprint(fp uint64) string { return strconv.FormatUint(fp, 10) }

// NewDocument converts an edge into its stored shape.
func NewDocument(e *models.Edge) (*Document, error) {
	u1, err := primitive.ObjectIDFromHex(e.User1ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user id %q", common.ErrValidation, e.User1ID)
	}
	u2, err := primitive.ObjectIDFromHex(e.User2ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad user id %q", common.ErrValidation, e.User2ID)
	}
	return &Document{
		FriendshipHash: FormatFingerprint(e.Fingerprint),
		User1ID:        u1,
		User2ID:        u2,
		CreatedAt:      e.CreatedAt,
	}, nil
}

func (d *Document) ToModel() (*models.Edge, error) {
	fp, err := strconv.ParseUint(d.FriendshipHash, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt friendship_hash %q: %w", d.FriendshipHash, err)
	}
	return &models.Edge{
		Fingerprint: fp,
		User1ID:     d.User1ID.Hex(),
		User2ID:     d.User2ID.Hex(),
		CreatedAt:   d.CreatedAt,
	}, nil
}

type MongoRepository struct {
	client  *mongo.Client
	friends *mongo.Collection
	users   *mongo.Collection
}

// NewMongoRepository binds the repository to the friendship and user
// collections. Insert needs a replica set since it runs in a transaction.
func NewMongoRepository(client *mongo.Client, friends, users *mongo.Collection) *MongoRepository {
	return &MongoRepository{client: client, friends: friends, users: users}
}

// EnsureIndexes creates the unique index on friendship_hash.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.friends.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "friendship_hash", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Exists(ctx context.Context, fingerprint uint64) (bool, error) {
	n, err := r.friends.CountDocuments(ctx,
		bson.M{"friendship_hash": FormatFingerprint(fingerprint)},
		options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *MongoRepository) Get(ctx context.Context, fingerprint uint64) (*models.Edge, error) {
	var doc Document
	err := r.friends.FindOne(ctx, bson.M{"friendship_hash": FormatFingerprint(fingerprint)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return doc.ToModel()
}

func (r *MongoRepository) Neighbors(ctx context.Context, userID string) ([]string, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []string{}, nil
	}

	var doc struct {
		Friends []primitive.ObjectID `bson:"friends"`
	}
	err = r.users.FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"friends": 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]string, 0, len(doc.Friends))
	for _, f := range doc.Friends {
		result = append(result, f.Hex())
	}
	return result, nil
}

func (r *MongoRepository) Insert(ctx context.Context, edge *models.Edge) error {
	if edge.CreatedAt.IsZero() {
		edge.CreatedAt = time.Now().UTC()
	}
	doc, err := NewDocument(edge)
	if err != nil {
		return err
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, writeFriendship(sc, r.friends, r.users, doc)
	})
	return err
}

type documentInserter interface {
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

type documentUpdater interface {
	UpdateOne(ctx context.Context, filter any, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// writeFriendship performs the three writes of Insert. Any error aborts the
// surrounding transaction.
func writeFriendship(ctx context.Context, friends documentInserter, users documentUpdater, doc *Document) error {
	if _, err := friends.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	if err := addFriend(ctx, users, doc.User1ID, doc.User2ID); err != nil {
		return err
	}
	return addFriend(ctx, users, doc.User2ID, doc.User1ID)
}

func addFriend(ctx context.Context, users documentUpdater, userID, friendID primitive.ObjectID) error {
	res, err := users.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"friends": friendID}})
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrorNotFound
	}
	return nil
}
