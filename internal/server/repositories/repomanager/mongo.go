package repomanager

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/netwerker/internal/server/repositories/edges"
	"github.com/dmitrijs2005/netwerker/internal/server/repositories/users"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoRepositoryManager struct {
	client *mongo.Client
	users  *users.MongoRepository
	edges  *edges.MongoRepository
}

// OpenMongo connects to uri and binds the repositories to database.
func OpenMongo(ctx context.Context, uri, database string) (*MongoRepositoryManager, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}

	db := client.Database(database)
	usersColl := db.Collection(users.DefaultCollection)
	return &MongoRepositoryManager{
		client: client,
		users:  users.NewMongoRepository(usersColl),
		edges:  edges.NewMongoRepository(client, db.Collection(edges.DefaultCollection), usersColl),
	}, nil
}

func (m *MongoRepositoryManager) Users() users.Repository { return m.users }

func (m *MongoRepositoryManager) Edges() edges.Repository { return m.edges }

// Prepare creates the unique indexes both collections rely on.
func (m *MongoRepositoryManager) Prepare(ctx context.Context) error {
	if err := m.users.EnsureIndexes(ctx); err != nil {
		return err
	}
	return m.edges.EnsureIndexes(ctx)
}

func (m *MongoRepositoryManager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
