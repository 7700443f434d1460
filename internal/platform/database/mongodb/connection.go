package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mechanix/shop-reports/internal/platform/errors"
	"github.com/mechanix/shop-reports/internal/platform/observability/logging"
)

// Config holds MongoDB connection configuration
type Config struct {
	URI            string        `json:"uri"`
	Database       string        `json:"database"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	QueryTimeout   time.Duration `json:"query_timeout"`
	MaxPoolSize    uint64        `json:"max_pool_size"`
	MinPoolSize    uint64        `json:"min_pool_size"`
	MaxIdleTime    time.Duration `json:"max_idle_time"`
}

// DefaultConfig returns a default MongoDB configuration
func DefaultConfig() Config {
	return Config{
		URI:            "mongodb://localhost:27017",
		Database:       "reports",
		ConnectTimeout: 30 * time.Second,
		QueryTimeout:   30 * time.Second,
		MaxPoolSize:    100,
		MinPoolSize:    5,
		MaxIdleTime:    5 * time.Minute,
	}
}

// Connection manages a MongoDB database connection
type Connection struct {
	Client   *mongo.Client
	Database *mongo.Database
	config   Config
	logger   logging.Logger
}

// NewConnection creates a new MongoDB connection
func NewConnection(config Config, logger logging.Logger) (*Connection, error) {
	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(config.URI).
		SetMaxPoolSize(config.MaxPoolSize).
		SetMinPoolSize(config.MinPoolSize).
		SetMaxConnIdleTime(config.MaxIdleTime).
		SetConnectTimeout(config.ConnectTimeout).
		SetServerSelectionTimeout(config.ConnectTimeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to MongoDB")
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, errors.Wrap(err, "failed to ping MongoDB")
	}

	logger.Info(ctx, "MongoDB connection established", map[string]interface{}{
		"database":      config.Database,
		"max_pool_size": config.MaxPoolSize,
		"min_pool_size": config.MinPoolSize,
	})

	return &Connection{
		Client:   client,
		Database: client.Database(config.Database),
		config:   config,
		logger:   logger,
	}, nil
}

// Close closes the MongoDB connection
func (c *Connection) Close() error {
	if c.Client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := c.Client.Disconnect(ctx); err != nil {
			c.logger.Error(ctx, "Failed to close MongoDB connection", err)
			return err
		}
		c.logger.Info(ctx, "MongoDB connection closed")
	}
	return nil
}

// HealthCheck performs a health check on the database
func (c *Connection) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return errors.NewInternal("MongoDB client is nil")
	}

	if err := c.Client.Ping(ctx, readpref.Primary()); err != nil {
		return errors.Wrap(err, "MongoDB ping failed")
	}

	return nil
}

// Collection returns a collection with the given name
func (c *Connection) Collection(name string) *mongo.Collection {
	return c.Database.Collection(name)
}
