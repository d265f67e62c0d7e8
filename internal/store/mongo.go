package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/erazemk/najdeno/internal/model"
)

// Collection names.
const (
	usersCollection    = "users"
	itemsCollection    = "items"
	revokedCollection  = "revoked_tokens"
	settingsCollection = "settings"
)

// Mongo is a Store backed by a MongoDB database.
type Mongo struct {
	client   *mongo.Client
	users    *mongo.Collection
	items    *mongo.Collection
	revoked  *mongo.Collection
	settings *mongo.Collection
}

// OpenMongo connects to uri and uses the named database.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	db := client.Database(database)
	m := &Mongo{
		client:   client,
		users:    db.Collection(usersCollection),
		items:    db.Collection(itemsCollection),
		revoked:  db.Collection(revokedCollection),
		settings: db.Collection(settingsCollection),
	}

	if err := m.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return m, nil
}

// EnsureIndexes creates the indexes the store relies on. It is idempotent.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	if _, err := m.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("creating username index: %w", err)
	}

	if _, err := m.items.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("creating item indexes: %w", err)
	}

	// Revocations expire on their own once the token could no longer be used.
	if _, err := m.revoked.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}); err != nil {
		return fmt.Errorf("creating revoked token index: %w", err)
	}
	return nil
}

// Ping checks the connection to the primary.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("pinging mongo: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// CreateUser creates a new user. ID and CreatedAt are assigned when empty.
func (m *Mongo) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	if _, err := m.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// GetUser returns a user by ID.
func (m *Mongo) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := findOne(ctx, m.users, bson.M{"_id": id}, &u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return &u, nil
}

// GetUserByUsername returns a user by username.
func (m *Mongo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	if err := findOne(ctx, m.users, bson.M{"username": username}, &u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return &u, nil
}

// UpdateUserContact updates a user's contact number.
func (m *Mongo) UpdateUserContact(ctx context.Context, id, contact string) error {
	_, err := m.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"contact": contact}})
	if err != nil {
		return fmt.Errorf("updating user contact: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func (m *Mongo) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	_, err := m.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password": passwordHash}})
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// CreateItem creates a new item report. ID and timestamps are assigned when empty.
func (m *Mongo) CreateItem(ctx context.Context, item *model.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}

	if _, err := m.items.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("creating item: %w", err)
	}
	return nil
}

// GetItem returns an item by ID.
func (m *Mongo) GetItem(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	if err := findOne(ctx, m.items, bson.M{"_id": id}, &item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return &item, nil
}

// ListItems returns items matching the filter, newest first.
func (m *Mongo) ListItems(ctx context.Context, filter model.ItemFilter) ([]model.Item, error) {
	filter = filter.Normalize()

	cur, err := m.items.Find(ctx, itemQuery(filter), options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(filter.Limit)).
		SetSkip(int64(filter.Offset)))
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	var items []model.Item
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}
	return items, nil
}

// itemQuery translates a filter into a MongoDB query document.
func itemQuery(filter model.ItemFilter) bson.M {
	q := bson.M{}
	if filter.Type != "" {
		q["type"] = filter.Type
	}
	if filter.UserID != "" {
		q["userId"] = filter.UserID
	}
	if text := strings.TrimSpace(filter.Query); text != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(text), "$options": "i"}
		q["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"location": re},
			bson.M{"reporter": re},
		}
	}
	return q
}

// DeleteItem deletes an item owned by userID.
func (m *Mongo) DeleteItem(ctx context.Context, id, userID string) (bool, error) {
	res, err := m.items.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return res.DeletedCount > 0, nil
}

// RevokeToken adds a token's JTI to the revocation list.
func (m *Mongo) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := m.revoked.UpdateOne(ctx,
		bson.M{"_id": jti},
		bson.M{"$setOnInsert": bson.M{"expiresAt": expiresAt.UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// IsTokenRevoked checks if a token's JTI has been revoked.
func (m *Mongo) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := m.revoked.CountDocuments(ctx, bson.M{"_id": jti})
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return n > 0, nil
}

// Setting upserts candidate under key unless a value exists, then reads it back.
func (m *Mongo) Setting(ctx context.Context, key, candidate string) (string, error) {
	_, err := m.settings.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$setOnInsert": bson.M{"value": candidate}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("storing setting %s: %w", key, err)
	}

	var doc struct {
		Value string `bson:"value"`
	}
	if err := findOne(ctx, m.settings, bson.M{"_id": key}, &doc); err != nil {
		return "", fmt.Errorf("querying setting %s: %w", key, err)
	}
	return doc.Value, nil
}

func findOne(ctx context.Context, coll *mongo.Collection, filter bson.M, out any) error {
	return coll.FindOne(ctx, filter).Decode(out)
}
