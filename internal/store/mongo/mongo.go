// Package mongo implements the record store on MongoDB. Users live in a
// single collection with their log entries embedded, so every operation is
// one atomic single-document command.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pocketlog/internal/core"
)

const (
	// DefaultDatabaseName is used when no database name is configured.
	DefaultDatabaseName = "pocketlog"

	// usersCollectionName is the single collection holding user documents.
	usersCollectionName = "users"

	connectTimeout = 10 * time.Second
)

// Repository is a MongoDB-backed record store. The client is created once at
// startup and shared for the process lifetime.
type Repository struct {
	client *mongo.Client
	users  *mongo.Collection
}

// NewRepository connects to MongoDB, verifies the connection, and ensures the
// unique indexes on external id and email.
func NewRepository(ctx context.Context, uri, dbName string) (*Repository, error) {
	if dbName == "" {
		dbName = DefaultDatabaseName
	}

	cctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	r := &Repository{
		client: client,
		users:  client.Database(dbName).Collection(usersCollectionName),
	}
	if err := r.ensureIndexes(cctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	slog.Info("Connected to MongoDB", "database", dbName, "collection", usersCollectionName)
	return r, nil
}

// ensureIndexes enforces the one-user-per-external-id and one-user-per-email
// invariants at the store level.
func (r *Repository) ensureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "details.externalId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "details.email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

// Close disconnects the shared client.
func (r *Repository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// Document shapes. Log ids are ObjectIDs in storage and hex strings in core.
type (
	userDoc struct {
		ID        primitive.ObjectID `bson:"_id,omitempty"`
		Details   detailsDoc         `bson:"details"`
		Settings  settingsDoc        `bson:"settings"`
		Logs      []logDoc           `bson:"logs"`
		CreatedAt time.Time          `bson:"createdAt"`
		UpdatedAt time.Time          `bson:"updatedAt"`
	}

	detailsDoc struct {
		ExternalID   string `bson:"externalId"`
		AuthProvider string `bson:"authProvider"`
		FirstName    string `bson:"firstName"`
		LastName     string `bson:"lastName"`
		DOB          string `bson:"dob,omitempty"`
		Email        string `bson:"email"`
	}

	settingsDoc struct {
		SpendLimit float64 `bson:"spendLimit"`
	}

	logDoc struct {
		ID        primitive.ObjectID `bson:"_id"`
		Amount    float64            `bson:"amount"`
		Category  string             `bson:"category"`
		Note      string             `bson:"note,omitempty"`
		CreatedAt time.Time          `bson:"createdAt"`
	}
)

func byExternalID(externalID string) bson.M {
	return bson.M{"details.externalId": externalID}
}

var afterUpdate = options.FindOneAndUpdate().SetReturnDocument(options.After)

// UpsertUser implements store.Directory with a single upsert: profile fields
// are always refreshed, settings and the empty log list only set on insert.
func (r *Repository) UpsertUser(ctx context.Context, details core.UserDetails) (*core.User, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"details.externalId":   details.ExternalID,
			"details.email":        details.Email,
			"details.firstName":    details.FirstName,
			"details.lastName":     details.LastName,
			"details.authProvider": details.AuthProvider,
			"updatedAt":            now,
		},
		"$setOnInsert": bson.M{
			"settings":  settingsDoc{SpendLimit: core.DefaultSpendLimit},
			"logs":      []logDoc{},
			"createdAt": now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc userDoc
	err := r.users.FindOneAndUpdate(ctx, byExternalID(details.ExternalID), update, opts).Decode(&doc)
	if err != nil {
		return nil, core.StorageError("upsert user", err)
	}
	return doc.toCore(), nil
}

// FindUser implements store.Directory.
func (r *Repository) FindUser(ctx context.Context, externalID string) (*core.User, error) {
	var doc userDoc
	err := r.users.FindOne(ctx, byExternalID(externalID)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, core.StorageError("find user", err)
	}
	return doc.toCore(), nil
}

// AppendLog implements store.LogStore via $push on the matching user.
func (r *Repository) AppendLog(ctx context.Context, externalID string, entry core.LogEntry) (*core.User, error) {
	push := logDoc{
		ID:        primitive.NewObjectID(),
		Amount:    entry.Amount,
		Category:  entry.Category,
		Note:      entry.Note,
		CreatedAt: entry.CreatedAt,
	}
	update := bson.M{
		"$push": bson.M{"logs": push},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	var doc userDoc
	err := r.users.FindOneAndUpdate(ctx, byExternalID(externalID), update, afterUpdate).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, core.StorageError("append log", err)
	}
	return doc.toCore(), nil
}

// UpdateLog implements store.LogStore with a positional update. The filter
// matches user and embedded log together, so a valid log id under a
// different user falls through to ErrNotFound.
func (r *Repository) UpdateLog(ctx context.Context, externalID, logID string, in core.LogInput) (*core.User, error) {
	oid, err := primitive.ObjectIDFromHex(logID)
	if err != nil {
		// An unparseable id can never match an embedded log.
		return nil, core.ErrNotFound
	}

	filter := bson.M{"details.externalId": externalID, "logs._id": oid}
	update := bson.M{
		"$set": bson.M{
			"logs.$.amount":   in.Amount,
			"logs.$.category": in.Category,
			"logs.$.note":     in.Note,
			"updatedAt":       time.Now().UTC(),
		},
	}

	var doc userDoc
	err = r.users.FindOneAndUpdate(ctx, filter, update, afterUpdate).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, core.StorageError("update log", err)
	}
	return doc.toCore(), nil
}

// RemoveLog implements store.LogStore via $pull scoped to the owning user.
// Pulling an id that matches nothing still succeeds on an existing user.
func (r *Repository) RemoveLog(ctx context.Context, externalID, logID string) (*core.User, error) {
	oid, err := primitive.ObjectIDFromHex(logID)
	if err != nil {
		// Nothing to pull; report success iff the user exists.
		return r.FindUser(ctx, externalID)
	}

	update := bson.M{
		"$pull": bson.M{"logs": bson.M{"_id": oid}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	var doc userDoc
	err = r.users.FindOneAndUpdate(ctx, byExternalID(externalID), update, afterUpdate).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, core.StorageError("remove log", err)
	}
	return doc.toCore(), nil
}

func (d *userDoc) toCore() *core.User {
	logs := make([]core.LogEntry, len(d.Logs))
	for i, l := range d.Logs {
		logs[i] = core.LogEntry{
			ID:        l.ID.Hex(),
			Amount:    l.Amount,
			Category:  l.Category,
			Note:      l.Note,
			CreatedAt: l.CreatedAt,
		}
	}
	return &core.User{
		Details: core.UserDetails{
			ExternalID:   d.Details.ExternalID,
			AuthProvider: d.Details.AuthProvider,
			FirstName:    d.Details.FirstName,
			LastName:     d.Details.LastName,
			DOB:          d.Details.DOB,
			Email:        d.Details.Email,
		},
		Settings:  core.UserSettings{SpendLimit: d.Settings.SpendLimit},
		Logs:      logs,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
