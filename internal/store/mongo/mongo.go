// Package mongo implements the store interfaces on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"budgetd/internal/core"
)

// Store keeps one document per user in the budgets collection and one
// document per transaction in the transactions collection.
type Store struct {
	client       *mongo.Client
	budgets      *mongo.Collection
	transactions *mongo.Collection
}

type budgetDoc struct {
	UserID    string           `bson:"_id"`
	Limits    map[string]int64 `bson:"limits"`
	UpdatedAt int64            `bson:"updatedAt"`
}

type transactionDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Category    string             `bson:"category"`
	AmountCents int64              `bson:"amountCents"`
	Date        string             `bson:"date"`
	Description string             `bson:"description"`
	CreatedAt   int64              `bson:"createdAt"`
}

// New connects to MongoDB and pings it before returning the store
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(dbName)
	return &Store{
		client:       client,
		budgets:      database.Collection("budgets"),
		transactions: database.Collection("transactions"),
	}, nil
}

// Close closes the database connection
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// GetBudget returns the user's budget or core.ErrNoBudget
func (s *Store) GetBudget(ctx context.Context, userID string) (core.Budget, error) {
	var doc budgetDoc
	err := s.budgets.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNoBudget
		}
		return nil, fmt.Errorf("failed to find budget: %w", err)
	}

	budget := core.Budget{}
	for category, cents := range doc.Limits {
		budget[core.Category(category)] = core.Money{Cents: cents}
	}
	return budget, nil
}

// SetBudget upserts a single category limit in the user's budget document
func (s *Store) SetBudget(ctx context.Context, userID string, category core.Category, amount core.Money) error {
	update := bson.M{
		"$set": bson.M{
			"limits." + string(category): amount.Cents,
			"updatedAt":                  time.Now().Unix(),
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.budgets.UpdateOne(ctx, bson.M{"_id": userID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert budget: %w", err)
	}
	return nil
}

// ResetBudget zeroes one category limit, keeping the key
func (s *Store) ResetBudget(ctx context.Context, userID string, category core.Category) error {
	if err := s.requireBudget(ctx, userID); err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"limits." + string(category): int64(0),
			"updatedAt":                  time.Now().Unix(),
		},
	}
	if _, err := s.budgets.UpdateOne(ctx, bson.M{"_id": userID}, update); err != nil {
		return fmt.Errorf("failed to reset budget: %w", err)
	}
	return nil
}

// ResetAllBudgets zeroes every category limit in the user's budget
func (s *Store) ResetAllBudgets(ctx context.Context, userID string) error {
	budget, err := s.GetBudget(ctx, userID)
	if err != nil {
		return err
	}

	zeroed := bson.M{}
	for category := range budget {
		zeroed["limits."+string(category)] = int64(0)
	}
	zeroed["updatedAt"] = time.Now().Unix()

	if _, err := s.budgets.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": zeroed}); err != nil {
		return fmt.Errorf("failed to reset budgets: %w", err)
	}
	return nil
}

func (s *Store) requireBudget(ctx context.Context, userID string) error {
	err := s.budgets.FindOne(ctx, bson.M{"_id": userID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.ErrNoBudget
	}
	if err != nil {
		return fmt.Errorf("failed to find budget: %w", err)
	}
	return nil
}

// AppendTransaction inserts a transaction and returns its hex ID
func (s *Store) AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}

	doc := transactionDoc{
		UserID:      userID,
		Category:    string(tx.Category),
		AmountCents: tx.Amount.Cents,
		Date:        tx.Date.String(),
		Description: tx.Description,
		CreatedAt:   time.Now().Unix(),
	}

	result, err := s.transactions.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id.Hex(), nil
}

// DeleteTransaction removes a transaction, missing documents are not an error
func (s *Store) DeleteTransaction(ctx context.Context, userID string, category core.Category, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// IDs from other backends never match a Mongo document.
		return nil
	}

	filter := bson.M{
		"_id":      objectID,
		"userId":   userID,
		"category": string(category),
	}
	if _, err := s.transactions.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the user's transactions for one category
func (s *Store) ListTransactions(ctx context.Context, userID string, category core.Category) ([]core.Transaction, error) {
	filter := bson.M{"userId": userID, "category": string(category)}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := s.transactions.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var items []core.Transaction
	for cursor.Next(ctx) {
		var doc transactionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}

		date, err := core.ParseDate(doc.Date)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", doc.Date, err)
		}

		items = append(items, core.Transaction{
			ID:          doc.ID.Hex(),
			Category:    core.Category(doc.Category),
			Amount:      core.Money{Cents: doc.AmountCents},
			Date:        date,
			Description: doc.Description,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return items, nil
}

// ListUsers returns every user with a budget document
func (s *Store) ListUsers(ctx context.Context) ([]string, error) {
	values, err := s.budgets.Distinct(ctx, "_id", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var users []string
	for _, v := range values {
		if id, ok := v.(string); ok {
			users = append(users, id)
		}
	}
	return users, nil
}

// HealthCheck pings the server for readiness probes
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo unavailable: %w", err)
	}
	return nil
}
