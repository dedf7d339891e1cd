// Package mongo persists the ledger in MongoDB, the backend the bot
// originally ran on. Amounts live as doubles in the collections (the
// historical schema); decimals are reconstructed on read.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"expensebot/internal/core"
	"expensebot/internal/store"
)

type Repository struct {
	client       *mongo.Client
	transactions *mongo.Collection
	budgets      *mongo.Collection
}

var _ store.Store = (*Repository)(nil)

type transactionDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ChatID     int64              `bson:"chatId"`
	Amount     float64            `bson:"amount"`
	Category   string             `bson:"category"`
	Username   string             `bson:"username"`
	OccurredAt time.Time          `bson:"date"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

type budgetDoc struct {
	ChatID    int64     `bson:"chatId"`
	Amount    float64   `bson:"amount"`
	Period    string    `bson:"period"`
	StartDate time.Time `bson:"startDate"`
	Username  string    `bson:"username"`
}

func New(ctx context.Context, uri, database string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w: %w", store.ErrUnavailable, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w: %w", store.ErrUnavailable, err)
	}

	db := client.Database(database)
	r := &Repository{
		client:       client,
		transactions: db.Collection("transactions"),
		budgets:      db.Collection("budgets"),
	}
	if err := r.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}

	slog.InfoContext(ctx, "Connected to MongoDB", "database", database)
	return r, nil
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	_, err := r.transactions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "chatId", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "chatId", Value: 1}, {Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "chatId", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create transaction indexes: %w", err)
	}

	unique := true
	_, err = r.budgets.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "chatId", Value: 1}},
		Options: &options.IndexOptions{Unique: &unique},
	})
	if err != nil {
		return fmt.Errorf("create budget index: %w", err)
	}
	return nil
}

func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *Repository) Insert(ctx context.Context, e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	e.CreatedAt = time.Now()
	if e.OccurredAt.IsZero() {
		e.OccurredAt = e.CreatedAt
	}

	res, err := r.transactions.InsertOne(ctx, transactionDoc{
		ChatID:     e.ChatID,
		Amount:     e.Amount.InexactFloat64(),
		Category:   e.Category,
		Username:   e.Username,
		OccurredAt: e.OccurredAt,
		CreatedAt:  e.CreatedAt,
	})
	if err != nil {
		return core.Entry{}, wrap("insert transaction", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		e.ID = oid.Hex()
	}
	return e, nil
}

func (r *Repository) Latest(ctx context.Context, chatID int64) (core.Entry, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var doc transactionDoc
	err := r.transactions.FindOne(ctx, bson.M{"chatId": chatID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Entry{}, store.ErrNoEntries
	}
	if err != nil {
		return core.Entry{}, wrap("find latest transaction", err)
	}
	return doc.entry(), nil
}

func (r *Repository) DeleteLatest(ctx context.Context, chatID int64) (core.Entry, error) {
	opts := options.FindOneAndDelete().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	var doc transactionDoc
	err := r.transactions.FindOneAndDelete(ctx, bson.M{"chatId": chatID}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Entry{}, store.ErrNoEntries
	}
	if err != nil {
		return core.Entry{}, wrap("delete latest transaction", err)
	}
	return doc.entry(), nil
}

func (r *Repository) List(ctx context.Context, chatID int64) ([]core.Entry, error) {
	return r.find(ctx, bson.M{"chatId": chatID}, bson.D{{Key: "createdAt", Value: -1}})
}

func (r *Repository) ListByRange(ctx context.Context, chatID int64, dr core.DateRange) ([]core.Entry, error) {
	filter := bson.M{
		"chatId": chatID,
		"date":   bson.M{"$gte": dr.Start, "$lt": dr.End},
	}
	return r.find(ctx, filter, bson.D{{Key: "date", Value: -1}})
}

func (r *Repository) ListByCategory(ctx context.Context, chatID int64, category string) ([]core.Entry, error) {
	filter := bson.M{
		"chatId":   chatID,
		"category": categoryFilter(category),
	}
	return r.find(ctx, filter, bson.D{{Key: "createdAt", Value: -1}})
}

// categoryFilter builds the anchored case-insensitive regex used for
// category lookups: exact match up to casing.
func categoryFilter(category string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(category) + "$", Options: "i"}
}

func (r *Repository) find(ctx context.Context, filter bson.M, sort bson.D) ([]core.Entry, error) {
	cur, err := r.transactions.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, wrap("find transactions", err)
	}
	defer cur.Close(ctx)

	var out []core.Entry
	for cur.Next(ctx) {
		var doc transactionDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, wrap("decode transaction", err)
		}
		out = append(out, doc.entry())
	}
	if err := cur.Err(); err != nil {
		return nil, wrap("iterate transactions", err)
	}
	return out, nil
}

func (r *Repository) TotalSpent(ctx context.Context, chatID int64) (decimal.Decimal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"chatId": chatID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	}
	cur, err := r.transactions.Aggregate(ctx, pipeline)
	if err != nil {
		return decimal.Zero, wrap("aggregate total", err)
	}
	defer cur.Close(ctx)

	var result struct {
		Total float64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&result); err != nil {
			return decimal.Zero, wrap("decode total", err)
		}
	}
	return decimal.NewFromFloat(result.Total), nil
}

func (r *Repository) UpsertBudget(ctx context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	update := bson.M{"$set": budgetDoc{
		ChatID:    b.ChatID,
		Amount:    b.Amount.InexactFloat64(),
		Period:    string(b.Period),
		StartDate: b.StartDate,
		Username:  b.Username,
	}}
	upsert := true
	_, err := r.budgets.UpdateOne(ctx, bson.M{"chatId": b.ChatID}, update, &options.UpdateOptions{Upsert: &upsert})
	if err != nil {
		return wrap("upsert budget", err)
	}
	return nil
}

func (r *Repository) BudgetAmount(ctx context.Context, chatID int64, fallback decimal.Decimal) (decimal.Decimal, error) {
	var doc budgetDoc
	err := r.budgets.FindOne(ctx, bson.M{"chatId": chatID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fallback, nil
	}
	if err != nil {
		return decimal.Zero, wrap("find budget", err)
	}
	return decimal.NewFromFloat(doc.Amount), nil
}

func (d transactionDoc) entry() core.Entry {
	return core.Entry{
		ID:         d.ID.Hex(),
		ChatID:     d.ChatID,
		Amount:     decimal.NewFromFloat(d.Amount),
		Category:   d.Category,
		Username:   d.Username,
		OccurredAt: d.OccurredAt,
		CreatedAt:  d.CreatedAt,
	}
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, store.ErrUnavailable, err)
}
