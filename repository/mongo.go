package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/utils"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	AddressesCollection = "addresses"
	OrdersCollection    = "orders"
	ProductsCollection  = "products"
)

// NewMongoStore returns a Store backed by the given database.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Addresses: &MongoAddresses{col: db.Collection(AddressesCollection)},
		Orders:    &MongoOrders{col: db.Collection(OrdersCollection)},
		Products:  &MongoProducts{col: db.Collection(ProductsCollection)},
		Close: func(ctx context.Context) error {
			return db.Client().Disconnect(ctx)
		},
	}
}

// EnsureMongoIndexes creates the indexes list queries rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	if _, err := db.Collection(AddressesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("mongo: address index: %w", err)
	}
	if _, err := db.Collection(OrdersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "razorpayOrderId", Value: 1}}, Options: options.Index().SetSparse(true)},
	}); err != nil {
		return fmt.Errorf("mongo: order indexes: %w", err)
	}
	return nil
}

func mongoErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

func caseInsensitive(s string, exact bool) primitive.Regex {
	pattern := regexp.QuoteMeta(s)
	if exact {
		pattern = "^" + pattern + "$"
	}
	return primitive.Regex{Pattern: pattern, Options: "i"}
}

// MongoAddresses stores addresses in one collection keyed by userId.
type MongoAddresses struct {
	col *mongo.Collection
}

func (r *MongoAddresses) ListByUser(ctx context.Context, userID string) ([]models.Address, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isDefault", Value: -1}, {Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Address{}
	for cur.Next(ctx) {
		var a models.Address
		if err := cur.Decode(&a); err != nil {
			utils.LogError("Skipping undecodable address %v: %v", cur.Current.Lookup("_id"), err)
			continue
		}
		if err := a.Validate(); err != nil {
			utils.LogError("Skipping malformed address: %v", err)
			continue
		}
		out = append(out, a)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	models.SortAddresses(out)
	return out, nil
}

func (r *MongoAddresses) Get(ctx context.Context, userID, id string) (*models.Address, error) {
	var a models.Address
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "userId": userID}).Decode(&a); err != nil {
		return nil, mongoErr(err)
	}
	return &a, nil
}

func (r *MongoAddresses) Create(ctx context.Context, a *models.Address) error {
	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *MongoAddresses) Update(ctx context.Context, a *models.Address) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": a.ID, "userId": a.UserID}, a)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoAddresses) Delete(ctx context.Context, userID, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	return err
}

func (r *MongoAddresses) ClearDefaults(ctx context.Context, userID string) error {
	_, err := r.col.UpdateMany(ctx,
		bson.M{"userId": userID, "isDefault": true},
		bson.M{"$set": bson.M{"isDefault": false}})
	return err
}

func (r *MongoAddresses) SetDefault(ctx context.Context, userID, id string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isDefault": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MongoOrders stores orders.
type MongoOrders struct {
	col *mongo.Collection
}

func (r *MongoOrders) Create(ctx context.Context, o *models.Order) error {
	_, err := r.col.InsertOne(ctx, o)
	return err
}

func (r *MongoOrders) Get(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, mongoErr(err)
	}
	if err := o.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &o, nil
}

func (r *MongoOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.List(ctx, OrderFilter{UserID: userID})
}

func (r *MongoOrders) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := bson.M{}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if filter.Status != "" {
		query["status"] = caseInsensitive(string(filter.Status), true)
	}
	if !filter.Since.IsZero() {
		query["createdAt"] = bson.M{"$gte": filter.Since}
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		re := caseInsensitive(q, false)
		query["$or"] = bson.A{
			bson.M{"_id": re},
			bson.M{"userEmail": re},
			bson.M{"shippingAddress.fullName": re},
			bson.M{"shippingAddress.phone": re},
		}
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)

	out := []models.Order{}
	for cur.Next(ctx) {
		var o models.Order
		if err := cur.Decode(&o); err != nil {
			utils.LogError("Skipping undecodable order %v: %v", cur.Current.Lookup("_id"), err)
			continue
		}
		if err := o.Normalize(); err != nil {
			utils.LogError("Skipping malformed order: %v", err)
			continue
		}
		out = append(out, o)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

func (r *MongoOrders) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*models.Order, error) {
	set := bson.M{"status": upd.Status, "updatedAt": upd.UpdatedAt}
	if upd.DeliveredAt != nil {
		set["deliveredAt"] = *upd.DeliveredAt
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&o); err != nil {
		return nil, mongoErr(err)
	}
	if err := o.Normalize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &o, nil
}

// productDocument is the stored shape of a catalog entry, including the
// legacy image fields written by older admin tooling.
type productDocument struct {
	ID          interface{}     `bson:"_id"`
	Name        string          `bson:"name"`
	Slug        string          `bson:"slug"`
	Price       decimal.Decimal `bson:"price"`
	ImageURLs   []string        `bson:"imageUrls"`
	Images      []string        `bson:"images"`
	Image       string          `bson:"image"`
	Category    string          `bson:"category"`
	Sizes       []string        `bson:"sizes"`
	Colors      []string        `bson:"colors"`
	IsPublished bool            `bson:"isPublished"`
	CreatedAt   time.Time       `bson:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt"`
}

func (d productDocument) toProduct() (models.Product, error) {
	var id string
	switch v := d.ID.(type) {
	case string:
		id = v
	case primitive.ObjectID:
		id = v.Hex()
	default:
		return models.Product{}, fmt.Errorf("product: unsupported id type %T", d.ID)
	}
	p := models.Product{
		ID:          id,
		Name:        d.Name,
		Slug:        d.Slug,
		Price:       d.Price,
		Images:      models.NormalizeImages(d.ImageURLs, d.Images, d.Image),
		Category:    d.Category,
		Sizes:       d.Sizes,
		Colors:      d.Colors,
		IsPublished: d.IsPublished,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	return p, p.Validate()
}

func productIDFilter(ids []string) bson.A {
	out := bson.A{}
	for _, id := range ids {
		out = append(out, id)
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

// MongoProducts reads the catalog.
type MongoProducts struct {
	col *mongo.Collection
}

func (r *MongoProducts) Get(ctx context.Context, id string) (*models.Product, error) {
	var doc productDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": bson.M{"$in": productIDFilter([]string{id})}}).Decode(&doc); err != nil {
		return nil, mongoErr(err)
	}
	p, err := doc.toProduct()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &p, nil
}

func (r *MongoProducts) GetMany(ctx context.Context, ids []string) (map[string]models.Product, error) {
	ids = uniqueIDs(ids)
	out := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": productIDFilter(ids)}})
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc productDocument
		if err := cur.Decode(&doc); err != nil {
			utils.LogError("Skipping undecodable product: %v", err)
			continue
		}
		p, err := doc.toProduct()
		if err != nil {
			utils.LogError("Skipping malformed product: %v", err)
			continue
		}
		out[p.ID] = p
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return out, nil
}
