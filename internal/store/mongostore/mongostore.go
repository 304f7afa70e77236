// Package mongostore implements the Store over MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"trendhive/internal/model"
	"trendhive/internal/store"
	metrics "trendhive/prometheus"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsCollection  = "products"
	cartsCollection     = "carts"
	wishlistsCollection = "wishlists"
	ordersCollection    = "orders"
	reviewsCollection   = "reviews"
	usersCollection     = "users"
)

// Store is a MongoDB-backed store.Store. Tx needs a replica set.
type Store struct {
	db *mongo.Database
}

var _ store.Store = (*Store)(nil)

// New wraps a connected database
func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

func (s *Store) Products() store.ProductRepository {
	return productRepo{s.db.Collection(productsCollection)}
}

func (s *Store) Carts() store.CartRepository {
	return cartRepo{s.db.Collection(cartsCollection)}
}

func (s *Store) Wishlists() store.WishlistRepository {
	return wishlistRepo{s.db.Collection(wishlistsCollection)}
}

func (s *Store) Orders() store.OrderRepository {
	return orderRepo{s.db.Collection(ordersCollection)}
}

func (s *Store) Reviews() store.ReviewRepository {
	return reviewRepo{s.db.Collection(reviewsCollection)}
}

func (s *Store) Users() store.UserRepository {
	return userRepo{s.db.Collection(usersCollection)}
}

// Tx runs fn in a multi-document transaction. Repositories join it through
// the session context handed to fn.
func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, s store.Store) error) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return err
}

// Migrate creates the indexes the repositories rely on
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		productsCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "subCategory", Value: 1}}},
		},
		cartsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		wishlistsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for name, models := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.Client().Disconnect(ctx)
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.ErrNotFound
	}
	return err
}

// equalFold matches a whole string case-insensitively
func equalFold(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}

func productFilter(filter store.ProductFilter) bson.D {
	query := bson.D{}
	if filter.Category != "" {
		query = append(query, bson.E{Key: "category", Value: equalFold(filter.Category)})
	}
	if filter.SubCategory != "" {
		query = append(query, bson.E{Key: "subCategory", Value: equalFold(filter.SubCategory)})
	}
	if filter.Query != "" {
		contains := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		query = append(query, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "title", Value: contains}},
			bson.D{{Key: "description", Value: contains}},
		}})
	}
	if filter.Featured {
		query = append(query, bson.E{Key: "featured", Value: true})
	}
	if filter.NewArrival {
		query = append(query, bson.E{Key: "newArrival", Value: true})
	}
	if filter.OnSale {
		query = append(query, bson.E{Key: "onSale", Value: true})
	}
	return query
}

type productRepo struct{ c *mongo.Collection }

func (r productRepo) List(ctx context.Context, filter store.ProductFilter) ([]model.Product, error) {
	defer metrics.TrackDBOperation("product_list")(time.Now())
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.c.Find(ctx, productFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	products := []model.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r productRepo) Get(ctx context.Context, id string) (*model.Product, error) {
	defer metrics.TrackDBOperation("product_get")(time.Now())
	var p model.Product
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r productRepo) Create(ctx context.Context, p *model.Product) error {
	defer metrics.TrackDBOperation("product_create")(time.Now())
	if p.ID == "" {
		p.ID = store.NewID()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	_, err := r.c.InsertOne(ctx, p)
	return err
}

func (r productRepo) Update(ctx context.Context, p *model.Product) error {
	defer metrics.TrackDBOperation("product_update")(time.Now())
	p.UpdatedAt = time.Now().UTC()
	result, err := r.c.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r productRepo) Delete(ctx context.Context, id string) error {
	defer metrics.TrackDBOperation("product_delete")(time.Now())
	result, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r productRepo) Count(ctx context.Context) (int64, error) {
	return r.c.CountDocuments(ctx, bson.D{})
}

type cartRepo struct{ c *mongo.Collection }

func (r cartRepo) GetByUser(ctx context.Context, userID string) (*model.Cart, error) {
	defer metrics.TrackDBOperation("cart_get")(time.Now())
	var c model.Cart
	err := r.c.FindOne(ctx, bson.M{"userId": userID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r cartRepo) Save(ctx context.Context, c *model.Cart) error {
	defer metrics.TrackDBOperation("cart_save")(time.Now())
	if c.ID == "" {
		c.ID = store.NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.c.ReplaceOne(ctx, bson.M{"userId": c.UserID}, c, options.Replace().SetUpsert(true))
	return err
}

func (r cartRepo) DeleteByUser(ctx context.Context, userID string) error {
	defer metrics.TrackDBOperation("cart_delete")(time.Now())
	_, err := r.c.DeleteOne(ctx, bson.M{"userId": userID})
	return err
}

type wishlistRepo struct{ c *mongo.Collection }

func (r wishlistRepo) GetByUser(ctx context.Context, userID string) (*model.Wishlist, error) {
	var w model.Wishlist
	err := r.c.FindOne(ctx, bson.M{"userId": userID}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r wishlistRepo) Save(ctx context.Context, w *model.Wishlist) error {
	defer metrics.TrackDBOperation("wishlist_save")(time.Now())
	if w.ID == "" {
		w.ID = store.NewID()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now().UTC()
	}
	_, err := r.c.ReplaceOne(ctx, bson.M{"userId": w.UserID}, w, options.Replace().SetUpsert(true))
	return err
}

type orderRepo struct{ c *mongo.Collection }

func (r orderRepo) Create(ctx context.Context, o *model.Order) error {
	defer metrics.TrackDBOperation("order_create")(time.Now())
	if o.ID == "" {
		o.ID = store.NewID()
	}
	_, err := r.c.InsertOne(ctx, o)
	return err
}

func (r orderRepo) Get(ctx context.Context, id string) (*model.Order, error) {
	defer metrics.TrackDBOperation("order_get")(time.Now())
	var o model.Order
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r orderRepo) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	defer metrics.TrackDBOperation("order_list")(time.Now())
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.c.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	orders := []model.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r orderRepo) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	defer metrics.TrackDBOperation("order_update_status")(time.Now())
	result, err := r.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

type reviewRepo struct{ c *mongo.Collection }

func (r reviewRepo) Create(ctx context.Context, rv *model.Review) error {
	defer metrics.TrackDBOperation("review_create")(time.Now())
	if rv.ID == "" {
		rv.ID = store.NewID()
	}
	_, err := r.c.InsertOne(ctx, rv)
	return err
}

func (r reviewRepo) ListByProduct(ctx context.Context, productID string) ([]model.Review, error) {
	defer metrics.TrackDBOperation("review_list")(time.Now())
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.c.Find(ctx, bson.M{"productId": productID}, opts)
	if err != nil {
		return nil, err
	}
	reviews := []model.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

type userRepo struct{ c *mongo.Collection }

func (r userRepo) Create(ctx context.Context, u *model.User) error {
	defer metrics.TrackDBOperation("user_create")(time.Now())
	u.Email = store.NormalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = store.NewID()
	}
	_, err := r.c.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return model.ErrEmailTaken
	}
	return err
}

func (r userRepo) Get(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.c.FindOne(ctx, bson.M{"email": store.NormalizeEmail(email)}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
