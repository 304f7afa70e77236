// Package gormstore implements the Store over gorm, for postgres and sqlite.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trendhive/internal/model"
	"trendhive/internal/store"
	metrics "trendhive/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is a gorm-backed store.Store
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// New wraps an open gorm connection. The connection should be opened with
// TranslateError so duplicate keys surface as gorm.ErrDuplicatedKey.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Products() store.ProductRepository   { return productRepo{s.db} }
func (s *Store) Carts() store.CartRepository         { return cartRepo{s.db} }
func (s *Store) Wishlists() store.WishlistRepository { return wishlistRepo{s.db} }
func (s *Store) Orders() store.OrderRepository       { return orderRepo{s.db} }
func (s *Store) Reviews() store.ReviewRepository     { return reviewRepo{s.db} }
func (s *Store) Users() store.UserRepository         { return userRepo{s.db} }

// Tx runs fn inside a database transaction
func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, s store.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx})
	})
}

// Migrate creates or updates the tables
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&model.Product{},
		&model.Cart{},
		&model.Wishlist{},
		&model.Order{},
		&model.Review{},
		&model.User{},
	); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ErrNotFound
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type productRepo struct{ db *gorm.DB }

func (r productRepo) List(ctx context.Context, filter store.ProductFilter) ([]model.Product, error) {
	defer metrics.TrackDBOperation("product_list")(time.Now())

	query := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filter.Category)
	}
	if filter.SubCategory != "" {
		query = query.Where("LOWER(sub_category) = LOWER(?)", filter.SubCategory)
	}
	if filter.Query != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(filter.Query)) + "%"
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if filter.Featured {
		query = query.Where("featured = ?", true)
	}
	if filter.NewArrival {
		query = query.Where("new_arrival = ?", true)
	}
	if filter.OnSale {
		query = query.Where("on_sale = ?", true)
	}

	products := []model.Product{}
	if err := query.Order("created_at ASC").Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r productRepo) Get(ctx context.Context, id string) (*model.Product, error) {
	defer metrics.TrackDBOperation("product_get")(time.Now())
	if !store.ValidID(id) {
		return nil, model.ErrNotFound
	}
	var p model.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r productRepo) Create(ctx context.Context, p *model.Product) error {
	defer metrics.TrackDBOperation("product_create")(time.Now())
	if p.ID == "" {
		p.ID = store.NewID()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r productRepo) Update(ctx context.Context, p *model.Product) error {
	defer metrics.TrackDBOperation("product_update")(time.Now())
	if !store.ValidID(p.ID) {
		return model.ErrNotFound
	}
	result := r.db.WithContext(ctx).Model(p).Select("*").Omit("created_at").Updates(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r productRepo) Delete(ctx context.Context, id string) error {
	defer metrics.TrackDBOperation("product_delete")(time.Now())
	if !store.ValidID(id) {
		return model.ErrNotFound
	}
	result := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (r productRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).Count(&count).Error
	return count, err
}

type cartRepo struct{ db *gorm.DB }

func (r cartRepo) GetByUser(ctx context.Context, userID string) (*model.Cart, error) {
	defer metrics.TrackDBOperation("cart_get")(time.Now())
	var c model.Cart
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Save upserts on the owner so a cart row stays 1:1 with its user
func (r cartRepo) Save(ctx context.Context, c *model.Cart) error {
	defer metrics.TrackDBOperation("cart_save")(time.Now())
	if c.ID == "" {
		c.ID = store.NewID()
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
	}).Create(c).Error
}

func (r cartRepo) DeleteByUser(ctx context.Context, userID string) error {
	defer metrics.TrackDBOperation("cart_delete")(time.Now())
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Cart{}).Error
}

type wishlistRepo struct{ db *gorm.DB }

func (r wishlistRepo) GetByUser(ctx context.Context, userID string) (*model.Wishlist, error) {
	var w model.Wishlist
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
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
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"product_ids", "updated_at"}),
	}).Create(w).Error
}

type orderRepo struct{ db *gorm.DB }

func (r orderRepo) Create(ctx context.Context, o *model.Order) error {
	defer metrics.TrackDBOperation("order_create")(time.Now())
	if o.ID == "" {
		o.ID = store.NewID()
	}
	return r.db.WithContext(ctx).Create(o).Error
}

func (r orderRepo) Get(ctx context.Context, id string) (*model.Order, error) {
	defer metrics.TrackDBOperation("order_get")(time.Now())
	if !store.ValidID(id) {
		return nil, model.ErrNotFound
	}
	var o model.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r orderRepo) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	defer metrics.TrackDBOperation("order_list")(time.Now())
	orders := []model.Order{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r orderRepo) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	defer metrics.TrackDBOperation("order_update_status")(time.Now())
	if !store.ValidID(id) {
		return model.ErrNotFound
	}
	result := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}
	return nil
}

type reviewRepo struct{ db *gorm.DB }

func (r reviewRepo) Create(ctx context.Context, rv *model.Review) error {
	defer metrics.TrackDBOperation("review_create")(time.Now())
	if rv.ID == "" {
		rv.ID = store.NewID()
	}
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r reviewRepo) ListByProduct(ctx context.Context, productID string) ([]model.Review, error) {
	defer metrics.TrackDBOperation("review_list")(time.Now())
	reviews := []model.Review{}
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

type userRepo struct{ db *gorm.DB }

func (r userRepo) Create(ctx context.Context, u *model.User) error {
	defer metrics.TrackDBOperation("user_create")(time.Now())
	u.Email = store.NormalizeEmail(u.Email)

	var existing int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", u.Email).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		return model.ErrEmailTaken
	}

	if u.ID == "" {
		u.ID = store.NewID()
	}
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrEmailTaken
	}
	return err
}

func (r userRepo) Get(ctx context.Context, id string) (*model.User, error) {
	if !store.ValidID(id) {
		return nil, model.ErrNotFound
	}
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "email = ?", store.NormalizeEmail(email)).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
