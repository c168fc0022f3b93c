package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bbqaffair/catering-booking-and-orders/internal/domain"
	"github.com/bbqaffair/catering-booking-and-orders/internal/observability"
)

// CatalogRepository reads and maintains the menu catalog. Orders only
// snapshot prices from here at creation time; catalog edits never touch
// existing orders.
type CatalogRepository struct {
	categories *mongo.Collection
	items      *mongo.Collection
	logger     observability.Logger
}

func NewCatalogRepository(db *mongo.Database, logger observability.Logger) *CatalogRepository {
	return &CatalogRepository{
		categories: db.Collection("menu_categories"),
		items:      db.Collection("menu_items"),
		logger:     logger,
	}
}

type categoryDoc struct {
	ID           uuid.UUID `bson:"_id"`
	Name         string    `bson:"name"`
	Description  string    `bson:"description"`
	DisplayOrder int       `bson:"display_order"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type itemDoc struct {
	ID           uuid.UUID `bson:"_id"`
	CategoryID   uuid.UUID `bson:"category_id"`
	Name         string    `bson:"name"`
	Description  string    `bson:"description"`
	Price        float64   `bson:"price"`
	Available    bool      `bson:"is_available"`
	DisplayOrder int       `bson:"display_order"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func (c *CatalogRepository) ListCategories(ctx context.Context) ([]domain.MenuCategory, error) {
	cur, err := c.categories.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}}))
	if err != nil {
		c.logger.Error("failed to list categories", err)
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.MenuCategory
	for cur.Next(ctx) {
		var doc categoryDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, domain.MenuCategory{
			ID:           doc.ID,
			Name:         doc.Name,
			Description:  doc.Description,
			DisplayOrder: doc.DisplayOrder,
			CreatedAt:    doc.CreatedAt,
			UpdatedAt:    doc.UpdatedAt,
		})
	}
	return out, cur.Err()
}

// ItemFilter narrows ListMenuItems; zero values mean no filtering.
type ItemFilter struct {
	CategoryID    uuid.UUID
	AvailableOnly bool
}

func (c *CatalogRepository) ListMenuItems(ctx context.Context, filter ItemFilter) ([]domain.MenuItem, error) {
	query := bson.M{}
	if filter.CategoryID != uuid.Nil {
		query["category_id"] = filter.CategoryID
	}
	if filter.AvailableOnly {
		query["is_available"] = true
	}

	cur, err := c.items.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "display_order", Value: 1}}))
	if err != nil {
		c.logger.Error("failed to list menu items", err)
		return nil, err
	}
	defer cur.Close(ctx)

	var out []domain.MenuItem
	for cur.Next(ctx) {
		var doc itemDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, itemFromDoc(doc))
	}
	return out, cur.Err()
}

func (c *CatalogRepository) GetMenuItem(ctx context.Context, id uuid.UUID) (*domain.MenuItem, error) {
	var doc itemDoc
	err := c.items.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		c.logger.Error("failed to get menu item", err)
		return nil, err
	}
	item := itemFromDoc(doc)
	return &item, nil
}

func (c *CatalogRepository) CreateMenuItem(ctx context.Context, item domain.MenuItem) error {
	now := time.Now()
	doc := itemDoc{
		ID:           item.ID,
		CategoryID:   item.CategoryID,
		Name:         item.Name,
		Description:  item.Description,
		Price:        item.Price,
		Available:    item.Available,
		DisplayOrder: item.DisplayOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	_, err := c.items.InsertOne(ctx, doc)
	if err != nil {
		c.logger.Error("failed to create menu item", err)
		return err
	}
	return nil
}

func (c *CatalogRepository) SetItemAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	res, err := c.items.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_available": available, "updated_at": time.Now()}},
	)
	if err != nil {
		c.logger.Error("failed to update item availability", err)
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func itemFromDoc(doc itemDoc) domain.MenuItem {
	return domain.MenuItem{
		ID:           doc.ID,
		CategoryID:   doc.CategoryID,
		Name:         doc.Name,
		Description:  doc.Description,
		Price:        doc.Price,
		Available:    doc.Available,
		DisplayOrder: doc.DisplayOrder,
		CreatedAt:    doc.CreatedAt,
		UpdatedAt:    doc.UpdatedAt,
	}
}
