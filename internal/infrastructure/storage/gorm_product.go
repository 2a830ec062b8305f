package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yourusername/quote-bot/internal/domain/entity"
	"github.com/yourusername/quote-bot/internal/domain/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productModel products jadvali
type productModel struct {
	ID        string          `gorm:"primaryKey;type:text"`
	Name      string          `gorm:"uniqueIndex;not null"`
	Aliases   string          `gorm:"type:text"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Category  string
	ImageURL  string
	Stock     *int
	Position  int `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (productModel) TableName() string {
	return "products"
}

type gormProductRepository struct {
	db *gorm.DB
}

// OpenGorm postgres DSN bilan gorm ulanishi
func OpenGorm(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// NewGormProductRepository migrates the products table.
func NewGormProductRepository(db *gorm.DB) (repository.ProductRepository, error) {
	if err := db.AutoMigrate(&productModel{}); err != nil {
		return nil, fmt.Errorf("migrate products: %w", err)
	}
	return &gormProductRepository{db: db}, nil
}

func (g *gormProductRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	var rows []productModel
	if err := g.db.WithContext(ctx).Order("position ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Product, 0, len(rows))
	for _, row := range rows {
		p, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (g *gormProductRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	var row productModel
	err := g.db.WithContext(ctx).Where("LOWER(name) = ?", productKey(name)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entity.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	p, err := row.toEntity()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveMany upserts by name; row position follows the slice order.
func (g *gormProductRepository) SaveMany(ctx context.Context, products []entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	rows := make([]productModel, 0, len(products))
	for i, p := range products {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		row, err := newProductModel(p, i)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"aliases", "price", "category", "image_url", "stock", "position", "updated_at"}),
	}).Create(&rows).Error
}

func newProductModel(p entity.Product, position int) (productModel, error) {
	aliases, err := json.Marshal(p.Aliases)
	if err != nil {
		return productModel{}, err
	}
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	return productModel{
		ID:       id,
		Name:     strings.TrimSpace(p.Name),
		Aliases:  string(aliases),
		Price:    p.Price,
		Category: p.Category,
		ImageURL: p.ImageURL,
		Stock:    p.Stock,
		Position: position,
	}, nil
}

func (m productModel) toEntity() (entity.Product, error) {
	p := entity.Product{
		ID:       m.ID,
		Name:     m.Name,
		Price:    m.Price,
		Category: m.Category,
		ImageURL: m.ImageURL,
		Stock:    m.Stock,
	}
	if m.Aliases != "" {
		if err := json.Unmarshal([]byte(m.Aliases), &p.Aliases); err != nil {
			return entity.Product{}, fmt.Errorf("product %q aliases: %w", m.Name, err)
		}
	}
	return p, nil
}
