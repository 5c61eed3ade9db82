package repository

import (
	"context"
	"strings"

	"go-inventory-catalog/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductFilter narrows FindAll. Empty fields are ignored.
type ProductFilter struct {
	Name     string // case-insensitive substring
	Category string // exact match
}

// ProductStats backs the dashboard summary
type ProductStats struct {
	TotalProducts   int64 `json:"total_products"`
	TotalStock      int64 `json:"total_stock"`
	LowStockCount   int64 `json:"low_stock_count"`
	OutOfStockCount int64 `json:"out_of_stock_count"`
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error)
	FindByName(ctx context.Context, name string) (*model.Product, error)
	ExistsByNameExcludingID(ctx context.Context, name string, id uint) (bool, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uint) (int64, error)
	Stats(ctx context.Context, lowStockThreshold int) (*ProductStats, error)

	// WithTx binds the repository to a running transaction
	WithTx(tx *gorm.DB) ProductRepository
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error)
}

func (r *productRepo) FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Name != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(filter.Name))+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	products := []model.Product{}
	err := q.Order("id ASC").Find(&products).Error
	return products, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes wildcard characters in user input match literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (r *productRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByName matches case-insensitively, mirroring the LOWER(name) unique index.
func (r *productRepo) FindByName(ctx context.Context, name string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) ExistsByNameExcludingID(ctx context.Context, name string, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("LOWER(name) = ? AND id <> ?", strings.ToLower(name), id).
		Count(&count).Error
	return count > 0, err
}

// Update writes every column, including zero stock and a nil image.
func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Save(product).Error)
}

func (r *productRepo) Delete(ctx context.Context, id uint) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, id)
	return res.RowsAffected, res.Error
}

func (r *productRepo) Stats(ctx context.Context, lowStockThreshold int) (*ProductStats, error) {
	var stats ProductStats
	products := func() *gorm.DB { return r.db.WithContext(ctx).Model(&model.Product{}) }

	if err := products().Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := products().Select("COALESCE(SUM(stock), 0)").Scan(&stats.TotalStock).Error; err != nil {
		return nil, err
	}
	if err := products().Where("stock > 0 AND stock < ?", lowStockThreshold).Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}
	if err := products().Where("stock = 0").Count(&stats.OutOfStockCount).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
