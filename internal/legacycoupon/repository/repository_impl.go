package repository

import (
	"context"

	"github.com/smallbiznis/eragon/internal/legacycoupon/domain"
	"gorm.io/gorm"
)

const couponColumns = `id, title, code, discount_hundredths, expiry_date, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, c *domain.Coupon) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO coupons (`+couponColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.Title,
		c.Code,
		c.DiscountHundredths,
		c.ExpiryDate,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, c *domain.Coupon) error {
	if c == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE coupons
		 SET title = ?, code = ?, discount_hundredths = ?, expiry_date = ?, updated_at = ?
		 WHERE id = ?`,
		c.Title,
		c.Code,
		c.DiscountHundredths,
		c.ExpiryDate,
		c.UpdatedAt,
		c.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM coupons WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Coupon, error) {
	var c domain.Coupon
	err := db.WithContext(ctx).Raw(
		`SELECT `+couponColumns+` FROM coupons WHERE id = ?`,
		id,
	).Scan(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Coupon, error) {
	var items []domain.Coupon
	err := db.WithContext(ctx).Raw(
		`SELECT ` + couponColumns + ` FROM coupons ORDER BY id ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CodeTaken(ctx context.Context, db *gorm.DB, code string, exceptID int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM coupons WHERE code = ? AND id <> ?`,
		code,
		exceptID,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
