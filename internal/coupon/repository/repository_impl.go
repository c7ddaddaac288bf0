package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/smallbiznis/eragon/internal/coupon/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const couponColumns = `id, product_id, title, code, discount, shop_now_url, likes, dislikes,
	used_count, used_today, last_reset_date, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, c *domain.Coupon) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO product_coupons (`+couponColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.ProductID,
		c.Title,
		c.Code,
		c.Discount,
		c.ShopNowURL,
		c.Likes,
		c.Dislikes,
		c.UsedCount,
		c.UsedToday,
		c.LastResetDate,
		c.CreatedAt,
		c.UpdatedAt,
	).Error
}

// Update writes the editable attributes only; counters are owned by the increment methods.
func (r *repo) Update(ctx context.Context, db *gorm.DB, c *domain.Coupon) error {
	if c == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE product_coupons
		 SET product_id = ?, title = ?, code = ?, discount = ?, shop_now_url = ?, updated_at = ?
		 WHERE id = ?`,
		c.ProductID,
		c.Title,
		c.Code,
		c.Discount,
		c.ShopNowURL,
		c.UpdatedAt,
		c.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM product_coupons WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Coupon, error) {
	var c domain.Coupon
	err := db.WithContext(ctx).Raw(
		`SELECT `+couponColumns+` FROM product_coupons WHERE id = ?`,
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

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, productID *int64) ([]domain.Coupon, error) {
	var items []domain.Coupon
	stmt := db.WithContext(ctx)
	var err error
	if productID != nil {
		err = stmt.Raw(
			`SELECT `+couponColumns+` FROM product_coupons WHERE product_id = ? ORDER BY id ASC`,
			*productID,
		).Scan(&items).Error
	} else {
		err = stmt.Raw(
			`SELECT ` + couponColumns + ` FROM product_coupons ORDER BY id ASC`,
		).Scan(&items).Error
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ProductExists(ctx context.Context, db *gorm.DB, productID int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM products WHERE id = ?`,
		productID,
	).Scan(&count).Error
	return count > 0, err
}

func (r *repo) CodeTaken(ctx context.Context, db *gorm.DB, productID int64, code string, exceptID int64) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM product_coupons WHERE product_id = ? AND code = ? AND id <> ?`,
		productID,
		code,
		exceptID,
	).Scan(&count).Error
	return count > 0, err
}

func (r *repo) IncrementUsage(ctx context.Context, db *gorm.DB, id int64, today time.Time, now time.Time) (bool, error) {
	day := datatypes.Date(today)
	res := db.WithContext(ctx).Exec(
		`UPDATE product_coupons
		 SET used_today = CASE WHEN last_reset_date = ? THEN used_today + 1 ELSE 1 END,
		     used_count = used_count + 1,
		     last_reset_date = ?,
		     updated_at = ?
		 WHERE id = ?`,
		day,
		day,
		now,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) IncrementCounter(ctx context.Context, db *gorm.DB, id int64, counter domain.Counter, now time.Time) (bool, error) {
	switch counter {
	case domain.CounterLikes, domain.CounterDislikes:
	default:
		return false, fmt.Errorf("unknown counter %q", counter)
	}
	column := string(counter)
	res := db.WithContext(ctx).Exec(
		`UPDATE product_coupons SET `+column+` = `+column+` + 1, updated_at = ? WHERE id = ?`,
		now,
		id,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) ResetUsedToday(ctx context.Context, db *gorm.DB, now time.Time) ([]int64, error) {
	var ids []int64
	if err := db.WithContext(ctx).Raw(`SELECT id FROM product_coupons ORDER BY id ASC`).Scan(&ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}
	err := db.WithContext(ctx).Exec(
		`UPDATE product_coupons SET used_today = 0, updated_at = ?`,
		now,
	).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
