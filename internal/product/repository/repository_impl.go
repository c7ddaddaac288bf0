package repository

import (
	"context"
	"strings"

	"github.com/smallbiznis/eragon/internal/product/domain"
	"gorm.io/gorm"
)

const productColumns = `id, name, slug, is_signup_store, logo, logo_url, title, subtitle, sub_subtitle,
	main_affiliate_url,
	footer_section_effortless_savings_title, footer_section_effortless_savings_description,
	footer_section_how_to_use_title, footer_section_how_to_use_steps, footer_section_how_to_use_note,
	footer_section_tips_title, footer_section_tips_list,
	footer_section_contact_title, footer_section_contact_description,
	footer_contact_phone, footer_contact_email, footer_contact_whatsapp,
	social_facebook_url, social_twitter_url, social_instagram_url,
	created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO products (`+productColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		append([]any{p.ID}, append(mutableValues(p), p.CreatedAt, p.UpdatedAt)...)...,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, p *domain.Product) error {
	if p == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Exec(
		`UPDATE products SET
		 name = ?, slug = ?, is_signup_store = ?, logo = ?, logo_url = ?, title = ?, subtitle = ?,
		 sub_subtitle = ?, main_affiliate_url = ?,
		 footer_section_effortless_savings_title = ?, footer_section_effortless_savings_description = ?,
		 footer_section_how_to_use_title = ?, footer_section_how_to_use_steps = ?, footer_section_how_to_use_note = ?,
		 footer_section_tips_title = ?, footer_section_tips_list = ?,
		 footer_section_contact_title = ?, footer_section_contact_description = ?,
		 footer_contact_phone = ?, footer_contact_email = ?, footer_contact_whatsapp = ?,
		 social_facebook_url = ?, social_twitter_url = ?, social_instagram_url = ?,
		 updated_at = ?
		 WHERE id = ?`,
		append(mutableValues(p), p.UpdatedAt, p.ID)...,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id int64) (bool, error) {
	res := db.WithContext(ctx).Exec(`DELETE FROM products WHERE id = ?`, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT `+productColumns+` FROM products WHERE id = ?`,
		id,
	).Scan(&p).Error
	if err != nil {
		return nil, err
	}
	if p.ID == 0 {
		return nil, nil
	}
	return &p, nil
}

func (r *repo) FindIDBySlug(ctx context.Context, db *gorm.DB, slug string) (int64, error) {
	var id int64
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM products WHERE slug = ?`,
		slug,
	).Scan(&id).Error
	return id, err
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT ` + productColumns + ` FROM products ORDER BY id ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) NameTaken(ctx context.Context, db *gorm.DB, name string, exceptID int64) (bool, error) {
	return exists(ctx, db, `SELECT COUNT(1) FROM products WHERE name = ? AND id <> ?`, name, exceptID)
}

func (r *repo) SlugTaken(ctx context.Context, db *gorm.DB, slug string, exceptID int64) (bool, error) {
	return exists(ctx, db, `SELECT COUNT(1) FROM products WHERE slug = ? AND id <> ?`, slug, exceptID)
}

func (r *repo) FirstCouponShopNowURLs(ctx context.Context, db *gorm.DB, productIDs []int64) (map[int64]string, error) {
	out := make(map[int64]string, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		ProductID  int64
		ShopNowURL string
	}
	err := db.WithContext(ctx).Raw(
		`SELECT product_id, shop_now_url FROM product_coupons
		 WHERE product_id IN ? AND shop_now_url IS NOT NULL AND shop_now_url <> ''
		 ORDER BY product_id ASC, id ASC`,
		productIDs,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, seen := out[row.ProductID]; !seen {
			out[row.ProductID] = strings.TrimSpace(row.ShopNowURL)
		}
	}
	return out, nil
}

func (r *repo) CouponIDs(ctx context.Context, db *gorm.DB, productID int64) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM product_coupons WHERE product_id = ? ORDER BY id ASC`,
		productID,
	).Scan(&ids).Error
	return ids, err
}

func (r *repo) DeleteCoupons(ctx context.Context, db *gorm.DB, productID int64) error {
	return db.WithContext(ctx).Exec(`DELETE FROM product_coupons WHERE product_id = ?`, productID).Error
}

func exists(ctx context.Context, db *gorm.DB, query string, args ...any) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func mutableValues(p *domain.Product) []any {
	return []any{
		p.Name,
		p.Slug,
		p.IsSignupStore,
		p.Logo,
		p.LogoURL,
		p.Title,
		p.Subtitle,
		p.SubSubtitle,
		p.MainAffiliateURL,
		p.Footer.EffortlessSavingsTitle,
		p.Footer.EffortlessSavingsDescription,
		p.Footer.HowToUseTitle,
		p.Footer.HowToUseSteps,
		p.Footer.HowToUseNote,
		p.Footer.TipsTitle,
		p.Footer.TipsList,
		p.Footer.ContactTitle,
		p.Footer.ContactDescription,
		p.Footer.ContactPhone,
		p.Footer.ContactEmail,
		p.Footer.ContactWhatsapp,
		p.Social.FacebookURL,
		p.Social.TwitterURL,
		p.Social.InstagramURL,
	}
}
