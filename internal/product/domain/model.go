package domain

import "time"

type Product struct {
	ID               int64   `gorm:"primaryKey;autoIncrement:false"`
	Name             string  `gorm:"type:varchar(255);not null;uniqueIndex:ux_products_name"`
	Slug             string  `gorm:"type:varchar(255);not null;uniqueIndex:ux_products_slug"`
	IsSignupStore    bool    `gorm:"not null;default:false"`
	Logo             *string `gorm:"type:text"`
	LogoURL          *string `gorm:"column:logo_url;type:text"`
	Title            string  `gorm:"type:varchar(255);not null;default:''"`
	Subtitle         string  `gorm:"type:varchar(255);not null;default:''"`
	SubSubtitle      string  `gorm:"type:varchar(255);not null;default:''"`
	MainAffiliateURL *string `gorm:"column:main_affiliate_url;type:text"`

	Footer
	Social

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// Footer carries the free-text store page sections rendered under the coupon list.
type Footer struct {
	EffortlessSavingsTitle       *string `gorm:"column:footer_section_effortless_savings_title;type:varchar(255)"`
	EffortlessSavingsDescription *string `gorm:"column:footer_section_effortless_savings_description;type:text"`
	HowToUseTitle                *string `gorm:"column:footer_section_how_to_use_title;type:varchar(255)"`
	HowToUseSteps                *string `gorm:"column:footer_section_how_to_use_steps;type:text"`
	HowToUseNote                 *string `gorm:"column:footer_section_how_to_use_note;type:text"`
	TipsTitle                    *string `gorm:"column:footer_section_tips_title;type:varchar(255)"`
	TipsList                     *string `gorm:"column:footer_section_tips_list;type:text"`
	ContactTitle                 *string `gorm:"column:footer_section_contact_title;type:varchar(255)"`
	ContactDescription           *string `gorm:"column:footer_section_contact_description;type:text"`
	ContactPhone                 *string `gorm:"column:footer_contact_phone;type:varchar(100)"`
	ContactEmail                 *string `gorm:"column:footer_contact_email;type:varchar(254)"`
	ContactWhatsapp              *string `gorm:"column:footer_contact_whatsapp;type:varchar(100)"`
}

type Social struct {
	FacebookURL  *string `gorm:"column:social_facebook_url;type:text"`
	TwitterURL   *string `gorm:"column:social_twitter_url;type:text"`
	InstagramURL *string `gorm:"column:social_instagram_url;type:text"`
}
