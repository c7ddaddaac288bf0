package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	GetBySlug(ctx context.Context, slug string) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	// Sitemap lists id and slug of every product without touching the cache.
	Sitemap(ctx context.Context) ([]SitemapEntry, error)
}

// Fields holds the writable attributes. A nil pointer leaves the stored value untouched.
type Fields struct {
	Slug             *string `json:"slug"`
	IsSignupStore    *bool   `json:"is_signup_store"`
	Logo             *string `json:"logo"`
	LogoURL          *string `json:"logo_url"`
	Title            *string `json:"title"`
	Subtitle         *string `json:"subtitle"`
	SubSubtitle      *string `json:"sub_subtitle"`
	MainAffiliateURL *string `json:"main_affiliate_url"`

	FooterSectionEffortlessSavingsTitle       *string `json:"footer_section_effortless_savings_title"`
	FooterSectionEffortlessSavingsDescription *string `json:"footer_section_effortless_savings_description"`
	FooterSectionHowToUseTitle                *string `json:"footer_section_how_to_use_title"`
	FooterSectionHowToUseSteps                *string `json:"footer_section_how_to_use_steps"`
	FooterSectionHowToUseNote                 *string `json:"footer_section_how_to_use_note"`
	FooterSectionTipsTitle                    *string `json:"footer_section_tips_title"`
	FooterSectionTipsList                     *string `json:"footer_section_tips_list"`
	FooterSectionContactTitle                 *string `json:"footer_section_contact_title"`
	FooterSectionContactDescription           *string `json:"footer_section_contact_description"`
	FooterContactPhone                        *string `json:"footer_contact_phone"`
	FooterContactEmail                        *string `json:"footer_contact_email"`
	FooterContactWhatsapp                     *string `json:"footer_contact_whatsapp"`

	SocialFacebookURL  *string `json:"social_facebook_url"`
	SocialTwitterURL   *string `json:"social_twitter_url"`
	SocialInstagramURL *string `json:"social_instagram_url"`
}

type CreateRequest struct {
	Name string `json:"name"`
	Fields
}

// UpdateRequest backs both PUT and PATCH. Partial=false requires Name.
type UpdateRequest struct {
	ID      string  `json:"-"`
	Partial bool    `json:"-"`
	Name    *string `json:"name"`
	Fields
}

// Response is the v1 product representation.
type Response struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Slug              string  `json:"slug"`
	IsSignupStore     bool    `json:"is_signup_store"`
	Logo              *string `json:"logo"`
	LogoURL           *string `json:"logo_url"`
	Title             string  `json:"title"`
	Subtitle          string  `json:"subtitle"`
	SubSubtitle       string  `json:"sub_subtitle"`
	MainAffiliateURL  *string `json:"main_affiliate_url"`
	ProductShopNowURL *string `json:"product_shop_now_url"`

	FooterSectionEffortlessSavingsTitle       *string `json:"footer_section_effortless_savings_title"`
	FooterSectionEffortlessSavingsDescription *string `json:"footer_section_effortless_savings_description"`
	FooterSectionHowToUseTitle                *string `json:"footer_section_how_to_use_title"`
	FooterSectionHowToUseSteps                *string `json:"footer_section_how_to_use_steps"`
	FooterSectionHowToUseNote                 *string `json:"footer_section_how_to_use_note"`
	FooterSectionTipsTitle                    *string `json:"footer_section_tips_title"`
	FooterSectionTipsList                     *string `json:"footer_section_tips_list"`
	FooterSectionContactTitle                 *string `json:"footer_section_contact_title"`
	FooterSectionContactDescription           *string `json:"footer_section_contact_description"`
	FooterContactPhone                        *string `json:"footer_contact_phone"`
	FooterContactEmail                        *string `json:"footer_contact_email"`
	FooterContactWhatsapp                     *string `json:"footer_contact_whatsapp"`

	SocialFacebookURL  *string `json:"social_facebook_url"`
	SocialTwitterURL   *string `json:"social_twitter_url"`
	SocialInstagramURL *string `json:"social_instagram_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SitemapEntry struct {
	ID        int64
	Slug      string
	UpdatedAt time.Time
}

var (
	ErrNotFound      = errors.New("not_found")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidSlug   = errors.New("invalid_slug")
	ErrInvalidURL    = errors.New("invalid_url")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrDuplicateName = errors.New("duplicate_name")
	ErrDuplicateSlug = errors.New("duplicate_slug")
)
