package models

import "time"

type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"desc,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Product is a catalog item. Category is filled by reads that join it.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	CategoryID  string    `json:"categoryId"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Volume      *string   `json:"volume,omitempty"`
	PackSize    *string   `json:"packSize,omitempty"`
	Featured    bool      `json:"featured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Category *Category `json:"category,omitempty"`
}

// DashboardCounts is the summary shown on the admin landing page.
type DashboardCounts struct {
	Products         int64 `json:"products"`
	Categories       int64 `json:"categories"`
	UnhandledMessages int64 `json:"unhandledMessages"`
	FeaturedProducts int64 `json:"featuredProducts"`
}
