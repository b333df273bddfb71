package catalog

// Default returns the built-in option catalog for every supported platform.
// Callers that need different bundles construct their own Catalog with New.
func Default() *Catalog {
	return New(map[string][]Option{
		PlatformMeta:    metaOptions(),
		PlatformGoogle:  googleOptions(),
		PlatformTikTok:  tiktokOptions(),
		PlatformShopify: shopifyOptions(),
	})
}

func metaOptions() []Option {
	return []Option{
		{
			ID:          "ad_account",
			Name:        "Ad Account",
			Description: "Access to manage Facebook and Instagram ad campaigns",
			Enabled:     true,
			Scopes:      []string{"business_management", "ads_read"},
			Category:    "ads",
		},
		{
			ID:          "page_all_permissions",
			Name:        "Page (All Permissions)",
			Description: "Full access to manage Facebook Pages, posts, and insights",
			Enabled:     true,
			Scopes: []string{
				"pages_show_list",
				"pages_read_engagement",
				"pages_manage_posts",
				"pages_manage_metadata",
			},
			Category: "pages",
		},
		{
			ID:          "instagram_account",
			Name:        "Instagram Account",
			Description: "Access to manage Instagram Business accounts and content",
			Enabled:     false, // coming later
			// pages_show_list needed to traverse Page -> IG
			Scopes:   []string{"instagram_basic", "pages_show_list"},
			Category: "instagram",
		},
		{
			ID:          "catalog",
			Name:        "Catalog",
			Description: "Access to manage product catalogs for Facebook and Instagram Shopping",
			Enabled:     false, // coming later
			Scopes:      []string{"ads_management"},
			Category:    "catalog",
		},
		{
			ID:          "dataset",
			Name:        "Dataset",
			Description: "Access to manage datasets for advanced analytics and custom audiences",
			Enabled:     false, // coming later
			Scopes:      []string{"ads_management"},
			Category:    "dataset",
		},
	}
}

func googleOptions() []Option {
	return []Option{
		{
			ID:          "google_ads",
			Name:        "Google Ads",
			Description: "Access to manage Google Ads campaigns",
			Enabled:     true,
			Scopes:      []string{"https://www.googleapis.com/auth/adwords"},
			Category:    "ads",
		},
		{
			ID:          "analytics",
			Name:        "Google Analytics",
			Description: "Read access to Analytics properties and reports",
			Enabled:     true,
			Scopes:      []string{"https://www.googleapis.com/auth/analytics.readonly"},
			Category:    "analytics",
		},
		{
			ID:          "tag_manager",
			Name:        "Tag Manager",
			Description: "Read access to Tag Manager containers",
			Enabled:     true,
			Scopes:      []string{"https://www.googleapis.com/auth/tagmanager.readonly"},
			Category:    "analytics",
		},
		{
			ID:          "search_console",
			Name:        "Search Console",
			Description: "Read access to Search Console sites and data",
			Enabled:     true,
			Scopes:      []string{"https://www.googleapis.com/auth/webmasters.readonly"},
			Category:    "search",
		},
		{
			ID:          "business_profile",
			Name:        "Business Profile",
			Description: "Access to manage Google Business Profile locations",
			Enabled:     true,
			Scopes:      []string{"https://www.googleapis.com/auth/business.manage"},
			Category:    "business",
		},
		{
			ID:          "merchant_center",
			Name:        "Merchant Center",
			Description: "Access to manage Merchant Center product feeds",
			Enabled:     true,
			Scopes:      []string{"https://www.googleapis.com/auth/content"},
			Category:    "commerce",
		},
	}
}

func tiktokOptions() []Option {
	return []Option{
		{
			ID:          "tiktok_profile",
			Name:        "Profile",
			Description: "Read access to the TikTok account profile",
			Enabled:     true,
			Scopes:      []string{"user.info.basic"},
			Category:    "profile",
		},
		{
			ID:          "tiktok_videos",
			Name:        "Videos",
			Description: "Read access to the account's published videos",
			Enabled:     true,
			Scopes:      []string{"video.list"},
			Category:    "content",
		},
		{
			ID:          "tiktok_ads",
			Name:        "Ads",
			Description: "Access to manage TikTok ad campaigns",
			Enabled:     false, // coming later
			Scopes:      []string{"ads.management"},
			Category:    "ads",
		},
	}
}

func shopifyOptions() []Option {
	return []Option{
		{
			ID:          "products",
			Name:        "Products",
			Description: "Read access to the store's product catalog",
			Enabled:     true,
			Scopes:      []string{"read_products"},
			Category:    "commerce",
		},
		{
			ID:          "orders",
			Name:        "Orders",
			Description: "Read access to orders and fulfillments",
			Enabled:     true,
			Scopes:      []string{"read_orders"},
			Category:    "commerce",
		},
		{
			ID:          "customers",
			Name:        "Customers",
			Description: "Read access to customer records",
			Enabled:     false, // requires protected customer data approval
			Scopes:      []string{"read_customers"},
			Category:    "commerce",
		},
	}
}
