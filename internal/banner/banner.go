package banner

// BannerItem is the public DTO returned by the banner API.
type BannerItem struct {
	BannerID  int     `json:"bannerID"`
	Title     string  `json:"title"`
	Subtitle  *string `json:"subtitle,omitempty"`
	BannerImg *string `json:"bannerImg,omitempty"`
	Link      *string `json:"link,omitempty"`
	Alt       *string `json:"alt,omitempty"`
}

// FreeDeliveryBannerID marks the banner generated from the pricing rules;
// stored banners always have positive ids.
const FreeDeliveryBannerID = 0
