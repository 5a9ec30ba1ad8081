package domain

import "strings"

// Category names one of the six extraction targets.
type Category string

const (
	// CategoryPhone covers phone numbers.
	CategoryPhone Category = "phones"
	// CategoryEmail covers email addresses.
	CategoryEmail Category = "emails"
	// CategoryFacebook covers facebook.com links.
	CategoryFacebook Category = "facebook_links"
	// CategoryInstagram covers instagram.com links.
	CategoryInstagram Category = "instagram_links"
	// CategoryTwitter covers twitter.com links.
	CategoryTwitter Category = "twitter_links"
	// CategoryYouTube covers youtube.com user and channel links.
	CategoryYouTube Category = "youtube_links"
)

// Categories lists every category in the order they appear in a response.
func Categories() []Category {
	return []Category{
		CategoryPhone,
		CategoryEmail,
		CategoryFacebook,
		CategoryInstagram,
		CategoryTwitter,
		CategoryYouTube,
	}
}

// CompanyQuery is the free-text company name a lookup starts from.
type CompanyQuery string

// Normalized returns the query with surrounding whitespace removed.
func (q CompanyQuery) Normalized() string {
	return strings.TrimSpace(string(q))
}

// IsBlank reports whether the query is empty after trimming.
func (q CompanyQuery) IsBlank() bool {
	return q.Normalized() == ""
}

// FetchedContent is the raw homepage body together with the URL it was
// retrieved from. It lives only for the duration of one lookup.
type FetchedContent struct {
	URL  string
	Body string
}

// ContactBundle is the result of a successful lookup.
type ContactBundle struct {
	// Website is the canonical https://www.<domain> URL that was fetched.
	Website string

	Phones         StringSet
	Emails         StringSet
	FacebookLinks  StringSet
	InstagramLinks StringSet
	TwitterLinks   StringSet
	YouTubeLinks   StringSet
}

// Set returns the collection that holds values for the given category, or
// nil for an unknown category.
func (b *ContactBundle) Set(c Category) StringSet {
	switch c {
	case CategoryPhone:
		return b.Phones
	case CategoryEmail:
		return b.Emails
	case CategoryFacebook:
		return b.FacebookLinks
	case CategoryInstagram:
		return b.InstagramLinks
	case CategoryTwitter:
		return b.TwitterLinks
	case CategoryYouTube:
		return b.YouTubeLinks
	default:
		return nil
	}
}
