// Package patterns holds the extraction patterns used to pull contact
// signals out of raw page markup. They are compiled once at package
// initialization and never mutated afterwards.
//
// The expressions favour recall over precision.
package patterns

import (
	"contactfinder/pkg/domain"
	"regexp"
	"strings"
)

// Pattern pairs a compiled expression with the category it feeds and the rule
// used to turn a raw match into a stored value.
type Pattern struct {
	category  domain.Category
	re        *regexp.Regexp
	normalize func(string) (string, bool)
}

// Category returns the category this pattern's values belong to.
func (p Pattern) Category() domain.Category { return p.category }

// Expr returns the source text of the compiled expression.
func (p Pattern) Expr() string { return p.re.String() }

// FindAll returns every non-overlapping match in content, scanning left to
// right. Matches are returned as written in content, duplicates included.
func (p Pattern) FindAll(content string) []string {
	return p.re.FindAllString(content, -1)
}

// Normalize converts a raw match into the value stored for the category.
// The second result is false when the match must be discarded.
func (p Pattern) Normalize(match string) (string, bool) {
	if p.normalize == nil {
		return match, match != ""
	}

	return p.normalize(match)
}

const (
	// phone: 8-15 digits, optional leading '+', first digit 1-9.
	phoneExpr = `\+?[1-9][0-9]{7,14}`
	// email: word characters, '.' and '-' on both sides of '@'.
	emailExpr     = `[\p{L}\p{N}_.\-]+@[\p{L}\p{N}_.\-]+`
	facebookExpr  = `https?://(www\.)?facebook\.com/([a-zA-Z0-9.\-_/]+)/?`
	instagramExpr = `https?://(www\.)?instagram\.com/([a-zA-Z0-9._]+)/?`
	twitterExpr   = `https?://(www\.)?twitter\.com/([a-zA-Z0-9.\-_/]+)/?`
	youtubeExpr   = `https?://(www\.)?youtube\.com/(user|channel)/([a-zA-Z0-9.\-_/]+)/?`
)

//nolint: gochecknoglobals
var (
	phone     = Pattern{category: domain.CategoryPhone, re: regexp.MustCompile(phoneExpr)}
	email     = Pattern{category: domain.CategoryEmail, re: regexp.MustCompile(emailExpr), normalize: normalizeEmail}
	facebook  = Pattern{category: domain.CategoryFacebook, re: regexp.MustCompile(facebookExpr)}
	instagram = Pattern{category: domain.CategoryInstagram, re: regexp.MustCompile(instagramExpr)}
	twitter   = Pattern{category: domain.CategoryTwitter, re: regexp.MustCompile(twitterExpr)}
	youtube   = Pattern{category: domain.CategoryYouTube, re: regexp.MustCompile(youtubeExpr)}

	all = []Pattern{phone, email, facebook, instagram, twitter, youtube}
)

// All returns the six library patterns in response order. The returned slice
// is a copy; the patterns themselves are immutable.
func All() []Pattern {
	out := make([]Pattern, len(all))
	copy(out, all)

	return out
}

// For returns the pattern feeding the given category.
func For(c domain.Category) (Pattern, bool) {
	for _, p := range all {
		if p.category == c {
			return p, true
		}
	}

	return Pattern{}, false
}

// normalizeEmail drops sentence punctuation glued to the end of an address
// and rejects matches whose domain part has no dot.
func normalizeEmail(match string) (string, bool) {
	v := strings.TrimRight(match, ".")
	at := strings.LastIndexByte(v, '@')
	if at <= 0 || at == len(v)-1 {
		return "", false
	}
	host := v[at+1:]
	if !strings.Contains(host, ".") {
		return "", false
	}

	return v, true
}
