// Package extractor applies the pattern library to fetched page content and
// collects the matches of every category into deduplicated sets.
package extractor

import (
	"contactfinder/pkg/domain"
	"contactfinder/pkg/patterns"
)

// Result holds one set per category. Every set is non-nil, possibly empty.
type Result struct {
	Phones         domain.StringSet
	Emails         domain.StringSet
	FacebookLinks  domain.StringSet
	InstagramLinks domain.StringSet
	TwitterLinks   domain.StringSet
	YouTubeLinks   domain.StringSet
}

// Extract scans content once per pattern and returns the categorized
// matches. It never fails: a category without matches yields an empty set.
// Categories are independent; a value may appear in more than one of them.
func Extract(content string) Result {
	sets := make(map[domain.Category]domain.StringSet, len(domain.Categories()))
	for _, p := range patterns.All() {
		sets[p.Category()] = scan(p, content)
	}

	return Result{
		Phones:         sets[domain.CategoryPhone],
		Emails:         sets[domain.CategoryEmail],
		FacebookLinks:  sets[domain.CategoryFacebook],
		InstagramLinks: sets[domain.CategoryInstagram],
		TwitterLinks:   sets[domain.CategoryTwitter],
		YouTubeLinks:   sets[domain.CategoryYouTube],
	}
}

// scan collects the ordered match list for p first and only then folds it
// into a set, so order never leaks past this point.
func scan(p patterns.Pattern, content string) domain.StringSet {
	matches := p.FindAll(content)
	out := domain.NewStringSet()
	for _, m := range matches {
		if v, ok := p.Normalize(m); ok {
			out.Add(v)
		}
	}

	return out
}

// Bundle assembles a ContactBundle for website from the extraction result.
func (r Result) Bundle(website string) *domain.ContactBundle {
	return &domain.ContactBundle{
		Website:        website,
		Phones:         r.Phones,
		Emails:         r.Emails,
		FacebookLinks:  r.FacebookLinks,
		InstagramLinks: r.InstagramLinks,
		TwitterLinks:   r.TwitterLinks,
		YouTubeLinks:   r.YouTubeLinks,
	}
}
