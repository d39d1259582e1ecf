// Package selector turns a flat pool of articles into a bounded,
// priority-ordered digest.
package selector

import (
	"sort"
	"strings"

	"startpage/internal/model"
)

// DefaultMaxPerFeed is the per-feed admission cap applied by callers that do
// not configure their own.
const DefaultMaxPerFeed = 2

// Select filters out articles carrying a banned tag, ranks the rest by
// (feed priority ascending, publish time ascending) and greedily admits at
// most maxPerFeed articles per feed and maxTotal overall. The returned order
// is the admission order. The sort is stable, so articles with identical
// priority and publish time keep their input order. The input is never
// mutated.
//
// Recency filtering is the caller's responsibility and happens at ingestion.
func Select(articles []model.Article, banned map[string]struct{}, maxTotal, maxPerFeed int) []model.Article {
	if maxTotal <= 0 || maxPerFeed <= 0 {
		return nil
	}

	ranked := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if hasBannedTag(a, banned) {
			continue
		}
		ranked = append(ranked, a)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Priority != ranked[j].Priority {
			return ranked[i].Priority < ranked[j].Priority
		}
		return ranked[i].Published.Before(ranked[j].Published)
	})

	var selected []model.Article
	perFeed := make(map[string]int)
	for _, a := range ranked {
		if perFeed[a.Feed.Name] >= maxPerFeed {
			continue
		}
		selected = append(selected, a)
		perFeed[a.Feed.Name]++
		if len(selected) == maxTotal {
			break
		}
	}
	return selected
}

func hasBannedTag(a model.Article, banned map[string]struct{}) bool {
	if len(banned) == 0 {
		return false
	}
	for _, tag := range a.Tags {
		if _, ok := banned[strings.ToLower(tag)]; ok {
			return true
		}
	}
	return false
}
