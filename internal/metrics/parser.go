package metrics

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// PageParser scrapes engagement counters from a post's public embed page.
// It is the fallback when the metrics service cannot resolve a URL; embed
// markup is less reliable than the API, so every selector is best-effort.
type PageParser struct {
	httpClient *http.Client
	log        *zap.Logger
	maxRetries int
}

func NewPageParser(timeoutMS, maxRetries int, log *zap.Logger) *PageParser {
	return &PageParser{
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
		log:        log,
		maxRetries: maxRetries,
	}
}

func (p *PageParser) FetchPostMetrics(ctx context.Context, postURL string) (*PostMetrics, error) {
	embedURL := postURL
	if !strings.Contains(embedURL, "embed=") {
		sep := "?"
		if strings.Contains(embedURL, "?") {
			sep = "&"
		}
		embedURL += sep + "embed=1"
	}

	var doc *goquery.Document
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, embedURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := p.httpClient.Do(req)
		if err != nil {
			lastErr = err
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d for %s", resp.StatusCode, embedURL)
			time.Sleep(time.Duration(attempt+1) * 500 * time.Millisecond)
			continue
		}

		doc, err = goquery.NewDocumentFromReader(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		lastErr = nil
		break
	}

	if lastErr != nil {
		return nil, lastErr
	}

	m := &PostMetrics{}
	found := false

	// Counter spans carry a data-counter attribute on most platforms' embed
	// pages; older markup uses per-stat classes.
	doc.Find("[data-counter]").Each(func(i int, s *goquery.Selection) {
		kind, _ := s.Attr("data-counter")
		n := int64(parseCount(strings.TrimSpace(s.Text())))
		switch strings.ToLower(kind) {
		case "views", "plays":
			m.Views = n
			found = true
		case "likes", "reactions":
			m.Likes = n
			found = true
		case "comments", "replies":
			m.Comments = n
			found = true
		case "shares", "reposts", "forwards":
			m.Shares = n
			found = true
		}
	})

	classSelectors := map[string]*int64{
		".embed_post_views":    &m.Views,
		".embed_post_likes":    &m.Likes,
		".embed_post_comments": &m.Comments,
		".embed_post_shares":   &m.Shares,
	}
	for sel, dst := range classSelectors {
		doc.Find(sel).Each(func(i int, s *goquery.Selection) {
			if n := int64(parseCount(strings.TrimSpace(s.Text()))); n > 0 {
				*dst = n
				found = true
			}
		})
	}

	if !found {
		return nil, fmt.Errorf("no counters found on embed page %s", embedURL)
	}
	return m, nil
}

var countRE = regexp.MustCompile(`[\d,.]+[KkMm]?`)

// parseCount turns display strings like "1.2K" or "12,345 views" into ints.
func parseCount(text string) int {
	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, ",", "")

	match := countRE.FindString(text)
	if match == "" {
		return 0
	}

	multiplier := 1
	if strings.HasSuffix(match, "K") || strings.HasSuffix(match, "k") {
		multiplier = 1000
		match = match[:len(match)-1]
	} else if strings.HasSuffix(match, "M") || strings.HasSuffix(match, "m") {
		multiplier = 1000000
		match = match[:len(match)-1]
	}

	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return int(f * float64(multiplier))
}
