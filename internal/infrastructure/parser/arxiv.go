package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentCurator/internal/connector"
	"ContentCurator/internal/domain"
)

const (
	arxivBaseURL     = "https://arxiv.org"
	defaultPageSize  = 200
	defaultMaxPages  = 5
	userAgent        = "ContentCurator/1.0"
	arxivReadMinutes = 25
)

var dateExpr = regexp.MustCompile(`\d{1,2} [A-Za-z]{3} \d{4}`)

type arxivEntry struct {
	ID       string
	Title    string
	Abstract string
	URL      string
	Listing  string
	DateText string
	Authors  []string
}

// ArxivConnector crawls arXiv listing pages and yields papers as resources.
type ArxivConnector struct {
	name     string
	listings []string
	client   *http.Client
	pageSize int
	maxPages int
	maxAge   time.Duration
}

var _ connector.Connector = (*ArxivConnector)(nil)

// NewArxivConnector wires an HTTP client; maxAge of zero keeps every listed paper.
func NewArxivConnector(name string, listings []string, client *http.Client, maxAge time.Duration) *ArxivConnector {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ArxivConnector{
		name:     name,
		listings: listings,
		client:   client,
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
		maxAge:   maxAge,
	}
}

// Name identifies the connector inside the registry.
func (a *ArxivConnector) Name() string {
	return a.name
}

// Fetch walks each listing page by page.
func (a *ArxivConnector) Fetch(ctx context.Context) (connector.RawBatch, error) {
	if len(a.listings) == 0 {
		return connector.RawBatch{}, connector.Permanent(fmt.Errorf("no listing urls configured for %s", a.name))
	}

	var entries []arxivEntry
	seen := map[string]struct{}{}

	for _, listing := range a.listings {
		for page := 0; page < a.maxPages; page++ {
			pageURL, err := buildPageURL(listing, page*a.pageSize, a.pageSize)
			if err != nil {
				return connector.RawBatch{}, connector.Permanent(err)
			}

			doc, err := a.fetchDocument(ctx, pageURL)
			if err != nil {
				return connector.RawBatch{}, fmt.Errorf("listing %s: %w", listing, err)
			}

			pageEntries := extractEntries(doc, listingName(listing))
			for _, e := range pageEntries {
				if _, ok := seen[e.ID]; ok {
					continue
				}
				seen[e.ID] = struct{}{}
				entries = append(entries, e)
			}
			if len(pageEntries) < a.pageSize {
				break
			}
		}
	}

	return connector.RawBatch{Source: a.name, FetchedAt: time.Now().UTC(), Payload: entries}, nil
}

// Transform converts listing entries into resource items.
func (a *ArxivConnector) Transform(batch connector.RawBatch) ([]domain.ContentItem, error) {
	entries, ok := batch.Payload.([]arxivEntry)
	if !ok {
		return nil, fmt.Errorf("arxiv: unexpected payload %T", batch.Payload)
	}

	items := make([]domain.ContentItem, 0, len(entries))
	for _, e := range entries {
		published := parseListingDate(e.DateText)
		if a.maxAge > 0 && !published.IsZero() && batch.FetchedAt.Sub(published) > a.maxAge {
			continue
		}

		author := ""
		if len(e.Authors) > 0 {
			author = strings.Join(e.Authors, ", ")
		}
		tags := []string{"research", "paper"}
		if e.Listing != "" {
			tags = append(tags, e.Listing)
		}

		items = append(items, domain.ContentItem{
			Title:       e.Title,
			Description: e.Abstract,
			URL:         e.URL,
			Source:      a.name,
			PublishedAt: published,
			Tags:        tags,
			Details: domain.ResourceDetails{
				ResourceType:   "paper",
				Author:         author,
				ReadingMinutes: arxivReadMinutes,
			},
		})
	}
	return items, nil
}

func (a *ArxivConnector) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, connector.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if err := statusError("arxiv", resp); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func extractEntries(doc *goquery.Document, listing string) []arxivEntry {
	var entries []arxivEntry
	doc.Find("dl > dt").Each(func(_ int, dt *goquery.Selection) {
		if e, ok := parseEntry(dt, dt.Next(), listing); ok {
			entries = append(entries, e)
		}
	})
	return entries
}

func parseEntry(dt, dd *goquery.Selection, listing string) (arxivEntry, bool) {
	link := dt.Find("a[href*=\"/abs/\"]").First()
	href, _ := link.Attr("href")
	if href == "" {
		return arxivEntry{}, false
	}
	id := strings.TrimSpace(link.Text())
	if id == "" {
		id = strings.TrimPrefix(href, "/abs/")
	}
	if !strings.HasPrefix(href, "http") {
		href = strings.TrimSuffix(arxivBaseURL, "/") + href
	}

	title := strings.TrimSpace(dd.Find(".list-title").First().Text())
	title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))

	abstract := dd.Find("p.mathjax").First().Text()
	abstract = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(abstract), "Abstract:"))

	dateText := strings.TrimSpace(dd.Find(".list-date").First().Text())
	if dateText == "" {
		dateText = strings.TrimSpace(dd.Find(".list-dateline").First().Text())
	}

	var authors []string
	dd.Find(".list-authors a").Each(func(_ int, s *goquery.Selection) {
		if name := strings.TrimSpace(s.Text()); name != "" {
			authors = append(authors, name)
		}
	})

	return arxivEntry{
		ID:       id,
		Title:    title,
		Abstract: abstract,
		URL:      href,
		Listing:  listing,
		DateText: dateText,
		Authors:  authors,
	}, true
}

func parseListingDate(text string) time.Time {
	match := dateExpr.FindString(text)
	if match == "" {
		return time.Time{}
	}
	parsed, err := time.Parse("2 Jan 2006", match)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func listingName(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) >= 2 && parts[0] == "list" {
		return parts[1]
	}
	return ""
}

func buildPageURL(base string, skip, pageSize int) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid listing url %s: %w", base, err)
	}

	query := parsed.Query()
	query.Set("skip", strconv.Itoa(skip))
	query.Set("show", strconv.Itoa(pageSize))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// statusError classifies non-200 replies; client errors other than 429 are permanent.
func statusError(service string, resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	err := fmt.Errorf("%s returned %s", service, resp.Status)
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return connector.Permanent(err)
	}
	return err
}
