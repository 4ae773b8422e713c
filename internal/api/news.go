package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"catalyst-trader/internal/model"
	"catalyst-trader/internal/service"
)

const (
	fetchAttempts    = 3
	defaultMaxPages  = 3
	maxFetchParallel = 4
)

// Provider 新闻源适配器
type Provider interface {
	Name() string
	Fetch(ctx context.Context) ([]model.NewsItem, error)
}

// feedPage 新闻源的 JSON 分页格式
type feedPage struct {
	Items    []feedItem `json:"items"`
	NextPage string     `json:"next_page"`
}

type feedItem struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Source      string   `json:"source"`
	PublishedAt string   `json:"published_at"`
	Symbols     []string `json:"symbols"`
	MarketCap   float64  `json:"market_cap"`
}

// HTTPProvider 轮询 JSON 新闻源，按 next_page 游标翻页
type HTTPProvider struct {
	name     string
	url      string
	apiKey   string
	source   string
	maxPages int

	client  *http.Client
	backoff time.Duration // 线性退避的步长
	logger  *zap.SugaredLogger
}

func NewHTTPProvider(cfg service.ProviderConfig, maxPages int, logger *zap.SugaredLogger) *HTTPProvider {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	name := cfg.Name
	if name == "" {
		name = cfg.URL
	}
	return &HTTPProvider{
		name:     name,
		url:      cfg.URL,
		apiKey:   cfg.APIKey,
		source:   cfg.Source,
		maxPages: maxPages,
		client:   &http.Client{Timeout: 15 * time.Second},
		backoff:  500 * time.Millisecond,
		logger:   logger,
	}
}

func (p *HTTPProvider) Name() string { return p.name }

// Fetch 拉取最多 maxPages 页。中途失败时返回已拿到的条目和错误
func (p *HTTPProvider) Fetch(ctx context.Context) ([]model.NewsItem, error) {
	var items []model.NewsItem
	next := p.url
	for page := 0; page < p.maxPages && next != ""; page++ {
		fp, err := p.fetchPageWithRetry(ctx, next)
		if err != nil {
			return items, fmt.Errorf("provider %s page %d: %w", p.name, page+1, err)
		}
		for _, fi := range fp.Items {
			items = append(items, p.toNewsItem(fi))
		}
		next = p.nextURL(fp.NextPage)
	}
	return items, nil
}

func (p *HTTPProvider) fetchPageWithRetry(ctx context.Context, pageURL string) (*feedPage, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		fp, err := p.fetchPage(ctx, pageURL)
		if err == nil {
			return fp, nil
		}
		lastErr = err
		if attempt == fetchAttempts {
			break
		}
		p.logger.Warnf("Provider %s fetch attempt %d failed: %v", p.name, attempt, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * p.backoff):
		}
	}
	return nil, lastErr
}

func (p *HTTPProvider) fetchPage(ctx context.Context, pageURL string) (*feedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var fp feedPage
	if err := json.NewDecoder(resp.Body).Decode(&fp); err != nil {
		return nil, fmt.Errorf("failed to decode feed: %w", err)
	}
	return &fp, nil
}

// nextURL 游标可以是完整 URL，也可以是拼到 cursor 参数上的值
func (p *HTTPProvider) nextURL(cursor string) string {
	cursor = strings.TrimSpace(cursor)
	if cursor == "" {
		return ""
	}
	if u, err := url.Parse(cursor); err == nil && u.IsAbs() {
		return cursor
	}
	base, err := url.Parse(p.url)
	if err != nil {
		return ""
	}
	q := base.Query()
	q.Set("cursor", cursor)
	base.RawQuery = q.Encode()
	return base.String()
}

func (p *HTTPProvider) toNewsItem(fi feedItem) model.NewsItem {
	item := model.NewsItem{
		ID:        fi.ID,
		URL:       fi.URL,
		Title:     fi.Title,
		Summary:   fi.Summary,
		Source:    fi.Source,
		MarketCap: fi.MarketCap,
	}
	if item.Source == "" {
		item.Source = p.source
	}
	if ts, err := time.Parse(time.RFC3339, fi.PublishedAt); err == nil {
		item.PublishedAt = ts
	}
	for _, s := range fi.Symbols {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			item.Symbols = append(item.Symbols, s)
		}
	}
	return item
}

type fetchResult struct {
	items []model.NewsItem
	err   error
}

// FetchAll 并发拉取所有新闻源，返回合并后的条目 (按发布时间排序) 和各个源的错误
func FetchAll(ctx context.Context, providers []Provider) ([]model.NewsItem, []error) {
	if len(providers) == 0 {
		return nil, nil
	}
	p := pool.NewWithResults[fetchResult]().WithMaxGoroutines(maxFetchParallel)
	for _, prov := range providers {
		p.Go(func() fetchResult {
			items, err := prov.Fetch(ctx)
			return fetchResult{items: items, err: err}
		})
	}

	var items []model.NewsItem
	var errs []error
	for _, r := range p.Wait() {
		items = append(items, r.items...)
		if r.err != nil {
			errs = append(errs, r.err)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].PublishedAt.Equal(items[j].PublishedAt) {
			return items[i].PublishedAt.Before(items[j].PublishedAt)
		}
		return items[i].ID < items[j].ID
	})
	return items, errs
}
