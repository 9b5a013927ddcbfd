package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/use-agent/yokatlas/config"
	"github.com/use-agent/yokatlas/models"
	"github.com/use-agent/yokatlas/normalize"
)

// The server_processing endpoint describes 45 table columns. Sorting by
// base score, then university, then program keeps offsets stable between
// page requests.
const queryColumnCount = 45

var (
	queryOrderableColumns = map[int]bool{3: true, 5: true}
	queryOrder            = []struct {
		column int
		dir    string
	}{
		{37, "desc"},
		{41, "asc"},
		{42, "asc"},
	}
)

// QueryStrategy fetches pages by posting DataTables server-side paging
// parameters directly to the source's JSON endpoint.
type QueryStrategy struct {
	client *resty.Client
	cfg    config.SourceConfig
}

// NewQueryStrategy creates a QueryStrategy with a Chrome-fingerprinted
// transport and browser-like XHR headers.
func NewQueryStrategy(cfg config.SourceConfig) *QueryStrategy {
	client := resty.New()
	client.SetTransport(newChromeTransport())
	client.SetTimeout(cfg.RequestTimeout)
	client.SetHeaders(map[string]string{
		"User-Agent":       cfg.UserAgent,
		"Accept":           "application/json, text/javascript, */*; q=0.01",
		"Accept-Language":  "tr-TR,tr;q=0.9,en-US;q=0.5,en;q=0.3",
		"X-Requested-With": "XMLHttpRequest",
		"Sec-Fetch-Dest":   "empty",
		"Sec-Fetch-Mode":   "cors",
		"Sec-Fetch-Site":   "same-origin",
	})
	return &QueryStrategy{client: client, cfg: cfg}
}

func (q *QueryStrategy) Name() string   { return config.StrategyQuery }
func (q *QueryStrategy) FirstPage() int { return 0 }
func (q *QueryStrategy) PageSize() int  { return q.cfg.PageSize }

// Open returns a stateless pager; the query strategy has no per-category
// sub-resource.
func (q *QueryStrategy) Open(_ context.Context, c models.Category) (Pager, error) {
	return &queryPager{strategy: q, category: c}, nil
}

// Close drops idle keep-alive connections.
func (q *QueryStrategy) Close() error {
	q.client.GetClient().CloseIdleConnections()
	return nil
}

// queryResponse is the DataTables server-side response. Counts arrive as
// numbers or numeric strings depending on the PHP version behind it.
type queryResponse struct {
	Draw            json.Number `json:"draw"`
	RecordsTotal    json.Number `json:"recordsTotal"`
	RecordsFiltered json.Number `json:"recordsFiltered"`
	Data            [][]string  `json:"data"`
}

// query posts one paging request and decodes the response.
func (q *QueryStrategy) query(ctx context.Context, c models.Category, start, length int) (*queryResponse, error) {
	res, err := q.client.R().
		SetContext(ctx).
		SetHeader("Referer", listingURL(q.cfg.ListingURL, c)).
		SetFormDataFromValues(queryForm(c, start, length)).
		Post(q.cfg.QueryURL)
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode())
	}

	var parsed queryResponse
	if err := json.Unmarshal(res.Body(), &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &parsed, nil
}

// queryForm builds the form body the source's DataTables widget sends.
func queryForm(c models.Category, start, length int) url.Values {
	form := url.Values{}
	form.Set("draw", "2")
	for i := 0; i < queryColumnCount; i++ {
		col := fmt.Sprintf("columns[%d]", i)
		form.Set(col+"[data]", strconv.Itoa(i))
		form.Set(col+"[name]", "")
		form.Set(col+"[searchable]", "true")
		form.Set(col+"[orderable]", strconv.FormatBool(i > 10 || queryOrderableColumns[i]))
		form.Set(col+"[search][value]", "")
		form.Set(col+"[search][regex]", "false")
	}
	for i, o := range queryOrder {
		form.Set(fmt.Sprintf("order[%d][column]", i), strconv.Itoa(o.column))
		form.Set(fmt.Sprintf("order[%d][dir]", i), o.dir)
	}
	form.Set("start", strconv.Itoa(start))
	form.Set("length", strconv.Itoa(length))
	form.Set("search[value]", "")
	form.Set("search[regex]", "false")
	form.Set("puan_turu", string(c))
	form.Set("ust_bs", "")
	form.Set("alt_bs", "")
	form.Set("yeniler", "1")
	return form
}

// listingURL is the category's HTML listing page.
func listingURL(base string, c models.Category) string {
	return base + "?p=" + url.QueryEscape(string(c))
}

type queryPager struct {
	strategy *QueryStrategy
	category models.Category
}

// PageCount issues a length=1 probe and derives ⌈recordsFiltered/pageSize⌉.
func (p *queryPager) PageCount(ctx context.Context) (int, error) {
	resp, err := p.strategy.query(ctx, p.category, 0, 1)
	if err != nil {
		return 0, models.NewAcquireError(models.ErrCodeCount, p.category, "count probe failed", categorizeError(err))
	}
	count, err := resp.RecordsFiltered.Int64()
	if err != nil || count < 0 {
		return 0, models.NewAcquireError(models.ErrCodeCount, p.category,
			fmt.Sprintf("invalid recordsFiltered %q", resp.RecordsFiltered), err)
	}
	size := int64(p.strategy.cfg.PageSize)
	pages := int((count + size - 1) / size)

	slog.Info("category size determined",
		"category", p.category,
		"records", count,
		"pages", pages,
	)
	return pages, nil
}

// FetchPage requests cursor.Size records starting at cursor.Offset(). An
// empty data array before the advertised end is reported as PAGE_EMPTY so
// the caller retries the same cursor.
func (p *queryPager) FetchPage(ctx context.Context, cursor models.PageCursor) (*Page, error) {
	resp, err := p.strategy.query(ctx, p.category, cursor.Offset(), cursor.Size)
	if err != nil {
		return nil, models.NewAcquireError(models.ErrCodeFetch, p.category,
			fmt.Sprintf("page %d", cursor.Index), categorizeError(err))
	}

	total, _ := resp.RecordsFiltered.Int64()
	if len(resp.Data) == 0 && int64(cursor.Offset()) < total {
		return nil, models.NewAcquireError(models.ErrCodePageEmpty, p.category,
			fmt.Sprintf("page %d returned no rows (recordsFiltered=%d)", cursor.Index, total), nil)
	}

	rows := make([]models.RawRow, len(resp.Data))
	for i, cells := range resp.Data {
		rows[i] = normalize.CellRow(cells)
	}
	return &Page{
		Rows:    rows,
		HasMore: int64(cursor.Offset()+len(rows)) < total,
	}, nil
}

func (p *queryPager) Close() error { return nil }
