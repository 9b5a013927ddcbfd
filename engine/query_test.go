package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/yokatlas/config"
	"github.com/use-agent/yokatlas/models"
)

// fakeSource emulates the server_processing endpoint for one total.
type fakeSource struct {
	mu       sync.Mutex
	total    int
	forms    []map[string]string
	respond  func(start, length int) (int, any)
	rawCount any
}

func (f *fakeSource) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}
	form["Referer"] = r.Header.Get("Referer")
	form["X-Requested-With"] = r.Header.Get("X-Requested-With")

	f.mu.Lock()
	f.forms = append(f.forms, form)
	f.mu.Unlock()

	start, _ := strconv.Atoi(form["start"])
	length, _ := strconv.Atoi(form["length"])
	if f.respond != nil {
		status, body := f.respond(start, length)
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
		return
	}

	var data [][]string
	for i := start; i < start+length && i < f.total; i++ {
		row := make([]string, 45)
		row[41] = "UNI " + strconv.Itoa(i)
		data = append(data, row)
	}
	count := any(f.total)
	if f.rawCount != nil {
		count = f.rawCount
	}
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"draw":            2,
		"recordsTotal":    f.total,
		"recordsFiltered": count,
		"data":            data,
	})
}

func newTestQueryStrategy(t *testing.T, h http.Handler) *QueryStrategy {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewQueryStrategy(config.SourceConfig{
		QueryURL:       srv.URL + "/server_processing.php",
		ListingURL:     "https://yokatlas.yok.gov.tr/tercih-sihirbazi-t4-tablo.php",
		PageSize:       100,
		RequestTimeout: 5 * time.Second,
		UserAgent:      "test-agent",
	})
}

func TestQueryPager_PageCount(t *testing.T) {
	src := &fakeSource{total: 250}
	q := newTestQueryStrategy(t, src)

	pager, err := q.Open(context.Background(), models.CategoryVerbal)
	require.NoError(t, err)
	defer pager.Close()

	pages, err := pager.PageCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, pages)

	require.Len(t, src.forms, 1)
	probe := src.forms[0]
	assert.Equal(t, "0", probe["start"])
	assert.Equal(t, "1", probe["length"])
	assert.Equal(t, "söz", probe["puan_turu"])
	assert.Equal(t, "37", probe["order[0][column]"])
	assert.Equal(t, "desc", probe["order[0][dir]"])
	assert.Equal(t, "false", probe["columns[0][orderable]"])
	assert.Equal(t, "true", probe["columns[3][orderable]"])
	assert.Equal(t, "true", probe["columns[44][orderable]"])
	assert.Equal(t, "1", probe["yeniler"])
	assert.Equal(t, "XMLHttpRequest", probe["X-Requested-With"])
	assert.Contains(t, probe["Referer"], "tercih-sihirbazi-t4-tablo.php?p=s%C3%B6z")
}

func TestQueryPager_PageCountFromString(t *testing.T) {
	src := &fakeSource{total: 101, rawCount: "101"}
	pager, _ := newTestQueryStrategy(t, src).Open(context.Background(), models.CategoryLanguage)

	pages, err := pager.PageCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
}

func TestQueryPager_PageCountZero(t *testing.T) {
	src := &fakeSource{total: 0}
	pager, _ := newTestQueryStrategy(t, src).Open(context.Background(), models.CategoryLanguage)

	pages, err := pager.PageCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, pages)
}

func TestQueryPager_PageCountFailure(t *testing.T) {
	src := &fakeSource{respond: func(int, int) (int, any) {
		return http.StatusInternalServerError, map[string]string{"error": "down"}
	}}
	pager, _ := newTestQueryStrategy(t, src).Open(context.Background(), models.CategoryEqualWeight)

	_, err := pager.PageCount(context.Background())
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeCount, models.CodeOf(err))
	assert.False(t, models.IsTransient(err))
}

func TestQueryPager_FetchPage(t *testing.T) {
	src := &fakeSource{total: 250}
	pager, _ := newTestQueryStrategy(t, src).Open(context.Background(), models.CategoryQuantitative)

	page, err := pager.FetchPage(context.Background(), models.PageCursor{Category: models.CategoryQuantitative, Index: 2, Size: 100})
	require.NoError(t, err)
	require.Len(t, page.Rows, 50)
	assert.False(t, page.HasMore)

	rec := page.Rows[0].Normalize(models.CategoryQuantitative)
	assert.Equal(t, "UNI 200", rec.UniversityName)
	assert.Equal(t, "say", rec.DepartmentType)

	last := src.forms[len(src.forms)-1]
	assert.Equal(t, "200", last["start"])
	assert.Equal(t, "100", last["length"])

	page, err = pager.FetchPage(context.Background(), models.PageCursor{Category: models.CategoryQuantitative, Index: 0, Size: 100})
	require.NoError(t, err)
	assert.Len(t, page.Rows, 100)
	assert.True(t, page.HasMore)
}

func TestQueryPager_EmptyPageIsTransient(t *testing.T) {
	src := &fakeSource{respond: func(int, int) (int, any) {
		return http.StatusOK, map[string]any{"recordsFiltered": 250, "data": [][]string{}}
	}}
	pager, _ := newTestQueryStrategy(t, src).Open(context.Background(), models.CategoryQuantitative)

	_, err := pager.FetchPage(context.Background(), models.PageCursor{Index: 1, Size: 100})
	require.Error(t, err)
	assert.Equal(t, models.ErrCodePageEmpty, models.CodeOf(err))
	assert.True(t, models.IsTransient(err))
}

func TestQueryPager_BadJSONIsTransient(t *testing.T) {
	srv := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	})
	pager, _ := newTestQueryStrategy(t, srv).Open(context.Background(), models.CategoryQuantitative)

	_, err := pager.FetchPage(context.Background(), models.PageCursor{Index: 0, Size: 100})
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeFetch, models.CodeOf(err))
	assert.True(t, models.IsTransient(err))
}

func TestQueryStrategy_Metadata(t *testing.T) {
	q := NewQueryStrategy(config.SourceConfig{PageSize: 100})
	assert.Equal(t, "query", q.Name())
	assert.Equal(t, 0, q.FirstPage())
	assert.Equal(t, 100, q.PageSize())
	assert.NoError(t, q.Close())
}
