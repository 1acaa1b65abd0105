package response

import (
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageSize is the fixed number of rows per listing page.
const PageSize = 10

// Page is one page of a listing. Next and Previous are absolute URLs, null
// when there is no such page.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// PageRequest carries the requested page number and the URL used to build
// the next/previous markers.
type PageRequest struct {
	Number int
	URL    *url.URL
}

// ParsePage reads the "page" query parameter. A missing parameter means the
// first page; anything that is not a positive integer is an invalid page.
func ParsePage(c *gin.Context) (PageRequest, error) {
	req := PageRequest{Number: 1, URL: requestURL(c)}
	raw := c.Query("page")
	if raw == "" {
		return req, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return req, NewNotFound("invalid page")
	}
	req.Number = n
	return req, nil
}

// Offset returns the row offset of the requested page once the total row
// count is known. Pages past the last one are rejected, except the first
// page of an empty listing.
func (p PageRequest) Offset(count int64) (int, error) {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > lastPage(count) {
		return 0, NewNotFound("invalid page")
	}
	return (p.Number - 1) * PageSize, nil
}

// Build assembles the page envelope for the given rows.
func (p PageRequest) Build(count int64, results interface{}) *Page {
	page := &Page{Count: count, Results: results}
	if p.URL == nil {
		return page
	}
	if p.Number < lastPage(count) {
		next := p.link(p.Number + 1)
		page.Next = &next
	}
	if p.Number > 1 {
		prev := p.link(p.Number - 1)
		page.Previous = &prev
	}
	return page
}

func (p PageRequest) link(number int) string {
	u := *p.URL
	q := u.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func lastPage(count int64) int {
	if count <= 0 {
		return 1
	}
	return int((count + PageSize - 1) / PageSize)
}

func requestURL(c *gin.Context) *url.URL {
	if c.Request == nil || c.Request.URL == nil {
		return nil
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
	}
}
