package http

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses.
// Query parameters other than offset and limit are carried over.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	links := []string{pageLink(c, 0, p.Limit, "first")}

	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, pageLink(c, prev, p.Limit, "prev"))
	}

	if p.Offset+p.Limit < p.Total {
		links = append(links, pageLink(c, p.Offset+p.Limit, p.Limit, "next"))
	}

	lastOffset := p.Total - p.Limit
	if lastOffset < 0 {
		lastOffset = 0
	}
	links = append(links, pageLink(c, lastOffset, p.Limit, "last"))

	c.Set("Link", strings.Join(links, ", "))
}

func pageLink(c *fiber.Ctx, offset, limit int, rel string) string {
	q := url.Values{}
	for k, v := range c.Queries() {
		q.Set(k, v)
	}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	return "<" + c.Path() + "?" + q.Encode() + `>; rel="` + rel + `"`
}
