package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/adisurya/hr-admin-api/internal/config"
)

// cachedResponse is the stored form of one response. Headers ride
// along so a hit replays exactly what the handler produced.
type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

// bodyRecorder tees the response body up to a size cap while
// forwarding everything to the client. Oversized responses are still
// served in full; they just don't get cached.
type bodyRecorder struct {
	http.ResponseWriter
	status   int
	buf      bytes.Buffer
	written  int64
	limit    int64
	overflow bool
}

func (br *bodyRecorder) WriteHeader(code int) {
	br.status = code
	br.ResponseWriter.WriteHeader(code)
}

func (br *bodyRecorder) Write(b []byte) (int, error) {
	br.written += int64(len(b))
	if br.limit > 0 && br.written > br.limit {
		br.overflow = true
	} else {
		br.buf.Write(b)
	}
	return br.ResponseWriter.Write(b)
}

// cacheKey builds the Redis key for a request. The menu and
// permission responses differ per authenticated user, so the default
// strategies fold the caller's identity into the key; without it
// users would see each other's cached trees. The variable tail is
// hashed to keep keys short.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	route := c.Path()
	query := c.Request().URL.RawQuery

	var tail string
	switch strings.ToLower(cfg.KeyStrategy) {
	case "route":
		tail = "route:" + route
	case "route_query":
		tail = "route:" + route + ":q:" + query
	case "user_route":
		tail = "user:" + userKey(c) + ":route:" + route
	default: // "user_route_query"
		tail = "user:" + userKey(c) + ":route:" + route + ":q:" + query
	}
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum)
}

// encode packs [4B status][4B headerLen][headerJSON][body].
func (cr cachedResponse) encode() ([]byte, error) {
	hdr, err := json.Marshal(cr.header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdr)+len(cr.body))
	binary.BigEndian.PutUint32(out[0:4], uint32(cr.status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
	copy(out[8:], hdr)
	copy(out[8+len(hdr):], cr.body)
	return out, nil
}

func decodeCached(bs []byte) (cachedResponse, bool) {
	if len(bs) < 8 {
		return cachedResponse{}, false
	}
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return cachedResponse{}, false
	}
	cr := cachedResponse{
		status: int(binary.BigEndian.Uint32(bs[0:4])),
		header: make(http.Header),
		body:   bs[8+hlen:],
	}
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &cr.header); err != nil {
			return cachedResponse{}, false
		}
	}
	return cr, true
}

// NewRedisCache caches successful responses on the read endpoints.
// Only configured methods participate; anything but a 200 is never
// stored.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return passthrough
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[strings.ToUpper(c.Request().Method)] {
				return next(c)
			}
			key := cacheKey(cfg, c)

			if bs, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				if cr, ok := decodeCached(bs); ok {
					for k, vals := range cr.header {
						if strings.EqualFold(k, "Content-Length") {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(cr.status)
					if len(cr.body) > 0 {
						_, _ = c.Response().Write(cr.body)
					}
					return nil
				}
			}

			rec := &bodyRecorder{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(cfg.MaxBodyBytes),
			}
			c.Response().Writer = rec
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if rec.status == http.StatusOK && !rec.overflow {
				cr := cachedResponse{
					status: rec.status,
					header: c.Response().Header().Clone(),
					body:   rec.buf.Bytes(),
				}
				if payload, err := cr.encode(); err == nil {
					// The request context may already be done; store anyway.
					_ = rdb.SetEx(context.Background(), key, payload, ttl).Err()
				}
			}
			return nil
		}
	}
}
