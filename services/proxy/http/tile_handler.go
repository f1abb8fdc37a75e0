package http

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const tileContentType = "application/x-protobuf"

// tileSegment accepts only non-negative integer literals, no signs, no
// extraneous characters. strconv.Atoi is too permissive here.
var tileSegment = regexp.MustCompile(`^[0-9]+$`)

// handleTile relays one basemap tile from the upstream provider.
// GET /tiles/:z/:x/:y.pbf
//
// The credential is appended server-side and must never reach the client:
// upstream error bodies and headers are swallowed, and failures collapse
// to fixed generic bodies.
func (s *Server) handleTile(c *gin.Context) {
	z := c.Param("z")
	x := c.Param("x")
	y, hasExt := strings.CutSuffix(c.Param("y"), ".pbf")
	if !hasExt || !tileSegment.MatchString(z) || !tileSegment.MatchString(x) || !tileSegment.MatchString(y) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tile path"})
		return
	}

	if s.cfg.APIKey == "" {
		// Fail closed: no credential, no upstream call.
		upstreamRequests.WithLabelValues("unconfigured").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tile service unavailable"})
		return
	}

	upstream := fmt.Sprintf("%s/%s/%s/%s.pbf?key=%s",
		s.cfg.UpstreamBase, z, x, y, url.QueryEscape(s.cfg.APIKey))

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, upstream, nil)
	if err != nil {
		upstreamRequests.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tile service unavailable"})
		return
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		upstreamRequests.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tile service unavailable"})
		return
	}
	defer resp.Body.Close()
	upstreamDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		upstreamRequests.WithLabelValues("upstream_error").Inc()
		c.JSON(resp.StatusCode, gin.H{"error": "upstream tile error"})
		return
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		upstreamRequests.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tile service unavailable"})
		return
	}

	upstreamRequests.WithLabelValues("ok").Inc()
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", int(s.cfg.CacheMaxAge.Seconds())))
	c.Data(http.StatusOK, tileContentType, body)
}
