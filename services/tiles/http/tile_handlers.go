package http

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gwl-atlas/county-climate-tiles/services/tiles/mvt"
)

const tileContentType = "application/x-protobuf"

// tileSegment accepts only non-negative integer literals; strconv.Atoi
// alone would let a leading sign through.
var tileSegment = regexp.MustCompile(`^[0-9]+$`)

// handleTile synthesizes one vector tile.
// GET /tiles/:z/:x/:y[.pbf]?gwl=2.0
func (s *Server) handleTile(c *gin.Context) {
	zs := c.Param("z")
	xs := c.Param("x")
	ys := strings.TrimSuffix(c.Param("y"), ".pbf")
	if !tileSegment.MatchString(zs) || !tileSegment.MatchString(xs) || !tileSegment.MatchString(ys) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tile coordinates must be integers"})
		return
	}
	z, errZ := strconv.Atoi(zs)
	x, errX := strconv.Atoi(xs)
	y, errY := strconv.Atoi(ys)
	if errZ != nil || errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tile coordinates must be integers"})
		return
	}
	if !mvt.ValidCoord(z, x, y) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tile coordinate out of range"})
		return
	}

	gwl := mvt.DefaultGWL
	if gwlStr := c.Query("gwl"); gwlStr != "" {
		parsed, err := strconv.ParseFloat(gwlStr, 64)
		if err != nil {
			// An unparseable scenario is indistinguishable from a scenario
			// with no rows: both yield the empty tile, never an error.
			s.writeTile(c, nil)
			return
		}
		gwl = parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.QueryTimeout)
	defer cancel()

	start := time.Now()
	regions, err := s.store.RegionsIntersecting(ctx, mvt.Envelope(z, x, y), gwl)
	if err != nil {
		tileRequests.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tile query failed"})
		return
	}

	data, err := mvt.EncodeTile(z, x, y, regions)
	if err != nil {
		tileRequests.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tile encoding failed"})
		return
	}

	tileDuration.Observe(time.Since(start).Seconds())
	s.writeTile(c, data)
}

func (s *Server) writeTile(c *gin.Context, data []byte) {
	if len(data) == 0 {
		tileRequests.WithLabelValues("empty").Inc()
	} else {
		tileRequests.WithLabelValues("ok").Inc()
	}
	c.Data(http.StatusOK, tileContentType, data)
}

// handleMetadata returns the static tile-service metadata document.
// GET /tiles/metadata
func (s *Server) handleMetadata(c *gin.Context) {
	c.JSON(http.StatusOK, s.meta)
}
