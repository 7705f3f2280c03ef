package query

import (
	"log/slog"
	"net/http"

	httperr "github.com/capsulelab/tarkov-capsule/internal/core/errors"
	"github.com/gin-gonic/gin"
)

const usageText = `Welcome to the Tarkov Time Capsule API!

Use the /api/spawnchance endpoint to query boss spawn chances with optional parameters:
  - ?mapName=[mapName] : Filter by specific map name.
  - ?bossName=[bossName] : Filter by specific boss name.
  - ?startDate=[YYYY-MM-DD] : Filter results from this start date.
  - ?endDate=[YYYY-MM-DD] : Filter results until this end date.
  - ?groupBy=[boss|map|timestamp] : Group results by boss, map, or timestamp. Defaults to no grouping if not specified.

Examples:
  - /api/spawnchance?mapName=Customs
  - /api/spawnchance?bossName=Reshala
  - /api/spawnchance?mapName=Customs&startDate=2024-10-01&endDate=2024-10-07
  - /api/spawnchance?groupBy=boss

/api/latestspawnchance takes the same filters but returns only the most
recent snapshot per (boss, map) pair. /api/bosses and /api/maps list the
known dimension names.

By default, the endpoints return results from the last week if no date range
is specified, and the response is ungrouped unless specified by the groupBy
parameter.
`

// RegisterRoutes registers the query API routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/", s.HandleUsage)
	r.GET("/api/spawnchance", s.HandleSpawnChances)
	r.GET("/api/latestspawnchance", s.HandleLatestSpawnChances)
	r.GET("/api/bosses", s.HandleListBosses)
	r.GET("/api/maps", s.HandleListMaps)
}

// HandleUsage serves plain-text usage instructions on the root path.
func (s *Service) HandleUsage(c *gin.Context) {
	c.String(http.StatusOK, usageText)
}

// HandleSpawnChances handles GET /api/spawnchance.
// Bad filter values never 4xx: unknown names yield zero rows and
// unparseable dates revert to the default one-week window.
func (s *Service) HandleSpawnChances(c *gin.Context) {
	rows, err := s.QuerySpawnChances(c.Request.Context(), paramsFromQuery(c))
	if err != nil {
		writeInternalError(c, "Failed to query spawn chances", err)
		return
	}

	c.JSON(http.StatusOK, Group(rows, ParseGroupMode(c.Query("groupBy"))))
}

// HandleLatestSpawnChances handles GET /api/latestspawnchance: the same
// filters, reduced to the most recent row per (boss, map) before grouping.
func (s *Service) HandleLatestSpawnChances(c *gin.Context) {
	rows, err := s.LatestSpawnChances(c.Request.Context(), paramsFromQuery(c))
	if err != nil {
		writeInternalError(c, "Failed to query latest spawn chances", err)
		return
	}

	c.JSON(http.StatusOK, Group(rows, ParseGroupMode(c.Query("groupBy"))))
}

// HandleListBosses handles GET /api/bosses.
func (s *Service) HandleListBosses(c *gin.Context) {
	bosses, err := s.ListBosses(c.Request.Context())
	if err != nil {
		writeInternalError(c, "Failed to list bosses", err)
		return
	}
	c.JSON(http.StatusOK, bosses)
}

// HandleListMaps handles GET /api/maps.
func (s *Service) HandleListMaps(c *gin.Context) {
	maps, err := s.ListMaps(c.Request.Context())
	if err != nil {
		writeInternalError(c, "Failed to list maps", err)
		return
	}
	c.JSON(http.StatusOK, maps)
}

func paramsFromQuery(c *gin.Context) Params {
	return Params{
		MapName:   c.Query("mapName"),
		BossName:  c.Query("bossName"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
}

func writeInternalError(c *gin.Context, message string, err error) {
	slog.Error(message, "error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   message,
	})
}
