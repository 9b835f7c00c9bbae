// =============================================================================
// Purchase Order Generator - HTTP Server
// =============================================================================
//
// The serve command exposes the generation core over HTTP for interactive
// clients. The surface mirrors the original interactive tool: upload input
// and template, preview the resolved mapping and lines, fall back to explicit
// mapping when auto-detection misses, accumulate manually entered lines, and
// download the generated workbook.
//
// ROUTES:
//   GET  /healthz             liveness probe
//   POST /api/preview         resolve an uploaded input, return mapping+lines
//   POST /api/generate        full run: input (+optional template) -> xlsx
//   GET  /api/lines           list manually entered lines
//   POST /api/lines           add one manually entered line
//   DELETE /api/lines         clear manually entered lines
//   POST /api/lines/generate  run generation over the accumulated lines
//
// =============================================================================

package server

import (
	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/po-generator/internal/config"
	"github.com/ginjaninja78/po-generator/internal/generator"
	"github.com/ginjaninja78/po-generator/internal/rowsource"
)

// Server wires the generation core to a gin engine.
type Server struct {
	cfg    *config.Config
	logger generator.Logger
	lines  *rowsource.Accumulator
	engine *gin.Engine
}

// New creates the server and registers all routes.
func New(cfg *config.Config, logger generator.Logger) *Server {
	if logger == nil {
		logger = generator.NewLogger(false)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	s := &Server{
		cfg:    cfg,
		logger: logger,
		lines:  rowsource.NewAccumulator(),
		engine: engine,
	}
	s.registerRoutes()
	return s
}

// Engine exposes the underlying gin engine (used by tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run blocks serving HTTP on the configured listen address.
func (s *Server) Run() error {
	s.logger.Info("Listening on %s", s.cfg.Server.ListenAddr)
	return s.engine.Run(s.cfg.Server.ListenAddr)
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealthz)

	api := s.engine.Group("/api")
	{
		api.POST("/preview", s.handlePreview)
		api.POST("/generate", s.handleGenerate)

		api.GET("/lines", s.handleListLines)
		api.POST("/lines", s.handleAddLine)
		api.DELETE("/lines", s.handleClearLines)
		api.POST("/lines/generate", s.handleGenerateFromLines)
	}
}
