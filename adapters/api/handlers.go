package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"olynk/adapters/export"
	"olynk/app"
	"olynk/internal"
	"olynk/internal/engine"
	"olynk/internal/errors"
)

// Handler serves the analysis HTTP API
type Handler struct {
	svc       *app.AnalysisService
	maxUpload int64
	logger    *internal.Logger
}

// NewHandler creates a handler; maxUpload caps multipart bodies in bytes.
func NewHandler(svc *app.AnalysisService, maxUpload int64, logger *internal.Logger) *Handler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Handler{svc: svc, maxUpload: maxUpload, logger: logger.With("API")}
}

// NewRouter wires the routes onto a fresh gin engine
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	h.Register(router)
	return router
}

// Register adds the API routes to router
func (h *Handler) Register(router gin.IRouter) {
	router.GET("/health", h.HandleHealth)
	v1 := router.Group("/v1")
	v1.POST("/analyze", h.HandleAnalyze)
	v1.GET("/reports", h.HandleListReports)
	v1.GET("/reports/:id", h.HandleGetReport)
}

func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleAnalyze accepts a multipart "file" field and returns the report.
// segment_by, date_column and sheet may be sent as form fields or query
// parameters; format selects the response encoding.
func (h *Handler) HandleAnalyze(c *gin.Context) {
	format, err := responseFormat(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
	file, err := c.FormFile("file")
	if err != nil {
		h.fail(c, errors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	src, err := file.Open()
	if err != nil {
		h.fail(c, errors.Wrap(err, "open upload"))
		return
	}
	defer src.Close()

	opts := app.AnalyzeOptions{
		SegmentBy:  param(c, "segment_by"),
		DateColumn: param(c, "date_column"),
		Sheet:      param(c, "sheet"),
	}
	report, err := h.svc.AnalyzeReader(c.Request.Context(), file.Filename, src, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Info("analyzed upload %s (%d bytes) as run %s", file.Filename, file.Size, report.RunID)
	h.render(c, http.StatusCreated, format, report)
}

func (h *Handler) HandleGetReport(c *gin.Context) {
	format, err := responseFormat(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	report, err := h.svc.Report(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, format, report)
}

func (h *Handler) HandleListReports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	reports, err := h.svc.Reports(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

// responseFormat reads ?format=, defaulting to JSON.
func responseFormat(c *gin.Context) (export.Format, error) {
	name := c.Query("format")
	if name == "" {
		return export.FormatJSON, nil
	}
	return export.ParseFormat(name)
}

func (h *Handler) render(c *gin.Context, status int, format export.Format, report *engine.Report) {
	if format == export.FormatJSON {
		c.JSON(status, report)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, report); err != nil {
		h.fail(c, err)
		return
	}
	if format == export.FormatXLSX || format == export.FormatCSV {
		c.Header("Content-Disposition", "attachment; filename=\"report_"+report.RunID.String()+"."+string(format)+"\"")
	}
	c.Data(status, format.ContentType(), buf.Bytes())
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

func param(c *gin.Context, key string) string {
	if v := c.PostForm(key); v != "" {
		return v
	}
	return c.Query(key)
}
