package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/randalmurphal/agentgraph/pkg/agentgraph"
	agerrors "github.com/randalmurphal/agentgraph/pkg/agentgraph/errors"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/generate"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/store"
	"github.com/randalmurphal/agentgraph/pkg/agentgraph/view"
)

// ViewResponse is the body of POST /v1/views/:format.
type ViewResponse struct {
	Format   view.Format `json:"format"`
	Content  string      `json:"content"`
	ChartURL string      `json:"chartUrl,omitempty"`
}

// GenerateRequest is the body of POST /v1/generate.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
	Lang   string `json:"lang"`
}

// GenerateResponse is the body returned by POST /v1/generate.
type GenerateResponse struct {
	Confirmation string               `json:"confirmation"`
	Workflow     *agentgraph.Workflow `json:"workflow"`
	Attempts     int                  `json:"attempts"`
}

// SOPRequest is the body of POST /v1/sop.
type SOPRequest struct {
	Workflow agentgraph.Workflow `json:"workflow"`
	Lang     string              `json:"lang"`
}

// OpResponse is the body returned by POST /v1/workflows/:name/ops.
type OpResponse struct {
	Workflow agentgraph.Workflow `json:"workflow"`
	Node     *agentgraph.Node    `json:"node,omitempty"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) repair(c *gin.Context) {
	var w agentgraph.Workflow
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow: " + err.Error()})
		return
	}
	repaired := agentgraph.Repair(w,
		agentgraph.WithRepairLocale(s.bundle(c, "")),
		agentgraph.WithRepairLogger(s.logger),
		agentgraph.WithRepairMetrics(s.metrics),
	)
	c.JSON(http.StatusOK, repaired)
}

func (s *Server) importDocument(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := agentgraph.Import(data, agentgraph.WithImportLogger(s.logger))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  s.bundle(c, "").InvalidImport,
			"detail": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) renderView(c *gin.Context) {
	format, err := view.ParseFormat(c.Param("format"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	var w agentgraph.Workflow
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow: " + err.Error()})
		return
	}

	content, err := view.Render(format, w, s.bundle(c, ""))
	if err != nil {
		s.logger.Error("render view failed", slog.String("format", string(format)), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.metrics.RecordViewRender(c.Request.Context(), string(format))

	resp := ViewResponse{Format: format, Content: content}
	if format == view.FormatMermaid {
		resp.ChartURL = view.ChartURL(content, view.WithChartBase(s.chartBase))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) generate(c *gin.Context) {
	if s.generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation is not configured"})
		return
	}
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	res, err := s.generator.Workflow(c.Request.Context(), req.Prompt, s.bundle(c, req.Lang).Tag)
	if err != nil {
		c.JSON(generationStatus(err), gin.H{"error": err.Error(), "category": agerrors.Categorize(err)})
		return
	}
	c.JSON(http.StatusOK, GenerateResponse{
		Confirmation: res.Response.Confirmation,
		Workflow:     res.Response.Workflow,
		Attempts:     res.Attempts,
	})
}

func (s *Server) sop(c *gin.Context) {
	if s.generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation is not configured"})
		return
	}
	var req SOPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	text, err := s.generator.SOP(c.Request.Context(), req.Workflow, s.bundle(c, req.Lang).Tag)
	if err != nil {
		c.JSON(generationStatus(err), gin.H{"error": err.Error(), "category": agerrors.Categorize(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": text})
}

// generationStatus maps a generator failure to an HTTP status.
func generationStatus(err error) int {
	switch {
	case errors.Is(err, generate.ErrEmptyPrompt):
		return http.StatusBadRequest
	case agerrors.IsRetryable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) listWorkflows(c *gin.Context) {
	infos, err := s.store.List(c.Request.Context())
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflows": infos})
}

func (s *Server) getWorkflow(c *gin.Context) {
	w, err := s.store.Load(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) putWorkflow(c *gin.Context) {
	var w agentgraph.Workflow
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workflow: " + err.Error()})
		return
	}
	if err := agentgraph.Validate(w); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	name := c.Param("name")
	unlock := s.lock(name)
	defer unlock()

	if err := s.store.Save(c.Request.Context(), name, w); err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) deleteWorkflow(c *gin.Context) {
	name := c.Param("name")
	unlock := s.lock(name)
	defer unlock()

	if err := s.store.Delete(c.Request.Context(), name); err != nil {
		s.storeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) applyOp(c *gin.Context) {
	var op Op
	if err := c.ShouldBindJSON(&op); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid op: " + err.Error()})
		return
	}

	name := c.Param("name")
	unlock := s.lock(name)
	defer unlock()

	ctx := c.Request.Context()
	w, err := s.store.Load(ctx, name)
	if err != nil {
		s.storeError(c, err)
		return
	}

	out, node, err := op.Apply(w, s.bundle(c, ""))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrNoSuchNode) || errors.Is(err, ErrNoSuchEdge) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.Save(ctx, name, out); err != nil {
		s.storeError(c, err)
		return
	}
	s.logger.Debug("op applied", slog.String("workflow", name), slog.String("op", op.Op))
	c.JSON(http.StatusOK, OpResponse{Workflow: out, Node: node})
}

func (s *Server) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("store failure", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage failure"})
	}
}
