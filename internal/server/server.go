// Package server exposes the nesting engine over HTTP: jobs are started,
// polled and cancelled through a small JSON API backed by the dispatch
// layer.
package server

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/piwi3910/NestCut/internal/config"
	"github.com/piwi3910/NestCut/internal/dispatch"
	"github.com/piwi3910/NestCut/internal/geom"
	"github.com/piwi3910/NestCut/internal/model"
)

// NestRequest is the job submission payload.
type NestRequest struct {
	DesignName string              `json:"design_name"`
	Polygons   [][]geom.Point      `json:"polygons" binding:"required"`
	PresetIDs  []string            `json:"preset_ids"`
	Sheets     []model.SheetPreset `json:"sheets"`
	Settings   *model.NestSettings `json:"settings"`
}

// JobStatus is the polled job state.
type JobStatus struct {
	ID       string             `json:"id"`
	State    string             `json:"state"` // running | complete | error | cancelled
	Percent  float64            `json:"percent"`
	Message  string             `json:"message,omitempty"`
	Results  []model.NestResult `json:"results,omitempty"`
	ErrorMsg string             `json:"error,omitempty"`
}

// jobState tracks one dispatched job.
type jobState struct {
	mu     sync.Mutex
	job    *dispatch.Job
	status JobStatus
}

// Server is the HTTP facade over the dispatch layer.
type Server struct {
	cfg  *config.Config
	mu   sync.Mutex
	jobs map[string]*jobState
}

// New builds a server.
func New(cfg *config.Config) *Server {
	return &Server{cfg: cfg, jobs: make(map[string]*jobState)}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	api := r.Group("/api")
	{
		api.GET("/presets", s.handlePresets)
		api.POST("/nest", s.handleStart)
		api.GET("/nest/:id", s.handleStatus)
		api.DELETE("/nest/:id", s.handleCancel)
	}
	return r
}

func (s *Server) handlePresets(c *gin.Context) {
	c.JSON(http.StatusOK, model.SheetPresets)
}

func (s *Server) handleStart(c *gin.Context) {
	var req NestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	polygons := make([]geom.Polygon, len(req.Polygons))
	for i, ring := range req.Polygons {
		polygons[i] = geom.Polygon(ring)
	}
	name := req.DesignName
	if name == "" {
		name = "design"
	}
	design := model.NewDesign(name, polygons)
	if design.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "design has no usable polygons"})
		return
	}

	sheets := req.Sheets
	for _, id := range req.PresetIDs {
		preset, ok := model.PresetByID(id)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown preset %q", id)})
			return
		}
		sheets = append(sheets, preset)
	}
	if len(sheets) == 0 {
		sheets = model.SheetPresets
	}

	settings := model.DefaultSettings()
	settings.Margin = s.cfg.DefaultMargin
	if req.Settings != nil {
		settings = *req.Settings
		if settings.GA.PopulationSize == 0 {
			settings.GA = model.DefaultGAConfig()
		}
	}

	s.mu.Lock()
	running := 0
	for _, st := range s.jobs {
		st.mu.Lock()
		if st.status.State == "running" {
			running++
		}
		st.mu.Unlock()
	}
	if s.cfg.MaxJobs > 0 && running >= s.cfg.MaxJobs {
		s.mu.Unlock()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "job limit reached"})
		return
	}

	id := uuid.New().String()[:8]
	state := &jobState{status: JobStatus{ID: id, State: "running"}}
	state.job = dispatch.Start(design, sheets, settings)
	s.jobs[id] = state
	s.mu.Unlock()

	go state.consume()

	c.JSON(http.StatusAccepted, gin.H{"id": id})
}

// consume drains the job's event stream into the polled status.
func (st *jobState) consume() {
	for ev := range st.job.Events() {
		st.mu.Lock()
		switch ev.Kind {
		case dispatch.EventProgress:
			st.status.Percent = ev.Percent
			st.status.Message = ev.Message
		case dispatch.EventComplete:
			st.status.State = "complete"
			st.status.Percent = 100
			st.status.Results = ev.Results
		case dispatch.EventError:
			st.status.State = "error"
			st.status.ErrorMsg = ev.ErrorMsg
		case dispatch.EventCancelled:
			st.status.State = "cancelled"
		}
		st.mu.Unlock()
	}
}

func (s *Server) lookup(id string) (*jobState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.jobs[id]
	return st, ok
}

func (s *Server) handleStatus(c *gin.Context) {
	st, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}
	st.mu.Lock()
	status := st.status
	st.mu.Unlock()
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleCancel(c *gin.Context) {
	st, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown job"})
		return
	}
	st.job.Cancel()
	c.JSON(http.StatusOK, gin.H{"status": "cancelling"})
}
