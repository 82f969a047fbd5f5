package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/pipekit/component"
	"github.com/kbukum/pipekit/errors"
	"github.com/kbukum/pipekit/pipeline"
	"github.com/kbukum/pipekit/run"
	"github.com/kbukum/pipekit/validation"
	"github.com/kbukum/pipekit/version"
)

// API exposes run submission and reporting over HTTP.
type API struct {
	Runs       *run.Manager
	Loader     pipeline.Loader
	Components *component.Registry
}

// SubmitRequest is the body of POST /api/v1/runs.
type SubmitRequest struct {
	Pipeline string            `json:"pipeline" validate:"required"`
	Params   map[string]string `json:"params"`
	// Wait makes the request block until the run ends, returning the final
	// report instead of an accepted stub.
	Wait bool `json:"wait"`
}

// SubmitResponse is returned for asynchronous submissions.
type SubmitResponse struct {
	RunID string `json:"run_id"`
}

// Register mounts all API routes on the engine.
func (a *API) Register(engine *gin.Engine) {
	engine.GET("/health", a.health)
	engine.GET("/version", a.version)

	v1 := engine.Group("/api/v1")
	v1.GET("/pipelines", a.listPipelines)
	v1.GET("/pipelines/:name", a.getPipeline)
	v1.POST("/runs", a.submitRun)
	v1.GET("/runs", a.listRuns)
	v1.GET("/runs/:id", a.getRun)
	v1.GET("/runs/:id/stages/:stage", a.getStage)
	v1.DELETE("/runs/:id", a.cancelRun)
}

func (a *API) health(c *gin.Context) {
	status := http.StatusOK
	var checks []component.Health
	if a.Components != nil {
		checks = a.Components.HealthAll(c.Request.Context())
		for _, h := range checks {
			if h.Status == component.StatusUnhealthy {
				status = http.StatusServiceUnavailable
			}
		}
	}
	c.JSON(status, gin.H{"status": http.StatusText(status), "components": checks})
}

func (a *API) version(c *gin.Context) {
	RespondOK(c, version.GetVersionInfo())
}

func (a *API) listPipelines(c *gin.Context) {
	lister, ok := a.Loader.(pipeline.Lister)
	if !ok {
		RespondOK(c, []string{})
		return
	}
	names, err := lister.List()
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, names)
}

func (a *API) getPipeline(c *gin.Context) {
	name := c.Param("name")
	p, err := a.Loader.Load(name)
	if err != nil {
		RespondWithError(c, errors.NotFound("pipeline", name).WithCause(err))
		return
	}
	RespondOK(c, p)
}

func (a *API) submitRun(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondWithError(c, errors.InvalidInput("body", err.Error()))
		return
	}
	if err := validation.Validate(&req); err != nil {
		RespondWithError(c, err)
		return
	}

	// The run must outlive this request.
	id, err := a.Runs.Submit(context.WithoutCancel(c.Request.Context()), req.Pipeline, req.Params)
	if err != nil {
		RespondWithError(c, err)
		return
	}

	if req.Wait {
		report, err := a.Runs.Wait(c.Request.Context(), id)
		if err != nil {
			RespondWithError(c, err)
			return
		}
		RespondOK(c, report)
		return
	}
	RespondAccepted(c, SubmitResponse{RunID: id})
}

func (a *API) listRuns(c *gin.Context) {
	RespondOK(c, a.Runs.List())
}

func (a *API) getRun(c *gin.Context) {
	report, err := a.Runs.Get(c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, report)
}

func (a *API) getStage(c *gin.Context) {
	report, err := a.Runs.Get(c.Param("id"))
	if err != nil {
		RespondWithError(c, err)
		return
	}
	stage := report.Stage(c.Param("stage"))
	if stage == nil {
		RespondWithError(c, errors.NotFound("stage", c.Param("stage")))
		return
	}
	RespondOK(c, stage)
}

func (a *API) cancelRun(c *gin.Context) {
	if err := a.Runs.Cancel(c.Param("id")); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondNoContent(c)
}
