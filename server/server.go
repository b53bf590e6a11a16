// Package server exposes the page editor over HTTP. It is a thin
// translation layer: parse the request, call the service, map the
// error. All state lives behind the service; handlers hold nothing.
package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wudi/pagedesk/observability"
	"github.com/wudi/pagedesk/service"
	"github.com/wudi/pagedesk/store"
)

type Server struct {
	svc *service.Service
	log observability.Logger
}

func New(svc *service.Service, log observability.Logger) *Server {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Server{svc: svc, log: log}
}

// Router builds the gin engine with every API route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	api.GET("/changes", s.changes)
	api.GET("/dpi", s.getDPI)
	api.PUT("/dpi", s.setDPI)
	api.POST("/reset", s.resetAll)
	api.POST("/clear", s.clearAll)
	api.POST("/reorder", s.reorder)

	api.POST("/documents", s.upload)
	api.GET("/documents", s.listDocuments)
	api.GET("/documents/:doc", s.getDocument)
	api.POST("/documents/:doc/split", s.split)

	pages := api.Group("/documents/:doc/pages/:page")
	pages.GET("/thumb", s.thumbnail)
	pages.GET("/history", s.history)
	pages.POST("/rotate", s.rotate)
	pages.POST("/mirror", s.mirror)
	pages.POST("/delete", s.toggleDelete)
	pages.POST("/revert", s.revert)

	return r
}

func (s *Server) changes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"changeVersion": s.svc.ChangeVersion()})
}

func (s *Server) getDPI(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dpi": s.svc.DPI()})
}

func (s *Server) setDPI(c *gin.Context) {
	var req struct {
		DPI int `json:"dpi" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, changed := s.svc.SetDPI(req.DPI)
	c.JSON(http.StatusOK, gin.H{
		"dpi":           s.svc.DPI(),
		"changed":       changed,
		"changeVersion": res.ChangeVersion,
	})
}

func (s *Server) resetAll(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.ResetAll())
}

func (s *Server) clearAll(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.ClearAll())
}

func (s *Server) upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, res, err := s.svc.OpenDocument(store.SourceMemory, fh.Filename, "", data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document": doc, "changeVersion": res.ChangeVersion})
}

func (s *Server) listDocuments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"documents": s.svc.ListDocuments()})
}

func (s *Server) getDocument(c *gin.Context) {
	id, ok := intParam(c, "doc")
	if !ok {
		return
	}
	doc, err := s.svc.GetDocument(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) thumbnail(c *gin.Context) {
	id, ok := pageParam(c)
	if !ok {
		return
	}
	original := c.Query("original") == "1"
	data, err := s.svc.Thumbnail(id, original)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (s *Server) history(c *gin.Context) {
	id, ok := pageParam(c)
	if !ok {
		return
	}
	hist, err := s.svc.PageHistory(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, hist)
}

func (s *Server) rotate(c *gin.Context) {
	id, ok := pageParam(c)
	if !ok {
		return
	}
	var req struct {
		Degrees int `json:"degrees" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.apply(c, service.Rotate{Page: id, Degrees: req.Degrees})
}

func (s *Server) mirror(c *gin.Context) {
	id, ok := pageParam(c)
	if !ok {
		return
	}
	var req struct {
		Direction string `json:"direction" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var dir service.Direction
	switch req.Direction {
	case "horizontal":
		dir = service.Horizontal
	case "vertical":
		dir = service.Vertical
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "direction must be horizontal or vertical"})
		return
	}
	s.apply(c, service.Mirror{Page: id, Direction: dir})
}

func (s *Server) toggleDelete(c *gin.Context) {
	id, ok := pageParam(c)
	if !ok {
		return
	}
	s.apply(c, service.Delete{Page: id})
}

func (s *Server) revert(c *gin.Context) {
	id, ok := pageParam(c)
	if !ok {
		return
	}
	s.apply(c, service.Revert{Page: id})
}

func (s *Server) reorder(c *gin.Context) {
	var req struct {
		Source store.PageID `json:"source"`
		Target store.PageID `json:"target"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.apply(c, service.Reorder{Source: req.Source, Target: req.Target})
}

func (s *Server) split(c *gin.Context) {
	id, ok := intParam(c, "doc")
	if !ok {
		return
	}
	var req struct {
		After int `json:"after"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.apply(c, service.Split{Doc: id, After: req.After})
}

func (s *Server) apply(c *gin.Context, op service.Op) {
	res, err := s.svc.Apply(op)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// fail maps service errors onto HTTP status codes.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var engErr *service.EngineError
	switch {
	case errors.Is(err, store.ErrDocumentNotFound), errors.Is(err, store.ErrPageNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrCrossDocumentReorder):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidSplitPosition), errors.Is(err, service.ErrUnsupportedRotation):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &engErr):
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", observability.Error("err", err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func intParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " identifier"})
		return 0, false
	}
	return v, true
}

func pageParam(c *gin.Context) (store.PageID, bool) {
	doc, ok := intParam(c, "doc")
	if !ok {
		return store.PageID{}, false
	}
	page, ok := intParam(c, "page")
	if !ok {
		return store.PageID{}, false
	}
	return store.PageID{Doc: doc, Page: page}, true
}
