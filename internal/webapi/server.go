// Package webapi exposes a read-only browse API over a store of loaded ARC
// containers.
package webapi

import (
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/reliquary/internal/logger"
	"github.com/samcharles93/reliquary/internal/store"
	"github.com/samcharles93/reliquary/pkg/arc"
)

type Server struct {
	store *store.Store
	log   logger.Logger
}

func NewServer(st *store.Store, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{store: st, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/containers", s.handleListContainers)
	e.GET("/v1/containers/:name/objects", s.handleListObjects)
	e.GET("/v1/containers/:name/objects/:id", s.handleGetObject)
	e.POST("/v1/containers/:name/resolve", s.handleResolve)
}

type containerSummary struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	FormatVersion uint32 `json:"format_version"`
	EngineVersion string `json:"engine_version,omitempty"`
	Platform      uint32 `json:"platform"`
	Objects       int    `json:"objects"`
	Externals     int    `json:"externals"`
}

type objectSummary struct {
	PathID int64  `json:"path_id"`
	Tag    uint32 `json:"tag"`
	Size   uint32 `json:"size"`
	Name   string `json:"name,omitempty"`
}

type resolveRequest struct {
	FileIndex int32 `json:"file_index"`
	PathID    int64 `json:"path_id"`
	Safe      bool  `json:"safe"`
}

type resolveResponse struct {
	Found     bool           `json:"found"`
	Container string         `json:"container,omitempty"`
	Object    *objectSummary `json:"object,omitempty"`
}

func (s *Server) handleListContainers(c *echo.Context) error {
	containers := s.store.Containers()
	out := make([]containerSummary, 0, len(containers))
	for _, ct := range containers {
		out = append(out, containerSummary{
			Name:          ct.Name,
			Path:          ct.Path,
			FormatVersion: ct.Header.Version,
			EngineVersion: ct.Meta.EngineVersion,
			Platform:      ct.Meta.Platform,
			Objects:       ct.Len(),
			Externals:     len(ct.Meta.Externals),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"object": "list",
		"data":   out,
	})
}

func (s *Server) handleListObjects(c *echo.Context) error {
	ct := s.store.Get(c.Param("name"))
	if ct == nil {
		return writeNotFound(c, "container not found")
	}
	out := make([]objectSummary, 0, ct.Len())
	for _, e := range ct.Meta.Table.Entries() {
		a, err := ct.Get(e.PathID)
		if err != nil {
			// Declined by the factory; the table row carries no object.
			continue
		}
		out = append(out, summarize(a, e))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"object": "list",
		"data":   out,
	})
}

func (s *Server) handleGetObject(c *echo.Context) error {
	ct := s.store.Get(c.Param("name"))
	if ct == nil {
		return writeNotFound(c, "container not found")
	}
	id, err := parsePathID(c.Param("id"))
	if err != nil {
		return writeBadRequest(c, "invalid object id")
	}
	a, err := ct.Get(id)
	if err != nil {
		return writeNotFound(c, "object not found")
	}

	// Marshal the asset itself so kind-specific fields come through.
	detail, err := json.Marshal(a)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	obj := a.Object()
	body, err := json.Marshal(map[string]any{
		"request_id": "req_" + uuid.NewString(),
		"path_id":    obj.PathID,
		"tag":        uint32(obj.Tag),
		"size":       obj.Size,
		"detail":     json.RawMessage(detail),
	})
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, body)
}

func (s *Server) handleResolve(c *echo.Context) error {
	ct := s.store.Get(c.Param("name"))
	if ct == nil {
		return writeNotFound(c, "container not found")
	}
	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return writeBadRequest(c, "invalid resolve request")
	}

	a, err := ct.Deref(arc.Pointer{FileIndex: req.FileIndex, PathID: req.PathID}, req.Safe)
	if err != nil {
		return writeNotFound(c, err.Error())
	}
	if a == nil {
		return c.JSON(http.StatusOK, resolveResponse{Found: false})
	}
	obj := a.Object()
	sum := objectSummary{PathID: obj.PathID, Tag: uint32(obj.Tag), Size: obj.Size}
	if n, ok := a.(arc.Named); ok {
		sum.Name = n.Name()
	}
	return c.JSON(http.StatusOK, resolveResponse{
		Found:     true,
		Container: obj.Owner.Name,
		Object:    &sum,
	})
}

func summarize(a arc.Asset, e arc.ObjectEntry) objectSummary {
	sum := objectSummary{PathID: e.PathID, Tag: uint32(e.Tag), Size: e.Size}
	if n, ok := a.(arc.Named); ok {
		sum.Name = n.Name()
	}
	return sum
}
