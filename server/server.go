// Package server exposes the block service over http.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/foomo/blocks"
	"github.com/foomo/blocks/document"
	"github.com/foomo/blocks/markup"
	"github.com/foomo/blocks/media"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// maxDropSize limits the multipart body of a file drop
const maxDropSize = 32 << 20

// Attachments looks up ingested media
type Attachments interface {
	Get(ctx context.Context, id int64) (media.Attachment, error)
}

type Options struct {
	// Metrics registry for the http metrics, nil disables them
	Metrics *prometheus.Registry
	// Attachments optional, enables GET /api/media/:id
	Attachments Attachments
	Logger      *slog.Logger
}

type Server struct {
	// Echo serves the api
	Echo *echo.Echo
	// MetricsEcho serves /metrics, nil without a metrics registry
	MetricsEcho *echo.Echo
	service     *blocks.Service
	attachments Attachments
	logger      *slog.Logger
}

func New(service *blocks.Service, options Options) (*Server, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Echo:        echo.New(),
		service:     service,
		attachments: options.Attachments,
		logger:      logger,
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(middleware.BodyLimit("32M"))
	if options.Metrics != nil {
		mw, err := echoprometheus.MiddlewareConfig{
			Subsystem:  "blocks",
			Registerer: options.Metrics,
		}.ToMiddleware()
		if err != nil {
			return nil, err
		}
		s.Echo.Use(mw)
		s.MetricsEcho = echo.New()
		s.MetricsEcho.HideBanner = true
		s.MetricsEcho.HidePort = true
		s.MetricsEcho.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: options.Metrics,
		}))
	}

	api := s.Echo.Group("/api")
	api.GET("/types", s.listTypes)
	api.POST("/blocks", s.createBlock)
	api.POST("/blocks/serialize", s.serializeBlock)
	api.POST("/blocks/parse", s.parseBlock)
	api.POST("/blocks/render", s.renderBlock)
	api.POST("/paste", s.paste)
	api.POST("/drop", s.drop)
	api.POST("/documents/parse", s.parseDocument)
	api.POST("/documents/serialize", s.serializeDocument)
	if s.attachments != nil {
		api.GET("/media/:id", s.getAttachment)
	}
	return s, nil
}

type attributeJSON struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Source  string `json:"source,omitempty"`
	Default any    `json:"default,omitempty"`
}

type typeJSON struct {
	Name        string          `json:"name"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Keywords    []string        `json:"keywords,omitempty"`
	Dynamic     bool            `json:"dynamic"`
	Attributes  []attributeJSON `json:"attributes"`
}

func (s *Server) listTypes(c echo.Context) error {
	types := s.service.Registry.Types()
	result := make([]typeJSON, 0, len(types))
	for _, bt := range types {
		t := typeJSON{
			Name:        bt.Name,
			Title:       bt.Title,
			Description: bt.Description,
			Category:    bt.Category,
			Keywords:    bt.Keywords,
			Dynamic:     bt.Dynamic(),
			Attributes:  []attributeJSON{},
		}
		defaults := bt.Schema.Defaults()
		for _, d := range bt.Schema.Definitions() {
			a := attributeJSON{Name: d.Name, Type: string(d.Type), Default: defaults[d.Name]}
			if stringer, ok := d.Source.(interface{ String() string }); ok {
				a.Source = stringer.String()
			}
			t.Attributes = append(t.Attributes, a)
		}
		result = append(result, t)
	}
	return c.JSON(http.StatusOK, result)
}

type createRequest struct {
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
}

func (s *Server) createBlock(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	b, err := s.service.Registry.CreateBlock(req.Name, req.Attributes)
	if err != nil {
		return s.error(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

type markupJSON struct {
	Markup markup.Fragment `json:"markup"`
}

func (s *Server) serializeBlock(c echo.Context) error {
	b, err := s.bindBlock(c)
	if err != nil {
		return err
	}
	fragment, err := s.service.Registry.Serialize(b)
	if err != nil {
		return s.error(c, err)
	}
	return c.JSON(http.StatusOK, markupJSON{Markup: fragment})
}

type parseRequest struct {
	Name   string          `json:"name"`
	Markup markup.Fragment `json:"markup"`
}

func (s *Server) parseBlock(c echo.Context) error {
	var req parseRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	b, err := s.service.Registry.Parse(req.Name, req.Markup)
	if err != nil {
		return s.error(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (s *Server) renderBlock(c echo.Context) error {
	b, err := s.bindBlock(c)
	if err != nil {
		return err
	}
	fragment, err := s.service.Render(c.Request().Context(), b)
	if err != nil {
		return s.error(c, err)
	}
	return c.HTML(http.StatusOK, string(fragment))
}

type pasteRequest struct {
	Input string `json:"input"`
}

func (s *Server) paste(c echo.Context) error {
	var req pasteRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	result, err := s.service.Paste(c.Request().Context(), req.Input)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) drop(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	files := []media.File{}
	for _, header := range form.File["files"] {
		if header.Size > maxDropSize {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, header.Filename)
		}
		f, err := header.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		contentType := header.Header.Get(echo.HeaderContentType)
		if contentType == "" || contentType == echo.MIMEOctetStream {
			contentType = http.DetectContentType(data)
		}
		files = append(files, media.File{
			Name: header.Filename,
			Type: contentType,
			Data: data,
		})
	}
	b, ok, err := s.service.Drop(c.Request().Context(), files)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, b)
}

func (s *Server) parseDocument(c echo.Context) error {
	content, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	result, err := document.Parse(s.service.Registry, string(content))
	if err != nil {
		return s.error(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) serializeDocument(c echo.Context) error {
	var raw []blocks.Block
	if err := c.Bind(&raw); err != nil {
		return err
	}
	content := make([]blocks.Block, 0, len(raw))
	for _, b := range raw {
		decoded, err := s.decode(b)
		if err != nil {
			return s.error(c, err)
		}
		content = append(content, decoded)
	}
	serialized, err := document.Serialize(s.service.Registry, content)
	if err != nil {
		return s.error(c, err)
	}
	return c.String(http.StatusOK, serialized)
}

func (s *Server) getAttachment(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	attachment, err := s.attachments.Get(c.Request().Context(), id)
	if err != nil {
		return s.error(c, err)
	}
	return c.JSON(http.StatusOK, attachment)
}

// bindBlock binds a block of a known type and types its attributes
func (s *Server) bindBlock(c echo.Context) (blocks.Block, error) {
	var b blocks.Block
	if err := c.Bind(&b); err != nil {
		return b, err
	}
	if b.Freeform() {
		return b, nil
	}
	b, err := s.service.Registry.CreateBlock(b.Name, b.Attributes)
	if err != nil {
		return b, s.error(c, err)
	}
	return b, nil
}

// decode types the attributes of known blocks, unknown blocks are kept as
// they are
func (s *Server) decode(b blocks.Block) (blocks.Block, error) {
	if b.Freeform() {
		return b, nil
	}
	if _, err := s.service.Registry.Lookup(b.Name); err != nil {
		if errors.Is(err, blocks.ErrBlockTypeNotFound) {
			return b, nil
		}
		return b, err
	}
	return s.service.Registry.CreateBlock(b.Name, b.Attributes)
}

func (s *Server) error(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, blocks.ErrBlockTypeNotFound), errors.Is(err, media.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, document.ErrUnclosedBlock),
		errors.Is(err, document.ErrUnexpectedCloser),
		errors.Is(err, document.ErrNestedBlock),
		errors.Is(err, document.ErrInvalidEnvelope):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed", "path", c.Path(), "err", err)
	}
	return echo.NewHTTPError(status, strings.TrimSpace(err.Error()))
}
