package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v4"

	"github.com/sanity-io/statement"
)

const (
	DefaultAddress = "127.0.0.1"
	DefaultPort    = "3000"

	mimeMsgpack = "application/msgpack"
)

type Options struct {
	Address  string
	Port     string
	Document map[string]interface{}
	// Statement configures how mutations are applied. Nil means statement.DefaultOptions.
	Statement *statement.Options
}

func (o *Options) AreValid() error {
	if o.Address == "" {
		return fmt.Errorf("server address is required")
	}
	if o.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if o.Document == nil {
		return fmt.Errorf("document is required")
	}
	return nil
}

func (o *Options) addr() string {
	return net.JoinHostPort(o.Address, o.Port)
}

// Server serves one in-memory document. Mutations of the served document are
// serialized.
type Server struct {
	server   *http.Server
	options  *statement.Options
	mutex    sync.Mutex
	document map[string]interface{}
}

func New(o Options) (*Server, error) {
	if err := o.AreValid(); err != nil {
		return nil, errors.Wrap(err, "invalid server options")
	}

	s := &Server{
		options:  o.Statement,
		document: o.Document,
	}
	if s.options == nil {
		s.options = &statement.DefaultOptions
	}

	s.server = &http.Server{
		Addr:    o.addr(),
		Handler: s.Router(),
	}

	return s, nil
}

// Start creates a server and listens in the background. Listen errors other
// than a regular shutdown are passed to errorCallback.
func Start(o Options, errorCallback func(err error)) (*Server, error) {
	s, err := New(o)
	if err != nil {
		return nil, err
	}

	go func() {
		glog.Infof("[server]running on http://%s\n", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errorCallback(err)
		}
	}()

	return s, nil
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	// wait max 5 secs for pending requests
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}
	s.server = nil
	return nil
}

func (s *Server) Router() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	// the served document
	router.GET("/document", func(c *gin.Context) { s.getDocument(c) })
	// apply a descriptor to the served document
	router.POST("/document/mutations", func(c *gin.Context) { s.mutateDocument(c) })
	// apply a descriptor to the document in the request body
	router.POST("/update-statement", func(c *gin.Context) { s.updateStatement(c) })
	return router
}

func (s *Server) getDocument(c *gin.Context) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	respond(c, http.StatusOK, s.document)
}

func (s *Server) mutateDocument(c *gin.Context) {
	var descriptor map[string]interface{}
	if err := c.ShouldBindJSON(&descriptor); err != nil {
		badRequest(c, err)
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	report := s.options.GenerateReport(s.document, descriptor)
	logFailures(report)

	respond(c, http.StatusOK, report.Statement().Value())
}

type updateStatementRequest struct {
	Document   map[string]interface{} `json:"document"`
	Descriptor map[string]interface{} `json:"descriptor"`
}

func (s *Server) updateStatement(c *gin.Context) {
	var request updateStatementRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}
	if request.Document == nil {
		badRequest(c, fmt.Errorf("document is required"))
		return
	}

	report := s.options.GenerateReport(request.Document, request.Descriptor)
	logFailures(report)

	respond(c, http.StatusOK, map[string]interface{}{
		"statement": report.Statement().Value(),
		"document":  request.Document,
	})
}

func logFailures(report statement.Report) {
	for _, result := range report.Failed() {
		glog.Infof("[server]dropped %s %s = %s\n", result.Mutation.Action, result.Mutation.Path, result.Err)
	}
}

func badRequest(c *gin.Context, err error) {
	respond(c, http.StatusBadRequest, map[string]interface{}{
		"error": fmt.Sprintf("%d Bad Request - %v", http.StatusBadRequest, err),
	})
}

func respond(c *gin.Context, code int, value interface{}) {
	if !strings.Contains(c.GetHeader("Accept"), mimeMsgpack) {
		c.JSON(code, value)
		return
	}

	b, err := msgpack.Marshal(value)
	if err != nil {
		c.String(http.StatusInternalServerError, fmt.Sprintf("%d Internal Server Error - %v", http.StatusInternalServerError, err))
		return
	}
	c.Data(code, mimeMsgpack, b)
}
