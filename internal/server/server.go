// Package server exposes the planning pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"greentrip/internal/assistant"
	"greentrip/internal/chat"
	"greentrip/internal/common/config"
	"greentrip/internal/common/logger"
	"greentrip/internal/conversation"
	"greentrip/internal/models"
	"greentrip/internal/planner"
)

// Server wires the HTTP layer to the domain services. Conversations and the
// assistant are optional; routes depending on them report unavailability when
// their backend is absent.
type Server struct {
	cfg           config.ServerConfig
	planner       *planner.Planner
	chat          *chat.Service
	assistant     *assistant.Assistant
	conversations *conversation.Store
	log           logger.Logger
	engine        *gin.Engine
}

func New(cfg config.ServerConfig, p *planner.Planner, c *chat.Service, a *assistant.Assistant, conv *conversation.Store, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	engine.Use(cors.New(corsCfg))

	s := &Server{
		cfg:           cfg,
		planner:       p,
		chat:          c,
		assistant:     a,
		conversations: conv,
		log:           log,
		engine:        engine,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/api/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.POST("/itinerary/generate", s.handleGenerate)
	api.POST("/chat", s.handleChat)
	api.POST("/assistant/message", s.handleAssistant)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the context is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

type generateRequest struct {
	models.TripRequest
	UserID string `json:"user_id,omitempty"`
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	it, err := s.planner.Generate(c.Request.Context(), req.TripRequest, req.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := gin.H{"itinerary": it}
	if s.conversations != nil {
		convCtx := &conversation.Context{
			ConversationID: conversation.NewID(),
			UserID:         req.UserID,
			Itinerary:      it,
		}
		if err := s.conversations.Save(c.Request.Context(), convCtx); err != nil {
			s.log.Warn("conversation seed failed", map[string]interface{}{"error": err.Error()})
		} else {
			resp["conversation_id"] = convCtx.ConversationID
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleChat(c *gin.Context) {
	var req models.ConverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	// A known conversation supplies itinerary and history the client
	// didn't send.
	var convCtx *conversation.Context
	if s.conversations != nil && req.ConversationID != "" {
		loaded, err := s.conversations.Load(c.Request.Context(), req.ConversationID)
		if err != nil {
			s.log.Warn("conversation load failed", map[string]interface{}{"error": err.Error()})
		} else if loaded != nil {
			convCtx = loaded
			if req.Itinerary == nil {
				req.Itinerary = convCtx.Itinerary
			}
			if len(req.History) == 0 {
				req.History = convCtx.History
			}
		}
	}

	resp, err := s.chat.Converse(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	if s.conversations != nil && convCtx != nil {
		turn := models.ChatTurn{Role: models.RoleAssistant, Message: resp.Response}
		if err := s.conversations.Append(c.Request.Context(), convCtx, req.Message, turn, resp.UpdatedItinerary); err != nil {
			s.log.Warn("conversation append failed", map[string]interface{}{"error": err.Error()})
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleAssistant(c *gin.Context) {
	if s.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    "NOT_AVAILABLE",
			"message": "assistant channel is not enabled",
		})
		return
	}

	var msg assistant.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	reply, err := s.assistant.Handle(c.Request.Context(), msg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}
