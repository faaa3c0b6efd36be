package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/famdash/internal/card"
	"github.com/dukerupert/famdash/internal/handler"
	"github.com/dukerupert/famdash/internal/middleware"
	"github.com/dukerupert/famdash/internal/model"
	ws "github.com/dukerupert/famdash/internal/websocket"
)

// Mutations per client address per minute.
const mutationLimit = 60

type Server struct {
	dashboard   *card.Dashboard
	hub         *ws.Hub
	eventH      *handler.EventHandler
	taskH       *handler.TaskHandler
	rewardH     *handler.RewardHandler
	householdH  *handler.HouseholdHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// New wires HTTP handlers to the dashboard and broadcasts every card change
// to websocket clients. The dashboard may be started before or after New.
func New(dashboard *card.Dashboard, household model.Household, logger *slog.Logger) *Server {
	s := &Server{
		dashboard:   dashboard,
		hub:         ws.NewHub(logger.With("component", "websocket")),
		eventH:      handler.NewEventHandler(dashboard.Events, logger.With("component", "events")),
		taskH:       handler.NewTaskHandler(dashboard.Tasks, household, logger.With("component", "tasks")),
		rewardH:     handler.NewRewardHandler(dashboard.Rewards, logger.With("component", "rewards")),
		householdH:  handler.NewHouseholdHandler(household),
		rateLimiter: middleware.NewRateLimiter(),
		logger:      logger,
	}
	dashboard.OnChange(s.broadcast)
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) broadcast(name string) {
	if v, ok := s.cardView(name); ok {
		s.hub.Broadcast(ws.Updated(name, v))
	}
}

func (s *Server) cardView(name string) (any, bool) {
	switch name {
	case card.EventsName:
		return s.dashboard.Events.View(), true
	case card.TasksName:
		return s.dashboard.Tasks.View(), true
	case card.RewardsName:
		return s.dashboard.Rewards.View(), true
	}
	return nil, false
}

// snapshot is sent to each websocket client on connect.
func (s *Server) snapshot() []ws.Message {
	var msgs []ws.Message
	for _, name := range []string{card.EventsName, card.TasksName, card.RewardsName} {
		v, _ := s.cardView(name)
		msgs = append(msgs, ws.Updated(name, v))
	}
	return msgs
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.snapshot, s.logger.With("component", "websocket")))
	mux.HandleFunc("GET /api/household", s.householdH.Get)

	// Events card
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)
	mux.HandleFunc("GET /api/events/form", s.eventH.Form)
	mux.HandleFunc("POST /api/events/form", s.eventH.OpenForm)
	mux.HandleFunc("DELETE /api/events/form", s.eventH.CloseForm)

	// Tasks card
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.taskH.Toggle)
	mux.HandleFunc("GET /api/tasks/members/{member}", s.taskH.Detailed)
	mux.HandleFunc("POST /api/tasks/form", s.taskH.OpenForm)
	mux.HandleFunc("DELETE /api/tasks/form", s.taskH.CloseForm)

	// Star rewards card
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("POST /api/rewards", s.rewardH.Create)
	mux.HandleFunc("DELETE /api/rewards/{stars}", s.rewardH.Delete)
	mux.HandleFunc("GET /api/rewards/form", s.rewardH.Form)
	mux.HandleFunc("POST /api/rewards/form", s.rewardH.OpenForm)
	mux.HandleFunc("DELETE /api/rewards/form", s.rewardH.CloseForm)

	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	limited := middleware.RateLimit(s.rateLimiter, keyFunc, mutationLimit, time.Minute)(mux)

	return middleware.RequestLogger(s.logger.With("component", "http"))(limited)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	})
}
