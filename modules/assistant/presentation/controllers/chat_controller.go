package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/nicolasimarinw/hr-ontology/modules/assistant"
	"github.com/nicolasimarinw/hr-ontology/modules/assistant/presentation/controllers/dtos"
	"github.com/nicolasimarinw/hr-ontology/modules/graph"
	"github.com/nicolasimarinw/hr-ontology/pkg/middleware"
)

const maxChatBody = 1 << 20

var validate = validator.New()

type Chatter interface {
	Chat(ctx context.Context, history []assistant.Message, message string, onTool func(assistant.ToolCall)) (*assistant.Reply, error)
}

type Overviewer interface {
	Overview(ctx context.Context) *assistant.Overview
}

type EmployeeDirectory interface {
	EmployeeList(ctx context.Context) ([]map[string]any, error)
	EmployeeProfile(ctx context.Context, employeeID string) (*graph.EmployeeProfile, error)
	EgoGraph(ctx context.Context, employeeID string, hops int) (*graph.Subgraph, error)
}

type ChatControllerOptions struct {
	// Chat, Overview and Employees may be nil; their routes then answer 503.
	Chat      Chatter
	Overview  Overviewer
	Employees EmployeeDirectory
	// VisualizationDir holds pages written by the graph renderer.
	VisualizationDir string
	Logger           *logrus.Logger
}

// ChatController serves the assistant API.
type ChatController struct {
	opts     ChatControllerOptions
	basePath string
}

func NewChatController(opts ChatControllerOptions) *ChatController {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &ChatController{opts: opts, basePath: "/api"}
}

func (c *ChatController) Key() string {
	return c.basePath
}

func (c *ChatController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/chat", c.chat).Methods(http.MethodPost)
	router.HandleFunc("/overview", c.overview).Methods(http.MethodGet)
	router.HandleFunc("/employees", c.listEmployees).Methods(http.MethodGet)
	router.HandleFunc("/employees/{id}", c.employee).Methods(http.MethodGet)
	router.HandleFunc("/employees/{id}/graph", c.employeeGraph).Methods(http.MethodGet)
	router.HandleFunc("/visualizations/{name}", c.visualization).Methods(http.MethodGet)
}

func (c *ChatController) chat(w http.ResponseWriter, r *http.Request) {
	logger := middleware.Logger(r.Context(), c.opts.Logger)
	if c.opts.Chat == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "LLM_UNAVAILABLE", assistant.ErrNoAPIKey.Error())
		return
	}
	var req dtos.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "CHAT_INVALID_BODY", err.Error())
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "CHAT_VALIDATION", err.Error())
		return
	}
	reply, err := c.opts.Chat.Chat(r.Context(), req.History, req.Message, func(tc assistant.ToolCall) {
		logger.WithField("tool", tc.Name).Debug("chat tool call")
	})
	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		writeJSONError(w, http.StatusBadRequest, "CHAT_VALIDATION", err.Error())
		return
	case err != nil:
		logger.WithError(err).Error("chat failed")
		writeJSONError(w, http.StatusBadGateway, "CHAT_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (c *ChatController) overview(w http.ResponseWriter, r *http.Request) {
	if c.opts.Overview == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "OVERVIEW_UNAVAILABLE", "no data sources configured")
		return
	}
	writeJSON(w, http.StatusOK, c.opts.Overview.Overview(r.Context()))
}

func (c *ChatController) listEmployees(w http.ResponseWriter, r *http.Request) {
	if c.opts.Employees == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "GRAPH_UNAVAILABLE", assistant.ErrGraphUnavailable.Error())
		return
	}
	rows, err := c.opts.Employees.EmployeeList(r.Context())
	if err != nil {
		middleware.Logger(r.Context(), c.opts.Logger).WithError(err).Error("employee list failed")
		writeJSONError(w, http.StatusInternalServerError, "EMPLOYEES_ERROR", "failed to list employees")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employees": rows, "count": len(rows)})
}

func (c *ChatController) employee(w http.ResponseWriter, r *http.Request) {
	if c.opts.Employees == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "GRAPH_UNAVAILABLE", assistant.ErrGraphUnavailable.Error())
		return
	}
	id := mux.Vars(r)["id"]
	profile, err := c.opts.Employees.EmployeeProfile(r.Context(), id)
	switch {
	case errors.Is(err, graph.ErrEmployeeNotFound):
		writeJSONError(w, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", err.Error())
		return
	case err != nil:
		middleware.Logger(r.Context(), c.opts.Logger).WithError(err).WithField("employee_id", id).Error("employee profile failed")
		writeJSONError(w, http.StatusInternalServerError, "EMPLOYEE_ERROR", "failed to load employee")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// employeeGraph returns the employee's neighbourhood as nodes and edges, or
// as a rendered page with ?format=html. hops defaults to 1 and is clamped
// to [1, 2].
func (c *ChatController) employeeGraph(w http.ResponseWriter, r *http.Request) {
	if c.opts.Employees == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "GRAPH_UNAVAILABLE", assistant.ErrGraphUnavailable.Error())
		return
	}
	id := mux.Vars(r)["id"]
	hops := graph.DefaultEgoHops
	if raw := r.URL.Query().Get("hops"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "INVALID_HOPS", "hops must be an integer")
			return
		}
		hops = graph.ClampHops(n)
	}

	g, err := c.opts.Employees.EgoGraph(r.Context(), id, hops)
	switch {
	case errors.Is(err, graph.ErrEmployeeNotFound):
		writeJSONError(w, http.StatusNotFound, "EMPLOYEE_NOT_FOUND", err.Error())
		return
	case err != nil:
		middleware.Logger(r.Context(), c.opts.Logger).WithError(err).WithField("employee_id", id).Error("ego graph failed")
		writeJSONError(w, http.StatusInternalServerError, "EMPLOYEE_GRAPH_ERROR", "failed to load employee graph")
		return
	}

	if r.URL.Query().Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := graph.Page(g).Render(r.Context(), w); err != nil {
			middleware.Logger(r.Context(), c.opts.Logger).WithError(err).Error("render ego graph failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"employee_id": id, "hops": hops, "graph": g})
}

func (c *ChatController) visualization(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".html")
	if c.opts.VisualizationDir == "" || name == "" || graph.SafeName(name) != name {
		writeJSONError(w, http.StatusNotFound, "VISUALIZATION_NOT_FOUND", "no such visualization")
		return
	}
	http.ServeFile(w, r, filepath.Join(c.opts.VisualizationDir, name+".html"))
}
