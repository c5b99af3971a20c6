package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nicolasimarinw/hr-ontology/modules/assistant/presentation/controllers/dtos"
	"github.com/nicolasimarinw/hr-ontology/modules/lake"
)

// TableChecker reports whether a lake table has been built.
type TableChecker interface {
	Has(name string) bool
}

type HealthController struct {
	graph bool
	llm   bool
	lake  TableChecker
}

func NewHealthController(graphConnected, llmConfigured bool, tables TableChecker) *HealthController {
	return &HealthController{graph: graphConnected, llm: llmConfigured, lake: tables}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.health).Methods(http.MethodGet)
}

func (c *HealthController) health(w http.ResponseWriter, _ *http.Request) {
	resp := dtos.HealthResponse{Status: "ok", Graph: c.graph, LLM: c.llm}
	if c.lake != nil {
		resp.Tables = make(map[string]bool)
		for _, name := range lake.TableNames() {
			ok := c.lake.Has(name)
			resp.Tables[name] = ok
			resp.Lake = resp.Lake || ok
		}
	}
	if !resp.Graph || !resp.Lake {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}
