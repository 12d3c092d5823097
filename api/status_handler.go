package api

import (
	"net/http"

	"github.com/seenimoa/stockpulse/internal/config"
)

// StatusResponse is the payload of GET /api/status. Key values are masked.
type StatusResponse struct {
	LLMProvider   string             `json:"llm_provider"`
	LLMModel      string             `json:"llm_model"`
	NewsProvider  string             `json:"news_provider"`
	DefaultTicker string             `json:"default_ticker"`
	Keys          []config.KeyStatus `json:"keys"`
}

// handleStatus reports which providers are configured and whether their
// keys are present.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: StatusResponse{
			LLMProvider:   s.cfg.LLM.Provider,
			LLMModel:      s.cfg.LLM.ResolvedModel(),
			NewsProvider:  s.cfg.News.Provider,
			DefaultTicker: s.cfg.Report.DefaultTicker,
			Keys:          config.CheckAPIKeys(s.cfg),
		},
	})
}
