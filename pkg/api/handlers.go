package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hearth-ai/hearth/pkg/httputil"
	"github.com/hearth-ai/hearth/pkg/runtime"
)

// capabilityView is the wire shape of one registered capability
type capabilityView struct {
	Plugin               string `json:"plugin"`
	Capability           string `json:"capability"`
	FullName             string `json:"full_name"`
	Description          string `json:"description"`
	ConfirmationRequired bool   `json:"confirmation_required"`
}

func (s *Server) listPlugins(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]any{
		"discovered": s.manager.ListDiscovered(),
		"loaded":     s.manager.ListPlugins(),
	})
}

func (s *Server) getPlugin(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	info, ok := s.manager.PluginInfo(name)
	if !ok {
		httputil.WriteNotFound(w, "plugin not found: "+name)
		return
	}
	httputil.WriteSuccess(w, map[string]any{
		"plugin":       info,
		"capabilities": s.capabilityViews(name),
	})
}

func (s *Server) loadPlugin(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.manager.Load(r.Context(), name); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	httputil.WriteSuccess(w, map[string]any{"loaded": name})
}

func (s *Server) unloadPlugin(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := s.manager.Unload(r.Context(), name); err != nil {
		httputil.WriteNotFound(w, err.Error())
		return
	}
	httputil.WriteSuccess(w, map[string]any{"unloaded": name})
}

func (s *Server) listCapabilities(w http.ResponseWriter, r *http.Request) {
	pluginName := httputil.ParseQueryString(r, "plugin", "")
	httputil.WriteSuccess(w, s.capabilityViews(pluginName))
}

func (s *Server) capabilityViews(pluginName string) []capabilityView {
	entries := s.manager.ListCapabilities(pluginName)
	views := make([]capabilityView, 0, len(entries))
	for _, e := range entries {
		views = append(views, capabilityView{
			Plugin:               e.Key.Plugin,
			Capability:           e.Key.Capability,
			FullName:             e.FullName,
			Description:          e.Spec.Description,
			ConfirmationRequired: e.ConfirmationRequired,
		})
	}
	return views
}

func (s *Server) searchCapabilities(w http.ResponseWriter, r *http.Request) {
	query := httputil.ParseQueryString(r, "q", "")
	if query == "" {
		httputil.WriteBadRequest(w, "query parameter q is required")
		return
	}
	limit := httputil.ParseQueryInt(r, "limit", 20)

	entries := s.manager.Search(query, limit)
	views := make([]capabilityView, 0, len(entries))
	for _, e := range entries {
		views = append(views, capabilityView{
			Plugin:               e.Key.Plugin,
			Capability:           e.Key.Capability,
			FullName:             e.FullName,
			Description:          e.Spec.Description,
			ConfirmationRequired: e.ConfirmationRequired,
		})
	}
	httputil.WriteSuccess(w, views)
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, s.manager.ToolSchemas())
}

// executeRequest is the body of POST /api/v1/execute
type executeRequest struct {
	Capability string         `json:"capability"`
	Params     map[string]any `json:"params"`
	Identity   string         `json:"identity,omitempty"`
	Confirmed  bool           `json:"confirmed,omitempty"`
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if req.Capability == "" {
		httputil.WriteBadRequest(w, "capability is required")
		return
	}

	res := s.manager.Execute(r.Context(), req.Capability, req.Params, runtime.ExecContext{
		Identity:  req.Identity,
		Confirmed: req.Confirmed,
	})
	httputil.WriteSuccess(w, res)
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]any{
		"status":  "ok",
		"plugins": len(s.manager.ListPlugins()),
	})
}
