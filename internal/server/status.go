package server

import (
	"net/http"

	"gateconsole/internal/dashboard"
	"gateconsole/internal/monitor"
	"gateconsole/pkg/models"
)

type pluginsView struct {
	Groups      []dashboard.ScriptGroup
	Count       int
	StateMemory string
}

func (s *Server) handlePlugins(w http.ResponseWriter, r *http.Request) {
	view := pluginsView{Groups: []dashboard.ScriptGroup{}}
	resp, err := s.client.Plugins(r.Context())
	if err == nil {
		lua := resp.Plugins.Lua
		view.Groups = dashboard.GroupScripts(lua.Scripts)
		view.Count = len(lua.Scripts)
		view.StateMemory = dashboard.StateMemory(lua)
	} else {
		view.StateMemory = dashboard.StateMemory(models.PluginsLua{})
	}
	s.render(w, r, http.StatusOK, "plugins", "Plugins", view, err)
}

type statusView struct {
	Snapshot monitor.Snapshot
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.checkEngine(r.Context())
	s.render(w, r, http.StatusOK, "status", "Engine status", statusView{Snapshot: snap}, snap.Err())
}

func (s *Server) handleStatusRefresh(w http.ResponseWriter, r *http.Request) {
	snap := s.checkEngine(r.Context())
	if !snap.Online {
		redirect(w, r, "/status", "Engine is offline", true)
		return
	}
	redirect(w, r, "/status", "Status refreshed", false)
}
