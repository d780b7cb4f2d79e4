package rest

import "net/http"

func (s *Server) createBuildList(w http.ResponseWriter, r *http.Request) {
	var req buildListCreateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	bl, err := s.svc.BuildLists.Create(r.Context(), currentUser(r.Context()), req.model())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBuildListResponse(bl))
}

func (s *Server) getBuildList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	bl, err := s.svc.BuildLists.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBuildListResponse(bl))
}

func (s *Server) listBuildLists(w http.ResponseWriter, r *http.Request) {
	carID, err := pathID(r, "car_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	lists, err := s.svc.BuildLists.ListByCar(r.Context(), carID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(lists, newBuildListResponse))
}

func (s *Server) updateBuildList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req buildListUpdateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	bl, err := s.svc.BuildLists.Update(r.Context(), currentUser(r.Context()), id, req.update())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBuildListResponse(bl))
}

func (s *Server) deleteBuildList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	bl, err := s.svc.BuildLists.Delete(r.Context(), currentUser(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBuildListResponse(bl))
}
