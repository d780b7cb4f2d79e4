package rest

import "net/http"

func (s *Server) createPart(w http.ResponseWriter, r *http.Request) {
	var req partCreateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.svc.Parts.Create(r.Context(), currentUser(r.Context()), req.model())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPartResponse(p))
}

func (s *Server) getPart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.svc.Parts.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPartResponse(p))
}

func (s *Server) listParts(w http.ResponseWriter, r *http.Request) {
	blID, err := pathID(r, "build_list_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	parts, err := s.svc.Parts.ListByBuildList(r.Context(), blID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(parts, newPartResponse))
}

func (s *Server) updatePart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req partUpdateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.svc.Parts.Update(r.Context(), currentUser(r.Context()), id, req.update())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPartResponse(p))
}

func (s *Server) deletePart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.svc.Parts.Delete(r.Context(), currentUser(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPartResponse(p))
}
