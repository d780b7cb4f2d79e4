package rest

import "net/http"

func (s *Server) createCar(w http.ResponseWriter, r *http.Request) {
	var req carCreateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	car, err := s.svc.Cars.Create(r.Context(), currentUser(r.Context()), req.model())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCarResponse(car))
}

func (s *Server) getCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	car, err := s.svc.Cars.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCarResponse(car))
}

func (s *Server) listCars(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "user_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	cars, err := s.svc.Cars.ListByUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(cars, newCarResponse))
}

func (s *Server) updateCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req carUpdateRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	car, err := s.svc.Cars.Update(r.Context(), currentUser(r.Context()), id, req.update())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCarResponse(car))
}

func (s *Server) deleteCar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	car, err := s.svc.Cars.Delete(r.Context(), currentUser(r.Context()), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCarResponse(car))
}

func (s *Server) presignCarImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req imageUploadRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	up, err := s.svc.Images.PresignCarImage(r.Context(), currentUser(r.Context()), id, req.ContentType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, imageUploadResponse{
		UploadURL: up.UploadURL,
		ImageURL:  up.ImageURL,
		Key:       up.Key,
		ExpiresAt: up.ExpiresAt,
	})
}

func (s *Server) confirmCarImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req imageConfirmRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	car, err := s.svc.Images.ConfirmCarImage(r.Context(), currentUser(r.Context()), id, req.Key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCarResponse(car))
}
