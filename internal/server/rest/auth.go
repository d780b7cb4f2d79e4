package rest

import (
	"mime"
	"net/http"

	"github.com/dmitrijs2005/carmodpicker/internal/common"
	"github.com/dmitrijs2005/carmodpicker/internal/server/services"
)

// login accepts an OAuth2 password form or a JSON body.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := s.decode(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
	} else {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			s.writeError(w, r, common.WithDetail(common.ErrorValidation, "Invalid request body"))
			return
		}
		req.Username, req.Password = r.PostForm.Get("username"), r.PostForm.Get("password")
		if err := s.check(&req); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	session, err := s.svc.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, session)
}

func (s *Server) startSession(w http.ResponseWriter, session *services.Session) {
	s.cookies.set(w, session.AccessToken, session.ExpiresIn)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: session.AccessToken, TokenType: "bearer"})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.cookies.clear(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logout successful"})
}

func (s *Server) requestEmailVerification(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Auth.RequestEmailVerification(r.Context(), currentUser(r.Context())); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Verification email sent"})
}

func (s *Server) confirmEmailVerification(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		s.writeError(w, r, common.WithDetail(common.ErrorValidation, "token: failed required validation"))
		return
	}

	session, err := s.svc.Auth.ConfirmEmailVerification(r.Context(), token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.startSession(w, session)
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "If an account with that email exists, a password reset link has been sent"})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Auth.ConfirmPasswordReset(r.Context(), req.Token, req.NewPassword); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password has been reset"})
}
