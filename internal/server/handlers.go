package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Tyrowin/oxidechat/internal/auth"
	"github.com/Tyrowin/oxidechat/internal/chat"
	"github.com/Tyrowin/oxidechat/internal/domain"
	"github.com/Tyrowin/oxidechat/internal/user"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

const maxBodySize = 1 << 20

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signupRequest struct {
	credentialsRequest
	CaptchaID     uuid.UUID `json:"captcha_id"`
	CaptchaAnswer string    `json:"captcha_answer"`
}

type signupResponse struct {
	UserID domain.UserID `json:"user_id"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type healthResponse struct {
	Status string `json:"status"`
	Online int    `json:"online"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errMissingBearer
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingBearer
	}
	return token, nil
}

// authenticate resolves the caller of r through the auth backend.
func (s *Server) authenticate(r *http.Request) (domain.UserID, error) {
	token, err := bearerToken(r)
	if err != nil {
		return domain.UserID{}, err
	}
	return s.backends.Auth.VerifyToken(r.Context(), token)
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "oxidechat server is running!")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Online: s.hub.Online()}, s.log)
}

func (s *Server) handleCaptcha(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	challenge, err := s.backends.Captcha.Generate(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge, s.log)
}

// handleSignup checks the captcha before anything else, so that a wrong
// answer never reaches the account backend.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req signupRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.backends.Captcha.Validate(r.Context(), req.CaptchaID, req.CaptchaAnswer); err != nil {
		s.writeError(w, err)
		return
	}

	id, err := s.backends.Auth.Signup(r.Context(), auth.SignupInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, signupResponse{UserID: id}, s.log)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req credentialsRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	result, err := s.backends.Auth.Login(r.Context(), auth.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("User logged in", "user_id", result.UserID.String())
	writeJSON(w, http.StatusOK, result.Tokens, s.log)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req refreshRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	tokens, err := s.backends.Auth.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens, s.log)
}

func (s *Server) handleJoinConversation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.changeMembership(w, r, ps, (*user.MembershipService).Join)
}

func (s *Server) handleLeaveConversation(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.changeMembership(w, r, ps, (*user.MembershipService).Leave)
}

type membershipChange func(svc *user.MembershipService, ctx context.Context, conversation domain.ConversationID, caller domain.UserID) error

// changeMembership applies change to the caller and the conversation named in
// the path.
func (s *Server) changeMembership(w http.ResponseWriter, r *http.Request, ps httprouter.Params, change membershipChange) {
	caller, err := s.authenticate(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.backends.Memberships == nil {
		s.writeError(w, errMembershipDisabled)
		return
	}

	conversation, err := domain.ParseConversationID(ps.ByName("id"))
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	if err := change(s.backends.Memberships, r.Context(), conversation, caller); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleChat authenticates the caller and only then upgrades the request, so
// a rejected caller never touches the hub.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, err := s.authenticate(r)
	if err != nil {
		s.log.Info("Rejected chat connection", "remote_addr", r.RemoteAddr, "error", err)
		s.writeError(w, err)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "user_id", id.String(), "error", err)
		return
	}

	log := s.log.With("user_id", id.String(), "remote_addr", r.RemoteAddr)
	conn := chat.NewWebSocketConn(ws, s.maxMessageSize, log)
	if _, err := s.hub.Join(conn, id); err != nil {
		if !errors.Is(err, chat.ErrHubClosed) {
			log.Error("Admitting connection failed", "error", err)
		}
		_ = conn.Close()
	}
}
