package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/chatbook/chatbook-backend/api"
	"github.com/chatbook/chatbook-backend/db"
	"github.com/chatbook/chatbook-backend/db/model"
	"github.com/chatbook/chatbook-backend/middleware"
)

type Handlers struct {
	logger *logrus.Logger
}

func NewHandlers(logger *logrus.Logger) *Handlers {
	return &Handlers{logger: logger}
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		Username    string `json:"username"`
		Displayname string `json:"displayname"`
		Password    string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "bad_request", "invalid input")
		return
	}
	if body.Email == "" || body.Username == "" || body.Password == "" {
		api.WriteError(w, http.StatusBadRequest, "bad_request", "email, username and password are required")
		return
	}
	addr, err := mail.ParseAddress(body.Email)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "bad_request", "invalid email")
		return
	}
	body.Email = addr.Address

	exists, err := isUserExist(r.Context(), body.Email, body.Username)
	if err != nil {
		h.logger.WithError(err).Error("check existing user")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if exists {
		api.WriteError(w, http.StatusConflict, "conflict", "email / username exists")
		return
	}
	passBytes, err := bcrypt.GenerateFromPassword([]byte(body.Password), 14)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	user := &model.User{
		Email:       body.Email,
		Username:    body.Username,
		Displayname: body.Displayname,
		Pass:        string(passBytes),
	}
	if err := db.GetDB(r.Context()).Create(user).Error; err != nil {
		h.logger.WithError(err).Error("create user")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	api.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handlers) signin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, http.StatusBadRequest, "bad_request", "invalid input")
		return
	}
	if body.Email == "" || body.Password == "" {
		api.WriteError(w, http.StatusBadRequest, "bad_request", "email and password are required")
		return
	}

	c := r.Context()
	u, err := getUserFromEmail(c, body.Email)
	if err != nil {
		h.logger.WithError(err).Error("load user")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if u == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Pass), []byte(body.Password)) != nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	ip, _ := c.Value("deviceIP").(string)
	pushToken, _ := c.Value("expoPushToken").(string)
	s := &model.Session{}
	if err := db.GetDB(c).Where(&model.Session{UserID: u.ID, IP: ip}).First(s).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			h.logger.WithError(err).Error("load session")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if s, err = insertSession(c, u.ID, ip, pushToken); err != nil {
			h.logger.WithError(err).Error("insert session")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}

	accessToken, err := genAccessToken(ip, strconv.FormatUint(uint64(u.ID), 10))
	if err != nil {
		h.logger.WithError(err).Error("sign token")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    accessToken,
		Expires:  time.Now().Add(24 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	api.WriteJSON(w, http.StatusOK, struct {
		AccessToken string   `json:"access_token"`
		User        *OutUser `json:"user"`
	}{
		AccessToken: accessToken,
		User:        NewOutUser(u),
	})
}

func (h *Handlers) signout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "accessToken",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) user(w http.ResponseWriter, r *http.Request) {
	u := r.Context().Value("user").(*model.User)
	api.WriteJSON(w, http.StatusOK, NewOutUser(u))
}

func (h *Handlers) SetupRoutes(r *chi.Mux) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.With(middleware.WithExpoPushToken).Post("/signin", h.signin)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticator(h.logger))
			r.With(middleware.NoCache).Get("/user", h.user)
			r.Post("/signout", h.signout)
		})
	})
}

func isUserExist(ctx context.Context, email, un string) (bool, error) {
	var exists bool
	err := db.GetDB(ctx).
		Raw("SELECT EXISTS(SELECT 1 FROM users WHERE email = ? OR username = ?)", email, un).
		Scan(&exists).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil
	}
	return exists, err
}

func getUserFromEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	if err := db.GetDB(ctx).First(u, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func insertSession(ctx context.Context, userID uint, ip, pushToken string) (*model.Session, error) {
	s := &model.Session{
		UserID:        userID,
		IP:            ip,
		ExpoPushToken: pushToken,
	}
	if err := db.GetDB(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}
