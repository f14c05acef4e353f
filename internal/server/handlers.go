package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
	"waterme/internal/bot"
	"waterme/internal/model"
)

func (s Server) writeJsonResponse(w http.ResponseWriter, response any, statusCode int) {
	if resp, err := json.Marshal(response); err != nil {
		s.Logger.Errorf("Error encoding response: %+v, err: %v", response, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	} else {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(statusCode)
		if _, err = w.Write(resp); err != nil {
			s.Logger.Errorf("Error writing JSON response: %s, err: %v", resp, err)
		}
	}
}

func (s Server) healthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.DB.Client().Ping(r.Context(), nil); err != nil {
			s.Logger.Errorf("healthz: DB ping failed, err: %v", err)
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		s.writeJsonResponse(w, map[string]bool{"ok": true}, http.StatusOK)
	}
}

func (s Server) adminLogin() http.HandlerFunc {
	type request struct {
		Password string `json:"password"`
	}
	type response struct {
		Token string `json:"token"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		req := request{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.Logger.Debugf("adminLogin: Error decoding JSON, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(s.AdminPasswordHash), []byte(req.Password)); err != nil {
			s.Logger.Debugf("adminLogin: Wrong password, err: %v", err)
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}

		token, err := s.createToken()
		if err != nil {
			s.Logger.Errorf("adminLogin: Error creating token, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{Token: token}, http.StatusOK)
	}
}

func (s Server) createToken() (string, error) {
	token, err := jwt.NewBuilder().
		Issuer("waterme").
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(12 * time.Hour)).
		Build()
	if err != nil {
		return "", errors.Wrap(err, "error building JWT")
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.AuthSecretKey))
	if err != nil {
		return "", errors.Wrap(err, "error signing JWT")
	}
	return string(signed), nil
}

func (s Server) controllersList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cs, err := s.DB.ControllersFindAll(r.Context())
		if err != nil {
			s.Logger.Errorf("controllersList: Error getting Controllers, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if cs == nil {
			cs = []model.Controller{}
		}
		s.writeJsonResponse(w, cs, http.StatusOK)
	}
}

func (s Server) controllerHistory() http.HandlerFunc {
	type response struct {
		MacAddress string          `json:"mac_address"`
		Sensor     string          `json:"sensor"`
		Readings   []model.Reading `json:"readings"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		mac := mux.Vars(r)["mac"]
		sensorSubstr := r.URL.Query().Get("sensor")
		// Unparseable or missing counts stay zero: an empty result, not an error.
		count, _ := strconv.Atoi(r.URL.Query().Get("count"))

		c, err := s.DB.ControllerFindByMac(r.Context(), mac)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
				return
			}
			s.Logger.Errorf("controllerHistory: Error finding Controller with MAC: %s, err: %v", mac, err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		readings := bot.SensorHistory(c, sensorSubstr, count)
		if readings == nil {
			readings = []model.Reading{}
		}
		s.writeJsonResponse(w, response{
			MacAddress: c.MacAddress,
			Sensor:     sensorSubstr,
			Readings:   readings,
		}, http.StatusOK)
	}
}

func (s Server) evaluateNow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The pass outlives the request; same semantics as the scheduled one.
		go s.Bot.EvaluateAndNotify(context.Background())
		s.writeJsonResponse(w, map[string]bool{"started": true}, http.StatusAccepted)
	}
}
