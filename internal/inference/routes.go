package inference

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/drakos74/geotextile/internal/model"
	"github.com/drakos74/geotextile/internal/server"
)

// Welcome is the body of the welcome route.
type Welcome struct {
	Message string `json:"message"`
}

// Routes exposes the service over http.
func Routes(s *Service, debug bool) []server.Route {
	return []server.Route{
		{
			Path:   "predict",
			Method: server.POST,
			Exec:   predict(s, debug),
		},
		{
			Path:   "welcome",
			Method: server.GET,
			Exec:   welcome,
		},
	}
}

func welcome(r *http.Request) ([]byte, int, error) {
	b, err := json.Marshal(Welcome{Message: "Welcome to the Geotextile Predictor API!"})
	if err != nil {
		return nil, http.StatusInternalServerError, err
	}
	return b, http.StatusOK, nil
}

func predict(s *Service, debug bool) server.Handler {
	return func(r *http.Request) ([]byte, int, error) {
		var req model.Request
		if err := server.JsonRead(r, debug, &req); err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("could not decode request: %v: %w", err, model.ValidationErr)
		}
		prediction, err := s.Predict(req)
		if err != nil {
			if errors.Is(err, model.ValidationErr) {
				return nil, http.StatusBadRequest, err
			}
			return nil, http.StatusInternalServerError, err
		}
		b, err := json.Marshal(prediction)
		if err != nil {
			return nil, http.StatusInternalServerError, err
		}
		return b, http.StatusOK, nil
	}
}
