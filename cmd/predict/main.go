package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/drakos74/geotextile/internal/app"
	"github.com/drakos74/geotextile/internal/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

func main() {
	features := flag.String("features", "", "comma separated list of the 9 material properties")
	clusters := flag.String("clusters", "", "comma separated list of column=symbol pairs")
	flag.Parse()

	req, err := request(*features, *clusters)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := app.LoadService()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}
	service, err := cfg.NewService()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load model")
	}

	prediction, err := service.Predict(req)
	if err != nil {
		log.Fatal().Err(err).Msg("could not predict")
	}
	fmt.Printf("Predicted Geotextile Type: %s\n", prediction.Type)
	fmt.Printf("Confidence: %.2f%%\n", prediction.Confidence)
	fmt.Println(prediction.Description)
}

func request(features, clusters string) (model.Request, error) {
	var req model.Request
	if features != "" {
		for _, f := range strings.Split(features, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return req, fmt.Errorf("invalid feature '%s': %w", f, err)
			}
			req.Features = append(req.Features, v)
		}
	}
	if clusters != "" {
		req.Clusters = make(map[string]string)
		for _, pair := range strings.Split(clusters, ",") {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				return req, fmt.Errorf("invalid cluster '%s'", pair)
			}
			req.Clusters[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
	if req.Features == nil && req.Clusters == nil {
		return req, fmt.Errorf("either -features or -clusters is required")
	}
	return req, nil
}
