// Copyright 2020 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/google/uuid"
	"github.com/gorse-io/slopeone/base/log"
	"github.com/gorse-io/slopeone/config"
	"github.com/gorse-io/slopeone/dataset"
	"github.com/gorse-io/slopeone/model/slopeone"
	"github.com/jellydator/ttlcache/v3"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
	"go.uber.org/zap"
)

const (
	apiDocsPath  = "/apidocs.json"
	requestIdKey = "X-Request-Id"
)

// RestServer implements a REST-ful API server.
type RestServer struct {
	*config.Settings

	HttpHost   string
	HttpPort   int
	WebService *restful.WebService
	HttpServer *http.Server

	cache *ttlcache.Cache[recommendKey, []slopeone.Score]
}

// recommendKey includes the scorer so that results computed by a replaced model are never served.
type recommendKey struct {
	Scorer *slopeone.Scorer
	UserId int64
	N      int
}

// Prediction is the predicted rating of a user to an item.
type Prediction struct {
	UserId int64
	ItemId int64
	Rating float64
}

// Deviation describes an item pair of the model. Deviation is null if nobody rated both items.
type Deviation struct {
	Corating  int
	Deviation *float64
}

type HealthStatus struct {
	Ready      bool
	NumUsers   int
	NumItems   int
	NumRatings int
	NumPairs   int
}

func NewRestServer(settings *config.Settings) *RestServer {
	cfg := settings.Config.Server
	return &RestServer{
		Settings:   settings,
		HttpHost:   cfg.Host,
		HttpPort:   cfg.Port,
		WebService: new(restful.WebService),
		cache: ttlcache.New[recommendKey, []slopeone.Score](
			ttlcache.WithTTL[recommendKey, []slopeone.Score](cfg.CacheExpire),
			ttlcache.WithCapacity[recommendKey, []slopeone.Score](cfg.CacheSize),
			ttlcache.WithDisableTouchOnHit[recommendKey, []slopeone.Score](),
		),
	}
}

// SetModel replaces the serving model and drops cached recommendations.
func (s *RestServer) SetModel(snapshot *dataset.Dataset, model *slopeone.Model) {
	s.Settings.SetModel(snapshot, model)
	s.cache.DeleteAll()
}

// Handler returns the REST APIs, metrics and API documents.
func (s *RestServer) Handler() http.Handler {
	s.CreateWebService()
	container := restful.NewContainer()
	container.Add(s.WebService)
	// register openapi
	specConfig := restfulspec.Config{
		WebServices:                   []*restful.WebService{s.WebService},
		APIPath:                       apiDocsPath,
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}
	container.Add(restfulspec.NewOpenAPIService(specConfig))
	container.Handle("/apidocs/", v5emb.New("Slope One", apiDocsPath, "/apidocs/"))
	// register prometheus
	container.Handle("/metrics", promhttp.Handler())
	return container
}

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Slope One",
			Description: "Rating predictions and recommendations by Slope One.",
		},
	}
}

// StartHttpServer starts the REST-ful API server. It returns when the server is shut down.
func (s *RestServer) StartHttpServer() error {
	go s.cache.Start()
	defer s.cache.Stop()
	s.HttpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.HttpHost, s.HttpPort),
		Handler: s.Handler(),
	}
	log.Logger().Info("start http server",
		zap.String("url", fmt.Sprintf("http://%s:%d", s.HttpHost, s.HttpPort)))
	if err := s.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Trace(err)
	}
	return nil
}

func (s *RestServer) Shutdown(ctx context.Context) error {
	if s.HttpServer == nil {
		return nil
	}
	return errors.Trace(s.HttpServer.Shutdown(ctx))
}

func LogFilter(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	requestId := req.HeaderParameter(requestIdKey)
	if requestId == "" {
		requestId = uuid.NewString()
	}
	resp.Header().Set(requestIdKey, requestId)
	start := time.Now()
	chain.ProcessFilter(req, resp)
	if req.Request.URL.Path != "/api/health" {
		log.Logger().Info(fmt.Sprintf("%s %s", req.Request.Method, req.Request.URL),
			zap.String("request_id", requestId),
			zap.Int("status_code", resp.StatusCode()),
			zap.Duration("elapsed", time.Since(start)))
	}
}

// CreateWebService creates web service.
func (s *RestServer) CreateWebService() {
	ws := s.WebService
	ws.Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)
	ws.Path("/api/")
	ws.Filter(LogFilter)

	ws.Route(ws.GET("/health").To(s.getHealth).
		Doc("Get the status of the server.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
		Writes(HealthStatus{}))
	// Predict a rating
	ws.Route(ws.GET("/predict/{user-id}/{item-id}").To(s.getPrediction).
		Doc("Predict the rating of a user to an item.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("integer")).
		Param(ws.PathParameter("item-id", "identifier of the item").DataType("integer")).
		Writes(Prediction{}))
	// Get recommendation
	ws.Route(ws.GET("/recommend/{user-id}").To(s.getRecommend).
		Doc("Get unrated items with the highest predicted ratings for a user.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"recommendation"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("user-id", "identifier of the user").DataType("integer")).
		Param(ws.QueryParameter("n", "number of returned items").DataType("integer")).
		Writes([]slopeone.Score{}))
	// Get a deviation
	ws.Route(ws.GET("/deviation/{item-1}/{item-2}").To(s.getDeviation).
		Doc("Get the co-rating count and the average rating difference of two items.").
		Metadata(restfulspec.KeyOpenAPITags, []string{"model"}).
		Param(ws.HeaderParameter("X-API-Key", "secret key for RESTful API")).
		Param(ws.PathParameter("item-1", "identifier of the first item").DataType("integer")).
		Param(ws.PathParameter("item-2", "identifier of the second item").DataType("integer")).
		Writes(Deviation{}))
}

// ParseInt parses an integer query parameter. A missing parameter yields the fallback.
func ParseInt(request *restful.Request, name string, fallback int) (value int, err error) {
	valueString := request.QueryParameter(name)
	value, err = strconv.Atoi(valueString)
	if err != nil && valueString == "" {
		value = fallback
		err = nil
	}
	return
}

// parseId parses an integer path parameter.
func parseId(request *restful.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(request.PathParameter(name), 10, 64)
	if err != nil {
		return 0, errors.NewNotValid(err, name)
	}
	return id, nil
}

func (s *RestServer) getHealth(_ *restful.Request, response *restful.Response) {
	snapshot, scorer := s.Model()
	status := HealthStatus{Ready: scorer != nil}
	if status.Ready {
		status.NumUsers = snapshot.CountUsers()
		status.NumItems = snapshot.CountItems()
		status.NumRatings = snapshot.CountRatings()
		status.NumPairs = scorer.Model().CountPairs()
	}
	Ok(response, status)
}

func (s *RestServer) getPrediction(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	userId, err := parseId(request, "user-id")
	if err != nil {
		BadRequest(response, err)
		return
	}
	itemId, err := parseId(request, "item-id")
	if err != nil {
		BadRequest(response, err)
		return
	}
	_, scorer := s.Model()
	if scorer == nil {
		ServiceUnavailable(response, errors.NotProvisionedf("model"))
		return
	}
	start := time.Now()
	rating := scorer.Predict(userId, itemId)
	PredictSeconds.Observe(time.Since(start).Seconds())
	Ok(response, Prediction{UserId: userId, ItemId: itemId, Rating: rating})
}

// Recommend returns the top n unrated items of a user. Results are cached until the model is
// replaced or the cache entry expires.
func (s *RestServer) Recommend(userId int64, n int) ([]slopeone.Score, error) {
	snapshot, scorer := s.Model()
	if scorer == nil {
		return nil, errors.NotProvisionedf("model")
	}
	key := recommendKey{Scorer: scorer, UserId: userId, N: n}
	if item := s.cache.Get(key); item != nil {
		RecommendCacheHitsTotal.Inc()
		return item.Value(), nil
	}
	start := time.Now()
	scores := scorer.Recommend(userId, snapshot.ItemIds(), n)
	RecommendSeconds.Observe(time.Since(start).Seconds())
	s.cache.Set(key, scores, ttlcache.DefaultTTL)
	return scores, nil
}

func (s *RestServer) getRecommend(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	userId, err := parseId(request, "user-id")
	if err != nil {
		BadRequest(response, err)
		return
	}
	n, err := ParseInt(request, "n", s.Config.Server.DefaultN)
	if err != nil {
		BadRequest(response, err)
		return
	}
	if n < 0 {
		BadRequest(response, errors.NotValidf("n = %d", n))
		return
	}
	scores, err := s.Recommend(userId, n)
	if errors.Is(err, errors.NotProvisioned) {
		ServiceUnavailable(response, err)
		return
	} else if err != nil {
		InternalServerError(response, err)
		return
	}
	Ok(response, scores)
}

func (s *RestServer) getDeviation(request *restful.Request, response *restful.Response) {
	if !s.auth(request, response) {
		return
	}
	item1, err := parseId(request, "item-1")
	if err != nil {
		BadRequest(response, err)
		return
	}
	item2, err := parseId(request, "item-2")
	if err != nil {
		BadRequest(response, err)
		return
	}
	_, scorer := s.Model()
	if scorer == nil {
		ServiceUnavailable(response, errors.NotProvisionedf("model"))
		return
	}
	model := scorer.Model()
	result := Deviation{Corating: model.Corating(item1, item2)}
	if deviation, ok := model.Deviation(item1, item2); ok {
		result.Deviation = &deviation
	}
	Ok(response, result)
}

// BadRequest returns a bad request error.
func BadRequest(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.Logger().Error("bad request", zap.Error(err))
	if err = response.WriteError(http.StatusBadRequest, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// InternalServerError returns a internal server error.
func InternalServerError(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	log.Logger().Error("internal server error", zap.Error(err))
	if err = response.WriteError(http.StatusInternalServerError, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// ServiceUnavailable returns an error when no model is loaded yet.
func ServiceUnavailable(response *restful.Response, err error) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err = response.WriteError(http.StatusServiceUnavailable, err); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
}

// Ok sends the content as JSON to the client.
func Ok(response *restful.Response, content any) {
	response.Header().Set("Access-Control-Allow-Origin", "*")
	if err := response.WriteAsJson(content); err != nil {
		log.Logger().Error("failed to write json", zap.Error(err))
	}
}

func (s *RestServer) auth(request *restful.Request, response *restful.Response) bool {
	if s.Config.Server.APIKey == "" {
		return true
	}
	apikey := request.HeaderParameter("X-API-Key")
	if apikey == s.Config.Server.APIKey {
		return true
	}
	log.Logger().Error("unauthorized", zap.String("X-API-Key", apikey))
	if err := response.WriteError(http.StatusUnauthorized, fmt.Errorf("unauthorized")); err != nil {
		log.Logger().Error("failed to write error", zap.Error(err))
	}
	return false
}
