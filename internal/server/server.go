package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/iwvelando/debt-planner/internal/cache"
	"github.com/iwvelando/debt-planner/internal/config"
	"github.com/iwvelando/debt-planner/internal/planner"
	"github.com/iwvelando/debt-planner/pkg/amortization"
	"github.com/iwvelando/debt-planner/pkg/constants"
	"github.com/iwvelando/debt-planner/pkg/datetime"
	"github.com/iwvelando/debt-planner/pkg/debts"
	"github.com/iwvelando/debt-planner/pkg/output"
	"github.com/iwvelando/debt-planner/pkg/strategy"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Options tune the HTTP handler.
type Options struct {
	MaxUploadSize int64
	Version       string
	// Cache memoizes plan responses. Nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	cache         cache.Cache
	cacheTTL      time.Duration
	now           func() time.Time
}

type planOptions struct {
	Compare      bool `json:"compare"`
	Schedules    bool `json:"schedules"`
	Optimize     bool `json:"optimize"`
	TargetMonths int  `json:"targetMonths,omitempty"`
}

// configKeyOrder is the key order used when writing plans back out as YAML.
var configKeyOrder = []string{
	"startDate", "monthlyPayment", "strategy", "customOrder", "currencySymbol",
	"maxMonths", "debts", "fundings", "logging", "output", "optimizer",
}

// NewHandler constructs the HTTP handler that serves the plan API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	c := opts.Cache
	if c == nil {
		c = cache.Noop{}
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTLSeconds * time.Second
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		cache:         c,
		cacheTTL:      ttl,
		now:           time.Now,
	}

	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))
	router.NotFoundHandler = http.HandlerFunc(h.handleNotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(h.handleMethodNotAllowed)

	api := router.PathPrefix("/api").Subrouter()
	// Plan API endpoint for editor-driven JSON requests
	api.HandleFunc("/plan", h.handlePlan).Methods(http.MethodPost)
	// Plan API endpoint (file upload)
	api.HandleFunc("/plan/upload", h.handlePlanUpload).Methods(http.MethodPost)
	api.HandleFunc("/schedule", h.handleSchedule).Methods(http.MethodPost)
	// Config serialization endpoint for editor downloads
	api.HandleFunc("/config/export", h.handleConfigExport).Methods(http.MethodPost)
	api.HandleFunc("/strategies", h.handleStrategies).Methods(http.MethodGet)
	api.HandleFunc("/version", h.handleVersion).Methods(http.MethodGet)

	return router
}

type planResponse struct {
	Plan       *planner.Plan          `json:"plan"`
	CSV        string                 `json:"csv"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration,omitempty"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

type scheduleRequest struct {
	Debt           debts.Record `json:"debt"`
	MonthlyPayment float64      `json:"monthlyPayment"`
	StartDate      string       `json:"startDate"`
}

type scheduleResponse struct {
	Schedule  amortization.Schedule `json:"schedule"`
	Totals    amortization.Totals   `json:"totals"`
	Truncated bool                  `json:"truncated,omitempty"`
	// EstimatedPrincipal is set for interest-included debts with a solvable term.
	EstimatedPrincipal *float64 `json:"estimatedPrincipal,omitempty"`
}

type strategyInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *handler) handlePlanUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePlanUpload"
	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op)
		return
	}

	opts := planOptions{
		Compare:   coerceBool(r.FormValue("compare")),
		Schedules: coerceBool(r.FormValue("schedules")),
		Optimize:  coerceBool(r.FormValue("optimize")),
	}
	if target, err := strconv.Atoi(strings.TrimSpace(r.FormValue("targetMonths"))); err == nil {
		opts.TargetMonths = target
	}

	h.runPlan(w, r, configBytes, configMap, start, op, opts)
}

func (h *handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePlan"
	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid config payload: expected object", op)
			return
		}
		configPayload = cfgMap
	}

	opts := planOptions{}
	if rawOptions, ok := payload["options"]; ok {
		optsMap, ok := rawOptions.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid options payload: expected object", op)
			return
		}
		opts.Compare = coerceBool(optsMap["compare"])
		opts.Schedules = coerceBool(optsMap["schedules"])
		opts.Optimize = coerceBool(optsMap["optimize"])
		opts.TargetMonths = coerceInt(optsMap["targetMonths"])
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse configuration: %v", err), op)
		return
	}

	h.runPlan(w, r, configBytes, configMap, start, op, opts)
}

func (h *handler) runPlan(w http.ResponseWriter, r *http.Request, configBytes []byte, configMap map[string]interface{}, start time.Time, op string, opts planOptions) {
	now := h.now()
	optsKey, _ := json.Marshal(opts)
	key := cache.Key("plan", configBytes, optsKey, []byte(datetime.FromTime(now).String()))

	if cached, ok, err := h.cache.Get(r.Context(), key); err != nil {
		h.logger.Warn("plan cache read failed",
			zap.String("op", op),
			zap.Error(err),
		)
	} else if ok {
		h.logger.Debug("plan served from cache",
			zap.String("op", op),
			zap.String("key", key),
		)
		w.Header().Set("X-Cache", "HIT")
		h.writeRaw(w, http.StatusOK, h.withDuration(cached, time.Since(start), op))
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	plan, err := planner.Build(h.logger, cfg, planner.Options{
		Compare:      opts.Compare || cfg.Output.Compare,
		Schedules:    opts.Schedules || cfg.Output.Schedules,
		Optimize:     opts.Optimize,
		TargetMonths: opts.TargetMonths,
		Now:          now,
	})
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to compute plan: %v", err), op)
		return
	}

	if configMap == nil {
		configMap = make(map[string]interface{})
	}
	if summary := plan.Optimization; summary != nil && summary.Converged {
		configMap["monthlyPayment"] = summary.Value
		if updatedBytes, err := marshalOrderedConfigYAML(configMap); err == nil {
			configBytes = updatedBytes
		} else {
			h.logger.Warn("failed to marshal optimized configuration",
				zap.String("op", op),
				zap.Error(err),
			)
		}
	}

	// The cached body omits the duration; each response reports its own.
	response := planResponse{
		Plan:       plan,
		CSV:        output.CsvString(plan),
		Warnings:   plan.Warnings,
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	body, err := json.Marshal(response)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode plan: %v", err), op)
		return
	}
	if err := h.cache.Set(r.Context(), key, body, h.cacheTTL); err != nil {
		h.logger.Warn("plan cache write failed",
			zap.String("op", op),
			zap.Error(err),
		)
	}

	elapsed := time.Since(start)
	h.logger.Info("plan computed",
		zap.String("op", op),
		zap.Int("debts", len(plan.Debts)),
		zap.Int("months", len(plan.Timeline.Points)),
		zap.Duration("duration", elapsed),
	)

	w.Header().Set("X-Cache", "MISS")
	h.writeRaw(w, http.StatusOK, h.withDuration(body, elapsed, op))
}

// withDuration sets the duration field of an encoded plan response. The body
// is returned unchanged if it cannot be decoded.
func (h *handler) withDuration(body []byte, elapsed time.Duration, op string) []byte {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		h.logger.Warn("failed to decode plan response",
			zap.String("op", op),
			zap.Error(err),
		)
		return body
	}
	duration, err := json.Marshal(elapsed.String())
	if err != nil {
		return body
	}
	fields["duration"] = duration
	updated, err := json.Marshal(fields)
	if err != nil {
		return body
	}
	return updated
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode schedule request: %v", err), op)
		return
	}

	if strings.TrimSpace(req.Debt.ID) == "" {
		req.Debt.ID = debts.DeriveID(req.Debt.Name, 0)
	}
	d, err := req.Debt.Classify()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	start := datetime.FromTime(h.now())
	if strings.TrimSpace(req.StartDate) != "" {
		start, err = datetime.Parse(req.StartDate)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid start date: %v", err), op)
			return
		}
	}
	if req.MonthlyPayment < 0 {
		h.respondErrorWithOp(w, http.StatusBadRequest, "monthly payment cannot be negative", op)
		return
	}

	schedule, err := amortization.Build(d, req.MonthlyPayment, start)
	truncated := false
	switch {
	case errors.Is(err, amortization.ErrNonPayable):
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	case errors.Is(err, amortization.ErrHorizonExceeded):
		truncated = true
	case err != nil:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	response := scheduleResponse{
		Schedule:  schedule,
		Totals:    schedule.Totals(),
		Truncated: truncated,
	}
	if loan, ok := d.(debts.InterestIncluded); ok {
		if principal, ok := loan.EstimatedPrincipal(); ok {
			response.EstimatedPrincipal = &principal
		}
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleStrategies(w http.ResponseWriter, r *http.Request) {
	all := strategy.All()
	infos := make([]strategyInfo, 0, len(all))
	for _, s := range all {
		infos = append(infos, strategyInfo{ID: s.ID, Name: s.Name, Description: s.Description})
	}
	h.writeJSON(w, http.StatusOK, infos)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleConfigExport"
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), op)
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func (h *handler) handleNotFound(w http.ResponseWriter, r *http.Request) {
	h.respondErrorWithOp(w, http.StatusNotFound, http.StatusText(http.StatusNotFound), "server.handleNotFound")
}

func (h *handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondErrorWithOp(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), "server.handleMethodNotAllowed")
}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range configKeyOrder {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	return yaml.Marshal(orderedConfig{items: items})
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("plan request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *handler) writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func coerceBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case json.Number:
		if parsed, err := strconv.ParseFloat(v.String(), 64); err == nil {
			return parsed != 0
		}
	}
	return false
}

func coerceInt(value interface{}) int {
	switch v := value.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return parsed
		}
	}
	return 0
}
