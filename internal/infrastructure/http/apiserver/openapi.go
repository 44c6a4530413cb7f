// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"embed"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPISpec embed.FS

// OpenAPIHandler serves the API description in YAML and JSON
type OpenAPIHandler struct {
	logger   *zap.Logger
	specYAML []byte
	specJSON []byte
}

// NewOpenAPIHandler loads the embedded document and renders its JSON form once
func NewOpenAPIHandler(logger *zap.Logger) (*OpenAPIHandler, error) {
	specData, err := openAPISpec.ReadFile("openapi.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read OpenAPI spec: %w", err)
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(specData, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}
	specJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render OpenAPI spec: %w", err)
	}

	return &OpenAPIHandler{
		logger:   logger,
		specYAML: specData,
		specJSON: specJSON,
	}, nil
}

// ServeOpenAPISpec serves the OpenAPI specification in YAML format
func (h *OpenAPIHandler) ServeOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(h.specYAML)
}

// ServeOpenAPIJSON serves the OpenAPI specification in JSON format
func (h *OpenAPIHandler) ServeOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(h.specJSON)
}
