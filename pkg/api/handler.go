package api

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/rs/zerolog"

	"github.com/plantops/assetgraph/pkg/catalog"
	"github.com/plantops/assetgraph/pkg/metrics"
)

// graphqlRequest is the transport envelope for queries and mutations.
type graphqlRequest struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// graphqlHandler executes GraphQL requests. POST carries a JSON body; GET
// accepts the query in the URL for ad-hoc use.
func (s *Server) graphqlHandler(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest

	switch r.Method {
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	case http.MethodGet:
		req.Query = r.URL.Query().Get("query")
		req.OperationName = r.URL.Query().Get("operationName")
		if raw := r.URL.Query().Get("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				http.Error(w, "Invalid variables", http.StatusBadRequest)
				return
			}
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if req.Query == "" {
		http.Error(w, "Missing query", http.StatusBadRequest)
		return
	}

	// Each request gets its own loader so children lookups within one
	// operation are batched and memoized without crossing requests.
	ctx := catalog.WithLoader(r.Context(), catalog.NewLoader(s.resolver))

	operation := req.OperationName
	if operation == "" {
		operation = "unnamed"
	}

	timer := metrics.NewTimer()
	result := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		OperationName:  req.OperationName,
		VariableValues: req.Variables,
		Context:        ctx,
	})
	timer.ObserveDurationVec(metrics.GraphQLRequestDuration, operation)

	status := "ok"
	if len(result.Errors) > 0 {
		status = "error"
		logger := zerolog.Ctx(ctx)
		for _, gqlErr := range result.Errors {
			logger.Error().Str("operation", operation).Msg(gqlErr.Message)
		}
	}
	metrics.GraphQLRequestsTotal.WithLabelValues(operation, status).Inc()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}
