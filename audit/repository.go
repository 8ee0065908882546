// audit/repository.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultIndex = "themis-decisions"

type Repository interface {
	LogDecision(ctx context.Context, log DecisionLog) error
	QueryDecisions(ctx context.Context, q Query) ([]DecisionLog, error)
}

type ElasticsearchRepository struct {
	esClient *elasticsearch.Client
	index    string
}

// NewElasticsearchRepository creates a repository writing to index on the
// cluster at esURL.
func NewElasticsearchRepository(esURL, index string) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if index == "" {
		index = DefaultIndex
	}
	return &ElasticsearchRepository{esClient: esClient, index: index}, nil
}

func (r *ElasticsearchRepository) LogDecision(ctx context.Context, log DecisionLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: log.ID,
		Body:       bytes.NewReader(data),
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing decision: %s", res.String())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source DecisionLog `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r *ElasticsearchRepository) QueryDecisions(ctx context.Context, q Query) ([]DecisionLog, error) {
	body, err := json.Marshal(searchBody(q))
	if err != nil {
		return nil, err
	}

	res, err := r.esClient.Search(
		r.esClient.Search.WithContext(ctx),
		r.esClient.Search.WithIndex(r.index),
		r.esClient.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching decisions: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	logs := make([]DecisionLog, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		logs = append(logs, hit.Source)
	}
	return logs, nil
}

func searchBody(q Query) map[string]any {
	var must []any
	if !q.From.IsZero() || !q.To.IsZero() {
		bounds := map[string]any{}
		if !q.From.IsZero() {
			bounds["gte"] = q.From.Format(time.RFC3339Nano)
		}
		if !q.To.IsZero() {
			bounds["lte"] = q.To.Format(time.RFC3339Nano)
		}
		must = append(must, map[string]any{"range": map[string]any{"timestamp": bounds}})
	}
	if q.PrincipalURI != "" {
		must = append(must, map[string]any{"match_phrase": map[string]any{"principal_uri": q.PrincipalURI}})
	}
	if q.ResourceURI != "" {
		must = append(must, map[string]any{"match_phrase": map[string]any{"resource_uri": q.ResourceURI}})
	}

	query := map[string]any{"match_all": map[string]any{}}
	if len(must) > 0 {
		query = map[string]any{"bool": map[string]any{"must": must}}
	}
	return map[string]any{
		"query": query,
		"size":  q.EffectiveLimit(),
		"sort":  []any{map[string]any{"timestamp": map[string]any{"order": "desc"}}},
	}
}
