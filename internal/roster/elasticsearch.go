package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"delegation-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultProviderIndex = "providers"

type ElasticsearchSource struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSource(client *elasticsearch.Client, index string) *ElasticsearchSource {
	if index == "" {
		index = DefaultProviderIndex
	}
	return &ElasticsearchSource{client: client, index: index}
}

type providerDocument struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Experience    string     `json:"experience_level"`
	Specialties   []string   `json:"specialties"`
	QualityRating float64    `json:"quality_rating"`
	TotalJobs     int        `json:"total_jobs"`
	CompletedJobs int        `json:"completed_jobs"`
	Availability  string     `json:"availability"`
	LastActiveAt  *time.Time `json:"last_active_at"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source providerDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// buildQuery filters on approval and score; the legal area only boosts relevance so the limit keeps specialists.
func buildQuery(f Filter) map[string]interface{} {
	boolQuery := map[string]interface{}{
		"filter": []interface{}{
			map[string]interface{}{"term": map[string]interface{}{"status": "approved"}},
			map[string]interface{}{"range": map[string]interface{}{
				"evaluation_score": map[string]interface{}{"gte": f.MinEvaluationScore},
			}},
		},
	}
	if area := strings.TrimSpace(f.LegalArea); area != "" {
		boolQuery["should"] = []interface{}{
			map[string]interface{}{"term": map[string]interface{}{
				"specialties": map[string]interface{}{"value": strings.ToLower(area), "boost": 2.0},
			}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"id": "asc"},
		},
	}
}

func (s *ElasticsearchSource) ListCandidates(ctx context.Context, f Filter) ([]models.Candidate, error) {
	body, err := json.Marshal(buildQuery(f))
	if err != nil {
		return nil, fmt.Errorf("%w: encode query: %v", ErrRosterQueryFailed, err)
	}

	size := f.limit()
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, wrapQueryError(ctx, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search error: %s", ErrRosterQueryFailed, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrRosterQueryFailed, err)
	}

	candidates := make([]models.Candidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		candidates = append(candidates, hit.Source.toCandidate())
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ID < candidates[j].ID
	})

	return candidates, nil
}

func (d providerDocument) toCandidate() models.Candidate {
	availability := models.AvailabilityTier(d.Availability)
	if availability == "" {
		availability = models.AvailabilityUnspecified
	}
	return models.Candidate{
		ID:            d.ID,
		Name:          d.Name,
		Experience:    models.ExperienceLevel(d.Experience),
		Specialties:   d.Specialties,
		QualityRating: d.QualityRating,
		TotalJobs:     d.TotalJobs,
		CompletedJobs: d.CompletedJobs,
		Availability:  availability,
		LastActive:    d.LastActiveAt,
	}
}
