package elastic

import (
	"CivicLearn/internal/models"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
)

// CourseSearch keeps published course titles and descriptions searchable.
// Drafts are never indexed; unpublishing removes the document.
type CourseSearch struct {
	client *elasticsearch.Client
	index  string
}

func NewCourseSearch(client *elasticsearch.Client, index string) *CourseSearch {
	return &CourseSearch{client: client, index: index}
}

type courseDoc struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func courseMapping() map[string]any {
	textField := map[string]any{
		"type":            "text",
		"analyzer":        "edge_ngram_analyzer",
		"search_analyzer": "standard",
	}
	return map[string]any{
		"settings": map[string]any{
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"edge_ngram_analyzer": map[string]any{
						"tokenizer": "edge_ngram_tokenizer",
						"filter":    []string{"lowercase", "asciifolding"},
					},
				},
				"tokenizer": map[string]any{
					"edge_ngram_tokenizer": map[string]any{
						"type":        "edge_ngram",
						"min_gram":    2,
						"max_gram":    20,
						"token_chars": []string{"letter", "digit"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"title":       textField,
				"description": textField,
				"status":      map[string]any{"type": "keyword"},
			},
		},
	}
}

func (s *CourseSearch) EnsureIndex(ctx context.Context) error {
	existsRes, err := esapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("error checking index existence: %w", err)
	}
	defer existsRes.Body.Close()

	switch {
	case existsRes.StatusCode == http.StatusNotFound:
	case existsRes.StatusCode >= 300:
		return fmt.Errorf("index existence check failed with status code %d", existsRes.StatusCode)
	default:
		return nil
	}

	body, err := json.Marshal(courseMapping())
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	return s.do(ctx, esapi.IndicesCreateRequest{Index: s.index, Body: bytes.NewReader(body)}, "create index")
}

func (s *CourseSearch) Index(ctx context.Context, course models.Course) error {
	data, err := json.Marshal(courseDoc{Title: course.Title, Description: course.Description, Status: course.Status})
	if err != nil {
		return fmt.Errorf("marshal doc: %w", err)
	}
	return s.do(ctx, esapi.IndexRequest{
		Index:      s.index,
		DocumentID: course.ID.String(),
		Refresh:    "true",
		Body:       bytes.NewReader(data),
	}, "index")
}

func (s *CourseSearch) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := esapi.DeleteRequest{Index: s.index, DocumentID: id.String(), Refresh: "true"}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

func searchQuery(query string) map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"must": map[string]any{
				"multi_match": map[string]any{
					"query":                query,
					"fields":               []string{"title^3", "description"},
					"type":                 "best_fields",
					"fuzziness":            "AUTO",
					"operator":             "or",
					"minimum_should_match": "2<75%",
				},
			},
			"filter": map[string]any{
				"term": map[string]any{"status": models.StatusPublished},
			},
		},
	}
}

// Search returns matching course ids by relevance together with the total
// hit count.
func (s *CourseSearch) Search(ctx context.Context, query string, limit, offset int) ([]uuid.UUID, int, error) {
	if limit <= 0 {
		limit = 10
	}
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(map[string]any{
		"query":            searchQuery(query),
		"from":             offset,
		"size":             limit,
		"track_total_hits": true,
		"_source":          false,
	}); err != nil {
		return nil, 0, fmt.Errorf("encode search body: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(buf),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		return nil, 0, fmt.Errorf("search error: %s", string(bodyBytes))
	}

	var esRes struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esRes); err != nil {
		return nil, 0, fmt.Errorf("decode response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(esRes.Hits.Hits))
	for _, h := range esRes.Hits.Hits {
		if id, err := uuid.Parse(h.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, esRes.Hits.Total.Value, nil
}

func (s *CourseSearch) do(ctx context.Context, req esapi.Request, op string) error {
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("%s request: %w", op, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%s error: %s", op, res.String())
	}
	return nil
}
