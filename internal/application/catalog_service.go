package application

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/easypayhq/easypay/internal/domain/entity"
	repo "github.com/easypayhq/easypay/internal/domain/repository"
)

// ErrItemNotFound is returned when the item does not exist or belongs to
// another seller; the two cases are indistinguishable to the caller.
var ErrItemNotFound = errors.New("catalog item not found")

// CatalogService manages a seller's product listings. Search indexing is
// best-effort; Postgres stays the source of truth.
type CatalogService struct {
	Repo    repo.CatalogRepository
	Logger  *logrus.Logger
	ES      *elasticsearch.Client
	ESIndex string
}

func NewCatalogService(r repo.CatalogRepository, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *CatalogService {
	return &CatalogService{Repo: r, Logger: logger, ES: es, ESIndex: esIndex}
}

type AddItemInput struct {
	Name     string
	Price    float64
	Currency string
	ImageURL string
}

// AddItem inserts the listing and returns the owner's full catalog re-read
// from the database, newest first.
func (s *CatalogService) AddItem(ctx context.Context, owner string, in AddItemInput) ([]entity.CatalogItem, error) {
	item := &entity.CatalogItem{
		OwnerUsername: owner,
		Name:          in.Name,
		Price:         in.Price,
		Currency:      strings.ToLower(in.Currency),
		ImageURL:      in.ImageURL,
	}
	if err := s.Repo.Insert(ctx, item); err != nil {
		return nil, err
	}
	s.indexItem(ctx, item)
	return s.Repo.ListByOwner(ctx, owner)
}

// List returns the owner's catalog, newest first.
func (s *CatalogService) List(ctx context.Context, owner string) ([]entity.CatalogItem, error) {
	return s.Repo.ListByOwner(ctx, owner)
}

// DeleteItem removes the listing only when it belongs to owner. A miss (no
// such id, or someone else's item) is not an error: it reports deleted=false
// alongside the owner's unchanged catalog.
func (s *CatalogService) DeleteItem(ctx context.Context, owner string, id int64) ([]entity.CatalogItem, bool, error) {
	deleted, err := s.Repo.Delete(ctx, id, owner)
	if err != nil {
		return nil, false, err
	}
	if deleted {
		s.removeFromIndex(ctx, id)
	}
	items, err := s.Repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, deleted, err
	}
	return items, deleted, nil
}

func (s *CatalogService) indexItem(ctx context.Context, item *entity.CatalogItem) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         item.ID,
		"owner":      item.OwnerUsername,
		"name":       item.Name,
		"price":      item.Price,
		"currency":   item.Currency,
		"image_url":  item.ImageURL,
		"created_at": item.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{
		Index:      s.ESIndex,
		DocumentID: strconv.FormatInt(item.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("item_id", item.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("item_id", item.ID).Warn("es index response error")
	}
}

func (s *CatalogService) removeFromIndex(ctx context.Context, id int64) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("item_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

// Search runs a multi_match query over listing names and owners.
func (s *CatalogService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "owner"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
