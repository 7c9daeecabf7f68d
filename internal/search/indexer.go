// Package search indexes labeled publications into Elasticsearch for the
// dashboard's faceted views. Indexing is downstream of classification and
// best-effort: a failed index call never changes a classification result.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/pubdash/classifier/internal/config"
	"github.com/pubdash/classifier/internal/domain"
	"github.com/pubdash/classifier/internal/logging"
)

// NewClient builds an Elasticsearch client from config.
func NewClient(cfg config.ElasticsearchConfig) (*es.Client, error) {
	client, err := es.NewClient(es.Config{
		Addresses:  []string{cfg.URL},
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return client, nil
}

// document is the indexed shape: the publication plus classification
// metadata the facets filter on.
type document struct {
	domain.Publication
	ClassifiedAt time.Time `json:"classified_at"`
}

// defaultFlushRecords bounds a single bulk request when no flush size is
// configured.
const defaultFlushRecords = 1000

// Indexer writes labeled publications to the publication index.
type Indexer struct {
	client       *es.Client
	index        string
	flushRecords int
	logger       logging.Logger
}

// NewIndexer creates an indexer targeting the configured index. Batches
// larger than flushRecords are delivered in multiple bulk requests.
func NewIndexer(client *es.Client, index string, flushRecords int, logger logging.Logger) *Indexer {
	if flushRecords <= 0 {
		flushRecords = defaultFlushRecords
	}
	return &Indexer{client: client, index: index, flushRecords: flushRecords, logger: logger}
}

// Index writes one labeled publication. The document id is the record id
// when present, so re-running a batch overwrites rather than duplicates.
func (x *Indexer) Index(ctx context.Context, labeled domain.LabeledRecord) error {
	if labeled.Record == nil {
		return nil
	}

	doc := document{Publication: *labeled.Record, ClassifiedAt: time.Now().UTC()}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	opts := []func(*esapi.IndexRequest){
		x.client.Index.WithContext(ctx),
	}
	if labeled.Record.ID != "" {
		opts = append(opts, x.client.Index.WithDocumentID(labeled.Record.ID))
	}

	res, err := x.client.Index(x.index, bytes.NewReader(body), opts...)
	if err != nil {
		return fmt.Errorf("index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index document: %s", res.String())
	}
	return nil
}

// IndexBatch writes a labeled batch through the bulk API, flushing every
// flushRecords documents. Individual item failures are logged and counted,
// not fatal to the rest of the batch.
func (x *Indexer) IndexBatch(ctx context.Context, labeled []domain.LabeledRecord) (int, error) {
	indexed := 0
	for start := 0; start < len(labeled); start += x.flushRecords {
		end := start + x.flushRecords
		if end > len(labeled) {
			end = len(labeled)
		}
		n, err := x.indexChunk(ctx, labeled[start:end])
		indexed += n
		if err != nil {
			return indexed, err
		}
	}
	return indexed, nil
}

func (x *Indexer) indexChunk(ctx context.Context, labeled []domain.LabeledRecord) (int, error) {
	if len(labeled) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	now := time.Now().UTC()
	queued := 0

	for _, l := range labeled {
		if l.Record == nil {
			continue
		}

		action := map[string]map[string]string{"index": {}}
		if l.Record.ID != "" {
			action["index"]["_id"] = l.Record.ID
		}
		meta, err := json.Marshal(action)
		if err != nil {
			return 0, fmt.Errorf("marshal bulk action: %w", err)
		}
		doc, err := json.Marshal(document{Publication: *l.Record, ClassifiedAt: now})
		if err != nil {
			return 0, fmt.Errorf("marshal bulk document: %w", err)
		}

		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
		queued++
	}
	if queued == 0 {
		return 0, nil
	}

	res, err := x.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		x.client.Bulk.WithContext(ctx),
		x.client.Bulk.WithIndex(x.index),
	)
	if err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("bulk index: %s", res.String())
	}

	var bulkResult struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int             `json:"status"`
			Error  json.RawMessage `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResult); err != nil {
		return 0, fmt.Errorf("decode bulk response: %w", err)
	}

	indexed := queued
	if bulkResult.Errors {
		failed := 0
		for _, item := range bulkResult.Items {
			for _, detail := range item {
				if detail.Status >= 300 {
					failed++
				}
			}
		}
		indexed -= failed
		x.logger.Warn("bulk index completed with failures",
			logging.Int("queued", queued),
			logging.Int("failed", failed),
		)
	}
	return indexed, nil
}
