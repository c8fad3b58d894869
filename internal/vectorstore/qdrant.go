package vectorstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"pdfrag/internal/contextutil"
)

// payloadTextKey is the payload field holding the chunk text.
const payloadTextKey = "text"

// upsertBatchSize caps points per upsert call to stay under the gRPC
// message size limit.
const upsertBatchSize = 256

// QdrantStore implements VectorStore using Qdrant.
//
// The logical collection name is a Qdrant alias. Replace builds each
// index generation into a fresh physical collection and repoints the
// alias in a single alias update, so queries against the alias never
// observe a partially built index.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client connected to
// the gRPC port (typically 6334).
func NewQdrantStore(host string, port int) (*QdrantStore, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client: client,
	}, nil
}

// Replace builds a new physical collection with the given points and
// atomically repoints the collection alias at it. The previous
// generation is deleted after the swap. An empty points slice produces
// an empty but queryable collection.
func (s *QdrantStore) Replace(ctx context.Context, collection string, vectorSize int, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	staging := fmt.Sprintf("%s-%s", collection, uuid.New().String()[:8])

	logger.InfoContext(ctx, "building index generation", "collection", collection, "staging", staging, "points", len(points))

	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: staging,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create staging collection: %w", err)
	}

	if err := s.upsertAll(ctx, staging, points); err != nil {
		s.dropQuietly(ctx, staging)
		return err
	}

	if err := s.swapAlias(ctx, collection, staging); err != nil {
		s.dropQuietly(ctx, staging)
		return err
	}

	logger.InfoContext(ctx, "index generation live", "collection", collection, "staging", staging, "points", len(points))
	return nil
}

func (s *QdrantStore) upsertAll(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	for start := 0; start < len(points); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(points) {
			end = len(points)
		}

		batch := make([]*qdrant.PointStruct, 0, end-start)
		for _, point := range points[start:end] {
			payload := make(map[string]any, len(point.Meta)+1)
			for k, v := range point.Meta {
				payload[k] = v
			}
			payload[payloadTextKey] = point.Text

			batch = append(batch, &qdrant.PointStruct{
				Id:      qdrant.NewIDNum(point.ID),
				Vectors: qdrant.NewVectors(point.Vec...),
				Payload: qdrant.NewValueMap(payload),
			})
		}

		wait := true
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         batch,
			Wait:           &wait,
		})
		if err != nil {
			logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(batch), "error", err)
			return fmt.Errorf("failed to upsert points: %w", err)
		}
	}

	return nil
}

// swapAlias repoints alias at staging. The delete and create run in a
// single alias update so the alias never dangles.
func (s *QdrantStore) swapAlias(ctx context.Context, alias, staging string) error {
	logger := contextutil.LoggerFromContext(ctx)

	previous, err := s.resolveAlias(ctx, alias)
	if err != nil {
		return err
	}

	if previous == "" {
		// A physical collection bearing the alias name blocks alias
		// creation. Older layouts wrote directly to the name, so drop
		// it before the first swap.
		exists, err := s.client.CollectionExists(ctx, alias)
		if err != nil {
			return fmt.Errorf("failed to check collection existence: %w", err)
		}
		if exists {
			logger.InfoContext(ctx, "removing legacy collection before alias swap", "collection", alias)
			if err := s.client.DeleteCollection(ctx, alias); err != nil {
				return fmt.Errorf("failed to delete legacy collection: %w", err)
			}
		}
	}

	ops := make([]*qdrant.AliasOperations, 0, 2)
	if previous != "" {
		ops = append(ops, &qdrant.AliasOperations{
			Action: &qdrant.AliasOperations_DeleteAlias{
				DeleteAlias: &qdrant.DeleteAlias{AliasName: alias},
			},
		})
	}
	ops = append(ops, &qdrant.AliasOperations{
		Action: &qdrant.AliasOperations_CreateAlias{
			CreateAlias: &qdrant.CreateAlias{
				CollectionName: staging,
				AliasName:      alias,
			},
		},
	})

	if err := s.client.UpdateAliases(ctx, ops); err != nil {
		return fmt.Errorf("failed to update alias: %w", err)
	}

	if previous != "" {
		if err := s.client.DeleteCollection(ctx, previous); err != nil {
			logger.WarnContext(ctx, "failed to delete previous index generation", "collection", previous, "error", err)
		}
	}

	return nil
}

// resolveAlias returns the physical collection the alias points at, or
// "" if the alias does not exist.
func (s *QdrantStore) resolveAlias(ctx context.Context, alias string) (string, error) {
	aliases, err := s.client.ListAliases(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list aliases: %w", err)
	}

	for _, desc := range aliases {
		if desc.GetAliasName() == alias {
			return desc.GetCollectionName(), nil
		}
	}
	return "", nil
}

// dropQuietly removes a staging collection after a failed build.
func (s *QdrantStore) dropQuietly(ctx context.Context, collection string) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := s.client.DeleteCollection(ctx, collection); err != nil {
		logger.WarnContext(ctx, "failed to drop staging collection", "collection", collection, "error", err)
	}
}

// Query returns the k nearest points to the query vector, ordered by
// ascending cosine distance.
func (s *QdrantStore) Query(ctx context.Context, collection string, vector []float32, k int, filter *Filter) ([]QueryResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	exists, err := s.Exists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	limit := uint64(k)
	queryReq := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if filter != nil {
		queryReq.Filter = &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(filter.Field, filter.Value),
			},
		}
	}

	scoredPoints, err := s.client.Query(ctx, queryReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to query points", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	// Qdrant returns cosine similarity in descending order, so the
	// derived distances are already ascending.
	results := make([]QueryResult, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		meta := make(map[string]any)
		if point.Payload != nil {
			meta = convertPayloadToMap(point.Payload)
		}

		text, _ := meta[payloadTextKey].(string)
		delete(meta, payloadTextKey)

		results = append(results, QueryResult{
			Text:     text,
			Meta:     meta,
			Distance: 1 - point.Score,
		})
	}

	logger.InfoContext(ctx, "query completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// Exists reports whether the collection is available for queries,
// either as a physical collection or as an alias.
func (s *QdrantStore) Exists(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return true, nil
	}

	physical, err := s.resolveAlias(ctx, collection)
	if err != nil {
		return false, err
	}
	return physical != "", nil
}

// Close releases the underlying gRPC connection.
func (s *QdrantStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close Qdrant client: %w", err)
	}
	return nil
}

// Info returns size and status information for the collection,
// resolving the alias to its current physical collection first.
func (s *QdrantStore) Info(ctx context.Context, collection string) (*CollectionInfo, error) {
	physical, err := s.resolveAlias(ctx, collection)
	if err != nil {
		return nil, err
	}
	if physical == "" {
		physical = collection
	}

	info, err := s.client.GetCollectionInfo(ctx, physical)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection info: %w", err)
	}

	var vectorSize int
	if config := info.Config; config != nil && config.Params != nil {
		if vectorsConfig := config.Params.GetVectorsConfig(); vectorsConfig != nil {
			if params := vectorsConfig.GetParams(); params != nil {
				vectorSize = int(params.Size)
			}
		}
	}

	// PointsCount is a pointer to uint64
	var pointsCount int
	if info.PointsCount != nil {
		pointsCount = int(*info.PointsCount)
	}

	status := "unknown"
	if info.Status != 0 {
		status = info.Status.String()
	}

	return &CollectionInfo{
		Name:        physical,
		VectorSize:  vectorSize,
		PointsCount: pointsCount,
		Status:      status,
	}, nil
}

// CollectionInfo contains information about a Qdrant collection.
type CollectionInfo struct {
	Name        string
	VectorSize  int
	PointsCount int
	Status      string
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
