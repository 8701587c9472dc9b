package rag

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"GoRAGWorkshop/app/faults"
)

var _ VectorStore = &QdrantStore{}

type QdrantStore struct {
	client     *qdrant.Client
	collection string
	dimension  int
	logger     *zap.Logger
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// NewQdrantStore talks gRPC to the host and port of cfg.URL; https selects TLS.
func NewQdrantStore(cfg QdrantConfig, logger *zap.Logger) (*QdrantStore, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, faults.Configuration("parse qdrant url", err)
	}
	host := u.Hostname()
	if host == "" {
		host = "localhost"
	}
	port, _ := strconv.Atoi(u.Port())
	if port == 0 {
		port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: u.Scheme == "https",
	})
	if err != nil {
		return nil, faults.Unavailable("connect qdrant", err)
	}
	return &QdrantStore{
		client:     client,
		collection: cfg.Collection,
		logger:     logger,
	}, nil
}

func (s *QdrantStore) Collection() string {
	return s.collection
}

// EnsureCollection creates the collection with cosine distance when missing and
// reports whether it already existed.
func (s *QdrantStore) EnsureCollection(ctx context.Context, dimension int) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return false, faults.Unavailable("collection exists", err)
	}
	if exists {
		info, err := s.client.GetCollectionInfo(ctx, s.collection)
		if err != nil {
			return true, faults.Unavailable("collection info", err)
		}
		size := int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize())
		if size != dimension {
			return true, faults.DimensionMismatch("collection "+s.collection, dimension, size)
		}
		s.dimension = dimension
		return true, nil
	}

	if err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     uint64(dimension),
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	}); err != nil {
		return false, faults.Unavailable("create collection", err)
	}
	s.logger.Info("created collection",
		zap.String("collection", s.collection), zap.Int("dimension", dimension))
	s.dimension = dimension
	return false, nil
}

func (s *QdrantStore) Close() error {
	return s.client.Close()
}

func (s *QdrantStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	pts := make([]*qdrant.PointStruct, len(records))

	for i, r := range records {
		if s.dimension > 0 && len(r.Vector) != s.dimension {
			return faults.DimensionMismatch("upsert "+s.collection, s.dimension, len(r.Vector))
		}
		payload := r.Segment.Metadata()
		payload[MetaText] = r.Segment.Text

		pts[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(uuid.New().String()),
			Vectors: qdrant.NewVectors(r.Vector...),
			Payload: qdrant.NewValueMap(payload),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         pts,
	})
	if err != nil {
		return faults.Unavailable("upsert points", err)
	}
	return nil
}

func (s *QdrantStore) Query(ctx context.Context, vector []float32, k int) ([]ScoredSegment, error) {
	if s.dimension > 0 && len(vector) != s.dimension {
		return nil, faults.DimensionMismatch("query "+s.collection, s.dimension, len(vector))
	}
	limit := uint64(k)
	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Limit:          &limit,
		Query:          qdrant.NewQuery(vector...),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, faults.Unavailable("query points", err)
	}

	out := make([]ScoredSegment, 0, len(resp))
	for _, r := range resp {
		out = append(out, ScoredSegment{
			ID:      pointID(r.GetId()),
			Segment: segmentFromPayload(r.GetPayload()),
			Score:   r.GetScore(),
		})
	}
	return out, nil
}

func pointID(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	switch x := id.PointIdOptions.(type) {
	case *qdrant.PointId_Uuid:
		return x.Uuid
	case *qdrant.PointId_Num:
		return strconv.FormatUint(x.Num, 10)
	}
	return ""
}

func segmentFromPayload(payload map[string]*qdrant.Value) Segment {
	var seg Segment
	for key, v := range payload {
		switch key {
		case MetaText:
			seg.Text = fmt.Sprint(convertQdrantValue(v))
		case MetaFilename:
			seg.Source = fmt.Sprint(convertQdrantValue(v))
		case MetaIndex:
			seg.Index = int(v.GetIntegerValue())
		case MetaOffset:
			seg.Offset = int(v.GetIntegerValue())
		}
	}
	return seg
}

func convertQdrantValue(v *qdrant.Value) any {
	switch val := v.GetKind().(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		out := make([]any, len(val.ListValue.GetValues()))
		for i, lv := range val.ListValue.GetValues() {
			out[i] = convertQdrantValue(lv)
		}
		return out
	case *qdrant.Value_StructValue:
		out := make(map[string]any)
		for k, nv := range val.StructValue.GetFields() {
			out[k] = convertQdrantValue(nv)
		}
		return out
	}
	return nil
}
