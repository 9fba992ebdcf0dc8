// Package qdrant provides a VectorDB implementation using Qdrant.
package qdrant

import (
	"context"
	"errors"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ersonp/biblio-core/internal/domain/entities"
	"github.com/ersonp/biblio-core/internal/domain/ports"
	"github.com/ersonp/biblio-core/internal/infrastructure/config"
)

// Payload keys stored with every point.
const (
	payloadBBID           = "bbid"
	payloadKind           = "kind"
	payloadName           = "name"
	payloadDisambiguation = "disambiguation"
	payloadText           = "text"
	payloadRevisionID     = "revision_id"
)

var (
	_ ports.VectorDB          = (*Repository)(nil)
	_ ports.CollectionManager = (*Repository)(nil)
)

// Repository implements the VectorDB interface using Qdrant. Point IDs are
// entity BBIDs, so re-indexing an entity replaces its point.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if cfg.APIKey != "" {
		opts = append(opts, grpc.WithUnaryInterceptor(apiKeyInterceptor(cfg.APIKey)))
	}

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	repo := newRepository(pb.NewCollectionsClient(conn), pb.NewPointsClient(conn), cfg.Collection)
	repo.conn = conn
	return repo, nil
}

func newRepository(collections pb.CollectionsClient, points pb.PointsClient, collection string) *Repository {
	return &Repository{
		client:     collections,
		points:     points,
		collection: collection,
	}
}

// apiKeyInterceptor attaches the api-key header Qdrant expects on every call.
func apiKeyInterceptor(key string) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = metadata.AppendToOutgoingContext(ctx, "api-key", key)
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// EnsureCollection creates the collection and its kind index if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("getting collection info: %w", err)
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	_, err = r.points.CreateFieldIndex(ctx, &pb.CreateFieldIndexCollection{
		CollectionName: r.collection,
		Wait:           pb.PtrOf(true),
		FieldName:      payloadKind,
		FieldType:      pb.FieldType_FieldTypeKeyword.Enum(),
	})
	if err != nil {
		return fmt.Errorf("creating kind index: %w", err)
	}

	return nil
}

// DeleteCollection removes the collection and every indexed document.
func (r *Repository) DeleteCollection(ctx context.Context) error {
	_, err := r.client.Delete(ctx, &pb.DeleteCollection{
		CollectionName: r.collection,
	})
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	return nil
}

// Save stores a document with its embedding.
func (r *Repository) Save(ctx context.Context, doc entities.SearchDocument) error {
	return r.SaveBatch(ctx, []entities.SearchDocument{doc})
}

// SaveBatch stores multiple documents.
func (r *Repository) SaveBatch(ctx context.Context, docs []entities.SearchDocument) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, 0, len(docs))
	for _, doc := range docs {
		if doc.BBID == "" {
			return errors.New("document without bbid")
		}

		point := &pb.PointStruct{
			Id: pb.NewID(doc.BBID),
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{
						Data: doc.Embedding,
					},
				},
			},
			Payload: map[string]*pb.Value{
				payloadBBID:           pb.NewValueString(doc.BBID),
				payloadKind:           pb.NewValueString(string(doc.Kind)),
				payloadName:           pb.NewValueString(doc.Name),
				payloadDisambiguation: pb.NewValueString(doc.Disambiguation),
				payloadText:           pb.NewValueString(doc.Text),
				payloadRevisionID:     pb.NewValueInt(doc.RevisionID),
			},
		}
		points = append(points, point)
	}

	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Wait:           pb.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

// Search performs a semantic search and returns the closest documents.
func (r *Repository) Search(ctx context.Context, embedding []float32, limit int) ([]entities.SearchHit, error) {
	return r.search(ctx, embedding, nil, limit)
}

// SearchByKind performs a semantic search filtered by entity kind.
func (r *Repository) SearchByKind(ctx context.Context, embedding []float32, kind entities.EntityKind, limit int) ([]entities.SearchHit, error) {
	filter := &pb.Filter{
		Must: []*pb.Condition{
			pb.NewMatchKeyword(payloadKind, string(kind)),
		},
	}
	return r.search(ctx, embedding, filter, limit)
}

func (r *Repository) search(ctx context.Context, embedding []float32, filter *pb.Filter, limit int) ([]entities.SearchHit, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		Filter:         filter,
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	return scoredPointsToHits(resp.GetResult()), nil
}

// Delete removes the document of an entity.
func (r *Repository) Delete(ctx context.Context, bbid string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Wait:           pb.PtrOf(true),
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{pb.NewID(bbid)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}

	return nil
}

// scoredPointsToHits converts scored points to search hits.
func scoredPointsToHits(points []*pb.ScoredPoint) []entities.SearchHit {
	hits := make([]entities.SearchHit, 0, len(points))

	for _, point := range points {
		payload := point.GetPayload()
		bbid := point.GetId().GetUuid()
		if bbid == "" {
			bbid = getStringValue(payload, payloadBBID)
		}

		hits = append(hits, entities.SearchHit{
			BBID:  bbid,
			Kind:  entities.EntityKind(getStringValue(payload, payloadKind)),
			Name:  getStringValue(payload, payloadName),
			Score: point.GetScore(),
		})
	}

	return hits
}

func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}
