package nodekit

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

var qdrantNamespace = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

// NewQdrantClient connects to the gRPC endpoint described by a qdrant credential.
// "qdrantUrl" may be a full URL; its host and scheme are used.
func NewQdrantClient(creds Credentials) (*qdrant.Client, error) {
	host := creds.String("", "host")
	port := creds.Int(6334, "grpcPort", "port")
	useTLS := creds.Bool(false, "ssl", "tls")
	if raw := creds.String("", "qdrantUrl", "url"); raw != "" {
		u, err := url.Parse(raw)
		if err == nil && u.Hostname() != "" {
			host = u.Hostname()
			useTLS = u.Scheme == "https"
			if p, err := strconv.Atoi(u.Port()); err == nil && p != 6333 {
				port = p
			}
		}
	}
	if host == "" {
		return nil, &MissingParameterError{Name: "qdrantUrl"}
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: creds.String("", "apiKey", "api_key"),
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return client, nil
}

// QdrantSearch returns the limit nearest points to vector with their payloads
func QdrantSearch(ctx context.Context, client *qdrant.Client, collection string, vector []float64, limit uint64) ([]map[string]any, error) {
	if collection == "" {
		return nil, &MissingParameterError{Name: "collection"}
	}
	if limit == 0 {
		limit = 4
	}
	ctx, cancel := context.WithTimeout(ctx, SDKTimeout)
	defer cancel()

	points, err := client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(toFloat32(vector)...),
		Limit:          qdrant.PtrOf(limit),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}
	out := make([]map[string]any, 0, len(points))
	for _, p := range points {
		payload := make(map[string]any, len(p.GetPayload()))
		for k, v := range p.GetPayload() {
			payload[k] = qdrantValue(v)
		}
		out = append(out, map[string]any{
			"id":      qdrantPointID(p.GetId()),
			"score":   p.GetScore(),
			"payload": payload,
		})
	}
	return out, nil
}

// QdrantUpsert stores one point. Non-UUID ids are mapped to a stable UUID.
func QdrantUpsert(ctx context.Context, client *qdrant.Client, collection, id string, vector []float64, payload map[string]any) error {
	if collection == "" {
		return &MissingParameterError{Name: "collection"}
	}
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewSHA1(qdrantNamespace, []byte(id)).String()
	}
	ctx, cancel := context.WithTimeout(ctx, SDKTimeout)
	defer cancel()

	_, err := client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewID(id),
			Vectors: qdrant.NewVectors(toFloat32(vector)...),
			Payload: qdrant.NewValueMap(payload),
		}},
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// FloatSlice decodes a vector parameter (JSON array or []float64)
func FloatSlice(raw any) []float64 {
	list, ok := decodeParam(raw).([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(list))
	for _, el := range list {
		if f, ok := ToFloat(el); ok {
			out = append(out, f)
		}
	}
	return out
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, f := range in {
		out[i] = float32(f)
	}
	return out
}

func qdrantPointID(id *qdrant.PointId) any {
	if id == nil {
		return nil
	}
	if u := id.GetUuid(); u != "" {
		return u
	}
	return id.GetNum()
}

func qdrantValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch k := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return k.StringValue
	case *qdrant.Value_IntegerValue:
		return k.IntegerValue
	case *qdrant.Value_DoubleValue:
		return k.DoubleValue
	case *qdrant.Value_BoolValue:
		return k.BoolValue
	case *qdrant.Value_StructValue:
		if k.StructValue == nil {
			return nil
		}
		out := make(map[string]any, len(k.StructValue.Fields))
		for f, fv := range k.StructValue.Fields {
			out[f] = qdrantValue(fv)
		}
		return out
	case *qdrant.Value_ListValue:
		if k.ListValue == nil {
			return nil
		}
		list := make([]any, len(k.ListValue.Values))
		for i, lv := range k.ListValue.Values {
			list[i] = qdrantValue(lv)
		}
		return list
	default:
		return nil
	}
}
