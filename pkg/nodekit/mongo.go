package nodekit

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoURI returns the credential connection string, or builds one from host fields
func MongoURI(creds Credentials) string {
	if s := creds.String("", "connectionString", "uri"); s != "" {
		return s
	}
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(creds.String("localhost", "host"), strconv.Itoa(creds.Int(27017, "port"))),
		Path:   "/",
	}
	if user := creds.String("", "user", "username"); user != "" {
		u.User = url.UserPassword(user, creds.String("", "password"))
	}
	if creds.Bool(false, "ssl", "tls") {
		u.RawQuery = "tls=true"
	}
	return u.String()
}

// OpenMongo connects with bounded connect, selection and operation timeouts.
// The caller disconnects the client.
func OpenMongo(ctx context.Context, creds Credentials) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(MongoURI(creds)).
		SetConnectTimeout(ConnectTimeout).
		SetServerSelectionTimeout(ConnectTimeout).
		SetTimeout(QueryTimeout)

	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// MongoFind runs a find with optional sort, limit and skip
func MongoFind(ctx context.Context, coll *mongo.Collection, filter map[string]any, sort map[string]any, limit, skip int64) ([]map[string]any, error) {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(bson.M(sort))
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if skip > 0 {
		opts.SetSkip(skip)
	}
	cur, err := coll.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find failed: %w", err)
	}
	return drainCursor(ctx, cur)
}

// MongoAggregate runs an aggregation pipeline
func MongoAggregate(ctx context.Context, coll *mongo.Collection, pipeline []any) ([]map[string]any, error) {
	stages := make(bson.A, 0, len(pipeline))
	for _, s := range pipeline {
		if m, ok := s.(map[string]any); ok {
			stages = append(stages, bson.M(m))
		}
	}
	cur, err := coll.Aggregate(ctx, stages)
	if err != nil {
		return nil, fmt.Errorf("aggregate failed: %w", err)
	}
	return drainCursor(ctx, cur)
}

// MongoInsert inserts docs and returns them with their ids
func MongoInsert(ctx context.Context, coll *mongo.Collection, docs []map[string]any) ([]map[string]any, error) {
	if len(docs) == 0 {
		return []map[string]any{}, nil
	}
	payload := make([]any, len(docs))
	for i, d := range docs {
		payload[i] = bson.M(cloneMap(d))
	}
	res, err := coll.InsertMany(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("insert failed: %w", err)
	}
	out := make([]map[string]any, len(docs))
	for i, d := range docs {
		row := cloneMap(d)
		if i < len(res.InsertedIDs) {
			row["_id"] = normalizeBSON(res.InsertedIDs[i])
		}
		out[i] = row
	}
	return out, nil
}

// MongoUpdate sets the fields of doc on the documents whose updateKey equals doc[updateKey]
func MongoUpdate(ctx context.Context, coll *mongo.Collection, updateKey string, doc map[string]any, upsert bool) (map[string]any, error) {
	keyValue, ok := doc[updateKey]
	if !ok {
		return nil, &MissingParameterError{Name: updateKey}
	}
	fields := cloneMap(doc)
	delete(fields, updateKey)
	filter := mongoFilter(map[string]any{updateKey: keyValue})
	res, err := coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M(fields)}, options.Update().SetUpsert(upsert))
	if err != nil {
		return nil, fmt.Errorf("update failed: %w", err)
	}
	return map[string]any{"matchedCount": res.MatchedCount, "modifiedCount": res.ModifiedCount, "upsertedCount": res.UpsertedCount}, nil
}

// MongoDelete removes every document matching filter
func MongoDelete(ctx context.Context, coll *mongo.Collection, filter map[string]any) (map[string]any, error) {
	res, err := coll.DeleteMany(ctx, mongoFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("delete failed: %w", err)
	}
	return map[string]any{"deletedCount": res.DeletedCount}, nil
}

// mongoFilter turns a hex "_id" string into an ObjectID
func mongoFilter(filter map[string]any) bson.M {
	out := bson.M{}
	for k, v := range filter {
		out[k] = v
	}
	if s, ok := out["_id"].(string); ok {
		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			out["_id"] = oid
		}
	}
	return out
}

func drainCursor(ctx context.Context, cur *mongo.Cursor) ([]map[string]any, error) {
	defer cur.Close(ctx)
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to read cursor: %w", err)
	}
	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		if m, ok := normalizeBSON(d).(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// normalizeBSON converts driver types to plain JSON-like values
func normalizeBSON(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(map[string]any, len(val))
		for k, el := range val {
			out[k] = normalizeBSON(el)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, el := range val {
			out[k] = normalizeBSON(el)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = normalizeBSON(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, el := range val {
			out[i] = normalizeBSON(el)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, el := range val {
			out[i] = normalizeBSON(el)
		}
		return out
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	default:
		return val
	}
}
