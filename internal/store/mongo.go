package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tablesync/internal/bulk"
	"tablesync/internal/schema"
)

const (
	mongoRecords   = "records"
	mongoFieldDefs = "field_defs"
)

// MongoStore serves the schema fetcher and bulk record interfaces from a
// MongoDB database. Records live as {_id, fields: {code: {value}}} documents,
// field definitions in a sibling collection.
type MongoStore struct {
	DB *mongo.Database
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{DB: client.Database(database)}
}

// FetchSchema loads the form's field definitions.
func (m *MongoStore) FetchSchema(ctx context.Context) (map[string]schema.FieldSchema, error) {
	cursor, err := m.DB.Collection(mongoFieldDefs).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch field definitions: %w", err)
	}
	defer cursor.Close(ctx)

	var defs []fieldDef
	if err := cursor.All(ctx, &defs); err != nil {
		return nil, fmt.Errorf("failed to decode field definitions: %w", err)
	}
	return toSchemaMap(defs), nil
}

// FetchPage returns up to size records with _id greater than cursorID,
// ascending by _id, narrowed by the filter (an extended-JSON document, empty
// for all records).
func (m *MongoStore) FetchPage(ctx context.Context, filter string, cursorID int64, size int) ([]bulk.Stored, error) {
	query := bson.M{"_id": bson.M{"$gt": cursorID}}
	if filter != "" {
		var extra bson.M
		if err := bson.UnmarshalExtJSON([]byte(filter), true, &extra); err != nil {
			return nil, fmt.Errorf("invalid record filter: %w", err)
		}
		for k, v := range extra {
			query[k] = v
		}
	}

	opts := options.Find().
		SetSort(bson.M{"_id": 1}).
		SetLimit(int64(size))

	cursor, err := m.DB.Collection(mongoRecords).Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var page []bulk.Stored
	for cursor.Next(ctx) {
		var doc struct {
			ID     int64  `bson:"_id"`
			Fields bson.M `bson:"fields"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		page = append(page, bulk.Stored{ID: doc.ID, Record: toRecord(doc.Fields)})
	}
	return page, cursor.Err()
}

// WriteBatch applies all patches in one bulk write.
func (m *MongoStore) WriteBatch(ctx context.Context, patches []bulk.Patch) error {
	writes := make([]mongo.WriteModel, 0, len(patches))
	for _, p := range patches {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": p.ID}).
			SetUpdate(bson.M{"$set": patchSet(p)}))
	}
	_, err := m.DB.Collection(mongoRecords).BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

// WriteOne applies a single record's patch.
func (m *MongoStore) WriteOne(ctx context.Context, p bulk.Patch) error {
	res, err := m.DB.Collection(mongoRecords).UpdateOne(ctx, bson.M{"_id": p.ID}, bson.M{"$set": patchSet(p)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("record %d not found", p.ID)
	}
	return nil
}

func patchSet(p bulk.Patch) bson.M {
	set := make(bson.M, len(p.Fields))
	for code, val := range p.Fields {
		set["fields."+code+".value"] = val
	}
	return set
}
