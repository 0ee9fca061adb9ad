package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tablesync/internal/bulk"
	"tablesync/internal/schema"
	"tablesync/internal/store"
	"tablesync/pkg/database"
	"tablesync/pkg/models"
)

// TestBulkRunAgainstMongo seeds a records collection, runs the bulk pipeline
// against it twice and verifies both the written values and the second run's
// idempotence. Requires a reachable MongoDB.
func TestBulkRunAgainstMongo(t *testing.T) {
	connString := os.Getenv("MONGO_CONNECTION_STRING")
	if connString == "" {
		t.Skip("MONGO_CONNECTION_STRING not set")
	}

	client, err := database.ConnectMongo(connString)
	if err != nil {
		t.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database("tablesync_test")
	cleanup(t, db)
	defer cleanup(t, db)
	seed(t, db)

	cfg := &models.Configuration{
		TableMappings: []models.TableMapping{{
			TableCode: "items",
			Mappings:  []models.FieldMapping{{Src: "item_name", Dest: "last_item_summary"}},
		}},
		BulkEnabled: true,
	}

	st := &store.MongoStore{DB: db}
	run := func() *bulk.Summary {
		p := &bulk.Pipeline{
			Cfg:    cfg,
			Store:  schema.NewStore(nil),
			Schema: st,
			Source: st,
			Writer: st,
		}
		summary, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("Pipeline execution failed: %v", err)
		}
		return summary
	}

	summary := run()
	if summary.Processed != 2 || len(summary.Errors) != 0 {
		t.Fatalf("Expected 2 processed and 0 errors, got %d and %d", summary.Processed, len(summary.Errors))
	}

	verifySummaryValue(t, db, 1, "B")
	verifySummaryValue(t, db, 2, "")

	// Second run must find nothing left to write.
	run()
}

func seed(t *testing.T, db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := db.Collection("field_defs").InsertMany(ctx, []interface{}{
		bson.M{"code": "items", "type": "SUBTABLE", "fields": bson.M{
			"item_name": bson.M{"code": "item_name", "type": "SINGLE_LINE_TEXT"},
		}},
		bson.M{"code": "last_item_summary", "type": "SINGLE_LINE_TEXT"},
	})
	if err != nil {
		t.Fatalf("Failed to seed field defs: %v", err)
	}

	row := func(name string) bson.M {
		return bson.M{"value": bson.M{"item_name": bson.M{"value": name}}}
	}
	_, err = db.Collection("records").InsertMany(ctx, []interface{}{
		bson.M{"_id": int64(1), "fields": bson.M{
			"items":             bson.M{"value": bson.A{row("A"), row("B")}},
			"last_item_summary": bson.M{"value": "stale"},
		}},
		bson.M{"_id": int64(2), "fields": bson.M{
			"items":             bson.M{"value": bson.A{}},
			"last_item_summary": bson.M{"value": "stale"},
		}},
	})
	if err != nil {
		t.Fatalf("Failed to seed records: %v", err)
	}
}

func verifySummaryValue(t *testing.T, db *mongo.Database, id int64, want string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var doc bson.M
	if err := db.Collection("records").FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		t.Fatalf("Failed to find record %d: %v", id, err)
	}
	fields, _ := doc["fields"].(bson.M)
	cell, _ := fields["last_item_summary"].(bson.M)
	if cell["value"] != want {
		t.Errorf("Record %d: expected summary %q, got %v", id, want, cell["value"])
	}
}

func cleanup(t *testing.T, db *mongo.Database) {
	ctx := context.Background()
	db.Collection("records").Drop(ctx)
	db.Collection("field_defs").Drop(ctx)
}
