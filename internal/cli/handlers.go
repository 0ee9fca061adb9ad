package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"tablesync/internal/bulk"
	"tablesync/internal/config"
	"tablesync/internal/schema"
	"tablesync/internal/store"
	"tablesync/pkg/database"
	"tablesync/pkg/logger"
)

// platformStore is the full collaborator surface a backend must provide.
type platformStore interface {
	schema.Fetcher
	bulk.RecordSource
	bulk.RecordWriter
}

func openStore(backend string) (platformStore, func(), error) {
	cfg := config.LoadConfig()

	switch backend {
	case "mongo":
		if err := cfg.RequireMongo(); err != nil {
			return nil, nil, err
		}
		client, err := database.ConnectMongo(cfg.MongoConnString)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() { _ = client.Disconnect(context.Background()) }
		return store.NewMongoStore(client, cfg.MongoDatabase), cleanup, nil
	case "sql":
		if err := cfg.RequireSQL(); err != nil {
			return nil, nil, err
		}
		db, err := database.ConnectSQL(cfg.SQLConnString)
		if err != nil {
			return nil, nil, err
		}
		return store.NewSQLStore(db), func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q (want mongo or sql)", backend)
	}
}

func runBulk(ctx context.Context, opts *BulkOptions) error {
	mapping, err := config.LoadMapping(opts.MappingFile)
	if err != nil {
		return err
	}
	if !mapping.BulkEnabled {
		return fmt.Errorf("the bulk pass is disabled in the mapping configuration (showBulk)")
	}

	st, cleanup, err := openStore(opts.Backend)
	if err != nil {
		return err
	}
	defer cleanup()

	pipeline := &bulk.Pipeline{
		Cfg:       mapping,
		Store:     schema.NewStore(nil),
		Schema:    st,
		Source:    st,
		Writer:    st,
		Filter:    opts.Filter,
		PageSize:  opts.PageSize,
		ChunkSize: opts.ChunkSize,
		Confirm: func() bool {
			if opts.Yes {
				return true
			}
			return promptYesNo("Update all records matching the filter?")
		},
		OnProgress: func(p bulk.Progress) {
			logger.Infof("bulk: %d / %d completed, %d errors", p.Processed, p.Total, p.Errors)
		},
	}

	summary, err := pipeline.Run(ctx)
	if errors.Is(err, bulk.ErrCanceled) {
		fmt.Println("Canceled, nothing written.")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Bulk update completed: %d records processed, %d errors.\n", summary.Processed, len(summary.Errors))
	for _, re := range summary.Errors {
		fmt.Printf("  record %d: %v\n", re.ID, re.Err)
	}
	return nil
}

func runValidate(ctx context.Context, opts *BulkOptions) error {
	mapping, err := config.LoadMapping(opts.MappingFile)
	if err != nil {
		return err
	}
	fmt.Printf("Mapping file is structurally valid: %d table mapping(s).\n", len(mapping.TableMappings))

	if opts.Backend == "" {
		return nil
	}

	st, cleanup, err := openStore(opts.Backend)
	if err != nil {
		return err
	}
	defer cleanup()

	defs := schema.NewStore(nil)
	if err := defs.Load(ctx, st); err != nil {
		return fmt.Errorf("failed to fetch field definitions: %w", err)
	}
	if err := schema.ValidateConfig(mapping, defs); err != nil {
		return err
	}
	fmt.Println("Mapping is compatible with the form's field definitions.")
	return nil
}

func promptYesNo(question string) bool {
	fmt.Printf("%s [y/N]: ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
