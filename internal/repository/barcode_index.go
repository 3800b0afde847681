package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrIndexMiss is returned when a barcode has no index entry. Callers fall
// back to the full warehouse scan and backfill on success.
var ErrIndexMiss = errors.New("barcode not in index")

// BarcodeLocation records where the unit behind a barcode currently sits:
// in a size entry, on a store's exhibition slot, or as a box barcode.
type BarcodeLocation struct {
	WarehouseID     uuid.UUID `json:"warehouse_id"`
	ProductID       uuid.UUID `json:"product_id"`
	Kind            string    `json:"kind"`
	Size            string    `json:"size,omitempty"`
	ExhibitionStore string    `json:"exhibition_store,omitempty"`
	IsBox           bool      `json:"is_box,omitempty"`
}

// BarcodeIndex is the incrementally maintained barcode → location lookup.
// Entries are written on every stock mutation; a miss is not an error
// condition, only a signal to scan.
type BarcodeIndex interface {
	Put(ctx context.Context, companyID uuid.UUID, barcode string, loc BarcodeLocation) error
	Get(ctx context.Context, companyID uuid.UUID, barcode string) (BarcodeLocation, error)
	Delete(ctx context.Context, companyID uuid.UUID, barcode string) error
}

const indexTTL = 30 * 24 * time.Hour

type redisBarcodeIndex struct {
	rdb *redis.Client
}

// NewRedisBarcodeIndex creates and validates a go-redis backed index.
func NewRedisBarcodeIndex(redisURL string) (BarcodeIndex, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisBarcodeIndex{rdb: rdb}, nil
}

func indexKey(companyID uuid.UUID, barcode string) string {
	return fmt.Sprintf("barcode:%s:%s", companyID, barcode)
}

func (i *redisBarcodeIndex) Put(ctx context.Context, companyID uuid.UUID, barcode string, loc BarcodeLocation) error {
	payload, err := json.Marshal(loc)
	if err != nil {
		return err
	}
	return i.rdb.Set(ctx, indexKey(companyID, barcode), payload, indexTTL).Err()
}

func (i *redisBarcodeIndex) Get(ctx context.Context, companyID uuid.UUID, barcode string) (BarcodeLocation, error) {
	payload, err := i.rdb.Get(ctx, indexKey(companyID, barcode)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return BarcodeLocation{}, ErrIndexMiss
		}
		return BarcodeLocation{}, err
	}

	var loc BarcodeLocation
	if err := json.Unmarshal(payload, &loc); err != nil {
		return BarcodeLocation{}, err
	}
	return loc, nil
}

func (i *redisBarcodeIndex) Delete(ctx context.Context, companyID uuid.UUID, barcode string) error {
	return i.rdb.Del(ctx, indexKey(companyID, barcode)).Err()
}
