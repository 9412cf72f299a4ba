package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/redis/go-redis/v9"
)

type InventoryRepository interface {
	Get(ctx context.Context, flightID, date string) (*domain.Inventory, error)
	// ConditionalPut writes rec only if the stored record's version still
	// equals expectedVersion. Returns domain.ErrVersionConflict when another
	// writer committed first and domain.ErrInventoryNotFound when the key is
	// gone.
	ConditionalPut(ctx context.Context, rec *domain.Inventory, expectedVersion int64) error
	// Put writes unconditionally. Seeding only; reservations go through
	// ConditionalPut.
	Put(ctx context.Context, rec *domain.Inventory) error
}

type RedisInventoryRepository struct {
	client *redis.Client
}

// inventoryRecord is the stored shape. Numeric fields travel as strings at
// this boundary only; domain.Inventory keeps their real types.
type inventoryRecord struct {
	FlightID  string `json:"flight_id"`
	Date      string `json:"date"`
	SeatsLeft string `json:"seats_left"`
	Version   string `json:"version"`
}

// casScript compares the stored record's version with ARGV[1] and swaps in
// ARGV[2] atomically, so the check and the write are one round-trip.
var casScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then
  return -1
end
local obj = cjson.decode(cur)
if obj.version ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2])
return 1
`)

func NewInventoryRepository(cfg config.RedisConfig) *RedisInventoryRepository {
	return &RedisInventoryRepository{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
	}
}

func (r *RedisInventoryRepository) Get(ctx context.Context, flightID, date string) (*domain.Inventory, error) {
	data, err := r.client.Get(ctx, inventoryKey(flightID, date)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrInventoryNotFound
		}
		return nil, err
	}
	return decodeInventory(data)
}

func (r *RedisInventoryRepository) ConditionalPut(ctx context.Context, rec *domain.Inventory, expectedVersion int64) error {
	payload, err := json.Marshal(encodeInventory(rec))
	if err != nil {
		return err
	}

	res, err := casScript.Run(ctx, r.client,
		[]string{inventoryKey(rec.FlightID, rec.Date)},
		strconv.FormatInt(expectedVersion, 10), string(payload)).Int()
	if err != nil {
		return err
	}
	switch res {
	case -1:
		return domain.ErrInventoryNotFound
	case 0:
		return domain.ErrVersionConflict
	}
	return nil
}

func (r *RedisInventoryRepository) Put(ctx context.Context, rec *domain.Inventory) error {
	payload, err := json.Marshal(encodeInventory(rec))
	if err != nil {
		return err
	}
	return r.client.Set(ctx, inventoryKey(rec.FlightID, rec.Date), payload, 0).Err()
}

func encodeInventory(rec *domain.Inventory) inventoryRecord {
	return inventoryRecord{
		FlightID:  rec.FlightID,
		Date:      rec.Date,
		SeatsLeft: strconv.Itoa(rec.SeatsLeft),
		Version:   strconv.FormatInt(rec.Version, 10),
	}
}

func decodeInventory(data []byte) (*domain.Inventory, error) {
	var stored inventoryRecord
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	seats, err := strconv.Atoi(stored.SeatsLeft)
	if err != nil {
		return nil, fmt.Errorf("malformed seats_left %q: %w", stored.SeatsLeft, err)
	}
	version, err := strconv.ParseInt(stored.Version, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed version %q: %w", stored.Version, err)
	}
	return &domain.Inventory{
		FlightID:  stored.FlightID,
		Date:      stored.Date,
		SeatsLeft: seats,
		Version:   version,
	}, nil
}

func inventoryKey(flightID, date string) string {
	return fmt.Sprintf("inventory:%s:%s", flightID, date)
}

var _ InventoryRepository = (*RedisInventoryRepository)(nil)
