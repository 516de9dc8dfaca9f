package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"theatre-concessions/models"

	"github.com/redis/go-redis/v9"
)

// Products is a read-through cache for product rows. Cache trouble is never
// fatal: a miss or a redis error just sends the caller to the database.
type Products struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewProducts(rdb *redis.Client) *Products {
	return &Products{rdb: rdb, ttl: 5 * time.Minute}
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}

func (c *Products) Get(ctx context.Context, id int64) (*models.Product, bool) {
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	switch {
	case err == nil:
		var p models.Product
		if err := json.Unmarshal(data, &p); err != nil {
			log.Printf("unmarshal cached product (continuing with DB): %v", err)
			return nil, false
		}
		return &p, true
	case errors.Is(err, redis.Nil):
		return nil, false
	default:
		log.Printf("redis error (continuing with DB): %v", err)
		return nil, false
	}
}

func (c *Products) Set(ctx context.Context, p *models.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Printf("marshal product for cache: %v", err)
		return
	}
	if err := c.rdb.Set(ctx, productKey(p.ID), data, c.ttl).Err(); err != nil {
		log.Printf("cache product: %v", err)
	}
}

func (c *Products) Invalidate(ctx context.Context, id int64) {
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		log.Printf("invalidate product cache %d: %v", id, err)
	}
}
