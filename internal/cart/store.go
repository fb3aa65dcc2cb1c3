package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists carts as JSON blobs in Redis. Every write refreshes the
// TTL so an active ordering session never expires mid-order.
type Store struct {
	R   *redis.Client
	TTL time.Duration
}

func cartKey(id string) string {
	return "cart:" + id
}

func (st *Store) ttl() time.Duration {
	if st == nil || st.TTL <= 0 {
		return 12 * time.Hour
	}
	return st.TTL
}

// Load fetches a cart by id. Returns ErrNotFound when the key is missing
// or has expired.
func (st *Store) Load(ctx context.Context, id string) (Cart, error) {
	data, err := st.R.Get(ctx, cartKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Cart{}, ErrNotFound
		}
		return Cart{}, fmt.Errorf("load cart: %w", err)
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	return c, nil
}

// Save writes the cart and resets its TTL.
func (st *Store) Save(ctx context.Context, c Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := st.R.Set(ctx, cartKey(c.ID), data, st.ttl()).Err(); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Delete removes the cart key.
func (st *Store) Delete(ctx context.Context, id string) error {
	return st.R.Del(ctx, cartKey(id)).Err()
}
