// Package redis stores each user's history as an append-only Redis list of
// JSON-encoded entries.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/keshangamage/Moodmate/internal/model"
)

const defaultPrefix = "moodmate"

// appendScript checks the id, pushes the entry and only then reserves the id,
// so a failed push leaves nothing behind. Scripts run atomically.
var appendScript = goredis.NewScript(`
if ARGV[1] ~= "" and redis.call("SISMEMBER", KEYS[1], ARGV[1]) == 1 then
  return 0
end
redis.call("RPUSH", KEYS[2], ARGV[2])
if ARGV[1] ~= "" then
  redis.call("SADD", KEYS[1], ARGV[1])
end
return 1
`)

type Store struct {
	client goredis.Cmdable
	prefix string
}

func New(client goredis.Cmdable, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

// Dial connects to addr and verifies the server answers PING.
func Dial(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (s *Store) historyKey(userID string) string {
	return fmt.Sprintf("%s:history:%s", s.prefix, userID)
}

func (s *Store) idsKey() string {
	return s.prefix + ":entry_ids"
}

func (s *Store) AppendEntry(ctx context.Context, userID string, e model.Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	added, err := appendScript.Run(ctx, s.client, []string{s.idsKey(), s.historyKey(userID)}, e.ID, raw).Int()
	if err != nil {
		return fmt.Errorf("append entry: %w", err)
	}
	if added == 0 {
		return fmt.Errorf("entry %q already exists", e.ID)
	}
	slog.Debug("appended entry", "store", "redis", "user", userID, "id", e.ID)
	return nil
}

func (s *Store) LoadHistory(ctx context.Context, userID string) ([]model.Entry, error) {
	items, err := s.client.LRange(ctx, s.historyKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history list: %w", err)
	}
	out := make([]model.Entry, 0, len(items))
	for i, item := range items {
		var e model.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode history item %d: %w", i, err)
		}
		out = append(out, e)
	}
	slog.Debug("loaded history", "store", "redis", "user", userID, "entries", len(out))
	return out, nil
}
