package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"github.com/angeljunes/vg-ms-attorney/internal/attorney/models"
	"github.com/angeljunes/vg-ms-attorney/pkg/platform/sentinel"
)

const (
	keyPrefixRecord   = "attorney:id:"
	keyPrefixUID      = "attorney:uid:"
	keyPrefixStatus   = "attorney:status:"
	keyPrefixDocument = "attorney:doc:"
	keyPrefixEmail    = "attorney:email:"
)

// maxSaveAttempts bounds optimistic retries when a watched key changes
// between the read and the EXEC.
const maxSaveAttempts = 3

// redisRecord carries the password mirror, which the API model hides from JSON.
type redisRecord struct {
	*models.Attorney
	Password string `json:"password,omitempty"`
}

// RedisStore keeps each attorney as a JSON document plus set-based secondary
// indexes for status, document number and email.
type RedisStore struct {
	client     *redis.Client
	durationMs *prometheus.HistogramVec
}

// NewRedis registers the store latency histogram on reg; a nil reg leaves it
// unregistered.
func NewRedis(client *redis.Client, reg prometheus.Registerer) *RedisStore {
	return &RedisStore{
		client: client,
		durationMs: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "attorney_redis_store_duration_ms",
			Help:    "Latency of Redis attorney store operations in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
		}, []string{"op"}),
	}
}

// stringGetter is satisfied by both the client and a WATCH transaction.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Save writes the record, its indexes and the uid claim in one MULTI/EXEC
// under WATCH, so a failed save never leaves a claim pointing at a missing
// record.
func (s *RedisStore) Save(ctx context.Context, a *models.Attorney) error {
	defer s.observe("save", time.Now())

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	payload, err := json.Marshal(redisRecord{Attorney: a, Password: a.Password})
	if err != nil {
		return fmt.Errorf("marshal attorney: %w", err)
	}

	recordKey := keyPrefixRecord + a.ID
	uidKey := keyPrefixUID + a.UID
	watched := []string{recordKey}
	if a.UID != "" {
		watched = append(watched, uidKey)
	}

	txf := func(tx *redis.Tx) error {
		if a.UID != "" {
			owner, err := tx.Get(ctx, uidKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return fmt.Errorf("read attorney uid owner: %w", err)
			}
			if err == nil && owner != a.ID {
				return sentinel.ErrConflict
			}
		}

		prev, err := load(ctx, tx, a.ID)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if prev != nil {
				pipe.SRem(ctx, keyPrefixStatus+string(prev.Status), prev.ID)
				pipe.SRem(ctx, keyPrefixDocument+prev.DocumentNumber, prev.ID)
				pipe.SRem(ctx, keyPrefixEmail+prev.Email, prev.ID)
			}
			if a.UID != "" {
				pipe.Set(ctx, uidKey, a.ID, 0)
			}
			pipe.Set(ctx, recordKey, payload, 0)
			pipe.SAdd(ctx, keyPrefixStatus+string(a.Status), a.ID)
			pipe.SAdd(ctx, keyPrefixDocument+a.DocumentNumber, a.ID)
			pipe.SAdd(ctx, keyPrefixEmail+a.Email, a.ID)
			return nil
		})
		return err
	}

	for range maxSaveAttempts {
		err = s.client.Watch(ctx, txf, watched...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, sentinel.ErrConflict) {
			return fmt.Errorf("save attorney: %w", err)
		}
		return err
	}
	return fmt.Errorf("save attorney: %w", err)
}

func (s *RedisStore) FindByID(ctx context.Context, id string) (*models.Attorney, error) {
	defer s.observe("find_by_id", time.Now())
	return load(ctx, s.client, id)
}

func (s *RedisStore) FindByDocumentNumber(ctx context.Context, documentNumber string) (*models.Attorney, error) {
	defer s.observe("find_by_document", time.Now())
	return s.oldestIn(ctx, keyPrefixDocument+documentNumber)
}

func (s *RedisStore) FindByEmail(ctx context.Context, email string) (*models.Attorney, error) {
	defer s.observe("find_by_email", time.Now())
	return s.oldestIn(ctx, keyPrefixEmail+email)
}

func (s *RedisStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.Attorney, error) {
	defer s.observe("list_by_status", time.Now())
	out, err := s.members(ctx, keyPrefixStatus+string(status))
	if err != nil {
		return nil, err
	}
	sortByCreated(out)
	return out, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func load(ctx context.Context, c stringGetter, id string) (*models.Attorney, error) {
	raw, err := c.Get(ctx, keyPrefixRecord+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get attorney: %w", err)
	}
	return decodeRecord(raw)
}

func (s *RedisStore) oldestIn(ctx context.Context, setKey string) (*models.Attorney, error) {
	list, err := s.members(ctx, setKey)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, sentinel.ErrNotFound
	}
	sortByCreated(list)
	return list[0], nil
}

// members resolves every ID in setKey to its record, skipping IDs whose
// document has vanished.
func (s *RedisStore) members(ctx context.Context, setKey string) ([]*models.Attorney, error) {
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("read attorney index: %w", err)
	}
	out := make([]*models.Attorney, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefixRecord + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get attorneys: %w", err)
	}
	for _, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		a, err := decodeRecord([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func decodeRecord(raw []byte) (*models.Attorney, error) {
	rec := redisRecord{Attorney: &models.Attorney{}}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal attorney: %w", err)
	}
	rec.Attorney.Password = rec.Password
	return rec.Attorney, nil
}

func (s *RedisStore) observe(op string, start time.Time) {
	s.durationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}
