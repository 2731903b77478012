package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/user-service/internal/domain"
)

// redisUserRepository stores each user as a hash. The email index key is
// claimed with SETNX, which is what actually enforces email uniqueness.
type redisUserRepository struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRedisUserRepository returns a Redis-backed implementation.
func NewRedisUserRepository(client redis.Cmdable, prefix string) UserRepository {
	if prefix == "" {
		prefix = "users"
	}
	return &redisUserRepository{client: client, prefix: prefix, now: time.Now}
}

func (r *redisUserRepository) userKey(id string) string {
	return r.prefix + ":user:" + id
}

func (r *redisUserRepository) emailKey(email string) string {
	return r.prefix + ":email:" + email
}

func (r *redisUserRepository) idsKey() string {
	return r.prefix + ":ids"
}

func (r *redisUserRepository) Create(ctx context.Context, user *domain.User) error {
	claimed, err := r.client.SetNX(ctx, r.emailKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return ErrDuplicate
	}

	exists, err := r.client.Exists(ctx, r.userKey(user.ID)).Result()
	if err == nil && exists > 0 {
		err = ErrDuplicate
	}
	if err != nil {
		r.client.Del(ctx, r.emailKey(user.Email))
		return err
	}

	now := r.now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.userKey(user.ID), encodeUser(user))
		pipe.ZAdd(ctx, r.idsKey(), redis.Z{Score: float64(now.UnixNano()), Member: user.ID})
		return nil
	})
	return err
}

func (r *redisUserRepository) FindOne(ctx context.Context, filter domain.UserFilter) (*domain.User, error) {
	id := filter.ID
	if id == "" && filter.Email != "" {
		var err error
		id, err = r.client.Get(ctx, r.emailKey(filter.Email)).Result()
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
	}

	if id == "" {
		users, err := r.Find(ctx, filter)
		if err != nil {
			return nil, err
		}
		if len(users) == 0 {
			return nil, ErrNotFound
		}
		return &users[0], nil
	}

	user, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !filter.Matches(user) {
		return nil, ErrNotFound
	}
	return user, nil
}

func (r *redisUserRepository) Find(ctx context.Context, filter domain.UserFilter) ([]domain.User, error) {
	ids, err := r.client.ZRange(ctx, r.idsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	if len(ids) > 0 {
		_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, id := range ids {
				cmds[i] = pipe.HGetAll(ctx, r.userKey(id))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	users := make([]domain.User, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		user, err := decodeUser(fields)
		if err != nil {
			return nil, err
		}
		if filter.Matches(user) {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (r *redisUserRepository) Update(ctx context.Context, filter domain.UserFilter, changes domain.UserChanges) (*domain.User, error) {
	user, err := r.FindOne(ctx, filter)
	if err != nil {
		return nil, err
	}
	if changes.Empty() {
		return user, nil
	}

	changes.Apply(user)
	user.UpdatedAt = r.now().UTC()

	fields := map[string]any{"updated_at": user.UpdatedAt.Format(time.RFC3339Nano)}
	if changes.Name != nil {
		fields["name"] = user.Name
	}
	if changes.Role != nil {
		fields["role"] = user.Role.String()
	}
	if changes.Active != nil {
		fields["active"] = strconv.FormatBool(user.Active)
	}
	if err := r.client.HSet(ctx, r.userKey(user.ID), fields).Err(); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *redisUserRepository) Delete(ctx context.Context, filter domain.UserFilter) error {
	user, err := r.FindOne(ctx, filter)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.userKey(user.ID), r.emailKey(user.Email))
		pipe.ZRem(ctx, r.idsKey(), user.ID)
		return nil
	})
	return err
}

func (r *redisUserRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisUserRepository) load(ctx context.Context, id string) (*domain.User, error) {
	fields, err := r.client.HGetAll(ctx, r.userKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return decodeUser(fields)
}

func encodeUser(user *domain.User) map[string]any {
	return map[string]any{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"role":          user.Role.String(),
		"active":        strconv.FormatBool(user.Active),
		"created_at":    user.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":    user.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func decodeUser(fields map[string]string) (*domain.User, error) {
	role, err := domain.ParseRole(fields["role"])
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", fields["id"], err)
	}
	active, err := strconv.ParseBool(fields["active"])
	if err != nil {
		return nil, fmt.Errorf("user %s: active: %w", fields["id"], err)
	}
	user := &domain.User{
		ID:           fields["id"],
		Name:         fields["name"],
		Email:        fields["email"],
		PasswordHash: fields["password_hash"],
		Role:         role,
		Active:       active,
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339Nano, fields["created_at"])
	user.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updated_at"])
	return user, nil
}
