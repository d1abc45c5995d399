package holdstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/metinatakli/cinema-booking-core/internal/clock"
	"github.com/metinatakli/cinema-booking-core/internal/domain"
	"github.com/redis/go-redis/v9"
)

const expiryIndexKey = "holds:expiry"

func holdKey(holdID string) string {
	return fmt.Sprintf("hold:%s", holdID)
}

func claimKey(showtimeID, seatID int) string {
	return fmt.Sprintf("hold:seat:%d:%d", showtimeID, seatID)
}

func showtimeIndexKey(showtimeID int) string {
	return fmt.Sprintf("holds:showtime:%d", showtimeID)
}

func warnedKey(holdID string) string {
	return fmt.Sprintf("hold_warned:%s", holdID)
}

var putHoldScript = redis.NewScript(`
	-- KEYS = [hold key, showtime index, expiry index, seat claim keys...]
	-- ARGV = [hold json, claim json, ttl ms, expires at ms, hold id, seat ids...]

	local conflicts = {}
	for i = 4, #KEYS do
		if redis.call("EXISTS", KEYS[i]) == 1 then
			table.insert(conflicts, ARGV[i + 2])
		end
	end

	if #conflicts > 0 then
		return conflicts
	end

	for i = 4, #KEYS do
		redis.call("SET", KEYS[i], ARGV[2], "PX", ARGV[3])
		redis.call("SADD", KEYS[2], ARGV[i + 2])
	end

	redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[3])
	redis.call("ZADD", KEYS[3], ARGV[4], ARGV[5])

	-- the index must outlive every claim it points at
	local ttl = redis.call("PTTL", KEYS[2])
	if ttl < tonumber(ARGV[3]) then
		redis.call("PEXPIRE", KEYS[2], ARGV[3])
	end

	return conflicts
`)

var removeHoldScript = redis.NewScript(`
	-- KEYS = [hold key, showtime index, expiry index, seat claim keys...]
	-- ARGV = [hold id, seat ids...]

	for i = 4, #KEYS do
		local claim = redis.call("GET", KEYS[i])
		if claim and cjson.decode(claim).hold_id == ARGV[1] then
			redis.call("DEL", KEYS[i])
			redis.call("SREM", KEYS[2], ARGV[i - 2])
		end
	end

	redis.call("DEL", KEYS[1])
	redis.call("ZREM", KEYS[3], ARGV[1])

	return "OK"
`)

var heldSeatsScript = redis.NewScript(`
	local setKey = KEYS[1]
	local showtimeId = ARGV[1]
	local cursor = "0"
	local batchSize = 100
	local expiredSeats = {}
	local held = {}

	repeat
		local result = redis.call("SSCAN", setKey, cursor, "COUNT", batchSize)
		cursor = result[1]
		local seatIds = result[2]

		for _, seatId in ipairs(seatIds) do
			local claim = redis.call("GET", "hold:seat:" .. showtimeId .. ":" .. seatId)
			if claim then
				table.insert(held, seatId)
				table.insert(held, claim)
			else
				table.insert(expiredSeats, seatId)
			end
		end
	until cursor == "0"

	if #expiredSeats > 0 then
		redis.call("SREM", setKey, unpack(expiredSeats))
	end

	return held
`)

// RedisStore keeps each hold as one JSON document plus one claim key per seat.
// All keys of a hold share its TTL so they lapse together.
type RedisStore struct {
	client redis.UniversalClient
	clock  clock.Clock
}

func NewRedisStore(client redis.UniversalClient, clk clock.Clock) *RedisStore {
	return &RedisStore{
		client: client,
		clock:  clk,
	}
}

func (s *RedisStore) Put(ctx context.Context, hold domain.Hold) error {
	ttl := hold.TimeRemaining(s.clock.Now())
	if ttl <= 0 {
		return domain.ErrHoldExpired
	}

	holdJSON, err := json.Marshal(toHoldRecord(hold))
	if err != nil {
		return err
	}

	claimJSON, err := json.Marshal(claimOf(hold))
	if err != nil {
		return err
	}

	seatIDs := hold.SeatIDs()

	keys := []string{holdKey(hold.ID), showtimeIndexKey(hold.ShowtimeID), expiryIndexKey}
	args := []any{string(holdJSON), string(claimJSON), ttl.Milliseconds(), hold.ExpiresAt.UnixMilli(), hold.ID}

	for _, seatID := range seatIDs {
		keys = append(keys, claimKey(hold.ShowtimeID, seatID))
		args = append(args, seatID)
	}

	res, err := putHoldScript.Run(ctx, s.client, keys, args...).StringSlice()
	if err != nil {
		return storeErr(err)
	}

	if len(res) > 0 {
		conflicts := make([]int, 0, len(res))
		for _, v := range res {
			id, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("unexpected seat id %q in hold store: %w", v, err)
			}
			conflicts = append(conflicts, id)
		}

		return domain.NewSeatUnavailableError(conflicts)
	}

	return nil
}

func (s *RedisStore) Get(ctx context.Context, holdID string) (*domain.Hold, error) {
	data, err := s.client.Get(ctx, holdKey(holdID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrHoldNotFound
		}
		return nil, storeErr(err)
	}

	var record holdRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode hold %s: %w", holdID, err)
	}

	hold := record.toDomain()
	if hold.Expired(s.clock.Now()) {
		return nil, domain.ErrHoldNotFound
	}

	return &hold, nil
}

func (s *RedisStore) Claim(ctx context.Context, showtimeID, seatID int) (*domain.SeatClaim, error) {
	data, err := s.client.Get(ctx, claimKey(showtimeID, seatID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, storeErr(err)
	}

	var record claimRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode seat claim %d/%d: %w", showtimeID, seatID, err)
	}

	claim := record.toDomain()
	return &claim, nil
}

func (s *RedisStore) HeldSeats(ctx context.Context, showtimeID int) (map[int]domain.SeatClaim, error) {
	res, err := heldSeatsScript.Run(ctx, s.client, []string{showtimeIndexKey(showtimeID)}, showtimeID).StringSlice()
	if err != nil {
		return nil, storeErr(err)
	}

	held := make(map[int]domain.SeatClaim, len(res)/2)

	for i := 0; i+1 < len(res); i += 2 {
		seatID, err := strconv.Atoi(res[i])
		if err != nil {
			return nil, fmt.Errorf("unexpected seat id %q in hold store: %w", res[i], err)
		}

		var record claimRecord
		if err := json.Unmarshal([]byte(res[i+1]), &record); err != nil {
			return nil, fmt.Errorf("decode seat claim %d/%d: %w", showtimeID, seatID, err)
		}

		held[seatID] = record.toDomain()
	}

	return held, nil
}

// Remove deletes the hold and those of its claims that still belong to it.
func (s *RedisStore) Remove(ctx context.Context, hold domain.Hold) error {
	keys := []string{holdKey(hold.ID), showtimeIndexKey(hold.ShowtimeID), expiryIndexKey}
	args := []any{hold.ID}

	for _, seatID := range hold.SeatIDs() {
		keys = append(keys, claimKey(hold.ShowtimeID, seatID))
		args = append(args, seatID)
	}

	if err := removeHoldScript.Run(ctx, s.client, keys, args...).Err(); err != nil {
		return storeErr(err)
	}

	return nil
}

func (s *RedisStore) TimeRemaining(ctx context.Context, holdID string) (time.Duration, error) {
	ttl, err := s.client.PTTL(ctx, holdKey(holdID)).Result()
	if err != nil {
		return 0, storeErr(err)
	}

	// -2 (missing) and -1 (no expiry) come back as negative durations
	if ttl <= 0 {
		return 0, domain.ErrHoldNotFound
	}

	return ttl, nil
}

// ExpiringWithin returns live holds that lapse within the window, soonest first.
func (s *RedisStore) ExpiringWithin(ctx context.Context, window time.Duration) ([]domain.Hold, error) {
	now := s.clock.Now()

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, expiryIndexKey, "-inf", strconv.FormatInt(now.UnixMilli(), 10))
	idsCmd := pipe.ZRangeByScore(ctx, expiryIndexKey, &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(now.UnixMilli(), 10),
		Max: strconv.FormatInt(now.Add(window).UnixMilli(), 10),
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storeErr(err)
	}

	ids := idsCmd.Val()
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = holdKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, storeErr(err)
	}

	holds := make([]domain.Hold, 0, len(values))

	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			// removed after promotion or cancellation
			continue
		}

		var record holdRecord
		if err := json.Unmarshal([]byte(str), &record); err != nil {
			return nil, fmt.Errorf("decode hold %s: %w", ids[i], err)
		}

		holds = append(holds, record.toDomain())
	}

	return holds, nil
}

// MarkWarned reports true only for the first caller per hold.
func (s *RedisStore) MarkWarned(ctx context.Context, holdID string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, warnedKey(holdID), 1, ttl).Result()
	if err != nil {
		return false, storeErr(err)
	}

	return ok, nil
}

func storeErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
}
