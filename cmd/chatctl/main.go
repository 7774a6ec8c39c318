// chatctl inspects the Redis chat store of a running deployment: live
// conversations, rate limit counters, and their TTLs. Only useful when
// CHAT_STORE_BACKEND=redis; the in-memory store is not observable from
// outside the process.
//
// Usage:
//
//	chatctl stats
//	chatctl sessions
//	chatctl export <session-id> <paper-id>
//	chatctl rate-check <session-id>
//	chatctl rate-reset <session-id>
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"

	"paper-chat-be/internal/config"
)

var (
	header  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen)
	warn    = color.New(color.FgYellow)
	fail    = color.New(color.FgRed)
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	opts, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		fail.Printf("Invalid REDIS_URL: %v\n", err)
		os.Exit(1)
	}
	rdb := redis.NewClient(opts)
	ctx := context.Background()

	if err := rdb.Ping(ctx).Err(); err != nil {
		fail.Printf("Cannot reach Redis at %s: %v\n", cfg.App.RedisURL, err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "stats":
		err = runStats(ctx, rdb)
	case "sessions":
		err = runSessions(ctx, rdb)
	case "export":
		if len(os.Args) != 4 {
			usage()
			os.Exit(2)
		}
		err = runExport(ctx, rdb, os.Args[2], os.Args[3])
	case "rate-check":
		if len(os.Args) != 3 {
			usage()
			os.Exit(2)
		}
		err = runRateCheck(ctx, rdb, os.Args[2])
	case "rate-reset":
		if len(os.Args) != 3 {
			usage()
			os.Exit(2)
		}
		err = runRateReset(ctx, rdb, os.Args[2])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fail.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: chatctl <stats|sessions|export|rate-check|rate-reset> [args]")
}

func scanKeys(ctx context.Context, rdb *redis.Client, pattern string) ([]string, error) {
	var keys []string
	iter := rdb.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

func runStats(ctx context.Context, rdb *redis.Client) error {
	convKeys, err := scanKeys(ctx, rdb, "chat:session:*")
	if err != nil {
		return err
	}
	rateKeys, err := scanKeys(ctx, rdb, "rate_limit:*")
	if err != nil {
		return err
	}

	sessions := map[string]struct{}{}
	papers := map[string]struct{}{}
	for _, key := range convKeys {
		// chat:session:{sessionID}:{paperID}
		parts := strings.SplitN(key, ":", 4)
		if len(parts) == 4 {
			sessions[parts[2]] = struct{}{}
			papers[parts[3]] = struct{}{}
		}
	}

	header.Println("Chat store stats")
	fmt.Printf("  conversations:      %d\n", len(convKeys))
	fmt.Printf("  unique sessions:    %d\n", len(sessions))
	fmt.Printf("  unique papers:      %d\n", len(papers))
	fmt.Printf("  active rate limits: %d\n", len(rateKeys))
	return nil
}

func runSessions(ctx context.Context, rdb *redis.Client) error {
	keys, err := scanKeys(ctx, rdb, "chat:sessions:*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		warn.Println("No live sessions")
		return nil
	}

	header.Println("Live sessions")
	for _, key := range keys {
		sessionID := strings.TrimPrefix(key, "chat:sessions:")
		papers, err := rdb.SMembers(ctx, key).Result()
		if err != nil {
			return err
		}
		ttl, _ := rdb.TTL(ctx, key).Result()
		fmt.Printf("  %s  papers=%v  expires in %s\n", sessionID, papers, ttl.Round(time.Second))
	}
	return nil
}

func runExport(ctx context.Context, rdb *redis.Client, sessionID, paperID string) error {
	key := fmt.Sprintf("chat:session:%s:%s", sessionID, paperID)
	data, err := rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		warn.Println("No such conversation")
		return nil
	}
	if err != nil {
		return err
	}

	// Re-indent for readability.
	var pretty map[string]interface{}
	if err := json.Unmarshal([]byte(data), &pretty); err != nil {
		return fmt.Errorf("corrupt conversation payload: %w", err)
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
	return nil
}

func runRateCheck(ctx context.Context, rdb *redis.Client, sessionID string) error {
	key := fmt.Sprintf("rate_limit:%s:hour", sessionID)
	count, err := rdb.Get(ctx, key).Int()
	if err == redis.Nil {
		success.Println("No rate window (0 messages this hour)")
		return nil
	}
	if err != nil {
		return err
	}
	ttl, _ := rdb.TTL(ctx, key).Result()
	fmt.Printf("messages this window: %d (resets in %s)\n", count, ttl.Round(time.Second))
	return nil
}

func runRateReset(ctx context.Context, rdb *redis.Client, sessionID string) error {
	key := fmt.Sprintf("rate_limit:%s:hour", sessionID)
	if err := rdb.Del(ctx, key).Err(); err != nil {
		return err
	}
	success.Printf("Rate window cleared for %s\n", sessionID)
	return nil
}
