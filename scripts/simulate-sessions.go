package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Seeds scheduled sessions into Redis at offsets that exercise every phase,
// so the status endpoint can be poked without a booking backend running.

type ScheduledSession struct {
	ID                   string     `json:"id"`
	PatientID            string     `json:"patient_id"`
	PsychologistID       string     `json:"psychologist_id"`
	ScheduledStart       *time.Time `json:"scheduled_start,omitempty"`
	PatientJoinedAt      *time.Time `json:"patient_joined_at,omitempty"`
	PsychologistJoinedAt *time.Time `json:"psychologist_joined_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

var (
	redisURL  = flag.String("redis", "localhost:6379", "Redis URL (host:port)")
	redisPass = flag.String("password", "", "Redis password")
	perPhase  = flag.Int("per-phase", 3, "Number of sessions to seed per phase scenario")
	ttl       = flag.Duration("ttl", 2*time.Hour, "Snapshot TTL")
	cleanup   = flag.Bool("cleanup", false, "Delete previously seeded sessions and exit")
)

type scenario struct {
	name       string
	offset     time.Duration
	bothJoined bool
}

var scenarios = []scenario{
	{name: "upcoming", offset: 2 * time.Hour},
	{name: "join-window", offset: 8 * time.Minute},
	{name: "active", offset: -5 * time.Minute, bothJoined: true},
	{name: "grace-expired", offset: -15 * time.Minute},
	{name: "concluded", offset: -55 * time.Minute, bothJoined: true},
}

func main() {
	flag.Parse()

	ctx := context.Background()

	rdb := redis.NewClient(&redis.Options{
		Addr:     *redisURL,
		Password: *redisPass,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		fmt.Printf("Failed to connect to Redis: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Connected to Redis at %s\n", *redisURL)

	if *cleanup {
		removeSeeded(ctx, rdb)
		return
	}

	seeded := make([]string, 0, len(scenarios)*(*perPhase))
	now := time.Now()

	pipe := rdb.Pipeline()
	for _, sc := range scenarios {
		for i := 0; i < *perPhase; i++ {
			sessionID := uuid.New().String()
			start := now.Add(sc.offset)

			ss := ScheduledSession{
				ID:             sessionID,
				PatientID:      fmt.Sprintf("demo-patient-%s-%d", sc.name, i+1),
				PsychologistID: fmt.Sprintf("demo-psychologist-%s-%d", sc.name, i+1),
				ScheduledStart: &start,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if sc.bothJoined {
				joined := start.Add(time.Minute)
				ss.PatientJoinedAt = &joined
				ss.PsychologistJoinedAt = &joined
			}

			raw, _ := json.Marshal(ss)
			pipe.Set(ctx, fmt.Sprintf("therapy:session:%s", sessionID), raw, *ttl)
			pipe.SAdd(ctx, "therapy:demo_sessions", sessionID)

			seeded = append(seeded, sessionID)
			fmt.Printf("   %-13s %s (starts %s)\n", sc.name, sessionID, start.Format(time.RFC3339))
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		fmt.Printf("❌ Failed to seed sessions: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n✅ Seeded %d sessions across %d phase scenarios\n", len(seeded), len(scenarios))
	fmt.Println("💡 Try: curl localhost:8086/api/v1/sessions/<id>/status")
}

func removeSeeded(ctx context.Context, rdb *redis.Client) {
	ids, err := rdb.SMembers(ctx, "therapy:demo_sessions").Result()
	if err != nil {
		fmt.Printf("❌ Failed to list seeded sessions: %v\n", err)
		os.Exit(1)
	}

	pipe := rdb.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, fmt.Sprintf("therapy:session:%s", id))
	}
	pipe.Del(ctx, "therapy:demo_sessions")

	if _, err := pipe.Exec(ctx); err != nil {
		fmt.Printf("❌ Cleanup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("🧹 Removed %d seeded sessions\n", len(ids))
}
