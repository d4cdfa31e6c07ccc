package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestDB_HealthCheckRedisOnly(t *testing.T) {
	mr := miniredis.RunT(t)
	db := &DB{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	defer db.Close()

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck() error = %v", err)
	}
	if db.GetPostgreSQL() != nil {
		t.Error("GetPostgreSQL() should be nil when the audit database is disabled")
	}

	mr.Close()
	if err := db.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() should fail once Redis is gone")
	}
}
