package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Service.Name != "inventory-service" {
		t.Fatalf("service name = %q", cfg.Service.Name)
	}
	if cfg.Reservation.DefaultTTLMinutes != 30 {
		t.Fatalf("default ttl = %d, want 30", cfg.Reservation.DefaultTTLMinutes)
	}
	if cfg.Reservation.SweepIntervalSeconds != 60 {
		t.Fatalf("sweep interval = %d, want 60", cfg.Reservation.SweepIntervalSeconds)
	}
	if cfg.Alerts.OutOfStockRule != "available == 0" {
		t.Fatalf("out of stock rule = %q", cfg.Alerts.OutOfStockRule)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
service:
  name: inventory-service
  port: 9000
mysql:
  dsn: user:pass@tcp(db:3306)/warehouse
reservation:
  default_ttl_minutes: 15
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MYSQL_DSN", "user:pass@tcp(other:3306)/warehouse")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Service.Port != 9000 {
		t.Fatalf("port = %d, want 9000", cfg.Service.Port)
	}
	if cfg.Reservation.DefaultTTLMinutes != 15 {
		t.Fatalf("ttl = %d, want 15", cfg.Reservation.DefaultTTLMinutes)
	}
	// env wins over file
	if cfg.MySQL.DSN != "user:pass@tcp(other:3306)/warehouse" {
		t.Fatalf("dsn = %q", cfg.MySQL.DSN)
	}
	// defaults still fill unset fields
	if cfg.Kafka.EventTopic != "inventory-events" {
		t.Fatalf("event topic = %q", cfg.Kafka.EventTopic)
	}
}

func TestCurrentPanicsBeforeLoad(t *testing.T) {
	mu.Lock()
	saved := current
	current = nil
	mu.Unlock()
	defer func() {
		mu.Lock()
		current = saved
		mu.Unlock()
	}()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Current()
}
