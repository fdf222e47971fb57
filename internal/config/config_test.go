package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "MATCH_ROLE", "PEER_TRANSPORT", "SNAPSHOT_EVERY_FRAMES", "MIGRATE_ON_START"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.MatchRole != "local" || cfg.PeerTransport != "websocket" {
		t.Errorf("role %q transport %q", cfg.MatchRole, cfg.PeerTransport)
	}
	if cfg.SnapshotEveryFrames != 6 || cfg.MigrateOnStart {
		t.Errorf("snapshot every %d migrate %v", cfg.SnapshotEveryFrames, cfg.MigrateOnStart)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MATCH_ROLE", "connector")
	t.Setenv("PEER_TRANSPORT", "tcp")
	t.Setenv("VIEWPORT_WIDTH", "1920")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("PEER_TOKEN_TTL_MINUTES", "not-a-number")

	cfg := Load()

	if cfg.MatchRole != "connector" || cfg.PeerTransport != "tcp" {
		t.Errorf("role %q transport %q", cfg.MatchRole, cfg.PeerTransport)
	}
	if cfg.ViewportWidth != 1920 || !cfg.MigrateOnStart {
		t.Errorf("viewport width %d migrate %v", cfg.ViewportWidth, cfg.MigrateOnStart)
	}
	if cfg.PeerTokenTTLMinutes != 30 {
		t.Errorf("bad int should fall back to default, got %d", cfg.PeerTokenTTLMinutes)
	}
}
