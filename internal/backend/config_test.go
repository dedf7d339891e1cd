package backend

import (
	"testing"

	"expensebot/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		DataBackend:   "mongo",
		SQLiteDBPath:  "./data/test.db",
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "expensebot",
	}

	cfg, err := FromAppConfig(appCfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Type != MongoBackend {
		t.Errorf("Type = %v, want mongo", cfg.Type)
	}
	if cfg.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("MongoURI = %v", cfg.MongoURI)
	}
}

func TestFromAppConfig_Invalid(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory needs nothing", Config{Type: MemoryBackend}, false},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "./test.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"mongo complete", Config{Type: MongoBackend, MongoURI: "mongodb://x", MongoDatabase: "db"}, false},
		{"mongo without URI", Config{Type: MongoBackend, MongoDatabase: "db"}, true},
		{"mongo without database", Config{Type: MongoBackend, MongoURI: "mongodb://x"}, true},
		{"unknown type", Config{Type: BackendType("postgres")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
