package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_PATH", t.TempDir()+"/test.db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.VectorSize != 1024 {
		t.Errorf("expected default vector size 1024, got %d", cfg.VectorSize)
	}
	if cfg.SparseVocabSize != 30000 {
		t.Errorf("expected default sparse vocab size 30000, got %d", cfg.SparseVocabSize)
	}
	if cfg.TimeDecayFactor != 0.95 {
		t.Errorf("expected default decay factor 0.95, got %f", cfg.TimeDecayFactor)
	}
	if cfg.RRFConstant != 60 {
		t.Errorf("expected default RRF k 60, got %f", cfg.RRFConstant)
	}
	if cfg.ReadyProbeTimeout != 500*time.Millisecond {
		t.Errorf("expected default ready probe timeout 500ms, got %v", cfg.ReadyProbeTimeout)
	}
	if cfg.HasRemoteEmbeddings() {
		t.Error("expected no remote embeddings configured by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_PATH", t.TempDir()+"/test.db")
	t.Setenv("QDRANT_VECTOR_SIZE", "768")
	t.Setenv("TIME_DECAY_FACTOR", "0.9")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.VectorSize != 768 {
		t.Errorf("expected vector size 768, got %d", cfg.VectorSize)
	}
	if cfg.TimeDecayFactor != 0.9 {
		t.Errorf("expected decay factor 0.9, got %f", cfg.TimeDecayFactor)
	}
	if !cfg.HasRemoteEmbeddings() {
		t.Error("expected remote embeddings to be configured")
	}
}

func TestLoadInvalidVectorSize(t *testing.T) {
	t.Setenv("DB_PATH", t.TempDir()+"/test.db")
	t.Setenv("QDRANT_VECTOR_SIZE", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid QDRANT_VECTOR_SIZE")
	}

	t.Setenv("QDRANT_VECTOR_SIZE", "-5")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative QDRANT_VECTOR_SIZE")
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	t.Setenv("DB_PATH", t.TempDir()+"/test.db")
	t.Setenv("LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid LOG_LEVEL")
	}
}
