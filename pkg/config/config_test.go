package config

import (
	"testing"
	"time"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("FIREBASE_API_KEY", "fb-key")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected port %s", cfg.Server.Port)
	}
	if cfg.Transcription.Provider != ProviderHTTP || cfg.Summarization.Provider != ProviderHTTP {
		t.Fatalf("unexpected providers %s/%s", cfg.Transcription.Provider, cfg.Summarization.Provider)
	}
	if cfg.Trello.BaseURL != "https://api.trello.com/1" {
		t.Fatalf("unexpected trello base url %s", cfg.Trello.BaseURL)
	}
	if cfg.JWT.AccessExpiry != 12*time.Hour {
		t.Fatalf("unexpected expiry %s", cfg.JWT.AccessExpiry)
	}
}

func TestLoad_ReadsFlatVariableNames(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TRELLO_API_KEY", "key-1")
	t.Setenv("TRELLO_TOKEN", "token-1")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Trello.APIKey != "key-1" || cfg.Trello.Token != "token-1" {
		t.Fatalf("trello credentials not read: %+v", cfg.Trello)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port not read: %s", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing firebase key", mutate: func(c *Config) { c.Firebase.APIKey = "" }, wantErr: true},
		{name: "unknown transcription provider", mutate: func(c *Config) { c.Transcription.Provider = "whisper" }, wantErr: true},
		{name: "assemblyai without key", mutate: func(c *Config) { c.Transcription.Provider = ProviderAssemblyAI }, wantErr: true},
		{name: "groq without key", mutate: func(c *Config) { c.Summarization.Provider = ProviderGroq }, wantErr: true},
		{name: "groq with key", mutate: func(c *Config) {
			c.Summarization.Provider = ProviderGroq
			c.Groq.APIKey = "g"
		}},
		{name: "bad upload size", mutate: func(c *Config) { c.Server.MaxUploadSize = "lots" }, wantErr: true},
		{name: "default jwt secret in production", mutate: func(c *Config) { c.Server.Environment = "production" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Server:        ServerConfig{Environment: "development"},
				Transcription: TranscriptionConfig{Provider: ProviderHTTP, BaseURL: "http://t"},
				Summarization: SummarizationConfig{Provider: ProviderHTTP, BaseURL: "http://s"},
				Firebase:      FirebaseConfig{APIKey: "fb"},
				JWT:           JWTConfig{AccessSecret: defaultJWTSecret},
			}
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaxUploadBytes(t *testing.T) {
	s := ServerConfig{MaxUploadSize: "500M"}
	n, err := s.MaxUploadBytes()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n != 500*1024*1024 {
		t.Fatalf("unexpected size %d", n)
	}

	s.MaxUploadSize = ""
	if n, _ := s.MaxUploadBytes(); n != 0 {
		t.Fatalf("empty size should mean no limit, got %d", n)
	}
}
