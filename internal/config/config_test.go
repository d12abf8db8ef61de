package config

import (
	"errors"
	"testing"
)

func TestQuiz_WeightMap(t *testing.T) {
	if m := (Quiz{}).WeightMap(); m != nil {
		t.Errorf("empty weights = %v, want nil", m)
	}

	q := Quiz{Weights: []SectionWeight{
		{Section: "Tables", Weight: 0.5},
		{Section: "Lists", Weight: 0.25},
		{Section: "Tables", Weight: 0.25},
	}}
	m := q.WeightMap()
	if len(m) != 2 || m["Tables"] != 0.75 || m["Lists"] != 0.25 {
		t.Errorf("WeightMap = %v", m)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() Config {
		return Config{
			DB:   DB{URL: "postgres://localhost/quiz"},
			Auth: Auth{JWTSecret: "secret"},
			Bank: Bank{Source: SourceFile},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
		anyErr  bool
	}{
		{name: "file source", mutate: func(*Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DB.URL = "" }, wantErr: ErrMissingEnvironmentVariables},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: ErrMissingEnvironmentVariables},
		{name: "github without token", mutate: func(c *Config) {
			c.Bank.Source = SourceGitHub
			c.Bank.GitHubRepo = "owner/bank"
		}, wantErr: ErrMissingEnvironmentVariables},
		{name: "github ok", mutate: func(c *Config) {
			c.Bank.Source = SourceGitHub
			c.Bank.GitHubRepo = "owner/bank"
			c.Bank.GitHubToken = "tkn"
		}},
		{name: "minio without bucket", mutate: func(c *Config) {
			c.Bank.Source = SourceMinio
			c.Bank.MinioEndpoint = "localhost:9000"
		}, wantErr: ErrMissingEnvironmentVariables},
		{name: "unknown source", mutate: func(c *Config) { c.Bank.Source = "ftp" }, anyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.validate()
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("validate() = %v, want %v", err, tt.wantErr)
				}
			case tt.anyErr:
				if err == nil {
					t.Error("validate() = nil, want error")
				}
			default:
				if err != nil {
					t.Errorf("validate() = %v", err)
				}
			}
		})
	}
}
