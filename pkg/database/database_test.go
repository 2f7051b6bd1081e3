package database

import (
	"examprep_backend/internal/config"
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.DatabaseConfig
		want []string
	}{
		{
			name: "mysql",
			cfg:  config.DatabaseConfig{Driver: "mysql", Host: "db", Port: 3306, User: "u", Password: "p", DBName: "examprep", Charset: "utf8mb4", ParseTime: true},
			want: []string{"u:p@tcp(db:3306)/examprep", "charset=utf8mb4", "parseTime=true"},
		},
		{
			name: "postgres",
			cfg:  config.DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, User: "u", Password: "p", DBName: "examprep", SSLMode: "disable"},
			want: []string{"host=db", "port=5432", "dbname=examprep", "sslmode=disable"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dsn := DSN(&tc.cfg)
			for _, part := range tc.want {
				if !strings.Contains(dsn, part) {
					t.Errorf("DSN %q missing %q", dsn, part)
				}
			}
		})
	}
}

func TestInitRedisDisabled(t *testing.T) {
	client, err := InitRedis(&config.RedisConfig{Enabled: false})
	if err != nil || client != nil {
		t.Fatalf("disabled redis should return nil, nil; got %v, %v", client, err)
	}
}
