package config

import (
	"encoding/json"
	"os"
)

type serverJSON struct {
	Address          *string `json:"address"`
	DatabaseDSN      *string `json:"database_dsn"`
	DedupWindowHours *int    `json:"dedup_window_hours"`
	ForwardEnabled   *bool   `json:"forward_enabled"`
	ForwardURL       *string `json:"forward_url"`
	ForwardTimeout   *int    `json:"forward_timeout"`
	TrustedSubnet    *string `json:"trusted_subnet"`
}

func loadServerJSON(path string) (*serverJSON, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg serverJSON
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
