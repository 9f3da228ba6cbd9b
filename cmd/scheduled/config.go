package main

import (
	configsqlite "maischedule-backend/lib/configutil/sqlite"
)

type OriginConfig struct {
	BaseUrl        string `json:"base_url"`
	UserAgent      string `json:"user_agent"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	CacheEntries   int    `json:"cache_entries"`
	CacheTtl       int    `json:"cache_ttl_seconds"`
}

type IngestConfig struct {
	Groups      []string `json:"groups"`
	Weeks       []int    `json:"weeks"`
	MaxInflight int      `json:"max_inflight"`
	// how often the daemon re-ingests; zero disables the timer so
	// `scheduled run` stays a one-shot
	IntervalMinutes int `json:"interval_minutes"`
}

type Config struct {
	Database configsqlite.Struct `json:"database"`
	Origin   OriginConfig        `json:"origin"`
	Ingest   IngestConfig        `json:"ingest"`
}
