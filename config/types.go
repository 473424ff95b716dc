package config

import "time"

type Config struct {
	TFIDF     TFIDFConfig
	Tokenizer TokenizerConfig
	Redis     RedisConfig
	DB        PostgresConfig
	Mongo     MongoConfig
}

type TFIDFConfig struct {
	Smoothing     bool
	Workers       int
	Extension     string
	Recursive     bool
	Ongoing       bool
	ProgressEvery int
}

type TokenizerConfig struct {
	RegistryURL string
	Revision    string
	CacheDir    string
	UserAgent   string
	Timeout     time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Password string
	DB       int
	Prefix   string
}

type PostgresConfig struct {
	Enabled   bool
	DBURL     string
	PoolSize  int
	BatchSize int
}

type MongoConfig struct {
	Enabled   bool
	URI       string
	DBName    string
	ScoreColl string
}
