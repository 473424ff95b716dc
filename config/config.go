package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "REGION_TFIDF"

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("cannot read the file %w", err)
	}
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error reading the config file %w", err)
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	def := GetDefaultConfig()
	v.SetDefault("tfidf.smoothing", def.TFIDF.Smoothing)
	v.SetDefault("tfidf.workers", def.TFIDF.Workers)
	v.SetDefault("tfidf.extension", def.TFIDF.Extension)
	v.SetDefault("tfidf.recursive", def.TFIDF.Recursive)
	v.SetDefault("tfidf.ongoing", def.TFIDF.Ongoing)
	v.SetDefault("tfidf.progressevery", def.TFIDF.ProgressEvery)
	v.SetDefault("tokenizer.registryurl", def.Tokenizer.RegistryURL)
	v.SetDefault("tokenizer.revision", def.Tokenizer.Revision)
	v.SetDefault("tokenizer.useragent", def.Tokenizer.UserAgent)
	v.SetDefault("tokenizer.timeout", def.Tokenizer.Timeout)
	v.SetDefault("redis.host", def.Redis.Host)
	v.SetDefault("redis.prefix", def.Redis.Prefix)
	v.SetDefault("db.poolsize", def.DB.PoolSize)
	v.SetDefault("db.batchsize", def.DB.BatchSize)
	v.SetDefault("mongo.uri", def.Mongo.URI)
	v.SetDefault("mongo.dbname", def.Mongo.DBName)
	v.SetDefault("mongo.scorecoll", def.Mongo.ScoreColl)
}

func GetDefaultConfig() *Config {
	return &Config{
		TFIDF: TFIDFConfig{
			Smoothing:     true,
			Workers:       1,
			Extension:     ".gtok",
			ProgressEvery: 1000,
		},
		Tokenizer: TokenizerConfig{
			RegistryURL: "https://huggingface.co",
			Revision:    "main",
			UserAgent:   "region-tfidf/1.0",
			Timeout:     60 * time.Second,
		},
		Redis: RedisConfig{
			Host:   "localhost:6379",
			Prefix: "tfidf",
		},
		DB: PostgresConfig{
			PoolSize:  4,
			BatchSize: 1000,
		},
		Mongo: MongoConfig{
			URI:       "mongodb://localhost:27017",
			DBName:    "region_tfidf",
			ScoreColl: "tfidf_scores",
		},
	}
}
