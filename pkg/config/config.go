package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port             string `envconfig:"PORT" default:"8080"`
	AWSRegion        string `envconfig:"AWS_REGION" default:"eu-central-1"`
	TableName        string `envconfig:"TABLE_NAME" default:"carparts"`
	KafkaBrokers     string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	AuditTopic       string `envconfig:"AUDIT_TOPIC" default:"order-audit-log"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	DynamoDBEndpoint string `envconfig:"DYNAMODB_ENDPOINT" default:""` // DynamoDB Local endpoint
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
