package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/raywall/serverless-todo-api/pkg/config"
	"github.com/raywall/serverless-todo-api/pkg/logger"
	"github.com/raywall/serverless-todo-api/pkg/metrics"
	"github.com/raywall/serverless-todo-api/pkg/todos"
	"github.com/raywall/serverless-todo-api/pkg/transport"
)

func main() {
	ctx := context.Background()

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	if err := cfg.RequireStorage(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	logger.Configure(cfg.LogLevel)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Fatalf("FATAL: aws config: %v", err)
	}

	provider, err := metrics.Setup(cfg.MetricsEnabled, cfg.MetricsAddr, cfg.MetricsNamespace)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	store := todos.New(dynamodb.NewFromConfig(awsCfg), cfg.TodosTable, cfg.TodosIndexName)
	handler := transport.New(store, nil, cfg.WebOrigin, provider)

	lambda.Start(handler.CreateTodo())
}
