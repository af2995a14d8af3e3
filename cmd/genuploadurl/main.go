package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/raywall/serverless-todo-api/pkg/attachments"
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
	if err := cfg.RequireAttachments(); err != nil {
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
	issuer := attachments.NewIssuer(s3.NewFromConfig(awsCfg), cfg.AttachmentsBucket, cfg.UploadURLTTL())
	handler := transport.New(store, issuer, cfg.WebOrigin, provider)

	lambda.Start(handler.GenerateUploadURL())
}
