package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/raywall/serverless-todo-api/pkg/auth"
	"github.com/raywall/serverless-todo-api/pkg/config"
	"github.com/raywall/serverless-todo-api/pkg/logger"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	if err := cfg.RequireAuth(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	logger.Configure(cfg.LogLevel)

	// The JWKS cache lives for the whole process, so warm invocations skip
	// the key fetch entirely.
	verifier := auth.NewVerifier(auth.NewJWKSCache(cfg.Auth0JWKSURL), cfg.Auth0Audience, cfg.Auth0Issuer)

	lambda.Start(func(ctx context.Context, event events.APIGatewayCustomAuthorizerRequest) (events.APIGatewayCustomAuthorizerResponse, error) {
		return verifier.Authorize(ctx, event), nil
	})
}
