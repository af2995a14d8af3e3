// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package todoapi is a serverless TODO API: one Lambda function per HTTP
// operation plus a custom API Gateway authorizer, backed by a single
// DynamoDB table and an S3 bucket for attachments.
//
// Layout:
//
//   - pkg/todos: the storage adapter over the (userId, todoId) table
//   - pkg/auth: bearer token verification against the Auth0 JWKS
//   - pkg/attachments: presigned upload URL issuance
//   - pkg/transport: the API Gateway handlers and the local dev server
//   - pkg/config, pkg/logger, pkg/metrics: environment, zerolog and
//     StatsD plumbing shared by every function
//   - cmd/*: one binary per deployed function, plus cmd/server for
//     local development
//
// Every function process builds its AWS clients once before lambda.Start
// and shares them across invocations; no other state crosses requests.
package todoapi
