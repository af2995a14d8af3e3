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

// Package todos is the storage adapter for TODO items.
//
// Items live in a single DynamoDB table keyed by (userId, todoId), with a
// (userId, createdAt) GSI used to list a user's items newest first. The
// adapter exposes the five operations the handlers need and nothing else:
//
//   - Create: id generation, createdAt stamp, unconditional PutItem
//   - List: GSI query with an opaque continuation cursor
//   - Update: partial SET guarded by an attribute_exists precondition
//   - Delete: unconditional, idempotent DeleteItem
//   - SetAttachmentURL: conditional SET of the attachment location
//
// The existence precondition on updates is the only concurrency mechanism
// in the system: it keeps a concurrent delete from turning an update into
// an insert. Concurrent updates to the same item remain last-writer-wins.
package todos
