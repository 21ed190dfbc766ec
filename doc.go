// Package backend provides the Pulse API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/store: Generic record store adapter over the database
// - internal/social: Follow graph, counter reconciliation, user profiles
// - internal/feed: Home feed composition and trending
// - internal/posts: Post and comment services
// - internal/notifications: Notification aggregation and read state
// - internal/messaging: Direct-message conversations
// - internal/database: Database connection and migrations
// - internal/cache: Redis client for feed pages and unread counts
// - internal/middleware: HTTP middleware (request ids, logging, metrics)
// - internal/seed: Development database seeding

// See the individual package documentation for detailed API reference.
package backend
