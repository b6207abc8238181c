// Package app composes the underwriting services into a running application.
//
// # Architecture Role
//
// The app package sits above the domain and storage layers and is responsible
// for wiring them together. It is NOT a business logic layer - business logic
// belongs in internal/app/services/.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── domain/             # Domain models (pure data structures)
//	│   ├── project/        # Projects and their lifecycle
//	│   ├── lease/          # Tenant leases and rent schedules
//	│   ├── benchmark/      # Unit costs, growth rates, suggestions
//	│   └── ...             # Other domain models
//	├── storage/            # Storage interfaces and implementations
//	│   ├── interfaces.go   # Store interfaces (ProjectStore, LeaseStore, etc.)
//	│   ├── memory/         # In-memory implementation for testing
//	│   └── postgres/       # PostgreSQL implementation for production
//	├── services/           # Business logic services
//	├── httpapi/            # HTTP handlers and routing
//	├── system/             # Lifecycle management for background services
//	└── metrics/            # Prometheus collectors
//
// # Example: Adding a New Domain
//
// When adding a new domain (e.g., "debt"):
//
//  1. Create domain models in internal/app/domain/debt/
//  2. Add a storage interface to internal/app/storage/interfaces.go
//  3. Implement storage in internal/app/storage/postgres/ and memory/
//  4. Create the service in internal/app/services/debt/service.go
//  5. Wire the service in internal/app/application.go
//  6. Add HTTP handlers in internal/app/httpapi/handler_debt.go
package app
