// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and stores
// (defined in internal/store) to fulfill application features.
//
// Key components:
//
// 1. Service Interfaces:
//   - Define the operations available to the delivery mechanisms
//   - Each service focuses on a specific domain area (lessons, improvements)
//
// 2. Use Case Implementations:
//   - Coordinate between multiple stores and domain entities
//   - Apply transactional boundaries when operations span multiple stores
//   - Emit task request events instead of touching the task package directly
//
// 3. Error Handling:
//   - Expected conditions (missing entities, exhausted credits) surface as
//     store sentinel errors callers check with errors.Is
//   - Unexpected failures are wrapped in service-specific error types
//
// The service layer depends on domain entities and store interfaces, never
// on specific infrastructure implementations.
package service
