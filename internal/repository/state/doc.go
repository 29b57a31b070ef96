// Package state implements persistence for the alarm system state.
//
// The Repository interface is what the security service depends on. Three
// backends implement it: MemoryRepository (process memory), FileRepository
// (protobuf JSON on disk) and PostgresRepository (lib/pq). Open picks one from
// the store settings.
package state
