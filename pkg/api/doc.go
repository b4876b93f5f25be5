// Package api defines the core domain types of the aufgabe task-list
// service: accounts, todos, the API error taxonomy, identifier generation,
// and request validation.
//
// The types in this package are shared by the auth subsystem, the todo
// handlers, and the storage adapters. They carry no behavior beyond
// serialization; business rules live in pkg/auth and pkg/todo.
package api
