// Package mocks holds in-memory implementations of the repository, cache,
// storage, geocoding and email interfaces so services, middleware and
// handlers can be tested without MongoDB, Redis or a mail server.
//
// Each fake keeps its data in exported maps and exposes an Err field per
// operation group to force failures:
//
//	users := mocks.NewUserRepository()
//	users.Seed(&models.User{Name: "Ana", Email: "ana@example.com", Active: true})
//
//	sender := &mocks.EmailSender{Err: errors.New("smtp down")}
package mocks
