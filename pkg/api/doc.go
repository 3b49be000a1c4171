// Package api provides the HTTP REST API for the vizboard backend.
//
// # Overview
//
// This package implements the route layer over the team engine: team CRUD,
// membership and role management with seat-quota enforcement, plan
// resolution, and invitations. It is deliberately thin; all business rules
// live in pkg/teams and authorization decisions in pkg/access.
//
// # Architecture
//
// Routes are built on gorilla/mux and grouped into handler types:
//
//   - TeamHandlers: teams, members, roles and plan resolution
//   - InviteHandlers: invitation lifecycle
//
// # Error mapping
//
// Service errors map onto HTTP statuses uniformly:
//
//   - teams.ErrNotFound            -> 404
//   - authorization not granted    -> 401
//   - teams.ErrInviteNotAllowed    -> 406
//   - malformed input              -> 400
//   - anything else (billing etc.) -> 500
package api
